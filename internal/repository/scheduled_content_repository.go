package repository

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"draftflow/internal/logger"
	"draftflow/internal/models"
)

type ScheduledContentRepository interface {
	Create(ctx context.Context, tx *sql.Tx, sc *models.ScheduledContent) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.ScheduledContent, error)
	GetByArticleID(ctx context.Context, articleID int64) (*models.ScheduledContent, error)
	ListByProjectID(ctx context.Context, projectID int64) ([]*models.ScheduledContent, error)
	ListGenerationReady(ctx context.Context, horizon time.Time, limit int) ([]*models.ScheduledContent, error)
	ListPublishReady(ctx context.Context, now time.Time) ([]*models.ScheduledContent, error)
	ClaimForGeneration(ctx context.Context, id int64) (bool, error)
	UpdateStatus(ctx context.Context, status string, id int64) error
	Schedule(ctx context.Context, id int64, date time.Time, timeOfDay string) error
	SetArticle(ctx context.Context, id, articleID int64) error
}

type scheduledContentRepository struct {
	db *sql.DB
}

func NewScheduledContentRepository(db *sql.DB) ScheduledContentRepository {
	return &scheduledContentRepository{db: db}
}

const scheduledContentColumns = `id, project_id, keyword_id, article_id, status, content_type, title, tone, target_word_count, scheduled_date, scheduled_time, created_at, updated_at`

func scanScheduledContent(row interface{ Scan(...any) error }) (*models.ScheduledContent, error) {
	var sc models.ScheduledContent
	err := row.Scan(&sc.ID, &sc.ProjectID, &sc.KeywordID, &sc.ArticleID, &sc.Status, &sc.ContentType,
		&sc.Title, &sc.Tone, &sc.TargetWordCount, &sc.ScheduledDate, &sc.ScheduledTime, &sc.CreatedAt, &sc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &sc, nil
}

func (r *scheduledContentRepository) Create(ctx context.Context, tx *sql.Tx, sc *models.ScheduledContent) (int64, error) {
	query := `
		INSERT INTO scheduled_content (project_id, keyword_id, status, content_type, tone, target_word_count)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	var id int64
	var err error

	if tx != nil {
		err = tx.QueryRowContext(ctx, query, sc.ProjectID, sc.KeywordID, sc.Status, sc.ContentType, sc.Tone, sc.TargetWordCount).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, query, sc.ProjectID, sc.KeywordID, sc.Status, sc.ContentType, sc.Tone, sc.TargetWordCount).Scan(&id)
	}
	if err != nil {
		logger.Log.Error("insert scheduled content", zap.Error(err))
		return 0, err
	}

	return id, nil
}

func (r *scheduledContentRepository) GetByID(ctx context.Context, id int64) (*models.ScheduledContent, error) {
	query := `SELECT ` + scheduledContentColumns + ` FROM scheduled_content WHERE id = $1`

	sc, err := scanScheduledContent(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Log.Error("get scheduled content", zap.Error(err))
		return nil, err
	}
	return sc, nil
}

func (r *scheduledContentRepository) GetByArticleID(ctx context.Context, articleID int64) (*models.ScheduledContent, error) {
	query := `SELECT ` + scheduledContentColumns + ` FROM scheduled_content WHERE article_id = $1`

	sc, err := scanScheduledContent(r.db.QueryRowContext(ctx, query, articleID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Log.Error("get scheduled content by article", zap.Error(err))
		return nil, err
	}
	return sc, nil
}

func (r *scheduledContentRepository) ListByProjectID(ctx context.Context, projectID int64) ([]*models.ScheduledContent, error) {
	query := `SELECT ` + scheduledContentColumns + ` FROM scheduled_content WHERE project_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		logger.Log.Error("list scheduled content", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	return collectScheduledContent(rows)
}

// ListGenerationReady returns items due for generation: still in scheduled
// status, backed by a keyword, without a generated article, and dated on or
// before the horizon. Items without a time-of-day sort first within their day
// (NULLS FIRST), so date-only items are treated as earliest-in-day.
func (r *scheduledContentRepository) ListGenerationReady(ctx context.Context, horizon time.Time, limit int) ([]*models.ScheduledContent, error) {
	query := `
		SELECT ` + scheduledContentColumns + `
		FROM scheduled_content
		WHERE status = $1
		  AND keyword_id IS NOT NULL
		  AND article_id IS NULL
		  AND scheduled_date IS NOT NULL
		  AND scheduled_date <= $2::date
		ORDER BY scheduled_date ASC, scheduled_time ASC NULLS FIRST
		LIMIT $3
	`

	rows, err := r.db.QueryContext(ctx, query, models.StatusScheduled, horizon, limit)
	if err != nil {
		logger.Log.Error("list generation ready", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	return collectScheduledContent(rows)
}

// ListPublishReady returns approved items whose publish moment has passed and
// whose project auto-publishes on schedule. Items carrying a time-of-day are
// compared as full timestamps; date-only items become eligible at the start of
// their calendar day.
func (r *scheduledContentRepository) ListPublishReady(ctx context.Context, now time.Time) ([]*models.ScheduledContent, error) {
	query := `
		SELECT sc.id, sc.project_id, sc.keyword_id, sc.article_id, sc.status, sc.content_type, sc.title, sc.tone,
		       sc.target_word_count, sc.scheduled_date, sc.scheduled_time, sc.created_at, sc.updated_at
		FROM scheduled_content sc
		JOIN projects p ON p.id = sc.project_id
		WHERE p.auto_publish = $1
		  AND sc.status = $2
		  AND sc.article_id IS NOT NULL
		  AND (
			(sc.scheduled_time IS NOT NULL AND sc.scheduled_date + sc.scheduled_time <= $3)
			OR (sc.scheduled_time IS NULL AND sc.scheduled_date <= $3::date)
		  )
	`

	rows, err := r.db.QueryContext(ctx, query, models.AutoPublishScheduled, models.StatusApproved, now)
	if err != nil {
		logger.Log.Error("list publish ready", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	return collectScheduledContent(rows)
}

// ClaimForGeneration is the concurrency guard for overlapping scan runs: the
// status flip only succeeds while the row is still in scheduled status.
// Returns false when a concurrent run already claimed the item.
func (r *scheduledContentRepository) ClaimForGeneration(ctx context.Context, id int64) (bool, error) {
	query := `
		UPDATE scheduled_content
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`

	res, err := r.db.ExecContext(ctx, query, models.StatusQueued, id, models.StatusScheduled)
	if err != nil {
		logger.Log.Error("claim for generation", zap.Error(err))
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *scheduledContentRepository) UpdateStatus(ctx context.Context, status string, id int64) error {
	query := `
		UPDATE scheduled_content
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`

	_, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		logger.Log.Error("update scheduled content status", zap.Error(err))
		return err
	}
	return nil
}

func (r *scheduledContentRepository) Schedule(ctx context.Context, id int64, date time.Time, timeOfDay string) error {
	query := `
		UPDATE scheduled_content
		SET status = $1, scheduled_date = $2, scheduled_time = $3, updated_at = NOW()
		WHERE id = $4
	`

	t := sql.NullString{String: timeOfDay, Valid: timeOfDay != ""}
	_, err := r.db.ExecContext(ctx, query, models.StatusScheduled, date, t, id)
	if err != nil {
		logger.Log.Error("schedule content", zap.Error(err))
		return err
	}
	return nil
}

// SetArticle records the generated article and moves the item to generated
// status in one write.
func (r *scheduledContentRepository) SetArticle(ctx context.Context, id, articleID int64) error {
	query := `
		UPDATE scheduled_content
		SET article_id = $1, status = $2, updated_at = NOW()
		WHERE id = $3
	`

	_, err := r.db.ExecContext(ctx, query, articleID, models.StatusGenerated, id)
	if err != nil {
		logger.Log.Error("set article", zap.Error(err))
		return err
	}
	return nil
}

func collectScheduledContent(rows *sql.Rows) ([]*models.ScheduledContent, error) {
	var items []*models.ScheduledContent
	for rows.Next() {
		sc, err := scanScheduledContent(rows)
		if err != nil {
			logger.Log.Error("scan scheduled content", zap.Error(err))
			return nil, err
		}
		items = append(items, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
