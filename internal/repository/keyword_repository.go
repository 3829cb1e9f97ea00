package repository

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"draftflow/internal/logger"
	"draftflow/internal/models"
)

type KeywordRepository interface {
	Create(ctx context.Context, tx *sql.Tx, kw *models.Keyword) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Keyword, error)
	ListByProjectID(ctx context.Context, projectID int64) ([]*models.Keyword, error)
	Remove(ctx context.Context, id int64) error
}

type keywordRepository struct {
	db *sql.DB
}

func NewKeywordRepository(db *sql.DB) KeywordRepository {
	return &keywordRepository{db: db}
}

func (r *keywordRepository) Create(ctx context.Context, tx *sql.Tx, kw *models.Keyword) (int64, error) {
	query := `INSERT INTO keywords (project_id, keyword) VALUES ($1, $2) RETURNING id`

	var id int64
	var err error

	if tx != nil {
		err = tx.QueryRowContext(ctx, query, kw.ProjectID, kw.Keyword).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, query, kw.ProjectID, kw.Keyword).Scan(&id)
	}
	if err != nil {
		logger.Log.Error("insert keyword", zap.Error(err))
		return 0, err
	}

	return id, nil
}

func (r *keywordRepository) GetByID(ctx context.Context, id int64) (*models.Keyword, error) {
	query := `SELECT id, project_id, keyword, created_at FROM keywords WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	var kw models.Keyword
	err := row.Scan(&kw.ID, &kw.ProjectID, &kw.Keyword, &kw.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Log.Error("get keyword", zap.Error(err))
		return nil, err
	}

	return &kw, nil
}

func (r *keywordRepository) ListByProjectID(ctx context.Context, projectID int64) ([]*models.Keyword, error) {
	query := `SELECT id, project_id, keyword, created_at FROM keywords WHERE project_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		logger.Log.Error("list keywords", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var keywords []*models.Keyword
	for rows.Next() {
		var kw models.Keyword
		if err := rows.Scan(&kw.ID, &kw.ProjectID, &kw.Keyword, &kw.CreatedAt); err != nil {
			logger.Log.Error("scan keyword", zap.Error(err))
			return nil, err
		}
		keywords = append(keywords, &kw)
	}
	return keywords, rows.Err()
}

// Remove deletes the keyword; scheduled_content.keyword_id is nulled by the
// ON DELETE SET NULL cascade, not by pipeline code.
func (r *keywordRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM keywords WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		logger.Log.Error("remove keyword", zap.Error(err))
		return err
	}
	return nil
}
