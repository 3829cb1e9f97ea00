package repository

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"draftflow/internal/logger"
	"draftflow/internal/models"
)

type PublishHistoryRepository interface {
	Create(ctx context.Context, ph *models.PublishHistory) (int64, error)
	ListByArticleID(ctx context.Context, articleID int64) ([]*models.PublishHistory, error)
}

type publishHistoryRepository struct {
	db *sql.DB
}

func NewPublishHistoryRepository(db *sql.DB) PublishHistoryRepository {
	return &publishHistoryRepository{db: db}
}

func (r *publishHistoryRepository) Create(ctx context.Context, ph *models.PublishHistory) (int64, error) {
	query := `
		INSERT INTO publish_history (article_id, integration_id, success, detail, error_message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, ph.ArticleID, ph.IntegrationID, ph.Success, ph.Detail, ph.ErrorMessage).Scan(&id)
	if err != nil {
		logger.Log.Error("insert publish history", zap.Error(err))
		return 0, err
	}

	return id, nil
}

func (r *publishHistoryRepository) ListByArticleID(ctx context.Context, articleID int64) ([]*models.PublishHistory, error) {
	query := `
		SELECT id, article_id, integration_id, success, detail, error_message, created_at
		FROM publish_history WHERE article_id = $1 ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, articleID)
	if err != nil {
		logger.Log.Error("list publish history", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var entries []*models.PublishHistory
	for rows.Next() {
		var ph models.PublishHistory
		if err := rows.Scan(&ph.ID, &ph.ArticleID, &ph.IntegrationID, &ph.Success, &ph.Detail, &ph.ErrorMessage, &ph.CreatedAt); err != nil {
			logger.Log.Error("scan publish history", zap.Error(err))
			return nil, err
		}
		entries = append(entries, &ph)
	}
	return entries, rows.Err()
}
