package repository

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"draftflow/internal/logger"
	"draftflow/internal/models"
)

type ProjectRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Project, error)
	ListByUserID(ctx context.Context, userID int64) ([]*models.Project, error)
	CheckByUserID(ctx context.Context, projectID, userID int64) (bool, error)
}

type projectRepository struct {
	db *sql.DB
}

func NewProjectRepository(db *sql.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) GetByID(ctx context.Context, id int64) (*models.Project, error) {
	query := `SELECT id, user_id, name, auto_publish, created_at, updated_at FROM projects WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	var p models.Project
	err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.AutoPublish, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Log.Error("get project", zap.Error(err))
		return nil, err
	}

	return &p, nil
}

func (r *projectRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.Project, error) {
	query := `SELECT id, user_id, name, auto_publish, created_at, updated_at FROM projects WHERE user_id = $1`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		logger.Log.Error("list projects", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.AutoPublish, &p.CreatedAt, &p.UpdatedAt); err != nil {
			logger.Log.Error("scan project", zap.Error(err))
			return nil, err
		}
		projects = append(projects, &p)
	}
	return projects, rows.Err()
}

func (r *projectRepository) CheckByUserID(ctx context.Context, projectID, userID int64) (bool, error) {
	query := `SELECT 1 FROM projects WHERE id = $1 AND user_id = $2`

	var result int
	err := r.db.QueryRowContext(ctx, query, projectID, userID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		logger.Log.Error("check project owner", zap.Error(err))
		return false, err
	}

	return result == 1, nil
}
