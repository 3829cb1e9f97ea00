package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"draftflow/internal/logger"
	"draftflow/internal/models"
)

type IntegrationRepository interface {
	Create(ctx context.Context, in *models.Integration) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Integration, error)
	ListActiveByProjectID(ctx context.Context, projectID int64) ([]*models.Integration, error)
	ListWithExpiringTokens(ctx context.Context, before time.Time) ([]*models.Integration, error)
	UpdateConfig(ctx context.Context, id int64, config map[string]string) error
	Remove(ctx context.Context, id int64) error
}

type integrationRepository struct {
	db *sql.DB
}

func NewIntegrationRepository(db *sql.DB) IntegrationRepository {
	return &integrationRepository{db: db}
}

func (r *integrationRepository) Create(ctx context.Context, in *models.Integration) (int64, error) {
	cfg, err := json.Marshal(in.Config)
	if err != nil {
		return 0, err
	}

	query := `
		INSERT INTO integrations (project_id, type, name, config, active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var id int64
	err = r.db.QueryRowContext(ctx, query, in.ProjectID, in.Type, in.Name, cfg, in.Active).Scan(&id)
	if err != nil {
		logger.Log.Error("insert integration", zap.Error(err))
		return 0, err
	}

	return id, nil
}

func (r *integrationRepository) GetByID(ctx context.Context, id int64) (*models.Integration, error) {
	query := `SELECT id, project_id, type, name, config, active, created_at, updated_at FROM integrations WHERE id = $1`

	in, err := scanIntegration(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Log.Error("get integration", zap.Error(err))
		return nil, err
	}
	return in, nil
}

func (r *integrationRepository) ListActiveByProjectID(ctx context.Context, projectID int64) ([]*models.Integration, error) {
	query := `SELECT id, project_id, type, name, config, active, created_at, updated_at FROM integrations WHERE project_id = $1 AND active = TRUE`

	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		logger.Log.Error("list integrations", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	return collectIntegrations(rows)
}

// ListWithExpiringTokens returns OAuth-backed integrations whose access token
// expires before the given moment. Expiry is tracked inside config, mirrored
// to the token_expires_at column on every update.
func (r *integrationRepository) ListWithExpiringTokens(ctx context.Context, before time.Time) ([]*models.Integration, error) {
	query := `
		SELECT id, project_id, type, name, config, active, created_at, updated_at
		FROM integrations
		WHERE active = TRUE AND token_expires_at IS NOT NULL AND token_expires_at <= $1
	`

	rows, err := r.db.QueryContext(ctx, query, before)
	if err != nil {
		logger.Log.Error("list expiring integrations", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	return collectIntegrations(rows)
}

func (r *integrationRepository) UpdateConfig(ctx context.Context, id int64, config map[string]string) error {
	cfg, err := json.Marshal(config)
	if err != nil {
		return err
	}

	var expires sql.NullTime
	if raw := config["token_expires_at"]; raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			expires = sql.NullTime{Time: t, Valid: true}
		}
	}

	query := `UPDATE integrations SET config = $1, token_expires_at = $2, updated_at = NOW() WHERE id = $3`
	_, err = r.db.ExecContext(ctx, query, cfg, expires, id)
	if err != nil {
		logger.Log.Error("update integration config", zap.Error(err))
		return err
	}
	return nil
}

func (r *integrationRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM integrations WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		logger.Log.Error("remove integration", zap.Error(err))
		return err
	}
	return nil
}

func scanIntegration(row interface{ Scan(...any) error }) (*models.Integration, error) {
	var in models.Integration
	var rawConfig []byte
	err := row.Scan(&in.ID, &in.ProjectID, &in.Type, &in.Name, &rawConfig, &in.Active, &in.CreatedAt, &in.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(rawConfig) > 0 {
		if err := json.Unmarshal(rawConfig, &in.Config); err != nil {
			return nil, err
		}
	}
	return &in, nil
}

func collectIntegrations(rows *sql.Rows) ([]*models.Integration, error) {
	var integrations []*models.Integration
	for rows.Next() {
		in, err := scanIntegration(rows)
		if err != nil {
			logger.Log.Error("scan integration", zap.Error(err))
			return nil, err
		}
		integrations = append(integrations, in)
	}
	return integrations, rows.Err()
}
