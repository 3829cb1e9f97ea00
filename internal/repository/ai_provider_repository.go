package repository

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"draftflow/internal/logger"
	"draftflow/internal/models"
)

type AiProviderRepository interface {
	GetByID(ctx context.Context, id int64) (*models.AiProvider, error)
	// GetEffectiveTextProvider resolves the provider a project would use for
	// text generation, or nil when none is configured.
	GetEffectiveTextProvider(ctx context.Context, projectID int64) (*models.AiProvider, error)
}

type aiProviderRepository struct {
	db *sql.DB
}

func NewAiProviderRepository(db *sql.DB) AiProviderRepository {
	return &aiProviderRepository{db: db}
}

const aiProviderColumns = `id, user_id, project_id, name, provider, capability, api_key, model, base_url, is_default, active, created_at`

func (r *aiProviderRepository) GetByID(ctx context.Context, id int64) (*models.AiProvider, error) {
	query := `SELECT ` + aiProviderColumns + ` FROM ai_providers WHERE id = $1`

	p, err := scanAiProvider(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Log.Error("get ai provider", zap.Error(err))
		return nil, err
	}
	return p, nil
}

// Priority: a provider owned by the project beats an inherited account-level
// one; within each scope the default flag wins, then the oldest entry.
func (r *aiProviderRepository) GetEffectiveTextProvider(ctx context.Context, projectID int64) (*models.AiProvider, error) {
	query := `
		SELECT ` + aiProviderColumns + `
		FROM ai_providers
		WHERE capability = $1
		  AND active = TRUE
		  AND (project_id = $2
		       OR (project_id IS NULL AND user_id = (SELECT user_id FROM projects WHERE id = $2)))
		ORDER BY (project_id IS NOT NULL) DESC, is_default DESC, id ASC
		LIMIT 1
	`

	p, err := scanAiProvider(r.db.QueryRowContext(ctx, query, models.CapabilityText, projectID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Log.Error("resolve text provider", zap.Error(err))
		return nil, err
	}
	return p, nil
}

func scanAiProvider(row interface{ Scan(...any) error }) (*models.AiProvider, error) {
	var p models.AiProvider
	err := row.Scan(&p.ID, &p.UserID, &p.ProjectID, &p.Name, &p.Provider, &p.Capability,
		&p.APIKey, &p.Model, &p.BaseURL, &p.IsDefault, &p.Active, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
