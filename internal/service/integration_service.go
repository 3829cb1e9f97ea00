package service

import (
	"context"
	"errors"
	"fmt"

	config "draftflow/configs"
	"draftflow/internal/models"
	"draftflow/internal/publisher"
	"draftflow/internal/repository"
	"draftflow/internal/transfer"
	"draftflow/pkg/utils"
)

// secretConfigKeys are encrypted at rest and decrypted just before use.
var secretConfigKeys = []string{"secret", "app_password", "access_token", "refresh_token"}

type IntegrationService interface {
	Create(ctx context.Context, ic *transfer.IntegrationCreation) (int64, []string, error)
	Get(ctx context.Context, id int64) (*models.Integration, error)
	Test(ctx context.Context, id int64) (*publisher.Result, error)
	List(ctx context.Context, projectID int64) ([]*models.Integration, error)
	Remove(ctx context.Context, id int64) error
}

type integrationService struct {
	cfg config.Config
	ir  repository.IntegrationRepository
	pf  *publisher.Factory
}

func NewIntegrationService(cfg config.Config, ir repository.IntegrationRepository, pf *publisher.Factory) IntegrationService {
	return &integrationService{cfg: cfg, ir: ir, pf: pf}
}

// Create validates credentials through the publisher for the requested type;
// validation messages are returned to the caller, not treated as errors.
func (s *integrationService) Create(ctx context.Context, ic *transfer.IntegrationCreation) (int64, []string, error) {
	p, err := s.pf.ForType(ic.Type)
	if err != nil {
		return 0, nil, err
	}

	if msgs := p.ValidateCredentials(ic.Config); len(msgs) > 0 {
		return 0, msgs, nil
	}

	cfg, err := EncryptIntegrationConfig(ic.Config, s.cfg.SecretKey)
	if err != nil {
		return 0, nil, err
	}

	id, err := s.ir.Create(ctx, &models.Integration{
		ProjectID: ic.ProjectID,
		Type:      ic.Type,
		Name:      ic.Name,
		Config:    cfg,
		Active:    true,
	})
	if err != nil {
		return 0, nil, err
	}

	return id, nil, nil
}

func (s *integrationService) Get(ctx context.Context, id int64) (*models.Integration, error) {
	return s.ir.GetByID(ctx, id)
}

func (s *integrationService) Test(ctx context.Context, id int64) (*publisher.Result, error) {
	in, err := s.ir.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in == nil {
		return nil, errors.New("integration not found")
	}

	p, err := s.pf.ForType(in.Type)
	if err != nil {
		return nil, err
	}

	return p.Test(ctx, DecryptIntegrationConfig(in.Config, s.cfg.SecretKey))
}

func (s *integrationService) List(ctx context.Context, projectID int64) ([]*models.Integration, error) {
	return s.ir.ListActiveByProjectID(ctx, projectID)
}

func (s *integrationService) Remove(ctx context.Context, id int64) error {
	return s.ir.Remove(ctx, id)
}

func EncryptIntegrationConfig(cfg map[string]string, secretKey string) (map[string]string, error) {
	out := make(map[string]string, len(cfg))
	for k, v := range cfg {
		out[k] = v
	}
	for _, k := range secretConfigKeys {
		if v := out[k]; v != "" {
			enc, err := utils.Encrypt([]byte(v), []byte(secretKey))
			if err != nil {
				return nil, fmt.Errorf("encrypting %s: %w", k, err)
			}
			out[k] = enc
		}
	}
	return out, nil
}

// DecryptIntegrationConfig returns a copy with secret fields decrypted.
// Fields that fail to decrypt are passed through untouched so configs
// created before encryption keep working.
func DecryptIntegrationConfig(cfg map[string]string, secretKey string) map[string]string {
	out := make(map[string]string, len(cfg))
	for k, v := range cfg {
		out[k] = v
	}
	for _, k := range secretConfigKeys {
		if v := out[k]; v != "" {
			if dec, err := utils.Decrypt(v, []byte(secretKey)); err == nil {
				out[k] = dec
			}
		}
	}
	return out
}
