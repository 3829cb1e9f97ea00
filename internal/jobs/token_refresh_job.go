package job

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	config "draftflow/configs"
	"draftflow/internal/logger"
	"draftflow/internal/models"
	"draftflow/internal/publisher"
	"draftflow/internal/repository"
	"draftflow/pkg/utils"
)

// TokenRefreshJob keeps OAuth-backed integrations (blogger) usable by
// refreshing access tokens that expire within the next 30 minutes.
type TokenRefreshJob struct {
	cfg config.Config
	ir  repository.IntegrationRepository
}

func NewTokenRefreshJob(cfg config.Config, ir repository.IntegrationRepository) *TokenRefreshJob {
	return &TokenRefreshJob{cfg: cfg, ir: ir}
}

func (j *TokenRefreshJob) RefreshTokens() {
	ctx := context.Background()

	integrations, err := j.ir.ListWithExpiringTokens(ctx, time.Now().Add(30*time.Minute))
	if err != nil {
		logger.Log.Error("list expiring integrations", zap.Error(err))
		return
	}

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, 10)

	for _, in := range integrations {
		if in.Type != publisher.TypeBlogger {
			continue
		}

		wg.Add(1)
		semaphore <- struct{}{}

		go func(in *models.Integration) {
			defer wg.Done()
			defer func() { <-semaphore }()

			if err := j.refreshIntegration(ctx, in); err != nil {
				logger.Log.Warn("unable to refresh integration token",
					zap.Int64("integration_id", in.ID),
					zap.Error(err))
			}
		}(in)
	}

	wg.Wait()
}

func (j *TokenRefreshJob) refreshIntegration(ctx context.Context, in *models.Integration) error {
	refreshToken, err := utils.Decrypt(in.Config["refresh_token"], []byte(j.cfg.SecretKey))
	if err != nil {
		return err
	}

	conf := &oauth2.Config{
		ClientID:     j.cfg.GoogleClientID,
		ClientSecret: j.cfg.GoogleClientSecret,
		Endpoint:     google.Endpoint,
	}

	token, err := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return err
	}

	encryptedAccess, err := utils.Encrypt([]byte(token.AccessToken), []byte(j.cfg.SecretKey))
	if err != nil {
		return err
	}

	in.Config["access_token"] = encryptedAccess
	in.Config["token_expires_at"] = token.Expiry.Format(time.RFC3339)

	return j.ir.UpdateConfig(ctx, in.ID, in.Config)
}
