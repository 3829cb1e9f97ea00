package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"draftflow/internal/logger"
	"draftflow/internal/models"
	"draftflow/internal/publisher"
	"draftflow/internal/service"
)

func (q *Queue) HandleGenerateArticleTask(ctx context.Context, task *asynq.Task) error {
	var payload GenerateArticlePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	return q.gs.GenerateArticle(ctx, payload.ScheduledContentID, payload.AiProviderID)
}

func (q *Queue) HandlePublishArticleTask(ctx context.Context, task *asynq.Task) error {
	var payload PublishArticlePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	return q.PublishArticle(ctx, payload.ArticleID)
}

// PublishArticle fans the article out to every active integration of its
// project. Each integration gets its own publish-history record; the item
// moves to published once at least one integration succeeds.
func (q *Queue) PublishArticle(ctx context.Context, articleID int64) error {
	article, err := q.ar.GetByID(ctx, articleID)
	if err != nil {
		return err
	}
	if article == nil {
		return fmt.Errorf("article %d not found", articleID)
	}

	sc, err := q.sc.GetByArticleID(ctx, articleID)
	if err != nil {
		return err
	}

	integrations, err := q.ir.ListActiveByProjectID(ctx, article.ProjectID)
	if err != nil {
		return err
	}
	if len(integrations) == 0 {
		return errors.New("no active integrations for project")
	}

	content := publisher.FromArticle(article)

	var wg sync.WaitGroup
	var mu sync.Mutex
	published := false
	semaphore := make(chan struct{}, 10)

	publishTo := func(in *models.Integration) {
		defer wg.Done()
		defer func() { <-semaphore }()

		history := models.PublishHistory{
			ArticleID:     articleID,
			IntegrationID: in.ID,
		}

		result, err := q.publishToIntegration(ctx, content, in)
		if err != nil {
			history.ErrorMessage = err.Error()
			logger.Log.Warn("publish failed",
				zap.Int64("article_id", articleID),
				zap.Int64("integration_id", in.ID),
				zap.String("integration_type", in.Type),
				zap.Error(err))
		} else {
			history.Success = true
			history.Detail = result.Detail
			mu.Lock()
			published = true
			mu.Unlock()
			logger.Log.Info("publish succeeded",
				zap.Int64("article_id", articleID),
				zap.Int64("integration_id", in.ID),
				zap.String("integration_type", in.Type),
				zap.String("external_url", result.ExternalURL))
		}

		if _, err := q.ph.Create(ctx, &history); err != nil {
			logger.Log.Error("save publish history", zap.Int64("article_id", articleID), zap.Error(err))
		}
	}

	for _, in := range integrations {
		wg.Add(1)
		semaphore <- struct{}{}
		go publishTo(in)
	}

	wg.Wait()

	if published && sc != nil {
		if err := q.sc.UpdateStatus(ctx, models.StatusPublished, sc.ID); err != nil {
			return err
		}
	}

	return nil
}

func (q *Queue) publishToIntegration(ctx context.Context, content *publisher.PublishableContent, in *models.Integration) (*publisher.Result, error) {
	p, err := q.pf.ForType(in.Type)
	if err != nil {
		return nil, err
	}

	cfg := service.DecryptIntegrationConfig(in.Config, q.cfg.SecretKey)
	return p.Publish(ctx, content, cfg)
}
