package job

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"draftflow/internal/logger"
	"draftflow/internal/queue"
	"draftflow/internal/repository"
)

// PublishScanJob enqueues publish tasks for approved content whose scheduled
// moment has passed. Runs every minute; volumes per tick are small, so there
// is no batching or spreading here. Status stays approved until the publish
// worker confirms delivery.
type PublishScanJob struct {
	sc     repository.ScheduledContentRepository
	client queue.Enqueuer
}

func NewPublishScanJob(sc repository.ScheduledContentRepository, client queue.Enqueuer) *PublishScanJob {
	return &PublishScanJob{sc: sc, client: client}
}

func (j *PublishScanJob) RunScheduled() {
	dispatched, err := j.Run(context.Background())
	if err != nil {
		logger.Log.Error("publish scan failed", zap.Error(err))
		return
	}
	if dispatched > 0 {
		logger.Log.Info("publish scan finished", zap.Int("dispatched", dispatched))
	}
}

func (j *PublishScanJob) Run(ctx context.Context) (int, error) {
	items, err := j.sc.ListPublishReady(ctx, time.Now())
	if err != nil {
		return 0, fmt.Errorf("listing publish-ready content: %w", err)
	}

	dispatched := 0
	for _, item := range items {
		payload := queue.PublishArticlePayload{ArticleID: item.ArticleID.Int64}
		if err := queue.EnqueuePublish(j.client, payload); err != nil {
			return dispatched, fmt.Errorf("enqueuing publish for article %d: %w", item.ArticleID.Int64, err)
		}

		dispatched++
		logger.Log.Info("publish dispatched",
			zap.Int64("scheduled_content_id", item.ID),
			zap.Int64("article_id", item.ArticleID.Int64),
			zap.Time("scheduled_date", item.ScheduledDate.Time),
			zap.String("scheduled_time", item.ScheduledTime.String))
	}

	return dispatched, nil
}
