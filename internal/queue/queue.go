package queue

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"draftflow/internal/logger"
)

// EnqueueGeneration schedules a generation task. A zero delay enqueues for
// immediate processing rather than "now + 0".
func EnqueueGeneration(client Enqueuer, payload GenerateArticlePayload, delay time.Duration) error {
	taskPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypeGenerateArticle, taskPayload)

	var opts []asynq.Option
	if delay > 0 {
		opts = append(opts, asynq.ProcessIn(delay))
	}

	if _, err := client.Enqueue(task, opts...); err != nil {
		return err
	}

	logger.Log.Debug("generation task enqueued",
		zap.Int64("scheduled_content_id", payload.ScheduledContentID),
		zap.Duration("delay", delay))
	return nil
}

func EnqueuePublish(client Enqueuer, payload PublishArticlePayload) error {
	taskPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypePublishArticle, taskPayload)

	if _, err := client.Enqueue(task); err != nil {
		return err
	}

	logger.Log.Debug("publish task enqueued", zap.Int64("article_id", payload.ArticleID))
	return nil
}
