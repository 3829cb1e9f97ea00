package queue

import (
	"github.com/hibiken/asynq"

	config "draftflow/configs"
	"draftflow/internal/publisher"
	"draftflow/internal/repository"
	"draftflow/internal/service"
)

// Queue owns the asynq worker handlers for the two pipeline tasks.
type Queue struct {
	cfg config.Config
	sc  repository.ScheduledContentRepository
	ar  repository.ArticleRepository
	ir  repository.IntegrationRepository
	ph  repository.PublishHistoryRepository
	gs  service.GenerationService
	pf  *publisher.Factory
}

func NewQueue(
	cfg config.Config,
	sc repository.ScheduledContentRepository,
	ar repository.ArticleRepository,
	ir repository.IntegrationRepository,
	ph repository.PublishHistoryRepository,
	gs service.GenerationService,
	pf *publisher.Factory) *Queue {
	return &Queue{
		cfg: cfg,
		sc:  sc,
		ar:  ar,
		ir:  ir,
		ph:  ph,
		gs:  gs,
		pf:  pf,
	}
}

const (
	TaskTypeGenerateArticle = "generate:article"
	TaskTypePublishArticle  = "publish:article"
)

type GenerateArticlePayload struct {
	ScheduledContentID int64 `json:"scheduled_content_id"`
	AiProviderID       int64 `json:"ai_provider_id"`
}

type PublishArticlePayload struct {
	ArticleID int64 `json:"article_id"`
}

// Enqueuer is the slice of *asynq.Client the dispatchers need; tests swap in
// a recording fake.
type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}
