package job

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	config "draftflow/configs"
	"draftflow/internal/logger"
	"draftflow/internal/queue"
	"draftflow/internal/repository"
)

// GenerationScanJob finds content due for AI generation and fans it out
// across the spread window. Runs hourly; overlapping invocations are rejected
// at the trigger level, and the guarded status flip in the repository covers
// anything that slips through.
type GenerationScanJob struct {
	sc      repository.ScheduledContentRepository
	ap      repository.AiProviderRepository
	kw      repository.KeywordRepository
	client  queue.Enqueuer
	sched   config.Scheduler
	running atomic.Bool
}

func NewGenerationScanJob(
	sc repository.ScheduledContentRepository,
	ap repository.AiProviderRepository,
	kw repository.KeywordRepository,
	client queue.Enqueuer,
	sched config.Scheduler) *GenerationScanJob {
	return &GenerationScanJob{
		sc:     sc,
		ap:     ap,
		kw:     kw,
		client: client,
		sched:  sched,
	}
}

// defaultSpreadMinutes applies when a scan request omits the spread window.
// An explicit 0 disables spreading; leaving it out must not.
const defaultSpreadMinutes = 60

type ScanOptions struct {
	LookaheadDays int  `json:"lookahead_days"`
	Limit         int  `json:"limit"`
	SpreadMinutes *int `json:"spread_minutes"`
	DryRun        bool `json:"dry_run"`
}

type ScanSummary struct {
	Dispatched int  `json:"dispatched"`
	Skipped    int  `json:"skipped"`
	DryRun     bool `json:"dry_run"`
}

func (s ScanSummary) String() string {
	msg := fmt.Sprintf("%d dispatched, %d skipped", s.Dispatched, s.Skipped)
	if s.DryRun {
		msg += " (dry run)"
	}
	return msg
}

// RunScheduled is the cron entry point, using the startup scheduler config.
func (j *GenerationScanJob) RunScheduled() {
	summary, err := j.Run(context.Background(), ScanOptions{
		LookaheadDays: j.sched.LookaheadDays,
		Limit:         j.sched.ItemLimit,
		SpreadMinutes: &j.sched.SpreadMinutes,
	})
	if err != nil {
		logger.Log.Error("generation scan failed", zap.Error(err))
		return
	}
	logger.Log.Info("generation scan finished",
		zap.Int("dispatched", summary.Dispatched),
		zap.Int("skipped", summary.Skipped))
}

// Run executes one generation scan. A missing provider is a reported skip,
// never an error; only store unavailability fails the run.
func (j *GenerationScanJob) Run(ctx context.Context, opts ScanOptions) (*ScanSummary, error) {
	if !j.running.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("generation scan already running")
	}
	defer j.running.Store(false)

	if opts.LookaheadDays <= 0 {
		opts.LookaheadDays = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 100
	}
	spread := defaultSpreadMinutes
	if opts.SpreadMinutes != nil {
		spread = *opts.SpreadMinutes
	}

	horizon := time.Now().AddDate(0, 0, opts.LookaheadDays)
	items, err := j.sc.ListGenerationReady(ctx, horizon, opts.Limit)
	if err != nil {
		return nil, fmt.Errorf("listing generation-ready content: %w", err)
	}

	summary := &ScanSummary{DryRun: opts.DryRun}

	for i, item := range items {
		provider, err := j.ap.GetEffectiveTextProvider(ctx, item.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("resolving provider for project %d: %w", item.ProjectID, err)
		}
		if provider == nil {
			summary.Skipped++
			logger.Log.Warn("no text provider configured, skipping",
				zap.Int64("scheduled_content_id", item.ID),
				zap.Int64("project_id", item.ProjectID))
			continue
		}

		delay := SpreadDelay(i, len(items), spread)

		keywordText := ""
		if item.KeywordID.Valid {
			if kw, err := j.kw.GetByID(ctx, item.KeywordID.Int64); err == nil && kw != nil {
				keywordText = kw.Keyword
			}
		}

		if opts.DryRun {
			summary.Dispatched++
			logger.Log.Info("[dry run] would dispatch generation",
				zap.Int64("scheduled_content_id", item.ID),
				zap.Int64("keyword_id", item.KeywordID.Int64),
				zap.String("keyword", keywordText),
				zap.Time("scheduled_date", item.ScheduledDate.Time),
				zap.String("ai_provider", provider.Name),
				zap.Int("delay_minutes", int(delay.Minutes())))
			continue
		}

		claimed, err := j.sc.ClaimForGeneration(ctx, item.ID)
		if err != nil {
			return nil, fmt.Errorf("claiming content %d: %w", item.ID, err)
		}
		if !claimed {
			// Another run got there first; not an error, not a skip worth
			// reporting.
			continue
		}

		payload := queue.GenerateArticlePayload{
			ScheduledContentID: item.ID,
			AiProviderID:       provider.ID,
		}
		if err := queue.EnqueueGeneration(j.client, payload, delay); err != nil {
			return nil, fmt.Errorf("enqueuing generation for content %d: %w", item.ID, err)
		}

		summary.Dispatched++
		logger.Log.Info("generation dispatched",
			zap.Int64("scheduled_content_id", item.ID),
			zap.Int64("keyword_id", item.KeywordID.Int64),
			zap.String("keyword", keywordText),
			zap.Time("scheduled_date", item.ScheduledDate.Time),
			zap.String("ai_provider", provider.Name),
			zap.Int("delay_minutes", int(delay.Minutes())))
	}

	return summary, nil
}
