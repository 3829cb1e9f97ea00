package job

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "draftflow/configs"
	"draftflow/internal/models"
	"draftflow/internal/queue"
)

// ---------- fakes ----------

type fakeContentRepo struct {
	items        []*models.ScheduledContent
	listOverride []*models.ScheduledContent
	publishDue   []*models.ScheduledContent
	listErr      error
	claimErr     error
}

func (f *fakeContentRepo) Create(ctx context.Context, tx *sql.Tx, sc *models.ScheduledContent) (int64, error) {
	return 0, nil
}

func (f *fakeContentRepo) GetByID(ctx context.Context, id int64) (*models.ScheduledContent, error) {
	for _, it := range f.items {
		if it.ID == id {
			return it, nil
		}
	}
	return nil, nil
}

func (f *fakeContentRepo) GetByArticleID(ctx context.Context, articleID int64) (*models.ScheduledContent, error) {
	return nil, nil
}

func (f *fakeContentRepo) ListByProjectID(ctx context.Context, projectID int64) ([]*models.ScheduledContent, error) {
	return nil, nil
}

func (f *fakeContentRepo) ListGenerationReady(ctx context.Context, horizon time.Time, limit int) ([]*models.ScheduledContent, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if f.listOverride != nil {
		return f.listOverride, nil
	}
	var due []*models.ScheduledContent
	for _, it := range f.items {
		if it.Status != models.StatusScheduled || !it.KeywordID.Valid || it.ArticleID.Valid || !it.ScheduledDate.Valid {
			continue
		}
		if it.ScheduledDate.Time.After(horizon) {
			continue
		}
		due = append(due, it)
		if len(due) == limit {
			break
		}
	}
	return due, nil
}

func (f *fakeContentRepo) ListPublishReady(ctx context.Context, now time.Time) ([]*models.ScheduledContent, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.publishDue, nil
}

func (f *fakeContentRepo) ClaimForGeneration(ctx context.Context, id int64) (bool, error) {
	if f.claimErr != nil {
		return false, f.claimErr
	}
	for _, it := range f.items {
		if it.ID == id {
			if it.Status != models.StatusScheduled {
				return false, nil
			}
			it.Status = models.StatusQueued
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeContentRepo) UpdateStatus(ctx context.Context, status string, id int64) error { return nil }

func (f *fakeContentRepo) Schedule(ctx context.Context, id int64, date time.Time, timeOfDay string) error {
	return nil
}

func (f *fakeContentRepo) SetArticle(ctx context.Context, id, articleID int64) error { return nil }

type fakeProviderRepo struct {
	byProject map[int64]*models.AiProvider
	err       error
}

func (f *fakeProviderRepo) GetByID(ctx context.Context, id int64) (*models.AiProvider, error) {
	return nil, nil
}

func (f *fakeProviderRepo) GetEffectiveTextProvider(ctx context.Context, projectID int64) (*models.AiProvider, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byProject[projectID], nil
}

type fakeKeywordRepo struct {
	byID map[int64]*models.Keyword
}

func (f *fakeKeywordRepo) Create(ctx context.Context, tx *sql.Tx, kw *models.Keyword) (int64, error) {
	return 0, nil
}

func (f *fakeKeywordRepo) GetByID(ctx context.Context, id int64) (*models.Keyword, error) {
	return f.byID[id], nil
}

func (f *fakeKeywordRepo) ListByProjectID(ctx context.Context, projectID int64) ([]*models.Keyword, error) {
	return nil, nil
}

func (f *fakeKeywordRepo) Remove(ctx context.Context, id int64) error { return nil }

type enqueuedTask struct {
	taskType string
	payload  []byte
	delay    time.Duration
	delayed  bool
}

type fakeEnqueuer struct {
	tasks []enqueuedTask
	err   error
}

func (f *fakeEnqueuer) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	et := enqueuedTask{taskType: task.Type(), payload: task.Payload()}
	for _, opt := range opts {
		if opt.Type() == asynq.ProcessInOpt {
			et.delay = opt.Value().(time.Duration)
			et.delayed = true
		}
	}
	f.tasks = append(f.tasks, et)
	return &asynq.TaskInfo{}, nil
}

// ---------- helpers ----------

func window(minutes int) *int {
	return &minutes
}

func scheduledItem(id, projectID, keywordID int64, date time.Time) *models.ScheduledContent {
	return &models.ScheduledContent{
		ID:            id,
		ProjectID:     projectID,
		KeywordID:     sql.NullInt64{Int64: keywordID, Valid: true},
		Status:        models.StatusScheduled,
		ContentType:   models.ContentTypeBlogPost,
		ScheduledDate: sql.NullTime{Time: date, Valid: true},
	}
}

func textProvider(id int64) *models.AiProvider {
	return &models.AiProvider{ID: id, Name: "openai-default", Provider: "openai", Capability: models.CapabilityText, Active: true}
}

func newGenerationJob(sc *fakeContentRepo, ap *fakeProviderRepo, enq *fakeEnqueuer) *GenerationScanJob {
	kw := &fakeKeywordRepo{byID: map[int64]*models.Keyword{
		11: {ID: 11, Keyword: "how to bake bread"},
		12: {ID: 12, Keyword: "best laptops 2024"},
		13: {ID: 13, Keyword: "wireless mouse"},
	}}
	return NewGenerationScanJob(sc, ap, kw, enq, config.Scheduler{LookaheadDays: 1, ItemLimit: 100, SpreadMinutes: 55})
}

// ---------- generation scan ----------

func TestGenerationScanDispatchesAll(t *testing.T) {
	today := time.Now()
	sc := &fakeContentRepo{items: []*models.ScheduledContent{
		scheduledItem(1, 100, 11, today),
		scheduledItem(2, 200, 12, today),
		scheduledItem(3, 300, 13, today),
	}}
	ap := &fakeProviderRepo{byProject: map[int64]*models.AiProvider{
		100: textProvider(7), 200: textProvider(8), 300: textProvider(9),
	}}
	enq := &fakeEnqueuer{}

	summary, err := newGenerationJob(sc, ap, enq).Run(context.Background(), ScanOptions{
		LookaheadDays: 1, Limit: 100, SpreadMinutes: window(60),
	})
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Dispatched)
	assert.Equal(t, 0, summary.Skipped)
	assert.Equal(t, "3 dispatched, 0 skipped", summary.String())

	require.Len(t, enq.tasks, 3)
	assert.False(t, enq.tasks[0].delayed, "first item dispatches immediately, not at now+0")
	assert.Equal(t, 30*time.Minute, enq.tasks[1].delay)
	assert.Equal(t, 60*time.Minute, enq.tasks[2].delay)

	for _, it := range sc.items {
		assert.Equal(t, models.StatusQueued, it.Status)
	}

	var payload queue.GenerateArticlePayload
	require.NoError(t, json.Unmarshal(enq.tasks[0].payload, &payload))
	assert.Equal(t, int64(1), payload.ScheduledContentID)
	assert.Equal(t, int64(7), payload.AiProviderID)
}

func TestGenerationScanDefaultSpreadWindow(t *testing.T) {
	// An omitted spread window falls back to 60 minutes; only an explicit 0
	// disables spreading.
	today := time.Now()
	sc := &fakeContentRepo{items: []*models.ScheduledContent{
		scheduledItem(1, 100, 11, today),
		scheduledItem(2, 200, 12, today),
		scheduledItem(3, 300, 13, today),
	}}
	ap := &fakeProviderRepo{byProject: map[int64]*models.AiProvider{
		100: textProvider(7), 200: textProvider(8), 300: textProvider(9),
	}}
	enq := &fakeEnqueuer{}

	summary, err := newGenerationJob(sc, ap, enq).Run(context.Background(), ScanOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Dispatched)

	require.Len(t, enq.tasks, 3)
	assert.False(t, enq.tasks[0].delayed)
	assert.Equal(t, 30*time.Minute, enq.tasks[1].delay)
	assert.Equal(t, 60*time.Minute, enq.tasks[2].delay)
}

func TestGenerationScanExplicitZeroDisablesSpreading(t *testing.T) {
	today := time.Now()
	sc := &fakeContentRepo{items: []*models.ScheduledContent{
		scheduledItem(1, 100, 11, today),
		scheduledItem(2, 200, 12, today),
		scheduledItem(3, 300, 13, today),
	}}
	ap := &fakeProviderRepo{byProject: map[int64]*models.AiProvider{
		100: textProvider(7), 200: textProvider(8), 300: textProvider(9),
	}}
	enq := &fakeEnqueuer{}

	summary, err := newGenerationJob(sc, ap, enq).Run(context.Background(), ScanOptions{SpreadMinutes: window(0)})
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Dispatched)

	require.Len(t, enq.tasks, 3)
	for _, task := range enq.tasks {
		assert.False(t, task.delayed)
	}
}

func TestGenerationScanSkipsWithoutProvider(t *testing.T) {
	today := time.Now()
	sc := &fakeContentRepo{items: []*models.ScheduledContent{
		scheduledItem(1, 100, 11, today),
		scheduledItem(2, 200, 12, today),
		scheduledItem(3, 300, 13, today),
	}}
	ap := &fakeProviderRepo{byProject: map[int64]*models.AiProvider{
		100: textProvider(7), 300: textProvider(9),
	}}
	enq := &fakeEnqueuer{}

	summary, err := newGenerationJob(sc, ap, enq).Run(context.Background(), ScanOptions{SpreadMinutes: window(60)})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Dispatched)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, "2 dispatched, 1 skipped", summary.String())
	assert.Len(t, enq.tasks, 2)

	// The skipped item must stay untouched.
	assert.Equal(t, models.StatusScheduled, sc.items[1].Status)
}

func TestGenerationScanDryRun(t *testing.T) {
	sc := &fakeContentRepo{items: []*models.ScheduledContent{
		scheduledItem(1, 100, 11, time.Now()),
	}}
	ap := &fakeProviderRepo{byProject: map[int64]*models.AiProvider{100: textProvider(7)}}
	enq := &fakeEnqueuer{}

	summary, err := newGenerationJob(sc, ap, enq).Run(context.Background(), ScanOptions{DryRun: true})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Dispatched)
	assert.True(t, summary.DryRun)
	assert.Contains(t, summary.String(), "dry run")
	assert.Empty(t, enq.tasks, "dry run must not enqueue")
	assert.Equal(t, models.StatusScheduled, sc.items[0].Status, "dry run must not mutate state")
}

func TestGenerationScanIdempotent(t *testing.T) {
	sc := &fakeContentRepo{items: []*models.ScheduledContent{
		scheduledItem(1, 100, 11, time.Now()),
		scheduledItem(2, 100, 12, time.Now()),
	}}
	ap := &fakeProviderRepo{byProject: map[int64]*models.AiProvider{100: textProvider(7)}}
	enq := &fakeEnqueuer{}
	j := newGenerationJob(sc, ap, enq)

	first, err := j.Run(context.Background(), ScanOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, first.Dispatched)

	second, err := j.Run(context.Background(), ScanOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, second.Dispatched)
	assert.Equal(t, 0, second.Skipped)
	assert.Len(t, enq.tasks, 2, "second run must not enqueue again")
}

func TestGenerationScanRaceLossIsSilent(t *testing.T) {
	// A concurrent run claims the row between our list and our claim: the
	// selector returned it, but the guarded update hits zero rows.
	item := scheduledItem(1, 100, 11, time.Now())
	item.Status = models.StatusQueued
	sc := &fakeContentRepo{items: []*models.ScheduledContent{item}, listOverride: []*models.ScheduledContent{item}}
	ap := &fakeProviderRepo{byProject: map[int64]*models.AiProvider{100: textProvider(7)}}
	enq := &fakeEnqueuer{}

	summary, err := newGenerationJob(sc, ap, enq).Run(context.Background(), ScanOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Dispatched)
	assert.Equal(t, 0, summary.Skipped, "a lost claim is not a reported skip")
	assert.Empty(t, enq.tasks)
}

func TestGenerationScanStoreFailureIsFatal(t *testing.T) {
	sc := &fakeContentRepo{listErr: errors.New("connection refused")}
	ap := &fakeProviderRepo{}
	enq := &fakeEnqueuer{}

	_, err := newGenerationJob(sc, ap, enq).Run(context.Background(), ScanOptions{})
	require.Error(t, err)
	assert.Empty(t, enq.tasks)
}

func TestGenerationScanZeroEligibleIsSuccess(t *testing.T) {
	sc := &fakeContentRepo{}
	ap := &fakeProviderRepo{}
	enq := &fakeEnqueuer{}

	summary, err := newGenerationJob(sc, ap, enq).Run(context.Background(), ScanOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Dispatched)
}

// ---------- publish scan ----------

func approvedItem(id, articleID int64) *models.ScheduledContent {
	return &models.ScheduledContent{
		ID:            id,
		ProjectID:     100,
		ArticleID:     sql.NullInt64{Int64: articleID, Valid: true},
		Status:        models.StatusApproved,
		ScheduledDate: sql.NullTime{Time: time.Now(), Valid: true},
	}
}

func TestPublishScanDispatches(t *testing.T) {
	sc := &fakeContentRepo{publishDue: []*models.ScheduledContent{
		approvedItem(1, 501),
		approvedItem(2, 502),
	}}
	enq := &fakeEnqueuer{}

	dispatched, err := NewPublishScanJob(sc, enq).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, dispatched)

	require.Len(t, enq.tasks, 2)
	assert.Equal(t, queue.TaskTypePublishArticle, enq.tasks[0].taskType)
	assert.False(t, enq.tasks[0].delayed, "publish tasks are never delayed")

	var payload queue.PublishArticlePayload
	require.NoError(t, json.Unmarshal(enq.tasks[1].payload, &payload))
	assert.Equal(t, int64(502), payload.ArticleID)
}

func TestPublishScanStoreFailureIsFatal(t *testing.T) {
	sc := &fakeContentRepo{listErr: errors.New("connection refused")}
	enq := &fakeEnqueuer{}

	_, err := NewPublishScanJob(sc, enq).Run(context.Background())
	require.Error(t, err)
	assert.Empty(t, enq.tasks)
}

func TestPublishScanNothingDue(t *testing.T) {
	sc := &fakeContentRepo{}
	enq := &fakeEnqueuer{}

	dispatched, err := NewPublishScanJob(sc, enq).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, dispatched)
}
