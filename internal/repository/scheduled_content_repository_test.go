package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"draftflow/internal/models"
)

func newMockRepo(t *testing.T) (ScheduledContentRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewScheduledContentRepository(db), mock, func() { db.Close() }
}

func contentRows(items ...*models.ScheduledContent) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "project_id", "keyword_id", "article_id", "status", "content_type",
		"title", "tone", "target_word_count", "scheduled_date", "scheduled_time",
		"created_at", "updated_at",
	})
	for _, sc := range items {
		rows.AddRow(sc.ID, sc.ProjectID, sc.KeywordID, sc.ArticleID, sc.Status, sc.ContentType,
			sc.Title, sc.Tone, sc.TargetWordCount, sc.ScheduledDate, sc.ScheduledTime,
			sc.CreatedAt, sc.UpdatedAt)
	}
	return rows
}

func TestListGenerationReady(t *testing.T) {
	repo, mock, closeDB := newMockRepo(t)
	defer closeDB()

	horizon := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	item := &models.ScheduledContent{
		ID:            11,
		ProjectID:     3,
		KeywordID:     sql.NullInt64{Int64: 21, Valid: true},
		Status:        models.StatusScheduled,
		ContentType:   models.ContentTypeHowTo,
		Tone:          "professional",
		ScheduledDate: sql.NullTime{Time: horizon, Valid: true},
	}

	mock.ExpectQuery(`SELECT .+ FROM scheduled_content\s+WHERE status = \$1\s+AND keyword_id IS NOT NULL\s+AND article_id IS NULL`).
		WithArgs(models.StatusScheduled, horizon, 100).
		WillReturnRows(contentRows(item))

	got, err := repo.ListGenerationReady(context.Background(), horizon, 100)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(11), got[0].ID)
	assert.Equal(t, int64(21), got[0].KeywordID.Int64)
	assert.False(t, got[0].ArticleID.Valid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListGenerationReadyQueryError(t *testing.T) {
	repo, mock, closeDB := newMockRepo(t)
	defer closeDB()

	mock.ExpectQuery(`SELECT .+ FROM scheduled_content`).
		WillReturnError(sql.ErrConnDone)

	_, err := repo.ListGenerationReady(context.Background(), time.Now(), 10)
	assert.ErrorIs(t, err, sql.ErrConnDone)
}

func TestListPublishReady(t *testing.T) {
	repo, mock, closeDB := newMockRepo(t)
	defer closeDB()

	now := time.Date(2025, 6, 2, 14, 0, 0, 0, time.UTC)
	item := &models.ScheduledContent{
		ID:            12,
		ProjectID:     3,
		ArticleID:     sql.NullInt64{Int64: 31, Valid: true},
		Status:        models.StatusApproved,
		ContentType:   models.ContentTypeListicle,
		Tone:          "professional",
		ScheduledDate: sql.NullTime{Time: now.Truncate(24 * time.Hour), Valid: true},
		ScheduledTime: sql.NullString{String: "09:30:00", Valid: true},
	}

	mock.ExpectQuery(`JOIN projects p ON p\.id = sc\.project_id\s+WHERE p\.auto_publish = \$1\s+AND sc\.status = \$2`).
		WithArgs(models.AutoPublishScheduled, models.StatusApproved, now).
		WillReturnRows(contentRows(item))

	got, err := repo.ListPublishReady(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(31), got[0].ArticleID.Int64)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimForGeneration(t *testing.T) {
	t.Run("claims when still scheduled", func(t *testing.T) {
		repo, mock, closeDB := newMockRepo(t)
		defer closeDB()

		mock.ExpectExec(`UPDATE scheduled_content\s+SET status = \$1, updated_at = NOW\(\)\s+WHERE id = \$2 AND status = \$3`).
			WithArgs(models.StatusQueued, int64(11), models.StatusScheduled).
			WillReturnResult(sqlmock.NewResult(0, 1))

		claimed, err := repo.ClaimForGeneration(context.Background(), 11)
		require.NoError(t, err)
		assert.True(t, claimed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("loses the race when already claimed", func(t *testing.T) {
		repo, mock, closeDB := newMockRepo(t)
		defer closeDB()

		mock.ExpectExec(`UPDATE scheduled_content`).
			WithArgs(models.StatusQueued, int64(11), models.StatusScheduled).
			WillReturnResult(sqlmock.NewResult(0, 0))

		claimed, err := repo.ClaimForGeneration(context.Background(), 11)
		require.NoError(t, err)
		assert.False(t, claimed)
	})

	t.Run("propagates store errors", func(t *testing.T) {
		repo, mock, closeDB := newMockRepo(t)
		defer closeDB()

		mock.ExpectExec(`UPDATE scheduled_content`).
			WillReturnError(sql.ErrConnDone)

		_, err := repo.ClaimForGeneration(context.Background(), 11)
		assert.ErrorIs(t, err, sql.ErrConnDone)
	})
}

func TestGetByIDNoRows(t *testing.T) {
	repo, mock, closeDB := newMockRepo(t)
	defer closeDB()

	mock.ExpectQuery(`SELECT .+ FROM scheduled_content WHERE id = \$1`).
		WithArgs(int64(404)).
		WillReturnError(sql.ErrNoRows)

	got, err := repo.GetByID(context.Background(), 404)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSetArticleMarksGenerated(t *testing.T) {
	repo, mock, closeDB := newMockRepo(t)
	defer closeDB()

	mock.ExpectExec(`UPDATE scheduled_content\s+SET article_id = \$1, status = \$2`).
		WithArgs(int64(31), models.StatusGenerated, int64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetArticle(context.Background(), 11, 31))
	assert.NoError(t, mock.ExpectationsWereMet())
}
