package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"draftflow/internal/classify"
	"draftflow/internal/logger"
	"draftflow/internal/models"
	"draftflow/internal/repository"
	"draftflow/internal/transfer"
)

type KeywordService interface {
	Create(ctx context.Context, kc *transfer.KeywordCreation) (int64, error)
	Get(ctx context.Context, id int64) (*models.Keyword, error)
	List(ctx context.Context, projectID int64) ([]*models.Keyword, error)
	Remove(ctx context.Context, id int64) error
}

type keywordService struct {
	db *sql.DB
	kw repository.KeywordRepository
	sc repository.ScheduledContentRepository
}

func NewKeywordService(db *sql.DB, kw repository.KeywordRepository, sc repository.ScheduledContentRepository) KeywordService {
	return &keywordService{db: db, kw: kw, sc: sc}
}

// Create inserts the keyword and seeds its backlog content idea in one
// transaction. The content type is classified from the keyword text and
// drives the default word count unless the request overrides it.
func (s *keywordService) Create(ctx context.Context, kc *transfer.KeywordCreation) (int64, error) {
	if kc == nil || kc.Keyword == "" {
		err := errors.New("keyword cannot be empty")
		logger.Log.Info(err.Error())
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			tx.Rollback()
		}
	}()

	keywordID, err := s.kw.Create(ctx, tx, &models.Keyword{
		ProjectID: kc.ProjectID,
		Keyword:   kc.Keyword,
	})
	if err != nil {
		return 0, err
	}

	contentType := classify.ContentType(kc.Keyword)
	wordCount := kc.TargetWordCount
	if wordCount <= 0 {
		wordCount = classify.DefaultWordCount(contentType)
	}
	tone := kc.Tone
	if tone == "" {
		tone = "professional"
	}

	_, err = s.sc.Create(ctx, tx, &models.ScheduledContent{
		ProjectID:       kc.ProjectID,
		KeywordID:       sql.NullInt64{Int64: keywordID, Valid: true},
		Status:          models.StatusBacklog,
		ContentType:     contentType,
		Tone:            tone,
		TargetWordCount: wordCount,
	})
	if err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	logger.Log.Info("keyword created",
		zap.Int64("keyword_id", keywordID),
		zap.String("keyword", kc.Keyword),
		zap.String("content_type", contentType),
		zap.Int("target_word_count", wordCount))

	return keywordID, nil
}

func (s *keywordService) Get(ctx context.Context, id int64) (*models.Keyword, error) {
	return s.kw.GetByID(ctx, id)
}

func (s *keywordService) List(ctx context.Context, projectID int64) ([]*models.Keyword, error) {
	return s.kw.ListByProjectID(ctx, projectID)
}

func (s *keywordService) Remove(ctx context.Context, id int64) error {
	return s.kw.Remove(ctx, id)
}
