package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/h2non/filetype"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"

	"draftflow/internal/logger"
	"draftflow/internal/repository"
)

type MediaService interface {
	// UploadFeaturedImage validates and stores an image, attaches it to the
	// article, and returns its public URL.
	UploadFeaturedImage(ctx context.Context, articleID int64, file []byte) (string, error)
}

type mediaService struct {
	ar      repository.ArticleRepository
	storage *StorageService
}

func NewMediaService(ar repository.ArticleRepository, storage *StorageService) MediaService {
	return &mediaService{ar: ar, storage: storage}
}

func (s *mediaService) UploadFeaturedImage(ctx context.Context, articleID int64, file []byte) (string, error) {
	article, err := s.ar.GetByID(ctx, articleID)
	if err != nil {
		return "", err
	}
	if article == nil {
		return "", errors.New("article not found")
	}

	kind, err := filetype.Match(file)
	if err != nil {
		logger.Log.Error("sniff file type", zap.Error(err))
		return "", err
	}
	if kind.MIME.Type != "image" {
		return "", errors.New("featured image must be an image file")
	}

	id, err := gonanoid.New()
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("featured/%d-%s.%s", articleID, id, kind.Extension)

	if err := s.storage.Upload(ctx, key, file, kind.MIME.Value); err != nil {
		return "", err
	}

	url := s.storage.PublicURL(key)
	if err := s.ar.SetFeaturedImage(ctx, articleID, url); err != nil {
		return "", err
	}

	return url, nil
}
