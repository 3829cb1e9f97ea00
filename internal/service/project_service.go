package service

import (
	"context"

	"draftflow/internal/models"
	"draftflow/internal/repository"
)

type ProjectService interface {
	Info(ctx context.Context, projectID int64) (*models.Project, error)
	List(ctx context.Context, userID int64) ([]*models.Project, error)
	CheckOwner(ctx context.Context, projectID, userID int64) (bool, error)
}

type projectService struct {
	pr repository.ProjectRepository
}

func NewProjectService(pr repository.ProjectRepository) ProjectService {
	return &projectService{pr: pr}
}

func (s *projectService) Info(ctx context.Context, projectID int64) (*models.Project, error) {
	return s.pr.GetByID(ctx, projectID)
}

func (s *projectService) List(ctx context.Context, userID int64) ([]*models.Project, error) {
	return s.pr.ListByUserID(ctx, userID)
}

func (s *projectService) CheckOwner(ctx context.Context, projectID, userID int64) (bool, error) {
	return s.pr.CheckByUserID(ctx, projectID, userID)
}
