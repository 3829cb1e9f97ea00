package repository

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"draftflow/internal/logger"
	"draftflow/internal/models"
)

type ArticleRepository interface {
	Create(ctx context.Context, article *models.Article) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Article, error)
	SetFeaturedImage(ctx context.Context, id int64, url string) error
}

type articleRepository struct {
	db *sql.DB
}

func NewArticleRepository(db *sql.DB) ArticleRepository {
	return &articleRepository{db: db}
}

func (r *articleRepository) Create(ctx context.Context, article *models.Article) (int64, error) {
	query := `
		INSERT INTO articles (project_id, title, slug, html_body, markdown_body, meta_description, excerpt, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, article.ProjectID, article.Title, article.Slug,
		article.HTMLBody, article.MarkdownBody, article.MetaDescription, article.Excerpt,
		pq.Array(article.Tags)).Scan(&id)
	if err != nil {
		logger.Log.Error("insert article", zap.Error(err))
		return 0, err
	}

	return id, nil
}

func (r *articleRepository) GetByID(ctx context.Context, id int64) (*models.Article, error) {
	query := `
		SELECT id, project_id, title, slug, html_body, markdown_body, meta_description, excerpt,
		       featured_image_url, tags, created_at, updated_at
		FROM articles WHERE id = $1
	`
	row := r.db.QueryRowContext(ctx, query, id)

	var a models.Article
	err := row.Scan(&a.ID, &a.ProjectID, &a.Title, &a.Slug, &a.HTMLBody, &a.MarkdownBody,
		&a.MetaDescription, &a.Excerpt, &a.FeaturedImageURL, pq.Array(&a.Tags), &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Log.Error("get article", zap.Error(err))
		return nil, err
	}

	return &a, nil
}

func (r *articleRepository) SetFeaturedImage(ctx context.Context, id int64, url string) error {
	query := `UPDATE articles SET featured_image_url = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, url, id)
	if err != nil {
		logger.Log.Error("set featured image", zap.Error(err))
		return err
	}
	return nil
}
