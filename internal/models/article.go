package models

import (
	"database/sql"
	"time"
)

type Article struct {
	ID               int64          `db:"id" json:"id"`
	ProjectID        int64          `db:"project_id" json:"project_id"`
	Title            string         `db:"title" json:"title"`
	Slug             string         `db:"slug" json:"slug"`
	HTMLBody         string         `db:"html_body" json:"html_body"`
	MarkdownBody     string         `db:"markdown_body" json:"markdown_body"`
	MetaDescription  sql.NullString `db:"meta_description" json:"meta_description"`
	Excerpt          sql.NullString `db:"excerpt" json:"excerpt"`
	FeaturedImageURL sql.NullString `db:"featured_image_url" json:"featured_image_url"`
	Tags             []string       `db:"tags" json:"tags"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updated_at"`
}
