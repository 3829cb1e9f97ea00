package models

import (
	"database/sql"
	"time"
)

// ScheduledContent is the central pipeline entity. One row is seeded in
// backlog status for every keyword; the dispatchers move it through
// scheduled -> queued and approved -> published.
type ScheduledContent struct {
	ID              int64          `db:"id" json:"id"`
	ProjectID       int64          `db:"project_id" json:"project_id"`
	KeywordID       sql.NullInt64  `db:"keyword_id" json:"keyword_id"`
	ArticleID       sql.NullInt64  `db:"article_id" json:"article_id"`
	Status          string         `db:"status" json:"status"`
	ContentType     string         `db:"content_type" json:"content_type"`
	Title           sql.NullString `db:"title" json:"title"`
	Tone            string         `db:"tone" json:"tone"`
	TargetWordCount int            `db:"target_word_count" json:"target_word_count"`
	ScheduledDate   sql.NullTime   `db:"scheduled_date" json:"scheduled_date"`
	ScheduledTime   sql.NullString `db:"scheduled_time" json:"scheduled_time"` // HH:MM:SS, optional
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}

const (
	StatusBacklog   = "backlog"
	StatusScheduled = "scheduled"
	StatusQueued    = "queued"
	StatusGenerated = "generated"
	StatusApproved  = "approved"
	StatusPublished = "published"
	StatusFailed    = "failed"
)

const (
	ContentTypeHowTo      = "how_to"
	ContentTypeComparison = "comparison"
	ContentTypeListicle   = "listicle"
	ContentTypeReview     = "review"
	ContentTypeCaseStudy  = "case_study"
	ContentTypeNews       = "news_article"
	ContentTypePillar     = "pillar_content"
	ContentTypeBlogPost   = "blog_post"
)
