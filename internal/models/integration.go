package models

import "time"

// Integration is an external publish target. Config holds the per-type
// settings (URLs, credentials); secret values are encrypted at rest.
type Integration struct {
	ID        int64             `db:"id" json:"id"`
	ProjectID int64             `db:"project_id" json:"project_id"`
	Type      string            `db:"type" json:"type"`
	Name      string            `db:"name" json:"name"`
	Config    map[string]string `db:"config" json:"config"`
	Active    bool              `db:"active" json:"active"`
	CreatedAt time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt time.Time         `db:"updated_at" json:"updated_at"`
}

type PublishHistory struct {
	ID            int64     `db:"id" json:"id"`
	ArticleID     int64     `db:"article_id" json:"article_id"`
	IntegrationID int64     `db:"integration_id" json:"integration_id"`
	Success       bool      `db:"success" json:"success"`
	Detail        string    `db:"detail" json:"detail"`
	ErrorMessage  string    `db:"error_message" json:"error_message"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
