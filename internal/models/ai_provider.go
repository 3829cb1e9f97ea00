package models

import (
	"database/sql"
	"time"
)

// AiProvider is a configured text or image model endpoint. ProjectID is null
// for account-level configurations that projects inherit.
type AiProvider struct {
	ID         int64         `db:"id" json:"id"`
	UserID     int64         `db:"user_id" json:"user_id"`
	ProjectID  sql.NullInt64 `db:"project_id" json:"project_id"`
	Name       string        `db:"name" json:"name"`
	Provider   string        `db:"provider" json:"provider"`
	Capability string        `db:"capability" json:"capability"`
	APIKey     string        `db:"api_key" json:"-"` // encrypted at rest
	Model      string        `db:"model" json:"model"`
	BaseURL    string        `db:"base_url" json:"base_url"`
	IsDefault  bool          `db:"is_default" json:"is_default"`
	Active     bool          `db:"active" json:"active"`
	CreatedAt  time.Time     `db:"created_at" json:"created_at"`
}

const (
	CapabilityText  = "text"
	CapabilityImage = "image"
)
