package models

import "time"

type Project struct {
	ID          int64     `db:"id" json:"id"`
	UserID      int64     `db:"user_id" json:"user_id"`
	Name        string    `db:"name" json:"name"`
	AutoPublish string    `db:"auto_publish" json:"auto_publish"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

const (
	AutoPublishOff       = "off"
	AutoPublishScheduled = "scheduled"
)
