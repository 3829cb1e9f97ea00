package models

import "time"

type Keyword struct {
	ID        int64     `db:"id" json:"id"`
	ProjectID int64     `db:"project_id" json:"project_id"`
	Keyword   string    `db:"keyword" json:"keyword"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
