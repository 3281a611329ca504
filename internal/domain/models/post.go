package model

import "github.com/jackc/pgx/v5/pgtype"

type Post struct {
	ID          int64              `json:"id"`
	Title       string             `json:"title"`
	Body        string             `json:"body"`
	Published   bool               `json:"published"`
	CreatedAt   pgtype.Timestamptz `json:"created_at"`
	UpdatedAt   pgtype.Timestamptz `json:"updated_at"`
	PublishedAt pgtype.Timestamptz `json:"published_at"`
}

// Text is the full text the pipeline splits into chunks.
func (p *Post) Text() string {
	return p.Title + "\n" + p.Body
}
