package model

import "github.com/jackc/pgx/v5/pgtype"

type PostImage struct {
	ID        int64              `json:"id"`
	PostID    int64              `json:"post_id"`
	URL       string             `json:"url"`
	Position  int32              `json:"position"`
	Published bool               `json:"published"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
}
