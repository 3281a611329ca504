package image_repository

import (
	"context"

	model "tweetbot-service/internal/domain/models"
)

//go:generate mockery --name Repository --dir . --output ../../../../../mocks/image --outpkg mocks --filename Repository.go
type Repository interface {
	Attach(ctx context.Context, postID int64, images []*model.PostImage) error
	GetByPost(ctx context.Context, postID int64) ([]*model.PostImage, error)
	MarkPublished(ctx context.Context, postID int64) error
}
