package post_repository

import (
	"context"

	model "tweetbot-service/internal/domain/models"
)

//go:generate mockery --name Repository --dir . --output ../../../../../mocks/post --outpkg mocks --filename Repository.go
type Repository interface {
	Create(ctx context.Context, post *model.Post) (*model.Post, error)
	GetByID(ctx context.Context, id int64) (*model.Post, error)
	// GetNextUnpublished returns the oldest unpublished post, or ErrPostNotFound.
	GetNextUnpublished(ctx context.Context) (*model.Post, error)
	MarkPublished(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filters model.PostFilters) ([]*model.Post, int, error)
}
