package post_service

import (
	"context"

	model "tweetbot-service/internal/domain/models"
)

//go:generate mockery --name Service --dir . --output ../../../../../mocks/post_service --outpkg mocks --filename Service.go
type Service interface {
	CreatePost(ctx context.Context, post *model.CreatePostDTO) (*model.PostDetailed, error)
	ImportPosts(ctx context.Context, posts []*model.ImportPostDTO) (int, error)
	GetPostByID(ctx context.Context, id int64) (*model.PostDetailed, error)
	ListPosts(ctx context.Context, filters *model.PostFilters) ([]*model.PostDetailed, int, error)
	DeletePost(ctx context.Context, id int64) error
}
