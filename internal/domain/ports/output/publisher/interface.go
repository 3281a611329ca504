package publisher

import (
	"context"

	model "tweetbot-service/internal/domain/models"
)

//go:generate mockery --name Client --dir . --output ../../../../../mocks/publisher --outpkg mocks --filename Client.go
// Client publishes to the social platform. Errors wrap ErrPublishTransport.
type Client interface {
	UploadMedia(ctx context.Context, localPath string) (model.MediaHandle, error)
	CreatePost(ctx context.Context, text string, media []model.MediaHandle) (model.PostHandle, error)
	CreateReply(ctx context.Context, text string, parent model.PostHandle) (model.PostHandle, error)
}
