package pipeline

import (
	"context"

	model "tweetbot-service/internal/domain/models"
)

//go:generate mockery --name Pipeline --dir . --output ../../../../../mocks/pipeline --outpkg mocks --filename Pipeline.go
type Pipeline interface {
	Run(ctx context.Context) (*model.RunResult, error)
}
