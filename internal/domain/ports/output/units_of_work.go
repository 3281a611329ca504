package ports

import (
	"context"

	image_repository "tweetbot-service/internal/domain/ports/output/image"
	post_repository "tweetbot-service/internal/domain/ports/output/post"
)

//go:generate mockery --name UnitOfWork --dir . --output ../../../../mocks/uow --outpkg mocks --filename UnitOfWork.go
type UnitOfWork interface {
	Begin(ctx context.Context) (Transaction, error)
}

//go:generate mockery --name Transaction --dir . --output ../../../../mocks/uow --outpkg mocks --filename Transaction.go
type Transaction interface {
	PostRepository() post_repository.Repository
	ImageRepository() image_repository.Repository
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
