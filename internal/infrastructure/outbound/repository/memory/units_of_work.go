package memory

import (
	"context"
	"errors"

	ports "tweetbot-service/internal/domain/ports/output"
	image_repository "tweetbot-service/internal/domain/ports/output/image"
	post_repository "tweetbot-service/internal/domain/ports/output/post"
)

var errTxClosed = errors.New("tx is closed")

// UnitOfWork snapshots the store on Begin and restores the snapshot on
// Rollback. Writes made by other callers while a transaction is open are
// lost on rollback, so it is only suitable for a single writer.
type UnitOfWork struct {
	store *Store
	log   ports.Logger
}

func NewUnitOfWork(store *Store, log ports.Logger) ports.UnitOfWork {
	return &UnitOfWork{store: store, log: log}
}

func (u *UnitOfWork) Begin(ctx context.Context) (ports.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Transaction{
		store: u.store,
		snap:  u.store.snapshot(),
		posts: NewPostRepository(u.store, u.log),
		imgs:  NewImageRepository(u.store, u.log),
	}, nil
}

type Transaction struct {
	store  *Store
	snap   *snapshot
	posts  *PostRepository
	imgs   *ImageRepository
	closed bool
}

func (t *Transaction) PostRepository() post_repository.Repository {
	return t.posts
}

func (t *Transaction) ImageRepository() image_repository.Repository {
	return t.imgs
}

func (t *Transaction) Commit(ctx context.Context) error {
	if t.closed {
		return errTxClosed
	}
	t.closed = true
	t.snap = nil
	return nil
}

func (t *Transaction) Rollback(ctx context.Context) error {
	if t.closed {
		return errTxClosed
	}
	t.closed = true
	t.store.restore(t.snap)
	t.snap = nil
	return nil
}
