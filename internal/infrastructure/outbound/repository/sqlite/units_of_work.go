package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	ports "tweetbot-service/internal/domain/ports/output"
	image_repository "tweetbot-service/internal/domain/ports/output/image"
	post_repository "tweetbot-service/internal/domain/ports/output/post"
)

type UnitOfWork struct {
	db      *sql.DB
	log     ports.Logger
	metrics ports.MetricsProvider
}

func NewUnitOfWork(db *sql.DB, log ports.Logger, metrics ports.MetricsProvider) ports.UnitOfWork {
	return &UnitOfWork{db: db, log: log, metrics: metrics}
}

func (u *UnitOfWork) Begin(ctx context.Context) (ports.Transaction, error) {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("error beginning transaction: %w", err)
	}
	return &Transaction{tx: tx, log: u.log, metrics: u.metrics}, nil
}

type Transaction struct {
	tx      *sql.Tx
	log     ports.Logger
	metrics ports.MetricsProvider
}

func (t *Transaction) PostRepository() post_repository.Repository {
	return NewPostRepository(t.tx, t.log, t.metrics)
}

func (t *Transaction) ImageRepository() image_repository.Repository {
	return NewImageRepository(t.tx, t.log, t.metrics)
}

func (t *Transaction) Commit(ctx context.Context) error {
	return t.tx.Commit()
}

// Rollback reports database/sql's ErrTxDone as "tx is closed" so callers can
// treat it the same way as pgx.
func (t *Transaction) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(); err != nil {
		if err == sql.ErrTxDone {
			return fmt.Errorf("tx is closed: %w", err)
		}
		return err
	}
	return nil
}
