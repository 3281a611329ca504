package lock

import "context"

//go:generate mockery --name Locker --dir . --output ../../../../../mocks/lock --outpkg mocks --filename Locker.go
// Locker guards a pipeline run across processes. TryLock reports false when
// another holder owns the lock; the returned release func is nil in that case.
type Locker interface {
	TryLock(ctx context.Context) (release func(context.Context) error, acquired bool, err error)
}
