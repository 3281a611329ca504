package redis

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	ports "tweetbot-service/internal/domain/ports/output"
)

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker is a single-holder lease on one key. The TTL bounds how long a
// crashed holder can block other processes.
type Locker struct {
	client *Client
	key    string
	ttl    time.Duration
	log    ports.Logger
}

func NewLocker(client *Client, key string, ttl time.Duration, log ports.Logger) *Locker {
	return &Locker{client: client, key: key, ttl: ttl, log: log}
}

func (l *Locker) TryLock(ctx context.Context) (func(context.Context) error, bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		l.log.Debug("Run lock is held by another process", slog.String("key", l.key))
		return nil, false, nil
	}

	l.log.Debug("Run lock acquired", slog.String("key", l.key), slog.Duration("ttl", l.ttl))
	release := func(ctx context.Context) error {
		released, err := l.client.DeleteIfEquals(ctx, l.key, token)
		if err != nil {
			return err
		}
		if !released {
			l.log.Warn("Run lock expired before release", slog.String("key", l.key))
		}
		return nil
	}
	return release, true, nil
}
