package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/afero"

	media_resolver "tweetbot-service/internal/application/media"
	pipeline_service "tweetbot-service/internal/application/service/pipeline"
	post_service "tweetbot-service/internal/application/service/post"
	model "tweetbot-service/internal/domain/models"
	ports "tweetbot-service/internal/domain/ports/output"
	image_repository "tweetbot-service/internal/domain/ports/output/image"
	"tweetbot-service/internal/domain/ports/output/lock"
	post_repository "tweetbot-service/internal/domain/ports/output/post"
	"tweetbot-service/internal/domain/ports/output/publisher"
	"tweetbot-service/internal/infrastructure/config"
	redis_lock "tweetbot-service/internal/infrastructure/outbound/lock/redis"
	"tweetbot-service/internal/infrastructure/outbound/media/fetcher"
	"tweetbot-service/internal/infrastructure/outbound/media/normalizer"
	media_store "tweetbot-service/internal/infrastructure/outbound/media/store"
	"tweetbot-service/internal/infrastructure/outbound/publisher/dryrun"
	twitter_publisher "tweetbot-service/internal/infrastructure/outbound/publisher/twitter"
	image_postgres "tweetbot-service/internal/infrastructure/outbound/repository/image/postgres"
	"tweetbot-service/internal/infrastructure/outbound/repository/memory"
	post_postgres "tweetbot-service/internal/infrastructure/outbound/repository/post/postgres"
	"tweetbot-service/internal/infrastructure/outbound/repository/postgres"
	"tweetbot-service/internal/infrastructure/outbound/repository/sqlite"
	"tweetbot-service/internal/infrastructure/outbound/search/google"
)

type storage struct {
	posts  post_repository.Repository
	images image_repository.Repository
	uow    ports.UnitOfWork
	close  func()
}

func openStorage(ctx context.Context, cfg config.Database, log ports.Logger, metrics ports.MetricsProvider) (*storage, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		poolConfig, err := pgxpool.ParseConfig(cfg.PostgresDSN())
		if err != nil {
			return nil, fmt.Errorf("parse postgres config: %w", err)
		}
		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return nil, fmt.Errorf("create postgres pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		log.Info("Connected to Postgres", slog.String("host", cfg.Host), slog.String("db", cfg.DbName))
		return &storage{
			posts:  post_postgres.NewPostRepository(pool, log, metrics),
			images: image_postgres.NewImageRepository(pool, log, metrics),
			uow:    postgres.NewPostgresUOW(pool, log, metrics),
			close:  pool.Close,
		}, nil

	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.SQLitePath, cfg.SQLiteDSN())
		if err != nil {
			return nil, err
		}
		log.Info("Opened SQLite database", slog.String("path", cfg.SQLitePath))
		return &storage{
			posts:  sqlite.NewPostRepository(db, log, metrics),
			images: sqlite.NewImageRepository(db, log, metrics),
			uow:    sqlite.NewUnitOfWork(db, log, metrics),
			close: func() {
				if err := db.Close(); err != nil {
					log.Error("Failed to close SQLite database", slog.String("error", err.Error()))
				}
			},
		}, nil

	case config.DriverMemory:
		log.Warn("Using in-memory storage, posts are lost on exit")
		store := memory.NewStore()
		return &storage{
			posts:  memory.NewPostRepository(store, log),
			images: memory.NewImageRepository(store, log),
			uow:    memory.NewUnitOfWork(store, log),
			close:  func() {},
		}, nil

	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

func newPostService(st *storage, log ports.Logger, metrics ports.MetricsProvider) *post_service.PostService {
	return post_service.NewPostService(st.posts, st.images, st.uow, log, metrics)
}

// newPipeline wires the media and publishing adapters around storage. The
// returned close func releases the lock backend, if one was opened.
func newPipeline(cfg *config.Config, st *storage, log ports.Logger, metrics ports.MetricsProvider) (*pipeline_service.PipelineService, func(), error) {
	timeout := cfg.Pipeline.NetworkTimeout
	fs := afero.NewOsFs()

	httpFetcher := fetcher.NewHTTPFetcher(timeout, log)
	s3Fetcher, err := fetcher.NewS3Fetcher(cfg.S3, log)
	if err != nil {
		return nil, nil, err
	}
	router := fetcher.NewRouter().
		Handle("http", httpFetcher).
		Handle("https", httpFetcher).
		Handle("s3", s3Fetcher)

	store := media_store.NewStore(fs, cfg.Pipeline.MediaDir, log)
	resolver := media_resolver.NewResolver(
		router,
		google.NewClient(cfg.Google, timeout, log),
		normalizer.NewJPEGNormalizer(cfg.Pipeline.MaxImageWidth, cfg.Pipeline.MaxImagePixels, cfg.Pipeline.JPEGQuality),
		store,
		log,
		metrics,
		cfg.Pipeline.SearchBackoff,
	)

	var pub publisher.Client
	if cfg.Twitter.DryRun {
		log.Warn("Twitter dry run enabled, nothing will be posted")
		pub = dryrun.NewClient(fs, log)
	} else {
		pub = twitter_publisher.NewClient(cfg.Twitter, timeout, fs, log)
	}

	var locker lock.Locker
	closeFn := func() {}
	if cfg.Redis.Enabled {
		log.Info("Connecting to Redis",
			slog.String("address", cfg.Redis.Address),
			slog.Int("port", cfg.Redis.Port),
			slog.Int("db", cfg.Redis.DB))
		client, err := redis_lock.NewClient(cfg.Redis, log)
		if err != nil {
			return nil, nil, fmt.Errorf("create redis client: %w", err)
		}
		locker = redis_lock.NewLocker(client, cfg.Redis.LockKey, cfg.Redis.LockTTL, log)
		closeFn = func() {
			if err := client.Close(); err != nil {
				log.Error("Failed to close Redis connection", slog.String("error", err.Error()))
			}
		}
	}

	svc := pipeline_service.NewPipelineService(
		st.posts,
		st.images,
		st.uow,
		resolver,
		store,
		pub,
		locker,
		log,
		metrics,
		pipeline_service.Config{
			MaxAttempts:    cfg.Pipeline.MaxAttempts,
			MaxChars:       cfg.Pipeline.MaxChars,
			FallbackPolicy: model.FallbackPolicy(cfg.Pipeline.FallbackPolicy),
			CallTimeout:    timeout,
		},
	)
	return svc, closeFn, nil
}
