package image_repository_postgres

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"tweetbot-service/internal/custom_errors"
	model "tweetbot-service/internal/domain/models"
	ports "tweetbot-service/internal/domain/ports/output"
	"tweetbot-service/internal/infrastructure/outbound/repository/postgres/db"
)

type ImageRepository struct {
	log     ports.Logger
	db      db.PgDB
	metrics ports.MetricsProvider
}

func NewImageRepository(db db.PgDB, log ports.Logger, metrics ports.MetricsProvider) *ImageRepository {
	return &ImageRepository{db: db, log: log, metrics: metrics}
}

func (m *ImageRepository) Attach(ctx context.Context, postID int64, images []*model.PostImage) error {
	start := time.Now()
	var exists bool
	err := m.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM posts WHERE id = @post_id)`, pgx.NamedArgs{"post_id": postID}).Scan(&exists)
	if err != nil {
		m.record("image_attach", false, start)
		m.log.Error("Failed to check post in Attach images", slog.Int64("post_id", postID), slog.String("err", err.Error()))
		return custom_errors.ErrDatabaseQuery
	}
	if !exists {
		m.record("image_attach", false, start)
		m.log.Warn("Post not found during image attach", slog.Int64("post_id", postID))
		return custom_errors.ErrPostNotFound
	}
	if len(images) == 0 {
		m.record("image_attach", true, start)
		return nil
	}

	now := pgtype.Timestamptz{Time: time.Now(), Valid: true}
	batch := &pgx.Batch{}
	for _, img := range images {
		batch.Queue(
			`INSERT INTO post_images (post_id, url, position, published, created_at) VALUES (@post_id, @url, @position, FALSE, @created_at)`,
			pgx.NamedArgs{"post_id": postID, "url": img.URL, "position": img.Position, "created_at": now},
		)
	}

	result := m.db.SendBatch(ctx, batch)
	defer func(result pgx.BatchResults) {
		err := result.Close()
		if err != nil {
			m.log.Error("Failed to close batch result in Attach images", slog.String("error", err.Error()), slog.Int64("post_id", postID))
		}
	}(result)

	for range images {
		if _, err := result.Exec(); err != nil {
			m.log.Error("Image attach failed", slog.String("error", err.Error()), slog.Int64("post_id", postID))
			m.record("image_attach", false, start)
			return custom_errors.ErrImageAttachFailed
		}
	}
	m.record("image_attach", true, start)
	return nil
}

func (m *ImageRepository) GetByPost(ctx context.Context, postID int64) ([]*model.PostImage, error) {
	start := time.Now()
	rows, err := m.db.Query(ctx,
		`SELECT id, post_id, url, position, published, created_at FROM post_images WHERE post_id = @post_id ORDER BY position, id`,
		pgx.NamedArgs{"post_id": postID})
	if err != nil {
		m.log.Error("Image query failed", slog.String("error", err.Error()), slog.Int64("post_id", postID))
		m.record("image_get_by_post", false, start)
		return nil, custom_errors.ErrImageQueryFailed
	}
	defer rows.Close()

	var images []*model.PostImage
	for rows.Next() {
		var img model.PostImage
		if err := rows.Scan(&img.ID, &img.PostID, &img.URL, &img.Position, &img.Published, &img.CreatedAt); err != nil {
			m.record("image_get_by_post", false, start)
			return nil, custom_errors.ErrDatabaseQuery
		}
		images = append(images, &img)
	}
	if err := rows.Err(); err != nil {
		m.record("image_get_by_post", false, start)
		return nil, custom_errors.ErrImageQueryFailed
	}

	m.log.Debug("Retrieved images for post", slog.Int64("post_id", postID), slog.Int("count", len(images)))
	m.record("image_get_by_post", true, start)
	return images, nil
}

func (m *ImageRepository) MarkPublished(ctx context.Context, postID int64) error {
	start := time.Now()
	_, err := m.db.Exec(ctx, `UPDATE post_images SET published = TRUE WHERE post_id = @post_id`, pgx.NamedArgs{"post_id": postID})
	if err != nil {
		m.log.Error("Marking images published failed", slog.String("error", err.Error()), slog.Int64("post_id", postID))
		m.record("image_mark_published", false, start)
		return custom_errors.ErrDatabaseQuery
	}
	m.record("image_mark_published", true, start)
	return nil
}

func (m *ImageRepository) record(queryType string, success bool, start time.Time) {
	m.metrics.IncrementDatabaseQueries(queryType, success)
	m.metrics.RecordDatabaseQueryDuration(queryType, time.Since(start))
}
