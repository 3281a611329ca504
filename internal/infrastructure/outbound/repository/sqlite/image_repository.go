package sqlite

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"tweetbot-service/internal/custom_errors"
	model "tweetbot-service/internal/domain/models"
	ports "tweetbot-service/internal/domain/ports/output"
)

type ImageRepository struct {
	log     ports.Logger
	db      DBTX
	metrics ports.MetricsProvider
}

func NewImageRepository(db DBTX, log ports.Logger, metrics ports.MetricsProvider) *ImageRepository {
	return &ImageRepository{db: db, log: log, metrics: metrics}
}

func (m *ImageRepository) Attach(ctx context.Context, postID int64, images []*model.PostImage) error {
	start := time.Now()

	var exists int
	err := m.db.QueryRowContext(ctx, `SELECT 1 FROM posts WHERE id = ? LIMIT 1`, postID).Scan(&exists)
	if err == sql.ErrNoRows {
		m.record("image_attach", false, start)
		m.log.Warn("Post not found during image attach", slog.Int64("post_id", postID))
		return custom_errors.ErrPostNotFound
	}
	if err != nil {
		m.record("image_attach", false, start)
		m.log.Error("Failed to check post in Attach images", slog.Int64("post_id", postID), slog.String("error", err.Error()))
		return custom_errors.ErrDatabaseQuery
	}

	now := formatTime(time.Now())
	for _, img := range images {
		if _, err := m.db.ExecContext(ctx,
			`INSERT INTO post_images (post_id, url, position, published, created_at) VALUES (?, ?, ?, 0, ?)`,
			postID, img.URL, img.Position, now); err != nil {
			m.record("image_attach", false, start)
			m.log.Error("Image attach failed", slog.Int64("post_id", postID), slog.String("error", err.Error()))
			return custom_errors.ErrImageAttachFailed
		}
	}
	m.record("image_attach", true, start)
	return nil
}

func (m *ImageRepository) GetByPost(ctx context.Context, postID int64) ([]*model.PostImage, error) {
	start := time.Now()
	rows, err := m.db.QueryContext(ctx,
		`SELECT id, post_id, url, position, published, created_at FROM post_images WHERE post_id = ? ORDER BY position, id`,
		postID)
	if err != nil {
		m.record("image_get_by_post", false, start)
		m.log.Error("Image query failed", slog.Int64("post_id", postID), slog.String("error", err.Error()))
		return nil, custom_errors.ErrImageQueryFailed
	}
	defer rows.Close()

	images := []*model.PostImage{}
	for rows.Next() {
		var (
			img       model.PostImage
			published int
			createdAt string
		)
		if err := rows.Scan(&img.ID, &img.PostID, &img.URL, &img.Position, &published, &createdAt); err != nil {
			m.record("image_get_by_post", false, start)
			return nil, custom_errors.ErrImageQueryFailed
		}
		img.Published = published == 1
		if img.CreatedAt, err = parseTime(createdAt); err != nil {
			m.record("image_get_by_post", false, start)
			return nil, custom_errors.ErrImageQueryFailed
		}
		images = append(images, &img)
	}
	if err := rows.Err(); err != nil {
		m.record("image_get_by_post", false, start)
		return nil, custom_errors.ErrImageQueryFailed
	}
	m.record("image_get_by_post", true, start)
	return images, nil
}

func (m *ImageRepository) MarkPublished(ctx context.Context, postID int64) error {
	start := time.Now()
	if _, err := m.db.ExecContext(ctx, `UPDATE post_images SET published = 1 WHERE post_id = ?`, postID); err != nil {
		m.record("image_mark_published", false, start)
		m.log.Error("Marking images published failed", slog.Int64("post_id", postID), slog.String("error", err.Error()))
		return custom_errors.ErrDatabaseQuery
	}
	m.record("image_mark_published", true, start)
	return nil
}

func (m *ImageRepository) record(queryType string, success bool, start time.Time) {
	m.metrics.IncrementDatabaseQueries(queryType, success)
	m.metrics.RecordDatabaseQueryDuration(queryType, time.Since(start))
}
