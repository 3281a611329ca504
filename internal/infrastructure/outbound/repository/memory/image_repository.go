package memory

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"tweetbot-service/internal/custom_errors"
	model "tweetbot-service/internal/domain/models"
	ports "tweetbot-service/internal/domain/ports/output"
)

type ImageRepository struct {
	log   ports.Logger
	store *Store
}

func NewImageRepository(store *Store, log ports.Logger) *ImageRepository {
	return &ImageRepository{log: log, store: store}
}

func (m *ImageRepository) Attach(ctx context.Context, postID int64, images []*model.PostImage) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	if _, exists := m.store.posts[postID]; !exists {
		m.log.Warn("Post not found during image attach (memory impl)", slog.Int64("post_id", postID))
		return custom_errors.ErrPostNotFound
	}

	now := pgtype.Timestamptz{Time: time.Now(), Valid: true}
	for _, img := range images {
		m.store.images[postID] = append(m.store.images[postID], &model.PostImage{
			ID:        m.store.nextImageID,
			PostID:    postID,
			URL:       img.URL,
			Position:  img.Position,
			CreatedAt: now,
		})
		m.store.nextImageID++
	}
	return nil
}

func (m *ImageRepository) GetByPost(ctx context.Context, postID int64) ([]*model.PostImage, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()

	images := cloneImages(m.store.images[postID])
	sort.SliceStable(images, func(i, j int) bool {
		if images[i].Position != images[j].Position {
			return images[i].Position < images[j].Position
		}
		return images[i].ID < images[j].ID
	})
	return images, nil
}

func (m *ImageRepository) MarkPublished(ctx context.Context, postID int64) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	for _, img := range m.store.images[postID] {
		img.Published = true
	}
	return nil
}
