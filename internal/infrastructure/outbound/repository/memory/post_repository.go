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

type PostRepository struct {
	log   ports.Logger
	store *Store
}

func NewPostRepository(store *Store, log ports.Logger) *PostRepository {
	return &PostRepository{log: log, store: store}
}

func (p *PostRepository) Create(ctx context.Context, post *model.Post) (*model.Post, error) {
	p.log.Debug("Creating new post (memory impl)", slog.String("title", post.Title))

	p.store.mu.Lock()
	defer p.store.mu.Unlock()

	now := pgtype.Timestamptz{Time: time.Now(), Valid: true}
	newPost := &model.Post{
		ID:        p.store.nextPostID,
		Title:     post.Title,
		Body:      post.Body,
		CreatedAt: now,
		UpdatedAt: now,
	}
	p.store.nextPostID++
	p.store.posts[newPost.ID] = newPost

	p.log.Debug("Successfully created post (memory impl)", slog.Int64("id", newPost.ID))
	result := *newPost
	return &result, nil
}

func (p *PostRepository) GetByID(ctx context.Context, id int64) (*model.Post, error) {
	p.store.mu.RLock()
	defer p.store.mu.RUnlock()

	post, exists := p.store.posts[id]
	if !exists {
		p.log.Debug("Post not found by id", slog.Int64("id", id))
		return nil, custom_errors.ErrPostNotFound
	}
	result := *post
	return &result, nil
}

func (p *PostRepository) GetNextUnpublished(ctx context.Context) (*model.Post, error) {
	p.store.mu.RLock()
	defer p.store.mu.RUnlock()

	var next *model.Post
	for _, post := range p.store.posts {
		if post.Published {
			continue
		}
		if next == nil || olderThan(post, next) {
			next = post
		}
	}
	if next == nil {
		p.log.Debug("No unpublished posts (memory impl)")
		return nil, custom_errors.ErrPostNotFound
	}
	result := *next
	return &result, nil
}

func (p *PostRepository) MarkPublished(ctx context.Context, id int64) error {
	p.store.mu.Lock()
	defer p.store.mu.Unlock()

	post, exists := p.store.posts[id]
	if !exists || post.Published {
		p.log.Warn("No unpublished post to mark published", slog.Int64("id", id))
		return custom_errors.ErrPostNotFound
	}
	now := pgtype.Timestamptz{Time: time.Now(), Valid: true}
	post.Published = true
	post.PublishedAt = now
	post.UpdatedAt = now
	return nil
}

func (p *PostRepository) Delete(ctx context.Context, id int64) error {
	p.store.mu.Lock()
	defer p.store.mu.Unlock()

	if _, exists := p.store.posts[id]; !exists {
		p.log.Debug("Post not found during deletion", slog.Int64("id", id))
		return custom_errors.ErrPostNotFound
	}
	delete(p.store.posts, id)
	delete(p.store.images, id)

	p.log.Debug("Successfully deleted post (memory impl)", slog.Int64("id", id))
	return nil
}

func (p *PostRepository) List(ctx context.Context, filters model.PostFilters) ([]*model.Post, int, error) {
	p.store.mu.RLock()
	defer p.store.mu.RUnlock()

	var matched []*model.Post
	for _, post := range p.store.posts {
		if filters.Published != nil && post.Published != *filters.Published {
			continue
		}
		cp := *post
		matched = append(matched, &cp)
	}

	sort.Slice(matched, func(i, j int) bool {
		return olderThan(matched[i], matched[j])
	})

	total := len(matched)

	offset := 0
	if filters.Offset != nil && *filters.Offset > 0 {
		offset = *filters.Offset
	}
	if offset >= len(matched) {
		return []*model.Post{}, total, nil
	}
	end := len(matched)
	if filters.Limit != nil && *filters.Limit >= 0 && offset+*filters.Limit < end {
		end = offset + *filters.Limit
	}
	return matched[offset:end], total, nil
}

func olderThan(a, b *model.Post) bool {
	if !a.CreatedAt.Time.Equal(b.CreatedAt.Time) {
		return a.CreatedAt.Time.Before(b.CreatedAt.Time)
	}
	return a.ID < b.ID
}
