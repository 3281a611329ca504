package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"tweetbot-service/internal/custom_errors"
	model "tweetbot-service/internal/domain/models"
	ports "tweetbot-service/internal/domain/ports/output"
)

const postColumns = `id, title, body, published, created_at, updated_at, published_at`

type PostRepository struct {
	log     ports.Logger
	db      DBTX
	metrics ports.MetricsProvider
}

func NewPostRepository(db DBTX, log ports.Logger, metrics ports.MetricsProvider) *PostRepository {
	return &PostRepository{db: db, log: log, metrics: metrics}
}

func (p *PostRepository) Create(ctx context.Context, post *model.Post) (*model.Post, error) {
	start := time.Now()
	now := formatTime(time.Now())

	row := p.db.QueryRowContext(ctx,
		`INSERT INTO posts (title, body, published, created_at, updated_at) VALUES (?, ?, 0, ?, ?) RETURNING `+postColumns,
		post.Title, post.Body, now, now)
	created, err := scanPost(row)
	if err != nil {
		p.record("post_create", false, start)
		p.log.Error("Error creating post", slog.String("error", err.Error()))
		return nil, custom_errors.ErrDatabaseQuery
	}

	p.record("post_create", true, start)
	p.log.Debug("Successfully created post", slog.Int64("id", created.ID))
	return created, nil
}

func (p *PostRepository) GetByID(ctx context.Context, id int64) (*model.Post, error) {
	start := time.Now()
	post, err := scanPost(p.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = ?`, id))
	if err != nil {
		p.record("post_get_by_id", false, start)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, custom_errors.ErrPostNotFound
		}
		p.log.Error("Error getting post by id", slog.Int64("id", id), slog.String("error", err.Error()))
		return nil, custom_errors.ErrDatabaseQuery
	}
	p.record("post_get_by_id", true, start)
	return post, nil
}

func (p *PostRepository) GetNextUnpublished(ctx context.Context) (*model.Post, error) {
	start := time.Now()
	post, err := scanPost(p.db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE published = 0 ORDER BY created_at ASC, id ASC LIMIT 1`))
	if err != nil {
		p.record("post_get_next_unpublished", false, start)
		if errors.Is(err, sql.ErrNoRows) {
			p.log.Debug("No unpublished posts")
			return nil, custom_errors.ErrPostNotFound
		}
		p.log.Error("Error getting next unpublished post", slog.String("error", err.Error()))
		return nil, custom_errors.ErrDatabaseQuery
	}
	p.record("post_get_next_unpublished", true, start)
	return post, nil
}

func (p *PostRepository) MarkPublished(ctx context.Context, id int64) error {
	start := time.Now()
	now := formatTime(time.Now())

	res, err := p.db.ExecContext(ctx,
		`UPDATE posts SET published = 1, published_at = ?, updated_at = ? WHERE id = ? AND published = 0`,
		now, now, id)
	if err != nil {
		p.record("post_mark_published", false, start)
		p.log.Error("Error marking post published", slog.Int64("id", id), slog.String("error", err.Error()))
		return custom_errors.ErrDatabaseQuery
	}
	if n, _ := res.RowsAffected(); n == 0 {
		p.record("post_mark_published", false, start)
		p.log.Warn("No unpublished post to mark published", slog.Int64("id", id))
		return custom_errors.ErrPostNotFound
	}
	p.record("post_mark_published", true, start)
	return nil
}

func (p *PostRepository) Delete(ctx context.Context, id int64) error {
	start := time.Now()
	res, err := p.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		p.record("post_delete", false, start)
		p.log.Error("Error deleting post", slog.Int64("id", id), slog.String("error", err.Error()))
		return custom_errors.ErrDatabaseQuery
	}
	if n, _ := res.RowsAffected(); n == 0 {
		p.record("post_delete", false, start)
		return custom_errors.ErrPostNotFound
	}
	p.record("post_delete", true, start)
	return nil
}

func (p *PostRepository) List(ctx context.Context, filters model.PostFilters) ([]*model.Post, int, error) {
	start := time.Now()

	where := ""
	var args []any
	if filters.Published != nil {
		where = " WHERE published = ?"
		args = append(args, boolToInt(*filters.Published))
	}

	var total int
	if err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`+where, args...).Scan(&total); err != nil {
		p.record("post_list", false, start)
		p.log.Error("Error counting posts", slog.String("error", err.Error()))
		return nil, 0, custom_errors.ErrDatabaseQuery
	}

	query := `SELECT ` + postColumns + ` FROM posts` + where + ` ORDER BY created_at ASC, id ASC`
	// SQLite needs a LIMIT before OFFSET; -1 means unbounded.
	limit := -1
	if filters.Limit != nil {
		limit = *filters.Limit
	}
	offset := 0
	if filters.Offset != nil {
		offset = *filters.Offset
	}
	query += ` LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		p.record("post_list", false, start)
		p.log.Error("Error listing posts", slog.String("error", err.Error()))
		return nil, 0, custom_errors.ErrDatabaseQuery
	}
	defer rows.Close()

	posts := []*model.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			p.record("post_list", false, start)
			p.log.Error("Error scanning post during List", slog.String("error", err.Error()))
			return nil, 0, custom_errors.ErrDatabaseQuery
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		p.record("post_list", false, start)
		return nil, 0, custom_errors.ErrDatabaseQuery
	}

	p.record("post_list", true, start)
	return posts, total, nil
}

func (p *PostRepository) record(queryType string, success bool, start time.Time) {
	p.metrics.IncrementDatabaseQueries(queryType, success)
	p.metrics.RecordDatabaseQueryDuration(queryType, time.Since(start))
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(row scanner) (*model.Post, error) {
	var (
		post                 model.Post
		published            int
		createdAt, updatedAt string
		publishedAt          sql.NullString
	)
	if err := row.Scan(&post.ID, &post.Title, &post.Body, &published, &createdAt, &updatedAt, &publishedAt); err != nil {
		return nil, err
	}
	post.Published = published == 1

	var err error
	if post.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if post.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if post.PublishedAt, err = parseNullTime(publishedAt); err != nil {
		return nil, err
	}
	return &post, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
