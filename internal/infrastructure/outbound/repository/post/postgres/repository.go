package post_repository_postgres

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"tweetbot-service/internal/custom_errors"
	model "tweetbot-service/internal/domain/models"
	ports "tweetbot-service/internal/domain/ports/output"
	"tweetbot-service/internal/infrastructure/outbound/repository/postgres/db"
)

const postColumns = `id, title, body, published, created_at, updated_at, published_at`

type PostRepository struct {
	log     ports.Logger
	db      db.PgDB
	metrics ports.MetricsProvider
}

func NewPostRepository(db db.PgDB, log ports.Logger, metrics ports.MetricsProvider) *PostRepository {
	return &PostRepository{db: db, log: log, metrics: metrics}
}

func (p *PostRepository) Create(ctx context.Context, post *model.Post) (*model.Post, error) {
	start := time.Now()
	p.log.Debug("Creating new post", slog.String("title", post.Title))

	now := pgtype.Timestamptz{Time: time.Now(), Valid: true}

	args := pgx.NamedArgs{
		"title":      post.Title,
		"body":       post.Body,
		"created_at": now,
		"updated_at": now,
	}

	query := `
		INSERT INTO posts (title, body, published, created_at, updated_at)
		VALUES (@title, @body, FALSE, @created_at, @updated_at)
		RETURNING ` + postColumns

	createdPost, err := scanPost(p.db.QueryRow(ctx, query, args))
	if err != nil {
		p.record("post_create", false, start)
		p.log.Error("Error creating post", slog.String("error", err.Error()))
		return nil, custom_errors.ErrDatabaseQuery
	}

	p.record("post_create", true, start)
	p.log.Debug("Successfully created post", slog.Int64("id", createdPost.ID))
	return createdPost, nil
}

func (p *PostRepository) GetByID(ctx context.Context, id int64) (*model.Post, error) {
	start := time.Now()
	p.log.Debug("Getting post by ID", slog.Int64("id", id))

	query := `SELECT ` + postColumns + ` FROM posts WHERE id = @id`
	post, err := scanPost(p.db.QueryRow(ctx, query, pgx.NamedArgs{"id": id}))
	if err != nil {
		p.record("post_get_by_id", false, start)
		if errors.Is(err, pgx.ErrNoRows) {
			p.log.Debug("Post not found by id", slog.Int64("id", id))
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

	query := `SELECT ` + postColumns + ` FROM posts
				WHERE published = FALSE
				ORDER BY created_at ASC, id ASC
				LIMIT 1`
	post, err := scanPost(p.db.QueryRow(ctx, query))
	if err != nil {
		p.record("post_get_next_unpublished", false, start)
		if errors.Is(err, pgx.ErrNoRows) {
			p.log.Debug("No unpublished posts")
			return nil, custom_errors.ErrPostNotFound
		}
		p.log.Error("Error getting next unpublished post", slog.String("error", err.Error()))
		return nil, custom_errors.ErrDatabaseQuery
	}

	p.record("post_get_next_unpublished", true, start)
	p.log.Debug("Found next unpublished post", slog.Int64("id", post.ID))
	return post, nil
}

func (p *PostRepository) MarkPublished(ctx context.Context, id int64) error {
	start := time.Now()
	now := pgtype.Timestamptz{Time: time.Now(), Valid: true}

	query := `UPDATE posts SET published = TRUE, published_at = @now, updated_at = @now
				WHERE id = @id AND published = FALSE`
	result, err := p.db.Exec(ctx, query, pgx.NamedArgs{"id": id, "now": now})
	if err != nil {
		p.record("post_mark_published", false, start)
		p.log.Error("Error marking post published", slog.Int64("id", id), slog.String("error", err.Error()))
		return custom_errors.ErrDatabaseQuery
	}
	if result.RowsAffected() == 0 {
		p.record("post_mark_published", false, start)
		p.log.Warn("No unpublished post to mark published", slog.Int64("id", id))
		return custom_errors.ErrPostNotFound
	}

	p.record("post_mark_published", true, start)
	p.log.Debug("Marked post published", slog.Int64("id", id))
	return nil
}

func (p *PostRepository) Delete(ctx context.Context, id int64) error {
	start := time.Now()
	p.log.Debug("Deleting post", slog.Int64("id", id))

	result, err := p.db.Exec(ctx, `DELETE FROM posts WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		p.record("post_delete", false, start)
		p.log.Error("Error deleting post", slog.Int64("id", id), slog.String("error", err.Error()))
		return custom_errors.ErrDatabaseQuery
	}
	if result.RowsAffected() == 0 {
		p.record("post_delete", false, start)
		p.log.Debug("Post not found during deletion", slog.Int64("id", id))
		return custom_errors.ErrPostNotFound
	}

	p.record("post_delete", true, start)
	p.log.Debug("Successfully deleted post", slog.Int64("id", id))
	return nil
}

func (p *PostRepository) List(ctx context.Context, filters model.PostFilters) ([]*model.Post, int, error) {
	start := time.Now()
	p.log.Debug("Listing posts with filters",
		slog.Any("published", filters.Published),
		slog.Any("limit", filters.Limit),
		slog.Any("offset", filters.Offset))

	args := pgx.NamedArgs{}
	whereClauses := []string{}
	if filters.Published != nil {
		whereClauses = append(whereClauses, "published = @published")
		args["published"] = *filters.Published
	}

	where := ""
	if len(whereClauses) > 0 {
		where = " WHERE " + strings.Join(whereClauses, " AND ")
	}

	query := `SELECT ` + postColumns + ` FROM posts` + where + ` ORDER BY created_at ASC, id ASC`
	if filters.Limit != nil {
		query += " LIMIT @limit"
		args["limit"] = *filters.Limit
	}
	if filters.Offset != nil {
		query += " OFFSET @offset"
		args["offset"] = *filters.Offset
	}

	rows, err := p.db.Query(ctx, query, args)
	if err != nil {
		p.record("post_list", false, start)
		p.log.Error("Error listing posts", slog.String("error", err.Error()))
		return nil, 0, custom_errors.ErrDatabaseQuery
	}
	defer rows.Close()

	var posts []*model.Post
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
		p.log.Error("Error iterating rows during List", slog.String("error", err.Error()))
		return nil, 0, custom_errors.ErrDatabaseQuery
	}

	countArgs := make(pgx.NamedArgs)
	for k, v := range args {
		if k != "limit" && k != "offset" {
			countArgs[k] = v
		}
	}

	var total int
	if err := p.db.QueryRow(ctx, `SELECT COUNT(*) FROM posts`+where, countArgs).Scan(&total); err != nil {
		p.record("post_list", false, start)
		p.log.Error("Error counting posts", slog.String("error", err.Error()))
		return nil, 0, custom_errors.ErrDatabaseQuery
	}

	p.record("post_list", true, start)
	return posts, total, nil
}

func (p *PostRepository) record(queryType string, success bool, start time.Time) {
	p.metrics.IncrementDatabaseQueries(queryType, success)
	p.metrics.RecordDatabaseQueryDuration(queryType, time.Since(start))
}

func scanPost(row pgx.Row) (*model.Post, error) {
	var post model.Post
	err := row.Scan(
		&post.ID,
		&post.Title,
		&post.Body,
		&post.Published,
		&post.CreatedAt,
		&post.UpdatedAt,
		&post.PublishedAt,
	)
	if err != nil {
		return nil, err
	}
	return &post, nil
}
