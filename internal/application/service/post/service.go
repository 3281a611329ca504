package post_service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"tweetbot-service/internal/custom_errors"
	model "tweetbot-service/internal/domain/models"
	ports "tweetbot-service/internal/domain/ports/output"
	image_repository "tweetbot-service/internal/domain/ports/output/image"
	post_repository "tweetbot-service/internal/domain/ports/output/post"
)

const maxListLimit = 100

// PostService manages the queue of posts waiting to be published.
type PostService struct {
	postRepo  post_repository.Repository
	imageRepo image_repository.Repository
	uow       ports.UnitOfWork
	log       ports.Logger
	metrics   ports.MetricsProvider
	validate  *validator.Validate
}

func NewPostService(
	postRepo post_repository.Repository,
	imageRepo image_repository.Repository,
	uow ports.UnitOfWork,
	log ports.Logger,
	metrics ports.MetricsProvider,
) *PostService {
	return &PostService{
		postRepo:  postRepo,
		imageRepo: imageRepo,
		uow:       uow,
		log:       log,
		metrics:   metrics,
		validate:  validator.New(),
	}
}

func (s *PostService) CreatePost(ctx context.Context, post *model.CreatePostDTO) (result *model.PostDetailed, err error) {
	if err := s.validateDTO(post); err != nil {
		s.metrics.IncrementPostOperations("create", false)
		return nil, err
	}

	tx, err := s.uow.Begin(ctx)
	if err != nil {
		s.log.Error("Failed to start transaction", slog.String("error", err.Error()))
		s.metrics.IncrementPostOperations("create", false)
		return nil, custom_errors.ErrDatabaseQuery
	}
	defer s.rollbackUnlessCommitted(ctx, tx, &err)

	result, err = s.createInTx(ctx, tx, post)
	if err != nil {
		s.metrics.IncrementPostOperations("create", false)
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		s.log.Error("Failed to commit transaction", slog.String("error", err.Error()))
		s.metrics.IncrementPostOperations("create", false)
		return nil, custom_errors.ErrDatabaseQuery
	}

	s.metrics.IncrementPostOperations("create", true)
	s.log.Info("Post queued",
		slog.Int64("post_id", result.Post.ID),
		slog.Int("images", len(result.Images)))
	return result, nil
}

// ImportPosts stores every entry or none of them.
func (s *PostService) ImportPosts(ctx context.Context, posts []*model.ImportPostDTO) (n int, err error) {
	if len(posts) == 0 {
		return 0, fmt.Errorf("%w: import is empty", custom_errors.ErrInvalidInput)
	}
	dtos := make([]*model.CreatePostDTO, 0, len(posts))
	for i, p := range posts {
		if p == nil {
			return 0, fmt.Errorf("%w: entry %d is empty", custom_errors.ErrInvalidInput, i)
		}
		dto := p.ToCreate()
		if err := s.validateDTO(dto); err != nil {
			return 0, fmt.Errorf("entry %d: %w", i, err)
		}
		dtos = append(dtos, dto)
	}

	tx, err := s.uow.Begin(ctx)
	if err != nil {
		s.log.Error("Failed to start transaction", slog.String("error", err.Error()))
		return 0, custom_errors.ErrDatabaseQuery
	}
	defer s.rollbackUnlessCommitted(ctx, tx, &err)

	for i, dto := range dtos {
		if _, err = s.createInTx(ctx, tx, dto); err != nil {
			s.metrics.IncrementPostOperations("import", false)
			return 0, fmt.Errorf("entry %d: %w", i, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		s.log.Error("Failed to commit import", slog.String("error", err.Error()))
		s.metrics.IncrementPostOperations("import", false)
		return 0, custom_errors.ErrDatabaseQuery
	}

	s.metrics.IncrementPostOperations("import", true)
	s.log.Info("Posts imported", slog.Int("count", len(dtos)))
	return len(dtos), nil
}

func (s *PostService) GetPostByID(ctx context.Context, id int64) (*model.PostDetailed, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, custom_errors.ErrPostNotFound) {
			return nil, custom_errors.ErrPostNotFound
		}
		s.log.Error("Failed to get post", slog.Int64("id", id), slog.String("error", err.Error()))
		return nil, custom_errors.ErrDatabaseQuery
	}

	images, err := s.imageRepo.GetByPost(ctx, id)
	if err != nil {
		s.log.Error("Failed to get images", slog.Int64("id", id), slog.String("error", err.Error()))
		return nil, custom_errors.ErrImageQueryFailed
	}
	return &model.PostDetailed{Post: post, Images: images}, nil
}

func (s *PostService) ListPosts(ctx context.Context, filters *model.PostFilters) ([]*model.PostDetailed, int, error) {
	f := model.PostFilters{}
	if filters != nil {
		f = *filters
	}
	limit := maxListLimit
	if f.Limit != nil && *f.Limit > 0 && *f.Limit < maxListLimit {
		limit = *f.Limit
	}
	f.Limit = &limit
	if f.Offset != nil && *f.Offset < 0 {
		return nil, 0, fmt.Errorf("%w: negative offset", custom_errors.ErrInvalidInput)
	}

	posts, total, err := s.postRepo.List(ctx, f)
	if err != nil {
		s.log.Error("Failed to list posts", slog.String("error", err.Error()))
		return nil, 0, custom_errors.ErrDatabaseQuery
	}

	result := make([]*model.PostDetailed, 0, len(posts))
	for _, p := range posts {
		images, err := s.imageRepo.GetByPost(ctx, p.ID)
		if err != nil {
			s.log.Error("Failed to get images for listed post", slog.Int64("id", p.ID), slog.String("error", err.Error()))
			return nil, 0, custom_errors.ErrImageQueryFailed
		}
		result = append(result, &model.PostDetailed{Post: p, Images: images})
	}
	return result, total, nil
}

func (s *PostService) DeletePost(ctx context.Context, id int64) error {
	if err := s.postRepo.Delete(ctx, id); err != nil {
		s.metrics.IncrementPostOperations("delete", false)
		if errors.Is(err, custom_errors.ErrPostNotFound) {
			return custom_errors.ErrPostNotFound
		}
		s.log.Error("Failed to delete post", slog.Int64("id", id), slog.String("error", err.Error()))
		return custom_errors.ErrDatabaseQuery
	}
	s.metrics.IncrementPostOperations("delete", true)
	s.log.Info("Post deleted", slog.Int64("post_id", id))
	return nil
}

func (s *PostService) createInTx(ctx context.Context, tx ports.Transaction, dto *model.CreatePostDTO) (*model.PostDetailed, error) {
	created, err := tx.PostRepository().Create(ctx, &model.Post{Title: dto.Title, Body: dto.Body})
	if err != nil {
		s.log.Error("Failed to create post", slog.String("error", err.Error()))
		return nil, custom_errors.ErrDatabaseQuery
	}

	images := []*model.PostImage{}
	if len(dto.ImageURLs) > 0 {
		toAttach := make([]*model.PostImage, 0, len(dto.ImageURLs))
		for i, u := range dto.ImageURLs {
			toAttach = append(toAttach, &model.PostImage{PostID: created.ID, URL: u, Position: int32(i + 1)})
		}
		if err := tx.ImageRepository().Attach(ctx, created.ID, toAttach); err != nil {
			s.log.Error("Failed to attach images to post", slog.Int64("post_id", created.ID), slog.String("error", err.Error()))
			return nil, custom_errors.ErrImageAttachFailed
		}
		images, err = tx.ImageRepository().GetByPost(ctx, created.ID)
		if err != nil {
			s.log.Error("Failed to get images by post", slog.Int64("post_id", created.ID), slog.String("error", err.Error()))
			return nil, custom_errors.ErrImageQueryFailed
		}
	}
	return &model.PostDetailed{Post: created, Images: images}, nil
}

func (s *PostService) validateDTO(dto *model.CreatePostDTO) error {
	if dto == nil {
		return fmt.Errorf("%w: post is required", custom_errors.ErrInvalidInput)
	}
	dto.Title = strings.TrimSpace(dto.Title)
	dto.Body = strings.TrimSpace(dto.Body)
	if err := s.validate.Struct(dto); err != nil {
		return fmt.Errorf("%w: %v", custom_errors.ErrInvalidInput, err)
	}
	return nil
}

func (s *PostService) rollbackUnlessCommitted(ctx context.Context, tx ports.Transaction, err *error) {
	if *err == nil {
		return
	}
	if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
		if !strings.Contains(rollbackErr.Error(), "tx is closed") {
			s.log.Error("Failed to rollback transaction", slog.String("error", rollbackErr.Error()))
		} else {
			s.log.Debug("Transaction already closed during rollback", slog.String("error", rollbackErr.Error()))
		}
	}
}
