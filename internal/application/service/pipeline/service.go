package pipeline_service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"tweetbot-service/internal/application/text"
	"tweetbot-service/internal/custom_errors"
	model "tweetbot-service/internal/domain/models"
	ports "tweetbot-service/internal/domain/ports/output"
	image_repository "tweetbot-service/internal/domain/ports/output/image"
	"tweetbot-service/internal/domain/ports/output/lock"
	media_ports "tweetbot-service/internal/domain/ports/output/media"
	post_repository "tweetbot-service/internal/domain/ports/output/post"
	"tweetbot-service/internal/domain/ports/output/publisher"
)

//go:generate mockery --name MediaResolver --dir . --output ../../../../mocks/pipeline --outpkg mocks --filename MediaResolver.go
type MediaResolver interface {
	ResolveAttached(ctx context.Context, post *model.PostDetailed) ([]string, error)
	ResolveFallback(ctx context.Context, searchTerm string, attemptBudget int) (string, error)
}

type Config struct {
	MaxAttempts    int
	MaxChars       int
	FallbackPolicy model.FallbackPolicy
	// CallTimeout bounds each publish call; zero leaves it to the client.
	CallTimeout time.Duration
}

// PipelineService publishes the oldest unpublished post. Runs never overlap:
// a Run that finds another one in flight returns OutcomeSkipped.
type PipelineService struct {
	postRepo  post_repository.Repository
	imageRepo image_repository.Repository
	uow       ports.UnitOfWork
	resolver  MediaResolver
	store     media_ports.Store
	publisher publisher.Client
	locker    lock.Locker
	log       ports.Logger
	metrics   ports.MetricsProvider
	cfg       Config

	mu sync.Mutex
}

func NewPipelineService(
	postRepo post_repository.Repository,
	imageRepo image_repository.Repository,
	uow ports.UnitOfWork,
	resolver MediaResolver,
	store media_ports.Store,
	publisher publisher.Client,
	locker lock.Locker,
	log ports.Logger,
	metrics ports.MetricsProvider,
	cfg Config,
) *PipelineService {
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = text.DefaultMaxChars
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 7
	}
	if cfg.FallbackPolicy == "" {
		cfg.FallbackPolicy = model.FallbackPolicyAbort
	}
	return &PipelineService{
		postRepo:  postRepo,
		imageRepo: imageRepo,
		uow:       uow,
		resolver:  resolver,
		store:     store,
		publisher: publisher,
		locker:    locker,
		log:       log,
		metrics:   metrics,
		cfg:       cfg,
	}
}

func (s *PipelineService) Run(ctx context.Context) (*model.RunResult, error) {
	start := time.Now()
	result := &model.RunResult{RunID: uuid.NewString(), Stage: model.StageIdle}
	defer s.finish(result, start)

	if !s.mu.TryLock() {
		s.log.Info("Pipeline run skipped, another run is in progress", slog.String("run_id", result.RunID))
		result.Outcome = model.OutcomeSkipped
		return result, nil
	}
	defer s.mu.Unlock()

	if s.locker != nil {
		release, acquired, err := s.locker.TryLock(ctx)
		if err != nil {
			s.log.Error("Failed to acquire run lock", slog.String("run_id", result.RunID), slog.String("error", err.Error()))
			result.Outcome = model.OutcomeAborted
			return result, fmt.Errorf("%w: %w", custom_errors.ErrLockUnavailable, err)
		}
		if !acquired {
			s.log.Info("Pipeline run skipped, run lock is held elsewhere", slog.String("run_id", result.RunID))
			result.Outcome = model.OutcomeSkipped
			return result, nil
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				s.log.Warn("Failed to release run lock", slog.String("run_id", result.RunID), slog.String("error", err.Error()))
			}
		}()
	}

	defer s.cleanup(result)

	if err := s.run(ctx, result); err != nil {
		result.Outcome = model.OutcomeAborted
		s.metrics.IncrementPipelineFailures(string(result.Stage))
		s.log.Error("Pipeline run aborted",
			slog.String("run_id", result.RunID),
			slog.Int64("post_id", result.PostID),
			slog.String("stage", string(result.Stage)),
			slog.String("error", err.Error()))
		return result, err
	}
	return result, nil
}

func (s *PipelineService) run(ctx context.Context, result *model.RunResult) error {
	result.Stage = model.StageSelecting
	post, err := s.selectPost(ctx)
	if err != nil {
		if errors.Is(err, custom_errors.ErrPostNotFound) {
			s.log.Info("No posts are ready to be published", slog.String("run_id", result.RunID))
			result.Outcome = model.OutcomeNoPendingPost
			result.Stage = model.StageIdle
			return nil
		}
		return s.fail(result, err)
	}
	result.PostID = post.Post.ID
	s.log.Info("Selected post for publishing",
		slog.String("run_id", result.RunID),
		slog.Int64("post_id", post.Post.ID),
		slog.Int("images", len(post.Images)))

	result.Stage = model.StageResolvingMedia
	paths, err := s.resolveMedia(ctx, post)
	if err != nil {
		return s.fail(result, err)
	}
	result.MediaCount = len(paths)

	result.Stage = model.StageSplitting
	chunks := text.Split(post.Post.Text(), s.cfg.MaxChars)
	s.log.Debug("Split post text", slog.Int64("post_id", post.Post.ID), slog.Int("chunks", len(chunks)))

	result.Stage = model.StagePublishing
	handles, err := s.publish(ctx, paths, chunks)
	result.PostHandles = handles
	if err != nil {
		if len(handles) > 0 {
			s.log.Warn("Thread partially published",
				slog.String("run_id", result.RunID),
				slog.Int64("post_id", post.Post.ID),
				slog.Int("published_chunks", len(handles)),
				slog.Int("total_chunks", len(chunks)))
		}
		return s.fail(result, err)
	}

	result.Stage = model.StageFinalizing
	// The thread is live; record it even if the caller has gone away.
	if err := s.markPublished(context.WithoutCancel(ctx), post.Post.ID); err != nil {
		return s.fail(result, err)
	}

	result.Outcome = model.OutcomePublished
	result.Stage = model.StageIdle
	s.log.Info("Post published",
		slog.String("run_id", result.RunID),
		slog.Int64("post_id", post.Post.ID),
		slog.Int("chunks", len(chunks)),
		slog.Int("media", len(paths)),
		slog.String("root", string(handles[0])))
	return nil
}

func (s *PipelineService) selectPost(ctx context.Context) (*model.PostDetailed, error) {
	post, err := s.postRepo.GetNextUnpublished(ctx)
	if err != nil {
		if errors.Is(err, custom_errors.ErrPostNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", custom_errors.ErrStorage, err)
	}

	images, err := s.imageRepo.GetByPost(ctx, post.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", custom_errors.ErrStorage, err)
	}
	return &model.PostDetailed{Post: post, Images: images}, nil
}

func (s *PipelineService) resolveMedia(ctx context.Context, post *model.PostDetailed) ([]string, error) {
	if leftovers, err := s.store.Files(); err == nil && len(leftovers) > 0 {
		s.log.Warn("Removing media left by an interrupted run", slog.Int("files", len(leftovers)))
	}
	if err := s.store.Reset(); err != nil {
		return nil, fmt.Errorf("%w: %v", custom_errors.ErrMediaDirectory, err)
	}

	paths, err := s.resolver.ResolveAttached(ctx, post)
	if err != nil {
		return nil, err
	}
	if len(paths) > 0 {
		return paths, nil
	}

	path, err := s.resolver.ResolveFallback(ctx, post.Post.Title, s.cfg.MaxAttempts)
	if err != nil {
		if errors.Is(err, custom_errors.ErrNoMediaFound) && s.cfg.FallbackPolicy == model.FallbackPolicyTextOnly {
			s.log.Warn("No fallback image found, publishing text only",
				slog.Int64("post_id", post.Post.ID),
				slog.String("error", err.Error()))
			return nil, nil
		}
		return nil, err
	}
	return []string{path}, nil
}

// publish uploads media, creates the root post and chains every further
// chunk as a reply to the one before it. It returns the handles created so
// far even when it fails.
func (s *PipelineService) publish(ctx context.Context, paths []string, chunks []string) ([]model.PostHandle, error) {
	media := make([]model.MediaHandle, 0, len(paths))
	for _, path := range paths {
		callCtx, cancel := s.callContext(ctx)
		handle, err := s.publisher.UploadMedia(callCtx, path)
		cancel()
		if err != nil {
			s.metrics.IncrementPublishOperations("upload_media", false)
			return nil, err
		}
		s.metrics.IncrementPublishOperations("upload_media", true)
		media = append(media, handle)
	}

	handles := make([]model.PostHandle, 0, len(chunks))
	callCtx, cancel := s.callContext(ctx)
	root, err := s.publisher.CreatePost(callCtx, chunks[0], media)
	cancel()
	if err != nil {
		s.metrics.IncrementPublishOperations("create_post", false)
		return handles, err
	}
	s.metrics.IncrementPublishOperations("create_post", true)
	handles = append(handles, root)

	parent := root
	for _, chunk := range chunks[1:] {
		callCtx, cancel := s.callContext(ctx)
		reply, err := s.publisher.CreateReply(callCtx, chunk, parent)
		cancel()
		if err != nil {
			s.metrics.IncrementPublishOperations("create_reply", false)
			return handles, err
		}
		s.metrics.IncrementPublishOperations("create_reply", true)
		handles = append(handles, reply)
		parent = reply
	}
	return handles, nil
}

func (s *PipelineService) markPublished(ctx context.Context, postID int64) error {
	tx, err := s.uow.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", custom_errors.ErrStorage, err)
	}

	var txCommitted bool
	defer func() {
		if !txCommitted {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !strings.Contains(rollbackErr.Error(), "tx is closed") {
				s.log.Error("Failed to rollback transaction", slog.Int64("post_id", postID), slog.String("error", rollbackErr.Error()))
			}
		}
	}()

	if err := tx.PostRepository().MarkPublished(ctx, postID); err != nil {
		return fmt.Errorf("%w: %w", custom_errors.ErrStorage, err)
	}
	if err := tx.ImageRepository().MarkPublished(ctx, postID); err != nil {
		return fmt.Errorf("%w: %w", custom_errors.ErrStorage, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: %w", custom_errors.ErrStorage, err)
	}
	txCommitted = true
	return nil
}

func (s *PipelineService) cleanup(result *model.RunResult) {
	if err := s.store.Remove(); err != nil {
		s.log.Error("Failed to remove media directory", slog.String("run_id", result.RunID), slog.String("error", err.Error()))
	}
}

func (s *PipelineService) finish(result *model.RunResult, start time.Time) {
	result.Duration = time.Since(start)
	s.metrics.IncrementPipelineRuns(string(result.Outcome))
	s.metrics.RecordPipelineRunDuration(string(result.Outcome), result.Duration)
}

func (s *PipelineService) fail(result *model.RunResult, err error) error {
	return &model.StageError{Stage: result.Stage, PostID: result.PostID, Err: err}
}

func (s *PipelineService) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.CallTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.cfg.CallTimeout)
}
