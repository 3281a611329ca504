package pipeline_service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tweetbot-service/internal/custom_errors"
	model "tweetbot-service/internal/domain/models"
	"tweetbot-service/internal/infrastructure/logger"
	"tweetbot-service/internal/infrastructure/outbound/metrics/prometheus"
	media_store "tweetbot-service/internal/infrastructure/outbound/media/store"
	"tweetbot-service/internal/infrastructure/outbound/repository/memory"
	lock_mock "tweetbot-service/mocks/lock"
	media_mock "tweetbot-service/mocks/media"
	pipeline_mock "tweetbot-service/mocks/pipeline"
	publisher_mock "tweetbot-service/mocks/publisher"
)

type fixture struct {
	posts     *memory.PostRepository
	images    *memory.ImageRepository
	fs        afero.Fs
	resolver  *pipeline_mock.MediaResolver
	publisher *publisher_mock.Client
	svc       *PipelineService
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()
	log := logger.New("test")
	store := memory.NewStore()
	f := &fixture{
		posts:     memory.NewPostRepository(store, log),
		images:    memory.NewImageRepository(store, log),
		fs:        afero.NewMemMapFs(),
		resolver:  pipeline_mock.NewMediaResolver(t),
		publisher: publisher_mock.NewClient(t),
	}
	f.svc = NewPipelineService(
		f.posts,
		f.images,
		memory.NewUnitOfWork(store, log),
		f.resolver,
		media_store.NewStore(f.fs, "temp_images", log),
		f.publisher,
		nil,
		log,
		prometheus.NewPrometheusMetricsProvider(),
		cfg,
	)
	return f
}

func (f *fixture) seed(t *testing.T, title, body string, urls ...string) *model.Post {
	t.Helper()
	ctx := context.Background()
	post, err := f.posts.Create(ctx, &model.Post{Title: title, Body: body})
	require.NoError(t, err)
	imgs := make([]*model.PostImage, 0, len(urls))
	for i, u := range urls {
		imgs = append(imgs, &model.PostImage{URL: u, Position: int32(i + 1)})
	}
	require.NoError(t, f.images.Attach(ctx, post.ID, imgs))
	return post
}

func (f *fixture) published(t *testing.T, id int64) bool {
	t.Helper()
	post, err := f.posts.GetByID(context.Background(), id)
	require.NoError(t, err)
	return post.Published
}

func (f *fixture) assertMediaDirGone(t *testing.T) {
	t.Helper()
	exists, err := afero.DirExists(f.fs, "temp_images")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestPipeline_NoPendingPost(t *testing.T) {
	f := newFixture(t, Config{})

	result, err := f.svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeNoPendingPost, result.Outcome)
	assert.Equal(t, model.StageIdle, result.Stage)
	assert.NotEmpty(t, result.RunID)
	f.publisher.AssertNotCalled(t, "CreatePost", mock.Anything, mock.Anything, mock.Anything)
}

func TestPipeline_PublishesWithAttachedImages(t *testing.T) {
	f := newFixture(t, Config{})
	post := f.seed(t, "Gophers", "Go mascots", "https://img/a.jpg", "https://img/b.jpg")

	f.resolver.On("ResolveAttached", mock.Anything, mock.MatchedBy(func(p *model.PostDetailed) bool {
		return p.Post.ID == post.ID && len(p.Images) == 2
	})).Return([]string{"temp_images/image_1_0.jpg", "temp_images/image_1_1.jpg"}, nil)
	f.publisher.On("UploadMedia", mock.Anything, "temp_images/image_1_0.jpg").Return(model.MediaHandle("m1"), nil)
	f.publisher.On("UploadMedia", mock.Anything, "temp_images/image_1_1.jpg").Return(model.MediaHandle("m2"), nil)
	f.publisher.On("CreatePost", mock.Anything, "Gophers\nGo mascots", []model.MediaHandle{"m1", "m2"}).
		Return(model.PostHandle("100"), nil)

	result, err := f.svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.OutcomePublished, result.Outcome)
	assert.Equal(t, post.ID, result.PostID)
	assert.Equal(t, []model.PostHandle{"100"}, result.PostHandles)
	assert.Equal(t, 2, result.MediaCount)

	assert.True(t, f.published(t, post.ID))
	images, err := f.images.GetByPost(context.Background(), post.ID)
	require.NoError(t, err)
	for _, img := range images {
		assert.True(t, img.Published)
	}
	f.resolver.AssertNotCalled(t, "ResolveFallback", mock.Anything, mock.Anything, mock.Anything)
	f.assertMediaDirGone(t)
}

func TestPipeline_LongTextBecomesReplyChain(t *testing.T) {
	f := newFixture(t, Config{MaxChars: 20})
	post := f.seed(t, "Title", "one two three four five six seven eight nine ten")

	f.resolver.On("ResolveAttached", mock.Anything, mock.Anything).Return([]string{}, nil)
	f.resolver.On("ResolveFallback", mock.Anything, "Title", 7).Return("temp_images/fallback.jpg", nil)
	f.publisher.On("UploadMedia", mock.Anything, "temp_images/fallback.jpg").Return(model.MediaHandle("m"), nil)
	f.publisher.On("CreatePost", mock.Anything, "Title\none two three", []model.MediaHandle{"m"}).
		Return(model.PostHandle("p0"), nil).Once()
	f.publisher.On("CreateReply", mock.Anything, "four five six seven", model.PostHandle("p0")).
		Return(model.PostHandle("p1"), nil).Once()
	f.publisher.On("CreateReply", mock.Anything, "eight nine ten", model.PostHandle("p1")).
		Return(model.PostHandle("p2"), nil).Once()

	result, err := f.svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.OutcomePublished, result.Outcome)
	assert.Equal(t, []model.PostHandle{"p0", "p1", "p2"}, result.PostHandles)
	assert.Equal(t, 1, result.MediaCount)
	assert.True(t, f.published(t, post.ID))
}

func TestPipeline_FallbackNotFoundAborts(t *testing.T) {
	f := newFixture(t, Config{MaxAttempts: 3})
	post := f.seed(t, "Obscure", "body", "https://img/broken.jpg")

	f.resolver.On("ResolveAttached", mock.Anything, mock.Anything).Return([]string{}, nil)
	f.resolver.On("ResolveFallback", mock.Anything, "Obscure", 3).Return("", custom_errors.ErrNoMediaFound)

	result, err := f.svc.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, custom_errors.ErrNoMediaFound)

	var stageErr *model.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, model.StageResolvingMedia, stageErr.Stage)
	assert.Equal(t, post.ID, stageErr.PostID)

	assert.Equal(t, model.OutcomeAborted, result.Outcome)
	assert.False(t, f.published(t, post.ID))
	f.publisher.AssertNotCalled(t, "CreatePost", mock.Anything, mock.Anything, mock.Anything)
	f.assertMediaDirGone(t)
}

func TestPipeline_FallbackNotFoundTextOnly(t *testing.T) {
	f := newFixture(t, Config{FallbackPolicy: model.FallbackPolicyTextOnly})
	post := f.seed(t, "Obscure", "body")

	f.resolver.On("ResolveAttached", mock.Anything, mock.Anything).Return([]string{}, nil)
	f.resolver.On("ResolveFallback", mock.Anything, "Obscure", 7).Return("", custom_errors.ErrNoMediaFound)
	f.publisher.On("CreatePost", mock.Anything, "Obscure\nbody", []model.MediaHandle{}).Return(model.PostHandle("1"), nil)

	result, err := f.svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.OutcomePublished, result.Outcome)
	assert.Zero(t, result.MediaCount)
	assert.True(t, f.published(t, post.ID))
}

func TestPipeline_ProviderErrorAbortsEvenWhenTextOnly(t *testing.T) {
	f := newFixture(t, Config{FallbackPolicy: model.FallbackPolicyTextOnly})
	post := f.seed(t, "T", "b")

	f.resolver.On("ResolveAttached", mock.Anything, mock.Anything).Return([]string{}, nil)
	f.resolver.On("ResolveFallback", mock.Anything, "T", 7).Return("", custom_errors.ErrMediaProviderError)

	_, err := f.svc.Run(context.Background())
	assert.ErrorIs(t, err, custom_errors.ErrMediaProviderError)
	assert.False(t, f.published(t, post.ID))
}

func TestPipeline_PartialThreadStaysUnpublished(t *testing.T) {
	f := newFixture(t, Config{MaxChars: 10})
	post := f.seed(t, "aaaa", "bbbb cccc dddd")

	f.resolver.On("ResolveAttached", mock.Anything, mock.Anything).Return([]string{"temp_images/image_1_0.jpg"}, nil)
	f.publisher.On("UploadMedia", mock.Anything, mock.Anything).Return(model.MediaHandle("m"), nil)
	f.publisher.On("CreatePost", mock.Anything, mock.Anything, mock.Anything).Return(model.PostHandle("root"), nil)
	f.publisher.On("CreateReply", mock.Anything, mock.Anything, model.PostHandle("root")).
		Return(model.PostHandle(""), errors.Join(custom_errors.ErrPublishTransport, errors.New("503")))

	result, err := f.svc.Run(context.Background())
	assert.ErrorIs(t, err, custom_errors.ErrPublishTransport)

	var stageErr *model.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, model.StagePublishing, stageErr.Stage)
	assert.Equal(t, []model.PostHandle{"root"}, result.PostHandles)
	assert.False(t, f.published(t, post.ID))
	f.assertMediaDirGone(t)
}

func TestPipeline_UploadFailureCreatesNothing(t *testing.T) {
	f := newFixture(t, Config{})
	post := f.seed(t, "T", "b", "https://img/a.jpg")

	f.resolver.On("ResolveAttached", mock.Anything, mock.Anything).Return([]string{"temp_images/image_1_0.jpg"}, nil)
	f.publisher.On("UploadMedia", mock.Anything, mock.Anything).Return(model.MediaHandle(""), custom_errors.ErrPublishTransport)

	result, err := f.svc.Run(context.Background())
	assert.ErrorIs(t, err, custom_errors.ErrPublishTransport)
	assert.Empty(t, result.PostHandles)
	assert.False(t, f.published(t, post.ID))
	f.publisher.AssertNotCalled(t, "CreatePost", mock.Anything, mock.Anything, mock.Anything)
}

func TestPipeline_OldestPostFirst(t *testing.T) {
	f := newFixture(t, Config{})
	first := f.seed(t, "first", "b")
	second := f.seed(t, "second", "b")

	f.resolver.On("ResolveAttached", mock.Anything, mock.Anything).Return([]string{}, nil)
	f.resolver.On("ResolveFallback", mock.Anything, mock.Anything, 7).Return("temp_images/fallback.jpg", nil)
	f.publisher.On("UploadMedia", mock.Anything, mock.Anything).Return(model.MediaHandle("m"), nil)
	f.publisher.On("CreatePost", mock.Anything, "first\nb", mock.Anything).Return(model.PostHandle("1"), nil).Once()
	f.publisher.On("CreatePost", mock.Anything, "second\nb", mock.Anything).Return(model.PostHandle("2"), nil).Once()

	r1, err := f.svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first.ID, r1.PostID)

	r2, err := f.svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, second.ID, r2.PostID)

	r3, err := f.svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeNoPendingPost, r3.Outcome)
}

func TestPipeline_OverlappingRunIsSkipped(t *testing.T) {
	f := newFixture(t, Config{})
	f.seed(t, "T", "b")

	entered := make(chan struct{})
	unblock := make(chan struct{})
	f.resolver.On("ResolveAttached", mock.Anything, mock.Anything).Return([]string{}, nil)
	f.resolver.On("ResolveFallback", mock.Anything, "T", 7).
		Run(func(mock.Arguments) {
			close(entered)
			<-unblock
		}).Return("temp_images/fallback.jpg", nil).Once()
	f.publisher.On("UploadMedia", mock.Anything, mock.Anything).Return(model.MediaHandle("m"), nil)
	f.publisher.On("CreatePost", mock.Anything, mock.Anything, mock.Anything).Return(model.PostHandle("1"), nil).Once()

	done := make(chan *model.RunResult)
	go func() {
		r, _ := f.svc.Run(context.Background())
		done <- r
	}()
	<-entered

	skipped, err := f.svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeSkipped, skipped.Outcome)

	close(unblock)
	first := <-done
	assert.Equal(t, model.OutcomePublished, first.Outcome)
}

func TestPipeline_FinalizeSurvivesCancellation(t *testing.T) {
	f := newFixture(t, Config{})
	post := f.seed(t, "T", "b")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f.resolver.On("ResolveAttached", mock.Anything, mock.Anything).Return([]string{"temp_images/image_1_0.jpg"}, nil)
	f.publisher.On("UploadMedia", mock.Anything, mock.Anything).Return(model.MediaHandle("m"), nil)
	f.publisher.On("CreatePost", mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return(model.PostHandle("1"), nil)

	result, err := f.svc.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.OutcomePublished, result.Outcome)
	assert.True(t, f.published(t, post.ID))
}

func TestPipeline_CallTimeoutBoundsPublishCalls(t *testing.T) {
	f := newFixture(t, Config{CallTimeout: 10 * time.Millisecond})
	f.seed(t, "T", "b")

	f.resolver.On("ResolveAttached", mock.Anything, mock.Anything).Return([]string{"temp_images/image_1_0.jpg"}, nil)
	f.publisher.On("UploadMedia", mock.MatchedBy(func(ctx context.Context) bool {
		_, hasDeadline := ctx.Deadline()
		return hasDeadline
	}), mock.Anything).Return(model.MediaHandle("m"), nil)
	f.publisher.On("CreatePost", mock.Anything, mock.Anything, mock.Anything).Return(model.PostHandle("1"), nil)

	result, err := f.svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.OutcomePublished, result.Outcome)
}

func TestPipeline_DistributedLock(t *testing.T) {
	newWithLocker := func(t *testing.T) (*fixture, *lock_mock.Locker) {
		f := newFixture(t, Config{})
		locker := lock_mock.NewLocker(t)
		f.svc.locker = locker
		return f, locker
	}

	t.Run("held elsewhere", func(t *testing.T) {
		f, locker := newWithLocker(t)
		f.seed(t, "T", "b")
		locker.On("TryLock", mock.Anything).Return(nil, false, nil)

		result, err := f.svc.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, model.OutcomeSkipped, result.Outcome)
	})

	t.Run("lock backend down", func(t *testing.T) {
		f, locker := newWithLocker(t)
		locker.On("TryLock", mock.Anything).Return(nil, false, errors.New("dial tcp: refused"))

		result, err := f.svc.Run(context.Background())
		assert.ErrorIs(t, err, custom_errors.ErrLockUnavailable)
		assert.Equal(t, model.OutcomeAborted, result.Outcome)
	})

	t.Run("released after run", func(t *testing.T) {
		f, locker := newWithLocker(t)
		released := false
		locker.On("TryLock", mock.Anything).Return(func(context.Context) error {
			released = true
			return nil
		}, true, nil)

		result, err := f.svc.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, model.OutcomeNoPendingPost, result.Outcome)
		assert.True(t, released)
	})
}

func TestPipeline_MediaDirectoryFailureStillCleansUp(t *testing.T) {
	f := newFixture(t, Config{})
	post := f.seed(t, "T", "b", "https://img/a.jpg")
	store := media_mock.NewStore(t)
	f.svc.store = store

	store.On("Files").Return([]string{"temp_images/image_1_0.jpg"}, nil).Once()
	store.On("Reset").Return(errors.New("permission denied")).Once()
	store.On("Remove").Return(nil).Once()

	result, err := f.svc.Run(context.Background())
	assert.ErrorIs(t, err, custom_errors.ErrMediaDirectory)

	var stageErr *model.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, model.StageResolvingMedia, stageErr.Stage)
	assert.Equal(t, model.OutcomeAborted, result.Outcome)
	assert.False(t, f.published(t, post.ID))
	f.resolver.AssertNotCalled(t, "ResolveAttached", mock.Anything, mock.Anything)
}
