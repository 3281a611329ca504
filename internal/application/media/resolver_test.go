package media

import (
	"context"
	"errors"
	"io"
	"strings"
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
	media_mock "tweetbot-service/mocks/media"
)

type resolverFixture struct {
	fetcher    *media_mock.Fetcher
	searcher   *media_mock.ImageSearcher
	normalizer *media_mock.Normalizer
	fs         afero.Fs
	resolver   *Resolver
}

func newFixture(t *testing.T, backoff time.Duration) *resolverFixture {
	log := logger.New("test")
	f := &resolverFixture{
		fetcher:    media_mock.NewFetcher(t),
		searcher:   media_mock.NewImageSearcher(t),
		normalizer: media_mock.NewNormalizer(t),
		fs:         afero.NewMemMapFs(),
	}
	store := media_store.NewStore(f.fs, "temp_images", log)
	require.NoError(t, store.Reset())
	f.resolver = NewResolver(f.fetcher, f.searcher, f.normalizer, store, log, prometheus.NewPrometheusMetricsProvider(), backoff)
	return f
}

func body(s string) io.ReadCloser {
	return io.NopCloser(strings.NewReader(s))
}

func detailed(id int64, urls ...string) *model.PostDetailed {
	p := &model.PostDetailed{Post: &model.Post{ID: id, Title: "Gophers", Body: "b"}}
	for i, u := range urls {
		p.Images = append(p.Images, &model.PostImage{ID: int64(i + 1), PostID: id, URL: u, Position: int32(i + 1)})
	}
	return p
}

func TestResolver_ResolveAttached(t *testing.T) {
	f := newFixture(t, 0)
	f.fetcher.On("Fetch", mock.Anything, "https://img/a.jpg").Return(body("a"), nil)
	f.fetcher.On("Fetch", mock.Anything, "https://img/broken.jpg").Return(nil, errors.New("404"))
	f.fetcher.On("Fetch", mock.Anything, "https://img/html").Return(body("<html>"), nil)
	f.fetcher.On("Fetch", mock.Anything, "https://img/c.jpg").Return(body("c"), nil)
	// Normalize sees a, html, c in that order.
	f.normalizer.On("Normalize", mock.Anything).Return([]byte("jpeg"), nil).Once()
	f.normalizer.On("Normalize", mock.Anything).Return(nil, errors.New("decode image: unknown format")).Once()
	f.normalizer.On("Normalize", mock.Anything).Return([]byte("jpeg"), nil).Once()

	paths, err := f.resolver.ResolveAttached(context.Background(),
		detailed(5, "https://img/a.jpg", "https://img/broken.jpg", "https://img/html", "https://img/c.jpg"))
	require.NoError(t, err)
	assert.Equal(t, []string{"temp_images/image_5_0.jpg", "temp_images/image_5_3.jpg"}, paths)

	for _, p := range paths {
		ok, err := afero.Exists(f.fs, p)
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestResolver_ResolveAttachedEmpty(t *testing.T) {
	f := newFixture(t, 0)
	paths, err := f.resolver.ResolveAttached(context.Background(), detailed(1))
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestResolver_ResolveAttachedDirectoryFailure(t *testing.T) {
	log := logger.New("test")
	fetcher := media_mock.NewFetcher(t)
	normalizer := media_mock.NewNormalizer(t)
	store := media_store.NewStore(afero.NewReadOnlyFs(afero.NewMemMapFs()), "temp_images", log)
	r := NewResolver(fetcher, media_mock.NewImageSearcher(t), normalizer, store, log, prometheus.NewPrometheusMetricsProvider(), 0)

	fetcher.On("Fetch", mock.Anything, "https://img/a.jpg").Return(body("a"), nil)
	normalizer.On("Normalize", mock.Anything).Return([]byte("jpeg"), nil)

	_, err := r.ResolveAttached(context.Background(), detailed(1, "https://img/a.jpg", "https://img/b.jpg"))
	assert.ErrorIs(t, err, custom_errors.ErrMediaDirectory)
}

func TestResolver_ResolveFallback(t *testing.T) {
	t.Run("first rank downloads", func(t *testing.T) {
		f := newFixture(t, 0)
		f.searcher.On("Search", mock.Anything, "Gophers", 1).Return("https://img/1.jpg", nil).Once()
		f.fetcher.On("Fetch", mock.Anything, "https://img/1.jpg").Return(body("x"), nil)
		f.normalizer.On("Normalize", mock.Anything).Return([]byte("jpeg"), nil)

		path, err := f.resolver.ResolveFallback(context.Background(), "Gophers", 7)
		require.NoError(t, err)
		assert.Equal(t, "temp_images/fallback.jpg", path)
	})

	t.Run("download failures move to the next rank", func(t *testing.T) {
		f := newFixture(t, 0)
		f.searcher.On("Search", mock.Anything, "Gophers", 1).Return("https://img/1.jpg", nil).Once()
		f.searcher.On("Search", mock.Anything, "Gophers", 2).Return("https://img/2.jpg", nil).Once()
		f.searcher.On("Search", mock.Anything, "Gophers", 3).Return("https://img/3.jpg", nil).Once()
		f.fetcher.On("Fetch", mock.Anything, "https://img/1.jpg").Return(nil, errors.New("timeout"))
		f.fetcher.On("Fetch", mock.Anything, "https://img/2.jpg").Return(body("html"), nil)
		f.fetcher.On("Fetch", mock.Anything, "https://img/3.jpg").Return(body("ok"), nil)
		f.normalizer.On("Normalize", mock.Anything).Return(nil, errors.New("decode")).Once()
		f.normalizer.On("Normalize", mock.Anything).Return([]byte("jpeg"), nil).Once()

		path, err := f.resolver.ResolveFallback(context.Background(), "Gophers", 7)
		require.NoError(t, err)
		assert.Equal(t, "temp_images/fallback.jpg", path)
	})

	t.Run("budget exhausted", func(t *testing.T) {
		f := newFixture(t, 0)
		for rank := 1; rank <= 3; rank++ {
			f.searcher.On("Search", mock.Anything, "Gophers", rank).Return("https://img/bad.jpg", nil).Once()
		}
		f.fetcher.On("Fetch", mock.Anything, "https://img/bad.jpg").Return(nil, errors.New("403")).Times(3)

		_, err := f.resolver.ResolveFallback(context.Background(), "Gophers", 3)
		assert.ErrorIs(t, err, custom_errors.ErrNoMediaFound)
		f.searcher.AssertNumberOfCalls(t, "Search", 3)
	})

	t.Run("provider error stops immediately", func(t *testing.T) {
		f := newFixture(t, 0)
		f.searcher.On("Search", mock.Anything, "Gophers", 1).
			Return("", errors.Join(custom_errors.ErrMediaProviderError, errors.New("quota"))).Once()

		_, err := f.resolver.ResolveFallback(context.Background(), "Gophers", 7)
		assert.ErrorIs(t, err, custom_errors.ErrMediaProviderError)
		f.searcher.AssertNumberOfCalls(t, "Search", 1)
	})

	t.Run("no results stops immediately", func(t *testing.T) {
		f := newFixture(t, 0)
		f.searcher.On("Search", mock.Anything, "Gophers", 1).Return("", custom_errors.ErrNoMediaFound).Once()

		_, err := f.resolver.ResolveFallback(context.Background(), "Gophers", 7)
		assert.ErrorIs(t, err, custom_errors.ErrNoMediaFound)
	})

	t.Run("first attempt does not wait", func(t *testing.T) {
		f := newFixture(t, time.Hour)
		f.searcher.On("Search", mock.Anything, "Gophers", 1).Return("https://img/1.jpg", nil).Once()
		f.fetcher.On("Fetch", mock.Anything, "https://img/1.jpg").Return(body("x"), nil)
		f.normalizer.On("Normalize", mock.Anything).Return([]byte("jpeg"), nil)

		start := time.Now()
		_, err := f.resolver.ResolveFallback(context.Background(), "Gophers", 7)
		require.NoError(t, err)
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("cancellation interrupts backoff", func(t *testing.T) {
		f := newFixture(t, time.Hour)
		f.searcher.On("Search", mock.Anything, "Gophers", 1).Return("https://img/1.jpg", nil).Once()
		f.fetcher.On("Fetch", mock.Anything, "https://img/1.jpg").Return(nil, errors.New("timeout"))

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		start := time.Now()
		_, err := f.resolver.ResolveFallback(ctx, "Gophers", 7)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Less(t, time.Since(start), time.Second)
	})
}
