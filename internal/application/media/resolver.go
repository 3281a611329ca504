package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"tweetbot-service/internal/custom_errors"
	model "tweetbot-service/internal/domain/models"
	ports "tweetbot-service/internal/domain/ports/output"
	media_ports "tweetbot-service/internal/domain/ports/output/media"
)

const fallbackFileName = "fallback.jpg"

type Resolver struct {
	fetcher    media_ports.Fetcher
	searcher   media_ports.ImageSearcher
	normalizer media_ports.Normalizer
	store      media_ports.Store
	log        ports.Logger
	metrics    ports.MetricsProvider
	backoff    time.Duration
}

func NewResolver(
	fetcher media_ports.Fetcher,
	searcher media_ports.ImageSearcher,
	normalizer media_ports.Normalizer,
	store media_ports.Store,
	log ports.Logger,
	metrics ports.MetricsProvider,
	backoff time.Duration,
) *Resolver {
	return &Resolver{
		fetcher:    fetcher,
		searcher:   searcher,
		normalizer: normalizer,
		store:      store,
		log:        log,
		metrics:    metrics,
		backoff:    backoff,
	}
}

// ResolveAttached downloads every image attached to the post. Images that
// fail to download or decode are skipped, so the result may be shorter than
// the attachment list. Only a media directory failure is returned.
func (r *Resolver) ResolveAttached(ctx context.Context, post *model.PostDetailed) ([]string, error) {
	paths := make([]string, 0, len(post.Images))
	for idx, img := range post.Images {
		name := fmt.Sprintf("image_%d_%d.jpg", post.Post.ID, idx)
		path, err := r.download(ctx, img.URL, name)
		if err != nil {
			if errors.Is(err, custom_errors.ErrMediaDirectory) {
				return nil, err
			}
			r.log.Warn("Skipping attached image",
				slog.Int64("post_id", post.Post.ID),
				slog.String("url", img.URL),
				slog.String("error", err.Error()))
			continue
		}
		paths = append(paths, path)
	}

	r.log.Debug("Resolved attached images",
		slog.Int64("post_id", post.Post.ID),
		slog.Int("attached", len(post.Images)),
		slog.Int("resolved", len(paths)))
	return paths, nil
}

// ResolveFallback asks the image search for the attempt-th ranked result,
// attempt running from 1 to attemptBudget, and returns the first one that
// downloads. It fails with ErrNoMediaFound once the budget is spent and with
// ErrMediaProviderError as soon as the provider reports an error.
func (r *Resolver) ResolveFallback(ctx context.Context, searchTerm string, attemptBudget int) (string, error) {
	for attempt := 1; attempt <= attemptBudget; attempt++ {
		if attempt > 1 {
			if err := r.wait(ctx, r.backoff*time.Duration(attempt-1)); err != nil {
				return "", err
			}
		}

		url, err := r.searcher.Search(ctx, searchTerm, attempt)
		if err != nil {
			r.metrics.IncrementSearchAttempts(false)
			r.log.Warn("Image search failed",
				slog.String("term", searchTerm),
				slog.Int("attempt", attempt),
				slog.String("error", err.Error()))
			return "", err
		}

		path, err := r.download(ctx, url, fallbackFileName)
		if err != nil {
			r.metrics.IncrementSearchAttempts(false)
			if errors.Is(err, custom_errors.ErrMediaDirectory) {
				return "", err
			}
			r.log.Warn("Fallback image download failed",
				slog.String("term", searchTerm),
				slog.Int("attempt", attempt),
				slog.String("url", url),
				slog.String("error", err.Error()))
			continue
		}

		r.metrics.IncrementSearchAttempts(true)
		r.log.Info("Resolved fallback image",
			slog.String("term", searchTerm),
			slog.Int("attempt", attempt),
			slog.String("url", url))
		return path, nil
	}

	return "", fmt.Errorf("%w: %d attempts for %q", custom_errors.ErrNoMediaFound, attemptBudget, searchTerm)
}

func (r *Resolver) download(ctx context.Context, url, name string) (string, error) {
	body, err := r.fetcher.Fetch(ctx, url)
	if err != nil {
		r.metrics.IncrementMediaOperations("fetch", false)
		return "", fmt.Errorf("%w: %v", custom_errors.ErrMediaDownload, err)
	}
	defer func() {
		if err := body.Close(); err != nil {
			r.log.Debug("Failed to close media body", slog.String("url", url), slog.String("error", err.Error()))
		}
	}()

	data, err := r.normalizer.Normalize(body)
	if err != nil {
		r.metrics.IncrementMediaOperations("normalize", false)
		return "", fmt.Errorf("%w: %v", custom_errors.ErrMediaDownload, err)
	}

	path, err := r.store.Save(name, data)
	if err != nil {
		r.metrics.IncrementMediaOperations("save", false)
		return "", fmt.Errorf("%w: %v", custom_errors.ErrMediaDirectory, err)
	}
	r.metrics.IncrementMediaOperations("fetch", true)
	return path, nil
}

func (r *Resolver) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
