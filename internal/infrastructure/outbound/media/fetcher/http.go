package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	ports "tweetbot-service/internal/domain/ports/output"
)

const userAgent = "tweetbot-service/1.0"

type HTTPFetcher struct {
	client *http.Client
	log    ports.Logger
}

func NewHTTPFetcher(timeout time.Duration, log ports.Logger) *HTTPFetcher {
	return &HTTPFetcher{client: &http.Client{Timeout: timeout}, log: log}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("get %s: unexpected status %d", url, resp.StatusCode)
	}

	f.log.Debug("Fetched media", slog.String("url", url), slog.Int64("content_length", resp.ContentLength))
	return resp.Body, nil
}
