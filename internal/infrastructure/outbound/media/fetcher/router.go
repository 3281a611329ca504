package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"tweetbot-service/internal/custom_errors"
	media_ports "tweetbot-service/internal/domain/ports/output/media"
)

// Router dispatches a fetch by URL scheme.
type Router struct {
	byScheme map[string]media_ports.Fetcher
}

func NewRouter() *Router {
	return &Router{byScheme: make(map[string]media_ports.Fetcher)}
}

func (r *Router) Handle(scheme string, f media_ports.Fetcher) *Router {
	r.byScheme[strings.ToLower(scheme)] = f
	return r
}

func (r *Router) Fetch(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse media url: %w", err)
	}
	f, ok := r.byScheme[strings.ToLower(u.Scheme)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", custom_errors.ErrUnsupportedScheme, u.Scheme)
	}
	return f.Fetch(ctx, rawURL)
}
