package media

import (
	"context"
	"io"
)

//go:generate mockery --name Fetcher --dir . --output ../../../../../mocks/media --outpkg mocks --filename Fetcher.go
// Fetcher opens a remote image for reading.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}

//go:generate mockery --name ImageSearcher --dir . --output ../../../../../mocks/media --outpkg mocks --filename ImageSearcher.go
// ImageSearcher returns the URL of the rank-th result (1-based) for term.
type ImageSearcher interface {
	Search(ctx context.Context, term string, rank int) (string, error)
}

//go:generate mockery --name Normalizer --dir . --output ../../../../../mocks/media --outpkg mocks --filename Normalizer.go
// Normalizer turns downloaded bytes into an uploadable image.
type Normalizer interface {
	Normalize(src io.Reader) ([]byte, error)
}

//go:generate mockery --name Store --dir . --output ../../../../../mocks/media --outpkg mocks --filename Store.go
// Store is the run-scoped media directory.
type Store interface {
	// Reset removes leftovers and recreates the directory.
	Reset() error
	Save(name string, data []byte) (string, error)
	Files() ([]string, error)
	// Remove deletes the directory and everything in it.
	Remove() error
}
