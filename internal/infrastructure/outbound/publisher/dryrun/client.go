package dryrun

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/spf13/afero"

	"tweetbot-service/internal/custom_errors"
	model "tweetbot-service/internal/domain/models"
	ports "tweetbot-service/internal/domain/ports/output"
)

// Client logs what would be published and hands out local handles.
type Client struct {
	fs  afero.Fs
	log ports.Logger
	seq atomic.Int64
}

func NewClient(fs afero.Fs, log ports.Logger) *Client {
	return &Client{fs: fs, log: log}
}

func (c *Client) UploadMedia(ctx context.Context, localPath string) (model.MediaHandle, error) {
	info, err := c.fs.Stat(localPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", custom_errors.ErrPublishTransport, err)
	}
	handle := model.MediaHandle(fmt.Sprintf("dry-media-%d", c.seq.Add(1)))
	c.log.Info("Dry run: upload media",
		slog.String("path", localPath),
		slog.Int64("bytes", info.Size()),
		slog.String("handle", string(handle)))
	return handle, nil
}

func (c *Client) CreatePost(ctx context.Context, text string, media []model.MediaHandle) (model.PostHandle, error) {
	handle := model.PostHandle(fmt.Sprintf("dry-post-%d", c.seq.Add(1)))
	c.log.Info("Dry run: create post",
		slog.String("handle", string(handle)),
		slog.Int("media", len(media)),
		slog.String("text", text))
	return handle, nil
}

func (c *Client) CreateReply(ctx context.Context, text string, parent model.PostHandle) (model.PostHandle, error) {
	handle := model.PostHandle(fmt.Sprintf("dry-post-%d", c.seq.Add(1)))
	c.log.Info("Dry run: create reply",
		slog.String("handle", string(handle)),
		slog.String("parent", string(parent)),
		slog.String("text", text))
	return handle, nil
}
