package twitter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	gotwitter "github.com/dghubble/go-twitter/twitter"
	"github.com/dghubble/oauth1"
	"github.com/spf13/afero"

	"tweetbot-service/internal/custom_errors"
	model "tweetbot-service/internal/domain/models"
	ports "tweetbot-service/internal/domain/ports/output"
	"tweetbot-service/internal/infrastructure/config"
)

const defaultAPIBase = "https://api.twitter.com/1.1/"

type uploadResponse struct {
	MediaID       int64  `json:"media_id"`
	MediaIDString string `json:"media_id_string"`
}

// Client publishes threads through the v1.1 REST API.
type Client struct {
	statuses  *gotwitter.StatusService
	http      *http.Client
	uploadURL string
	fs        afero.Fs
	log       ports.Logger
}

// NewClient bounds HTTP calls slightly below timeout so that a slow status
// update fails in the HTTP layer before a caller context of the same timeout
// gives up on a request that may still succeed.
func NewClient(cfg config.Twitter, timeout time.Duration, fs afero.Fs, log ports.Logger) *Client {
	timeout = httpTimeout(timeout)
	base := &http.Client{Timeout: timeout}
	if cfg.APIBaseURL != "" && cfg.APIBaseURL != defaultAPIBase {
		base.Transport = &rewriteTransport{from: defaultAPIBase, to: cfg.APIBaseURL, next: http.DefaultTransport}
	}

	ctx := context.WithValue(context.Background(), oauth1.HTTPClient, base)
	oauthConfig := oauth1.NewConfig(cfg.ConsumerKey, cfg.ConsumerSecret)
	token := oauth1.NewToken(cfg.AccessToken, cfg.AccessSecret)
	httpClient := oauthConfig.Client(ctx, token)
	httpClient.Timeout = timeout

	return &Client{
		statuses:  gotwitter.NewClient(httpClient).Statuses,
		http:      httpClient,
		uploadURL: cfg.UploadURL,
		fs:        fs,
		log:       log,
	}
}

func (c *Client) UploadMedia(ctx context.Context, localPath string) (model.MediaHandle, error) {
	data, err := afero.ReadFile(c.fs, localPath)
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %v", custom_errors.ErrPublishTransport, localPath, err)
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("media", filepath.Base(localPath))
	if err != nil {
		return "", fmt.Errorf("%w: %v", custom_errors.ErrPublishTransport, err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("%w: %v", custom_errors.ErrPublishTransport, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("%w: %v", custom_errors.ErrPublishTransport, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, &body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", custom_errors.ErrPublishTransport, err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: upload %s: %v", custom_errors.ErrPublishTransport, localPath, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: read upload response: %v", custom_errors.ErrPublishTransport, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: upload status %d: %s", custom_errors.ErrPublishTransport, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out uploadResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("%w: decode upload response: %v", custom_errors.ErrPublishTransport, err)
	}
	id := out.MediaIDString
	if id == "" && out.MediaID != 0 {
		id = strconv.FormatInt(out.MediaID, 10)
	}
	if id == "" {
		return "", fmt.Errorf("%w: upload response has no media id", custom_errors.ErrPublishTransport)
	}

	c.log.Debug("Uploaded media", slog.String("path", localPath), slog.String("media_id", id))
	return model.MediaHandle(id), nil
}

func (c *Client) CreatePost(ctx context.Context, text string, media []model.MediaHandle) (model.PostHandle, error) {
	params := &gotwitter.StatusUpdateParams{}
	for _, m := range media {
		id, err := strconv.ParseInt(string(m), 10, 64)
		if err != nil {
			return "", fmt.Errorf("%w: invalid media id %q", custom_errors.ErrPublishTransport, m)
		}
		params.MediaIds = append(params.MediaIds, id)
	}
	return c.update(ctx, text, params)
}

func (c *Client) CreateReply(ctx context.Context, text string, parent model.PostHandle) (model.PostHandle, error) {
	parentID, err := strconv.ParseInt(string(parent), 10, 64)
	if err != nil {
		return "", fmt.Errorf("%w: invalid parent id %q", custom_errors.ErrPublishTransport, parent)
	}
	return c.update(ctx, text, &gotwitter.StatusUpdateParams{
		InReplyToStatusID:         parentID,
		AutoPopulateReplyMetadata: gotwitter.Bool(true),
	})
}

// update runs the status call in a goroutine because the library takes no
// context; ctx still bounds how long the caller waits.
func (c *Client) update(ctx context.Context, text string, params *gotwitter.StatusUpdateParams) (model.PostHandle, error) {
	type result struct {
		tweet *gotwitter.Tweet
		err   error
	}
	done := make(chan result, 1)
	go func() {
		tweet, _, err := c.statuses.Update(text, params)
		done <- result{tweet: tweet, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %v", custom_errors.ErrPublishTransport, ctx.Err())
	case r := <-done:
		if r.err != nil {
			return "", fmt.Errorf("%w: %v", custom_errors.ErrPublishTransport, r.err)
		}
		id := r.tweet.IDStr
		if id == "" {
			id = strconv.FormatInt(r.tweet.ID, 10)
		}
		c.log.Debug("Created status", slog.String("id", id), slog.Int64("in_reply_to", params.InReplyToStatusID))
		return model.PostHandle(id), nil
	}
}

func httpTimeout(callTimeout time.Duration) time.Duration {
	margin := callTimeout / 10
	if margin > time.Second {
		margin = time.Second
	}
	return callTimeout - margin
}

type rewriteTransport struct {
	from string
	to   string
	next http.RoundTripper
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if raw := req.URL.String(); strings.HasPrefix(raw, t.from) {
		u, err := url.Parse(t.to + strings.TrimPrefix(raw, t.from))
		if err != nil {
			return nil, err
		}
		req = req.Clone(req.Context())
		req.URL = u
		req.Host = u.Host
	}
	return t.next.RoundTrip(req)
}
