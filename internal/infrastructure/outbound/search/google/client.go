package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"tweetbot-service/internal/custom_errors"
	ports "tweetbot-service/internal/domain/ports/output"
	"tweetbot-service/internal/infrastructure/config"
)

// maxRank is the largest page size the Custom Search API accepts.
const maxRank = 10

type searchResponse struct {
	Items []struct {
		Link string `json:"link"`
	} `json:"items"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Client queries the Custom Search JSON API for images.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	cx      string
	imgSize string
	log     ports.Logger
}

func NewClient(cfg config.Google, timeout time.Duration, log ports.Logger) *Client {
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		cx:      cfg.CX,
		imgSize: cfg.ImageSize,
		log:     log,
	}
}

// Search requests rank results and returns the link of the last one.
func (c *Client) Search(ctx context.Context, term string, rank int) (string, error) {
	if rank < 1 || rank > maxRank {
		return "", fmt.Errorf("%w: rank %d out of range", custom_errors.ErrNoMediaFound, rank)
	}

	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("cx", c.cx)
	params.Set("q", term)
	params.Set("num", strconv.Itoa(rank))
	params.Set("searchType", "image")
	if c.imgSize != "" {
		params.Set("imgSize", c.imgSize)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", custom_errors.ErrMediaProviderError, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", custom_errors.ErrMediaProviderError, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", custom_errors.ErrMediaProviderError, err)
	}

	var data searchResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return "", fmt.Errorf("%w: decode response (status %d): %v", custom_errors.ErrMediaProviderError, resp.StatusCode, err)
	}
	if data.Error != nil {
		return "", fmt.Errorf("%w: %s", custom_errors.ErrMediaProviderError, data.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: unexpected status %d", custom_errors.ErrMediaProviderError, resp.StatusCode)
	}
	if len(data.Items) < rank || data.Items[rank-1].Link == "" {
		c.log.Debug("Image search returned too few results",
			slog.String("term", term),
			slog.Int("rank", rank),
			slog.Int("items", len(data.Items)))
		return "", fmt.Errorf("%w: no result at rank %d for %q", custom_errors.ErrNoMediaFound, rank, term)
	}

	link := data.Items[rank-1].Link
	c.log.Debug("Image search hit", slog.String("term", term), slog.Int("rank", rank), slog.String("link", link))
	return link, nil
}
