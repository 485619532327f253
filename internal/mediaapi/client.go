// Package mediaapi is a typed client for the media gateway REST API.
package mediaapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"mediadownloader/web/internal/domain"
	"mediadownloader/web/internal/metrics"
)

const (
	maxResponseBytes = 4 << 20
	maxErrorBytes    = 4 << 10
)

type Config struct {
	BaseURL   string
	UserAgent string
	Client    *http.Client
	Retry     RetryConfig
	Logger    *slog.Logger
}

type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
	retry     RetryConfig
	logger    *slog.Logger
}

func NewClient(cfg Config) *Client {
	httpClient := cfg.Client
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	retry := cfg.Retry
	if retry.MaxAttempts <= 0 {
		retry = DefaultRetryConfig()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:   strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		userAgent: strings.TrimSpace(cfg.UserAgent),
		http:      httpClient,
		retry:     retry,
		logger:    logger,
	}
}

// BaseURL returns the base every request path is resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Search(ctx context.Context, request domain.SearchRequest) (domain.SearchResponse, error) {
	params := url.Values{"keyword": {request.Keyword}}
	if channel := strings.TrimSpace(request.Channel); channel != "" {
		params.Set("channel", channel)
	}
	page := request.Page
	if page <= 0 {
		page = 1
	}
	params.Set("page", strconv.Itoa(page))

	var response domain.SearchResponse
	err := c.get(ctx, "search", "/media/search?"+params.Encode(), &response)
	return response, err
}

func (c *Client) GetMetadata(ctx context.Context, channel, id string) (domain.MediaMetadata, error) {
	var metadata domain.MediaMetadata
	err := c.get(ctx, "metadata", mediaPath(channel, id), &metadata)
	return metadata, err
}

func (c *Client) GetPlaylist(ctx context.Context, channel, id string) (domain.MediaPlaylist, error) {
	var playlist domain.MediaPlaylist
	err := c.get(ctx, "playlist", mediaPath(channel, id)+"/playlist", &playlist)
	return playlist, err
}

func (c *Client) GetChannels(ctx context.Context) (domain.ChannelList, error) {
	var channels domain.ChannelList
	err := c.get(ctx, "channels", "/channels", &channels)
	return channels, err
}

// BatchDownload submits one batch request. It is not retried: a duplicate
// submission would start the same downloads twice.
func (c *Client) BatchDownload(ctx context.Context, request domain.BatchDownloadRequest) (string, error) {
	payload, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("encode batch download: %w", err)
	}
	body, err := c.do(ctx, "batch_download", http.MethodPost, "/media/batch_download", payload)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(body)), nil
}

func mediaPath(channel, id string) string {
	return "/channels/" + url.PathEscape(channel) + "/media/" + url.PathEscape(id)
}

func (c *Client) get(ctx context.Context, operation, path string, dest any) error {
	var body []byte
	err := retryWithBackoff(ctx, c.retry, func() error {
		var err error
		body, err = c.do(ctx, operation, http.MethodGet, path, nil)
		return err
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("%s: %w: decode response: %w", operation, ErrRequestFailed, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, operation, method, path string, payload []byte) ([]byte, error) {
	started := time.Now()
	body, err := c.roundTrip(ctx, operation, method, path, payload)

	status := "ok"
	if err != nil {
		status = "error"
		c.logger.Debug("media api request failed",
			slog.String("operation", operation),
			slog.String("method", method),
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
	}
	metrics.APIRequestsTotal.WithLabelValues(operation, status).Inc()
	metrics.APIRequestDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
	return body, err
}

func (c *Client) roundTrip(ctx context.Context, operation, method, path string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", operation, ErrRequestFailed, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", operation, ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBytes))
		return nil, &StatusError{
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(raw),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%s: %w: read response: %w", operation, ErrRequestFailed, err)
	}
	return body, nil
}

// errorMessage extracts the gateway's {"status", "message"} body, falling
// back to the raw text.
func errorMessage(raw []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return strings.TrimSpace(string(raw))
}
