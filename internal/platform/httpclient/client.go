package httpclient

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"beacon/internal/shared/delivery"
)

const (
	defaultTimeout     = 10 * time.Second
	responseExcerptCap = 500
)

// Client performs single outbound POST attempts. Retry policy belongs to
// the callers; the client never retries on its own.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
}

func New(logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient: &http.Client{},
		logger:     logger,
	}
}

func (c *Client) Deliver(ctx context.Context, req delivery.Request) delivery.Outcome {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		return delivery.Outcome{Err: err.Error()}
	}
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Warn("outbound delivery attempt failed",
			"event", "httpclient_deliver_failed",
			"module", "internal/platform/httpclient",
			"layer", "platform",
			"url", req.URL,
			"error", err.Error(),
		)
		return delivery.Outcome{Err: err.Error()}
	}
	defer resp.Body.Close()

	// Cap the read so a slow or hostile endpoint cannot hold the
	// connection open streaming an unbounded body.
	excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, responseExcerptCap))

	return delivery.Outcome{
		Success:         resp.StatusCode >= 200 && resp.StatusCode < 400,
		StatusCode:      resp.StatusCode,
		ResponseExcerpt: string(excerpt),
	}
}
