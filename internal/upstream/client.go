package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"voiceagent-platform/internal/calls"
	"voiceagent-platform/internal/config"
	"voiceagent-platform/internal/metrics"
	"voiceagent-platform/pkg/logger"
)

// Client talks to the voice provider's REST API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	metrics *metrics.Metrics

	// baseBackoff is the initial 429 retry delay.
	baseBackoff time.Duration
}

func NewClient(cfg config.UpstreamConfig, m *metrics.Metrics) *Client {
	return &Client{
		baseURL:     cfg.BaseURL,
		apiKey:      cfg.APIKey,
		http:        &http.Client{Timeout: cfg.RequestTimeout},
		metrics:     m,
		baseBackoff: 2 * time.Second,
	}
}

// ListCalls fetches the most recent calls, newest first.
func (c *Client) ListCalls(ctx context.Context, limit int) ([]calls.RawCall, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	body, err := c.get(ctx, "/call?"+q.Encode())
	if err != nil {
		return nil, err
	}
	var out []calls.RawCall
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("upstream: decode call list: %w", err)
	}
	return out, nil
}

// GetCall fetches one call by its upstream id.
func (c *Client) GetCall(ctx context.Context, id string) (calls.RawCall, error) {
	body, err := c.get(ctx, "/call/"+url.PathEscape(id))
	if err != nil {
		return calls.RawCall{}, err
	}
	var out calls.RawCall
	if err := json.Unmarshal(body, &out); err != nil {
		return calls.RawCall{}, fmt.Errorf("upstream: decode call: %w", err)
	}
	return out, nil
}

// get performs an authenticated GET, retrying on 429 with exponential
// backoff. The context bounds the whole retry loop.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	backoff := c.baseBackoff
	for attempt := 0; ; attempt++ {
		start := time.Now()
		body, status, err := c.do(ctx, path)
		if c.metrics != nil {
			c.metrics.UpstreamRequestsTotal.WithLabelValues(http.MethodGet, strconv.Itoa(status)).Inc()
			c.metrics.UpstreamRequestDuration.Observe(time.Since(start).Seconds())
		}
		if err != nil {
			return nil, err
		}
		switch {
		case status >= 200 && status < 300:
			return body, nil
		case status == http.StatusTooManyRequests && attempt < 3:
			logger.From(ctx).Warn("upstream rate limited, backing off",
				"path", path, "backoff", backoff.String())
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			backoff *= 2
		default:
			return nil, fmt.Errorf("upstream: GET %s returned %d", path, status)
		}
	}
}

func (c *Client) do(ctx context.Context, path string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("upstream: GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("upstream: read response: %w", err)
	}
	return body, resp.StatusCode, nil
}
