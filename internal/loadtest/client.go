package loadtest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okian/leaderboard/internal/domain/types"
)

// client wraps http.Client with JSON helpers.
type client struct {
	http    *http.Client
	baseURL string
}

func newClient(baseURL string, timeout time.Duration) *client {
	return &client{http: &http.Client{Timeout: timeout}, baseURL: baseURL}
}

func (c *client) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var rd io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshal request: %w", err)
		}
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if out == nil || resp.StatusCode >= http.StatusBadRequest {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode %s: %w", path, err)
	}
	return resp.StatusCode, nil
}

func (c *client) health(ctx context.Context) error {
	status, err := c.do(ctx, http.MethodGet, "/healthz", nil, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("%w: healthz returned %d", ErrUnhealthy, status)
	}
	return nil
}

func (c *client) leaderboard(ctx context.Context) ([]types.Entry, error) {
	var entries []types.Entry
	status, err := c.do(ctx, http.MethodGet, "/api/leaderboard", nil, &entries)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("leaderboard returned %d", status)
	}
	return entries, nil
}

func (c *client) submit(ctx context.Context, a Activity) (types.ActivityResult, error) {
	var res types.ActivityResult
	status, err := c.do(ctx, http.MethodPost, "/api/leaderboard/activity", a, &res)
	if err != nil {
		return res, err
	}
	if status != http.StatusCreated {
		return res, fmt.Errorf("activity returned %d", status)
	}
	return res, nil
}

func (c *client) recalculate(ctx context.Context) (types.RecalculateResult, error) {
	var res types.RecalculateResult
	status, err := c.do(ctx, http.MethodPost, "/api/leaderboard/recalculate", nil, &res)
	if err != nil {
		return res, err
	}
	if status != http.StatusOK {
		return res, fmt.Errorf("recalculate returned %d", status)
	}
	return res, nil
}
