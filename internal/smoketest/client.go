package smoketest

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// client wraps a resty client pointed at the service under test.
type client struct {
	http *resty.Client
}

func newClient(baseURL string, timeout time.Duration) *client {
	return &client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetHeader("Content-Type", "application/json"),
	}
}

// postJSON sends body to path and decodes the response into out.
func (c *client) postJSON(ctx context.Context, path string, body, out any) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(out).
		Post(path)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	if resp.IsError() {
		return fmt.Errorf("post %s: status %d", path, resp.StatusCode())
	}
	return nil
}

// getJSON fetches path and decodes the response into out.
func (c *client) getJSON(ctx context.Context, path string, out any) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(out).
		Get(path)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	if resp.IsError() {
		return fmt.Errorf("get %s: status %d", path, resp.StatusCode())
	}
	return nil
}
