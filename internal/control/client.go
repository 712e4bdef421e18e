package control

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client talks to a running scoring server.
type Client struct {
	Addr string
	HTTP *http.Client
}

// NewClient returns a client for the server at addr (host:port).
func NewClient(addr string) *Client {
	return &Client{Addr: addr, HTTP: &http.Client{Timeout: 5 * time.Second}}
}

func (c *Client) url(path string) string {
	return "http://" + c.Addr + path
}

// Score posts a pair and decodes the report into out.
func (c *Client) Score(ctx context.Context, req ScoreRequest, out any) error {
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("/v1/score"), bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	return c.do(httpReq, out)
}

// Status fetches server status.
func (c *Client) Status(ctx context.Context) (*Status, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url("/v1/status"), nil)
	if err != nil {
		return nil, err
	}
	var st Status
	if err := c.do(req, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// Health pings the server.
func (c *Client) Health(ctx context.Context) (*SimpleResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url("/healthz"), nil)
	if err != nil {
		return nil, err
	}
	var resp SimpleResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("cannot connect to server: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		var msg SimpleResponse
		if err := json.NewDecoder(resp.Body).Decode(&msg); err == nil && msg.Message != "" {
			return fmt.Errorf("server: %s (%s)", msg.Message, resp.Status)
		}
		return fmt.Errorf("server: %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
