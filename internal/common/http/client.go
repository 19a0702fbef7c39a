// internal/common/http/client.go
package http

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// Client is a thin wrapper over net/http shared by the HTTP-speaking
// backend adapters. Per-call deadlines come from the request context;
// the underlying transport is safe for concurrent use.
type Client struct {
	httpClient *http.Client
}

func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{},
	}
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req)
}

func (c *Client) DoWithContext(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)
	return c.httpClient.Do(req)
}

// PostForm issues a form-encoded POST with the given context.
func (c *Client) PostForm(ctx context.Context, endpoint string, values url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(values.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.httpClient.Do(req)
}

// PostRaw issues a POST with a plain text body (the Manticore /cli
// endpoint takes the bare statement).
func (c *Client) PostRaw(ctx context.Context, endpoint, body string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	return c.httpClient.Do(req)
}
