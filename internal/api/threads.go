// ABOUTME: Thread endpoints: create and list by channel

package api

import (
	"context"
	"net/http"
	"net/url"
)

// CreateThread opens a thread in a channel.
func (c *Client) CreateThread(ctx context.Context, in CreateThreadInput) (*Thread, error) {
	if in.Meta == nil {
		in.Meta = map[string]any{}
	}
	var thread Thread
	err := c.do(ctx, request{method: http.MethodPost, path: "/api/v1/hilos/", body: in, auth: true}, &thread)
	if err != nil {
		return nil, err
	}
	return &thread, nil
}

// ListThreads returns the threads of a channel.
func (c *Client) ListThreads(ctx context.Context, channelID ID) ([]Thread, error) {
	var threads []Thread
	q := url.Values{"channel_id": {channelID.String()}}
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/v1/hilos/", query: q, auth: true}, &threads); err != nil {
		return nil, err
	}
	return threads, nil
}
