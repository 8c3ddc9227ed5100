package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/kbukum/streamgate/dispatch"
)

// jsonHeaders are applied to every request issued through this layer.
var jsonHeaders = map[string]string{
	"Content-Type": "application/json",
	"Accept":       "application/json",
}

// Client pre-binds a dispatcher identity and issues JSON requests
// through it.
type Client struct {
	d *dispatch.Dispatcher
}

// New creates a REST client bound to the given dispatcher.
func New(d *dispatch.Dispatcher) *Client {
	return &Client{d: d}
}

// Dispatcher returns the underlying dispatcher.
func (c *Client) Dispatcher() *dispatch.Dispatcher {
	return c.d
}

// Response wraps a typed REST response.
type Response[T any] struct {
	// StatusCode is the HTTP status code.
	StatusCode int
	// Headers are the response headers.
	Headers map[string]string
	// Data is the decoded response body.
	Data T
}

// Get performs a GET request and decodes the JSON response into type T.
func Get[T any](ctx context.Context, c *Client, path string, opts ...dispatch.CallOption) (*Response[T], error) {
	return do[T](ctx, c, http.MethodGet, path, nil, opts...)
}

// Post performs a POST request with a JSON body and decodes the response into type T.
func Post[T any](ctx context.Context, c *Client, path string, body any, opts ...dispatch.CallOption) (*Response[T], error) {
	return do[T](ctx, c, http.MethodPost, path, body, opts...)
}

// Put performs a PUT request with a JSON body and decodes the response into type T.
func Put[T any](ctx context.Context, c *Client, path string, body any, opts ...dispatch.CallOption) (*Response[T], error) {
	return do[T](ctx, c, http.MethodPut, path, body, opts...)
}

// Delete performs a DELETE request and decodes the response into type T.
func Delete[T any](ctx context.Context, c *Client, path string, opts ...dispatch.CallOption) (*Response[T], error) {
	return do[T](ctx, c, http.MethodDelete, path, nil, opts...)
}

// do executes a request through the dispatcher and decodes the JSON response.
func do[T any](ctx context.Context, c *Client, method, path string, body any, opts ...dispatch.CallOption) (*Response[T], error) {
	resp, err := c.d.Call(ctx, method, path, body, jsonHeaders, opts...)
	if err != nil {
		// Error responses may still carry a decodable body
		if resp != nil {
			var data T
			if jsonErr := json.Unmarshal(resp.Body, &data); jsonErr == nil {
				return &Response[T]{
					StatusCode: resp.StatusCode,
					Headers:    resp.Headers,
					Data:       data,
				}, err
			}
		}
		return nil, err
	}

	var data T
	if len(resp.Body) > 0 {
		if err := json.Unmarshal(resp.Body, &data); err != nil {
			return nil, fmt.Errorf("rest: decode response: %w", err)
		}
	}

	return &Response[T]{
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
		Data:       data,
	}, nil
}
