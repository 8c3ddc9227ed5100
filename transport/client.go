package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/kbukum/streamgate/transport/sse"
)

// Client executes HTTP requests against one API, with auth, TLS, and
// optional retry for buffered calls. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	config     Config
}

// New creates a new transport client with the given configuration.
func New(cfg Config) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tr := http.DefaultTransport.(*http.Transport).Clone()

	if cfg.TLS != nil {
		tlsCfg, err := cfg.TLS.Build()
		if err != nil {
			return nil, err
		}
		if tlsCfg != nil {
			tr.TLSClientConfig = tlsCfg
		}
	}

	return &Client{
		httpClient: &http.Client{
			Transport: tr,
			Timeout:   cfg.Timeout,
		},
		config: cfg,
	}, nil
}

// Do executes an HTTP request and returns the complete response.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	if c.config.Retry != nil {
		return retry(ctx, *c.config.Retry, func() (*Response, error) {
			return c.executeRequest(ctx, req)
		})
	}
	return c.executeRequest(ctx, req)
}

// DoStream executes an HTTP request and returns a streaming response.
// The caller must close the returned StreamResponse when done.
// Retry is never applied to streaming requests.
func (c *Client) DoStream(ctx context.Context, req Request) (*StreamResponse, error) {
	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	// Transport-only client: no global timeout, streams may idle
	// indefinitely. The context is the only cancellation path.
	streamClient := &http.Client{
		Transport: c.httpClient.Transport,
	}

	resp, err := streamClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, NewTimeoutError(err)
		}
		return nil, NewConnectionError(err)
	}

	// Check for error status before starting to stream
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		return nil, ClassifyStatusCode(resp.StatusCode, body)
	}

	headers := flattenHeaders(resp.Header)

	ct := resp.Header.Get("Content-Type")
	if strings.Contains(ct, "text/event-stream") {
		return &StreamResponse{
			StatusCode: resp.StatusCode,
			Headers:    headers,
			SSE:        sse.NewReader(resp.Body),
			rawResp:    resp,
		}, nil
	}

	// Non-SSE streaming (ndjson, raw chunked bytes, etc)
	return &StreamResponse{
		StatusCode: resp.StatusCode,
		Headers:    headers,
		Body:       resp.Body,
		rawResp:    resp,
	}, nil
}

// Unwrap returns the underlying *http.Client for advanced use cases.
func (c *Client) Unwrap() *http.Client {
	return c.httpClient
}

// Close releases idle connections held by the client.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// executeRequest builds and sends a buffered HTTP request.
func (c *Client) executeRequest(ctx context.Context, req Request) (*Response, error) {
	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, NewTimeoutError(err)
		}
		return nil, NewConnectionError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewConnectionError(fmt.Errorf("read response body: %w", err))
	}

	result := &Response{
		StatusCode: resp.StatusCode,
		Headers:    flattenHeaders(resp.Header),
		Body:       body,
	}

	if classErr := ClassifyStatusCode(resp.StatusCode, body); classErr != nil {
		return result, classErr
	}

	return result, nil
}

// buildRequest constructs an *http.Request from the client config and request.
func (c *Client) buildRequest(ctx context.Context, req Request) (*http.Request, error) {
	url := req.Path
	if c.config.BaseURL != "" && !strings.HasPrefix(req.Path, "http://") && !strings.HasPrefix(req.Path, "https://") {
		url = strings.TrimRight(c.config.BaseURL, "/") + "/" + strings.TrimLeft(req.Path, "/")
	}

	body, contentType, err := encodeBody(req.Body)
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("encode body: %v", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, url, body)
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("create request: %v", err))
	}

	if len(req.Query) > 0 {
		q := httpReq.URL.Query()
		for k, v := range req.Query {
			q.Set(k, v)
		}
		httpReq.URL.RawQuery = q.Encode()
	}

	// Default headers first, request headers override
	for k, v := range c.config.Headers {
		httpReq.Header.Set(k, v)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	if body != nil && httpReq.Header.Get("Content-Type") == "" && contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	// Apply auth: request-level overrides client-level
	auth := c.config.Auth
	if req.Auth != nil {
		auth = req.Auth
	}
	auth.apply(httpReq)

	return httpReq, nil
}

// encodeBody converts a body value into an io.Reader and content type.
func encodeBody(body any) (io.Reader, string, error) {
	if body == nil {
		return nil, "", nil
	}
	switch v := body.(type) {
	case io.Reader:
		return v, "", nil
	case []byte:
		return bytes.NewReader(v), "", nil
	case string:
		if v == "" {
			return nil, "", nil
		}
		return strings.NewReader(v), "text/plain", nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(data), "application/json", nil
	}
}

// flattenHeaders converts multi-value headers to single-value.
func flattenHeaders(h http.Header) map[string]string {
	result := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) > 0 {
			result[k] = v[0]
		}
	}
	return result
}
