// Package transport provides the HTTP transport layer used by the
// streamgate dispatcher: request building, bearer authentication, TLS,
// token acquisition, and buffered or streaming execution.
//
// The transport is deliberately thin. It owns connection pooling, TLS,
// and the token-endpoint exchange; everything stateful (holding the
// token, serializing calls, bridging streams) lives in the dispatch
// and bridge packages.
//
// # Basic Usage
//
//	client, err := transport.New(transport.Config{
//	    BaseURL:  "https://api.example.com",
//	    TokenURL: "https://auth.example.com/oauth/token",
//	})
//
//	resp, err := client.Do(ctx, transport.Request{
//	    Method: http.MethodGet,
//	    Path:   "/things/123",
//	    Auth:   transport.BearerAuth(token.AccessToken),
//	})
//
// Streaming requests use DoStream, which disables the client timeout so
// long-lived streams can sit idle indefinitely; cancellation is driven
// entirely by the request context.
package transport
