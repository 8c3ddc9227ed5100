package dispatch

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/kbukum/streamgate/bridge"
	"github.com/kbukum/streamgate/logger"
	"github.com/kbukum/streamgate/transport"
)

// Dispatcher is the serialized, token-holding gateway for outbound
// calls from one client identity. All calls against one instance are
// totally ordered through a single goroutine; the token acquired at
// startup is immutable for the dispatcher's lifetime.
type Dispatcher struct {
	id    string
	tp    *transport.Client
	token *transport.Token
	log   *logger.Logger

	calls  chan func()
	closed chan struct{}

	closeOnce sync.Once
}

// CallOption adjusts a single outbound request.
type CallOption func(*transport.Request)

// WithQuery adds query parameters to the request.
func WithQuery(params map[string]string) CallOption {
	return func(r *transport.Request) {
		r.Query = params
	}
}

// WithAuth overrides the dispatcher's token for one request.
func WithAuth(auth *transport.AuthConfig) CallOption {
	return func(r *transport.Request) {
		r.Auth = auth
	}
}

// Start brings up a dispatcher. It blocks until the token handshake
// completes; on handshake failure it returns an *AuthError and no
// dispatcher handle. With user credentials configured the password
// grant is used, otherwise the app-only client-credentials grant.
func Start(ctx context.Context, cfg Config) (*Dispatcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tp, err := transport.New(cfg.Transport)
	if err != nil {
		return nil, err
	}

	log := cfg.Logger
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	id := uuid.NewString()
	log = log.WithComponent("dispatch").WithFields(map[string]interface{}{
		"dispatcher_id": id,
	})

	token, err := tp.AcquireToken(ctx, cfg.Credentials)
	if err != nil {
		tp.Close()
		authErr := newAuthError(err)
		log.Error("token handshake failed", logger.Fields(
			"reason", authErr.Reason,
		))
		return nil, authErr
	}

	d := &Dispatcher{
		id:     id,
		tp:     tp,
		token:  token,
		log:    log,
		calls:  make(chan func()),
		closed: make(chan struct{}),
	}
	go d.loop()

	grant := "client_credentials"
	if cfg.Credentials.IsUserGrant() {
		grant = "password"
	}
	log.Info("dispatcher ready", logger.Fields(
		"grant", grant,
		"token", token.Fingerprint(),
	))
	d.warnOnExpiry()

	return d, nil
}

// Call submits one buffered request through the serialization point.
// The held token is attached as bearer auth; options may override it.
// Transport errors come back unchanged — the dispatcher never retries.
func (d *Dispatcher) Call(ctx context.Context, method, path string, body any, headers map[string]string, opts ...CallOption) (*transport.Response, error) {
	req := transport.Request{
		Method:  method,
		Path:    path,
		Body:    body,
		Headers: headers,
		Auth:    transport.BearerAuth(d.token.AccessToken),
	}
	for _, opt := range opts {
		opt(&req)
	}

	var resp *transport.Response
	var err error
	if serr := d.submit(ctx, func() {
		resp, err = d.tp.Do(ctx, req)
	}); serr != nil {
		return nil, serr
	}
	return resp, err
}

// Get issues an authenticated GET request.
func (d *Dispatcher) Get(ctx context.Context, path string, headers map[string]string, opts ...CallOption) (*transport.Response, error) {
	return d.Call(ctx, http.MethodGet, path, nil, headers, opts...)
}

// Post issues an authenticated POST request.
func (d *Dispatcher) Post(ctx context.Context, path string, body any, headers map[string]string, opts ...CallOption) (*transport.Response, error) {
	return d.Call(ctx, http.MethodPost, path, body, headers, opts...)
}

// MustGet is like Get but panics on error.
func (d *Dispatcher) MustGet(ctx context.Context, path string, headers map[string]string, opts ...CallOption) *transport.Response {
	resp, err := d.Get(ctx, path, headers, opts...)
	if err != nil {
		panic(err)
	}
	return resp
}

// MustPost is like Post but panics on error.
func (d *Dispatcher) MustPost(ctx context.Context, path string, body any, headers map[string]string, opts ...CallOption) *transport.Response {
	resp, err := d.Post(ctx, path, body, headers, opts...)
	if err != nil {
		panic(err)
	}
	return resp
}

// Stage opens a streaming request through the same serialization point
// as Call. On success the bridge handle is returned immediately while a
// background goroutine keeps feeding chunks into it; on synchronous
// failure the bridge is discarded and the transport error returned.
// The stream has no receive timeout; Stop (or ctx cancellation) is the
// only way to end it.
func (d *Dispatcher) Stage(ctx context.Context, method, path string, body any, headers map[string]string, opts ...CallOption) (*bridge.Stream, error) {
	req := transport.Request{
		Method:  method,
		Path:    path,
		Body:    body,
		Headers: headers,
		Auth:    transport.BearerAuth(d.token.AccessToken),
	}
	for _, opt := range opts {
		opt(&req)
	}

	streamCtx, cancel := context.WithCancel(ctx)
	st := bridge.New(bridge.WithCancel(cancel))
	streamID := uuid.NewString()

	var resp *transport.StreamResponse
	var err error
	if serr := d.submit(ctx, func() {
		resp, err = d.tp.DoStream(streamCtx, req)
	}); serr != nil {
		cancel()
		return nil, serr
	}
	if err != nil {
		st.Stop()
		return nil, err
	}

	d.log.Debug("stream started", logger.Fields(
		"stream_id", streamID,
		"path", path,
	))
	go d.feed(st, resp, streamID)

	return st, nil
}

// MustStage is like Stage but panics on error.
func (d *Dispatcher) MustStage(ctx context.Context, method, path string, body any, headers map[string]string, opts ...CallOption) *bridge.Stream {
	st, err := d.Stage(ctx, method, path, body, headers, opts...)
	if err != nil {
		panic(err)
	}
	return st
}

// Close terminates the dispatcher and releases transport resources.
// Idempotent. Streams already handed out keep running until stopped.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.closed)
		d.tp.Close()
		d.log.Debug("dispatcher closed")
	})
}

// loop is the serialization point: every call executes here, one at a
// time, so per-instance state is only ever touched from this goroutine.
func (d *Dispatcher) loop() {
	for {
		select {
		case fn := <-d.calls:
			fn()
		case <-d.closed:
			return
		}
	}
}

// submit hands fn to the loop and waits for it to finish. The calls
// channel is unbuffered, so a successful send means the loop has the
// function and will run it to completion.
func (d *Dispatcher) submit(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	wrapped := func() {
		defer close(done)
		fn()
	}

	select {
	case d.calls <- wrapped:
	case <-d.closed:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	<-done
	return nil
}

// warnOnExpiry flags a known token expiry at startup. The dispatcher
// never refreshes: once the token expires, calls fail with auth errors
// until the process restarts.
func (d *Dispatcher) warnOnExpiry() {
	expiry := d.token.Expiry
	if expiry.IsZero() {
		// The token endpoint gave no expiry; a JWT-shaped token may
		// still carry one in its exp claim.
		claims := jwt.MapClaims{}
		if _, _, err := jwt.NewParser().ParseUnverified(d.token.AccessToken, claims); err == nil {
			if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
				expiry = exp.Time
			}
		}
	}
	if expiry.IsZero() {
		return
	}
	d.log.Warn("token has a known expiry and will not be refreshed", logger.Fields(
		"expires_at", expiry.Format(time.RFC3339),
		"expires_in", time.Until(expiry).Round(time.Second).String(),
	))
}
