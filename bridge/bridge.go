package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrEndOfStream is returned by Next once the stream has ended, either
// because the upstream finished or the consumer stopped it. It is
// stable: every subsequent Next returns it again.
var ErrEndOfStream = errors.New("bridge: end of stream")

// StreamError wraps an upstream transport failure. Next returns it
// exactly once; afterwards the stream behaves as ended.
type StreamError struct {
	Err error
}

// Error implements the error interface.
func (e *StreamError) Error() string {
	return fmt.Sprintf("bridge: stream failed: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *StreamError) Unwrap() error {
	return e.Err
}

// Chunk is one unit of data delivered by a streaming response.
type Chunk struct {
	// Data is the chunk payload.
	Data []byte
	// Event is the SSE event type, empty for raw streams.
	Event string
	// ID is the SSE event ID, if any.
	ID string
}

// State describes the stream lifecycle.
type State int

const (
	// StateOpen accepts chunks and pulls.
	StateOpen State = iota
	// StateClosed is terminal: the stream finished, failed and reported
	// its error, or was stopped by the consumer.
	StateClosed
	// StateErrored holds an upstream error not yet delivered to the
	// consumer. It becomes StateClosed once Next has returned it.
	StateErrored
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// termination reasons
const (
	reasonNone = iota
	reasonStopped
	reasonFinished
	reasonFailed
)

// Stream is a single-producer single-consumer push-to-pull bridge with
// a one-chunk look-ahead buffer.
type Stream struct {
	chunks chan Chunk    // capacity 1: the single look-ahead slot
	done   chan struct{} // closed on any terminal transition
	cancel func()        // releases the upstream connection, may be nil

	mu      sync.Mutex
	reason  int
	err     error
	errSent bool

	stopOnce sync.Once
}

// Option configures a Stream.
type Option func(*Stream)

// WithCancel registers a function invoked once when the consumer stops
// the stream, used to cancel the upstream request.
func WithCancel(cancel func()) Option {
	return func(s *Stream) {
		s.cancel = cancel
	}
}

// New creates an open, empty stream.
func New(opts ...Option) *Stream {
	s := &Stream{
		chunks: make(chan Chunk, 1),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Deliver hands one chunk to the stream from the producer side. It
// blocks while a previously delivered chunk is still unconsumed, which
// is what holds the producer to one chunk ahead of the consumer.
// Returns false once the stream is terminal; the producer should stop.
func (s *Stream) Deliver(chunk Chunk) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.chunks <- chunk:
		return true
	case <-s.done:
		return false
	}
}

// Finish marks normal end-of-stream. A chunk already delivered but not
// yet pulled is still handed to the consumer before ErrEndOfStream.
func (s *Stream) Finish() {
	s.terminate(reasonFinished, nil)
}

// Fail records an upstream transport failure. The error surfaces on the
// consumer's next pull, after any chunk delivered before the failure.
func (s *Stream) Fail(err error) {
	s.terminate(reasonFailed, err)
}

// Stop closes the stream from the consumer side and cancels the
// upstream connection. Idempotent; a chunk in flight is discarded and
// any pending Next resolves to ErrEndOfStream.
func (s *Stream) Stop() {
	s.stopOnce.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
	})
	s.terminate(reasonStopped, nil)
}

// Next pulls the next chunk. It suspends until a chunk, end-of-stream,
// or error is available. Each chunk is delivered at most once; after the
// stream ends Next keeps returning ErrEndOfStream without blocking.
func (s *Stream) Next(ctx context.Context) (Chunk, error) {
	// Hand out a buffered chunk first, unless the consumer already
	// stopped the stream (then in-flight data is discarded).
	if !s.stopped() {
		select {
		case c := <-s.chunks:
			return c, nil
		default:
		}
	}

	select {
	case c := <-s.chunks:
		if s.stopped() {
			return Chunk{}, ErrEndOfStream
		}
		return c, nil
	case <-s.done:
		return s.terminal()
	case <-ctx.Done():
		return Chunk{}, ctx.Err()
	}
}

// State reports the current lifecycle state.
func (s *Stream) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.reason == reasonNone:
		return StateOpen
	case s.reason == reasonFailed && !s.errSent:
		return StateErrored
	default:
		return StateClosed
	}
}

// terminate performs the one allowed transition out of open.
func (s *Stream) terminate(reason int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reason != reasonNone {
		return
	}
	s.reason = reason
	s.err = err
	close(s.done)
}

func (s *Stream) stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reason == reasonStopped
}

// terminal resolves a pull that found the stream terminal: drain the
// look-ahead slot (unless stopped), report a failure once, then settle
// on ErrEndOfStream.
func (s *Stream) terminal() (Chunk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.reason != reasonStopped {
		select {
		case c := <-s.chunks:
			return c, nil
		default:
		}
	}

	if s.reason == reasonFailed && !s.errSent {
		s.errSent = true
		return Chunk{}, &StreamError{Err: s.err}
	}
	return Chunk{}, ErrEndOfStream
}
