package dispatch

import (
	"context"
	"errors"
	"io"

	"github.com/kbukum/streamgate/bridge"
	"github.com/kbukum/streamgate/logger"
	"github.com/kbukum/streamgate/transport"
	"github.com/kbukum/streamgate/transport/sse"
)

// feedBufSize is the read size for raw (non-SSE) streams. Each read
// becomes one chunk, so this also bounds chunk size.
const feedBufSize = 32 * 1024

// feed pumps a streaming response into the bridge until the stream
// ends, fails, or the consumer stops pulling. It runs in its own
// goroutine, out-of-band of the dispatcher's call loop.
func (d *Dispatcher) feed(st *bridge.Stream, resp *transport.StreamResponse, streamID string) {
	defer func() { _ = resp.Close() }()

	if resp.SSE != nil {
		d.feedSSE(st, resp.SSE, streamID)
		return
	}
	d.feedRaw(st, resp.Body, streamID)
}

// feedSSE delivers one chunk per server-sent event.
func (d *Dispatcher) feedSSE(st *bridge.Stream, reader sse.Reader, streamID string) {
	for {
		event, err := reader.Next()
		if err != nil {
			d.endStream(st, err, streamID)
			return
		}
		chunk := bridge.Chunk{
			Data:  []byte(event.Data),
			Event: event.Event,
			ID:    event.ID,
		}
		if !st.Deliver(chunk) {
			return
		}
	}
}

// feedRaw delivers one chunk per read. The next read only happens after
// the previous chunk entered the bridge's look-ahead slot, so the
// producer stays one chunk ahead of the consumer at most.
func (d *Dispatcher) feedRaw(st *bridge.Stream, body io.ReadCloser, streamID string) {
	buf := make([]byte, feedBufSize)
	for {
		n, err := body.Read(buf)
		if n > 0 {
			chunk := bridge.Chunk{Data: append([]byte(nil), buf[:n]...)}
			if !st.Deliver(chunk) {
				return
			}
		}
		if err != nil {
			d.endStream(st, err, streamID)
			return
		}
	}
}

// endStream resolves the bridge's terminal state from the upstream
// error: EOF is a normal finish, context cancellation means the
// consumer stopped, anything else is a stream failure.
func (d *Dispatcher) endStream(st *bridge.Stream, err error, streamID string) {
	switch {
	case errors.Is(err, io.EOF):
		st.Finish()
		d.log.Debug("stream finished", logger.Fields("stream_id", streamID))
	case errors.Is(err, context.Canceled):
		st.Stop()
	default:
		st.Fail(err)
		d.log.Warn("stream failed", logger.Fields(
			"stream_id", streamID,
			"error", err.Error(),
		))
	}
}
