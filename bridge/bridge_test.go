package bridge

import (
	"context"
	"errors"
	"testing"
	"time"
)

func chunk(s string) Chunk {
	return Chunk{Data: []byte(s)}
}

func mustNext(t *testing.T, st *Stream) string {
	t.Helper()
	c, err := st.Next(context.Background())
	if err != nil {
		t.Fatalf("unexpected error from Next: %v", err)
	}
	return string(c.Data)
}

func TestStream_DeliverThenPull(t *testing.T) {
	st := New()

	go func() {
		st.Deliver(chunk("a"))
		st.Deliver(chunk("b"))
		st.Deliver(chunk("c"))
		st.Finish()
	}()

	for _, want := range []string{"a", "b", "c"} {
		if got := mustNext(t, st); got != want {
			t.Errorf("got chunk %q, want %q", got, want)
		}
	}

	_, err := st.Next(context.Background())
	if !errors.Is(err, ErrEndOfStream) {
		t.Errorf("expected ErrEndOfStream after finish, got %v", err)
	}
}

func TestStream_EndOfStreamIsStable(t *testing.T) {
	st := New()
	st.Finish()

	for i := 0; i < 3; i++ {
		_, err := st.Next(context.Background())
		if !errors.Is(err, ErrEndOfStream) {
			t.Fatalf("Next #%d: expected ErrEndOfStream, got %v", i+1, err)
		}
	}
	if st.State() != StateClosed {
		t.Errorf("state = %v, want closed", st.State())
	}
}

func TestStream_BackPressure_OneChunkAhead(t *testing.T) {
	st := New()

	delivered := make(chan string, 2)
	go func() {
		st.Deliver(chunk("a"))
		delivered <- "a"
		// Must block: "a" is still undelivered, the look-ahead slot is full.
		st.Deliver(chunk("b"))
		delivered <- "b"
	}()

	select {
	case <-delivered:
	case <-time.After(time.Second):
		t.Fatal("first Deliver should complete immediately")
	}

	select {
	case <-delivered:
		t.Fatal("second Deliver completed before the consumer pulled the first chunk")
	case <-time.After(50 * time.Millisecond):
	}

	if got := mustNext(t, st); got != "a" {
		t.Fatalf("got chunk %q, want %q", got, "a")
	}

	select {
	case <-delivered:
	case <-time.After(time.Second):
		t.Fatal("second Deliver should unblock after the pull")
	}

	if got := mustNext(t, st); got != "b" {
		t.Errorf("got chunk %q, want %q", got, "b")
	}
}

func TestStream_ErrorDeliveredOnceAfterBufferedChunk(t *testing.T) {
	st := New()
	upstream := errors.New("connection reset")

	st.Deliver(chunk("a"))
	st.Fail(upstream)

	if got := mustNext(t, st); got != "a" {
		t.Fatalf("first Next = %q, want buffered chunk %q", got, "a")
	}

	_, err := st.Next(context.Background())
	var serr *StreamError
	if !errors.As(err, &serr) {
		t.Fatalf("second Next: expected *StreamError, got %v", err)
	}
	if !errors.Is(err, upstream) {
		t.Errorf("StreamError should wrap the upstream error")
	}

	_, err = st.Next(context.Background())
	if !errors.Is(err, ErrEndOfStream) {
		t.Errorf("third Next: expected ErrEndOfStream, got %v", err)
	}
	if st.State() != StateClosed {
		t.Errorf("state after error delivery = %v, want closed", st.State())
	}
}

func TestStream_ErroredStateBeforeDelivery(t *testing.T) {
	st := New()
	st.Fail(errors.New("boom"))

	if st.State() != StateErrored {
		t.Errorf("state = %v, want errored", st.State())
	}
}

func TestStream_StopIsIdempotent(t *testing.T) {
	cancels := 0
	st := New(WithCancel(func() { cancels++ }))

	st.Stop()
	st.Stop()
	st.Stop()

	if cancels != 1 {
		t.Errorf("cancel invoked %d times, want 1", cancels)
	}
	if st.State() != StateClosed {
		t.Errorf("state = %v, want closed", st.State())
	}
}

func TestStream_StopResolvesPendingNext(t *testing.T) {
	st := New()

	result := make(chan error, 1)
	go func() {
		_, err := st.Next(context.Background())
		result <- err
	}()

	// Give the pull time to block before stopping.
	time.Sleep(20 * time.Millisecond)
	st.Stop()

	select {
	case err := <-result:
		if !errors.Is(err, ErrEndOfStream) {
			t.Errorf("pending Next resolved with %v, want ErrEndOfStream", err)
		}
	case <-time.After(time.Second):
		t.Fatal("pending Next did not resolve after Stop")
	}
}

func TestStream_StopDiscardsInFlightChunk(t *testing.T) {
	st := New()

	st.Deliver(chunk("late"))
	st.Stop()

	_, err := st.Next(context.Background())
	if !errors.Is(err, ErrEndOfStream) {
		t.Errorf("expected in-flight chunk to be discarded after Stop, got %v", err)
	}
}

func TestStream_DeliverAfterTerminalReturnsFalse(t *testing.T) {
	st := New()
	st.Finish()

	if st.Deliver(chunk("x")) {
		t.Error("Deliver should return false on a finished stream")
	}

	st2 := New()
	st2.Stop()
	if st2.Deliver(chunk("y")) {
		t.Error("Deliver should return false on a stopped stream")
	}
}

func TestStream_NextHonorsContext(t *testing.T) {
	st := New()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := st.Next(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected context deadline error, got %v", err)
	}

	// The stream itself is still open and usable.
	if st.State() != StateOpen {
		t.Errorf("state = %v, want open", st.State())
	}
}

func TestStream_OrderPreserved(t *testing.T) {
	st := New()

	const n = 100
	go func() {
		for i := 0; i < n; i++ {
			if !st.Deliver(Chunk{Data: []byte{byte(i)}}) {
				return
			}
		}
		st.Finish()
	}()

	for i := 0; i < n; i++ {
		c, err := st.Next(context.Background())
		if err != nil {
			t.Fatalf("Next #%d: unexpected error %v", i, err)
		}
		if c.Data[0] != byte(i) {
			t.Fatalf("chunk #%d out of order: got %d", i, c.Data[0])
		}
	}
}
