// Package bridge adapts a push-style asynchronous chunk feed into a
// pull-based stream a plain caller can iterate without running an event
// loop of its own.
//
// A Stream sits between a background delivery goroutine (the producer,
// typically fed from a streaming HTTP response) and a consumer calling
// Next. Flow control is one chunk ahead: the producer's Deliver blocks
// while a previous chunk is still waiting to be pulled, so the stream
// never buffers more than one undelivered chunk.
//
//	st := bridge.New()
//	go func() {
//	    for _, c := range produce() {
//	        if !st.Deliver(c) {
//	            return // consumer stopped
//	        }
//	    }
//	    st.Finish()
//	}()
//
//	for {
//	    chunk, err := st.Next(ctx)
//	    if errors.Is(err, bridge.ErrEndOfStream) {
//	        break
//	    }
//	    ...
//	}
package bridge
