// Package dispatch provides the stateful request dispatcher: a
// single-owner gateway that acquires one authentication token at
// startup, holds it for its entire lifetime, and serializes every
// outbound call through one goroutine so the token is attached
// consistently and per-instance state never races.
//
// Start blocks on the token handshake; on failure it returns an
// *AuthError and no dispatcher comes up. A ready dispatcher exposes
// buffered calls (Get, Post, Call) and streaming calls (Stage), plus
// panicking variants (MustGet, MustPost, MustStage) for callers that
// prefer not to handle the error path.
//
//	d, err := dispatch.Start(ctx, dispatch.Config{
//	    Credentials: transport.Credentials{Username: "u", Password: "p"},
//	    Transport: transport.Config{
//	        BaseURL:  "https://api.example.com",
//	        TokenURL: "https://auth.example.com/oauth/token",
//	    },
//	})
//	if err != nil {
//	    return err
//	}
//	defer d.Close()
//
//	resp, err := d.Get(ctx, "/things/123", nil)
//
// Streaming:
//
//	st, err := d.Stage(ctx, http.MethodGet, "/firehose", nil, nil)
//	if err != nil {
//	    return err
//	}
//	defer st.Stop()
//	for {
//	    chunk, err := st.Next(ctx)
//	    ...
//	}
//
// Calls against one dispatcher queue behind each other; independent
// dispatcher instances never block one another. The token is fetched
// once and never refreshed — if it expires before the dispatcher goes
// away, calls start failing with auth errors (a warning is logged at
// startup when the expiry is known).
package dispatch
