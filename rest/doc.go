// Package rest is a JSON-focused convenience layer over a dispatcher.
// It pre-binds one dispatcher identity and exposes typed operations;
// everything delegates to dispatch — no state lives here.
package rest
