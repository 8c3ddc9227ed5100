package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kbukum/streamgate/dispatch"
	"github.com/kbukum/streamgate/transport"
)

type thing struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func newStack(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "T1",
			"token_type":   "bearer",
		})
	}))
	t.Cleanup(tokenSrv.Close)

	apiSrv := httptest.NewServer(handler)
	t.Cleanup(apiSrv.Close)

	d, err := dispatch.Start(context.Background(), dispatch.Config{
		Transport: transport.Config{
			BaseURL:  apiSrv.URL,
			TokenURL: tokenSrv.URL,
		},
	})
	if err != nil {
		t.Fatalf("Start: unexpected error: %v", err)
	}
	t.Cleanup(d.Close)

	return New(d)
}

func TestGet_DecodesJSON(t *testing.T) {
	c := newStack(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("Accept = %q, want application/json", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer T1" {
			t.Errorf("Authorization = %q, want Bearer T1", got)
		}
		json.NewEncoder(w).Encode(thing{ID: 7, Name: "widget"})
	})

	resp, err := Get[thing](context.Background(), c, "/things/7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Data.ID != 7 || resp.Data.Name != "widget" {
		t.Errorf("data = %+v", resp.Data)
	}
}

func TestPost_SendsAndDecodes(t *testing.T) {
	c := newStack(t, func(w http.ResponseWriter, r *http.Request) {
		var in thing
		json.NewDecoder(r.Body).Decode(&in)
		in.ID = 1
		w.WriteHeader(201)
		json.NewEncoder(w).Encode(in)
	})

	resp, err := Post[thing](context.Background(), c, "/things", thing{Name: "new"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != 201 {
		t.Errorf("status = %d, want 201", resp.StatusCode)
	}
	if resp.Data.ID != 1 || resp.Data.Name != "new" {
		t.Errorf("data = %+v", resp.Data)
	}
}

func TestGet_ErrorWithDecodableBody(t *testing.T) {
	c := newStack(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(404)
		json.NewEncoder(w).Encode(thing{Name: "not found"})
	})

	resp, err := Get[thing](context.Background(), c, "/things/0")
	if !transport.IsNotFound(err) {
		t.Fatalf("expected not-found error, got %v", err)
	}
	// Decodable error bodies come back alongside the error.
	if resp == nil || resp.Data.Name != "not found" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestGet_WithQuery(t *testing.T) {
	c := newStack(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "widgets" {
			t.Errorf("q = %q, want widgets", got)
		}
		json.NewEncoder(w).Encode([]thing{})
	})

	_, err := Get[[]thing](context.Background(), c, "/search", dispatch.WithQuery(map[string]string{"q": "widgets"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
