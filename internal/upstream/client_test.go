package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"voiceagent-platform/internal/config"
)

func testClient(srv *httptest.Server) *Client {
	c := NewClient(config.UpstreamConfig{
		BaseURL:        srv.URL,
		APIKey:         "test-key",
		RequestTimeout: 5 * time.Second,
	}, nil)
	c.baseBackoff = 10 * time.Millisecond
	return c
}

func TestListCalls(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("auth header = %q", got)
		}
		if got := r.URL.Query().Get("limit"); got != "25" {
			t.Errorf("limit = %q", got)
		}
		w.Write([]byte(`[{"id":"call-1","status":"ended"},{"id":"call-2","status":"in-progress"}]`))
	}))
	defer srv.Close()

	got, err := testClient(srv).ListCalls(context.Background(), 25)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].ID != "call-1" || !got[0].Terminal() {
		t.Fatalf("unexpected calls: %+v", got)
	}
}

func TestGetCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/call/call-9" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"id":"call-9","status":"ended","endedReason":"customer-ended-call"}`))
	}))
	defer srv.Close()

	got, err := testClient(srv).GetCall(context.Background(), "call-9")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.EndedReason != "customer-ended-call" {
		t.Fatalf("unexpected call: %+v", got)
	}
}

func TestGet_RetriesOn429(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	if _, err := testClient(srv).ListCalls(context.Background(), 10); err != nil {
		t.Fatalf("list: %v", err)
	}
	if hits != 2 {
		t.Fatalf("hits = %d, want 2", hits)
	}
}

func TestGet_ContextCancelsBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if _, err := testClient(srv).ListCalls(ctx, 10); err == nil {
		t.Fatal("expected context error")
	}
}

func TestGet_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := testClient(srv).ListCalls(context.Background(), 10); err == nil {
		t.Fatal("expected error on 500")
	}
}
