package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"beacon/internal/shared/delivery"
)

func TestDeliverSuccessStatusWindow(t *testing.T) {
	var gotBody string
	var gotSignature string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		gotBody = string(buf)
		gotSignature = r.Header.Get("X-Beacon-Signature")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	outcome := New(nil).Deliver(context.Background(), delivery.Request{
		URL:     server.URL,
		Headers: map[string]string{"X-Beacon-Signature": "abc123"},
		Body:    []byte(`{"event":"dashboard.created"}`),
	})
	if !outcome.Success {
		t.Fatalf("expected success, got %+v", outcome)
	}
	if outcome.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", outcome.StatusCode)
	}
	if outcome.ResponseExcerpt != "ok" {
		t.Fatalf("expected response excerpt ok, got %q", outcome.ResponseExcerpt)
	}
	if gotBody != `{"event":"dashboard.created"}` {
		t.Fatalf("unexpected body forwarded: %q", gotBody)
	}
	if gotSignature != "abc123" {
		t.Fatalf("expected signature header forwarded, got %q", gotSignature)
	}
}

func TestDeliverRedirectStatusCountsAsSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	outcome := New(nil).Deliver(context.Background(), delivery.Request{URL: server.URL})
	if !outcome.Success || outcome.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204 success, got %+v", outcome)
	}
}

func TestDeliverServerErrorIsNotSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	}))
	defer server.Close()

	outcome := New(nil).Deliver(context.Background(), delivery.Request{URL: server.URL})
	if outcome.Success {
		t.Fatalf("expected failure on 500, got %+v", outcome)
	}
	if outcome.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", outcome.StatusCode)
	}
	if outcome.Err != "" {
		t.Fatalf("status failures must not set a transport error, got %q", outcome.Err)
	}
}

func TestDeliverConnectionErrorHasNoStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	outcome := New(nil).Deliver(context.Background(), delivery.Request{URL: url})
	if outcome.Success {
		t.Fatalf("expected failure against closed listener")
	}
	if outcome.StatusCode != 0 {
		t.Fatalf("transport errors must carry no status code, got %d", outcome.StatusCode)
	}
	if outcome.Err == "" {
		t.Fatalf("expected transport error message")
	}
}

func TestDeliverTruncatesResponseExcerpt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(strings.Repeat("x", 5000)))
	}))
	defer server.Close()

	outcome := New(nil).Deliver(context.Background(), delivery.Request{URL: server.URL})
	if len(outcome.ResponseExcerpt) != responseExcerptCap {
		t.Fatalf("expected excerpt capped at %d bytes, got %d", responseExcerptCap, len(outcome.ResponseExcerpt))
	}
}

func TestDeliverTimesOut(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer server.Close()

	start := time.Now()
	outcome := New(nil).Deliver(context.Background(), delivery.Request{
		URL:     server.URL,
		Timeout: 50 * time.Millisecond,
	})
	if outcome.Success {
		t.Fatalf("expected timeout failure")
	}
	if outcome.Err == "" {
		t.Fatalf("expected timeout error message")
	}
	if time.Since(start) > 2*time.Second {
		t.Fatalf("timeout was not enforced")
	}
}
