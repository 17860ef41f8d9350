package relay

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestGenerateContent_ForwardsPayloadToDefaultURL(t *testing.T) {
	var gotPath, gotKey, gotCT string
	var gotBody []byte

	mock := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		gotCT = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	t.Cleanup(mock.Close)

	c := &Client{
		HTTP:         &http.Client{Timeout: 5 * time.Second},
		BaseURL:      mock.URL,
		APIKey:       "test-key",
		DefaultModel: "gemini-2.0-flash",
	}
	payload := json.RawMessage(`{"contents":[{"parts":[{"text":"hi"}]}]}`)
	res, err := c.GenerateContent(context.Background(), "", payload)
	if err != nil {
		t.Fatalf("relay error: %v", err)
	}
	if res.Status != http.StatusOK {
		t.Fatalf("unexpected status: %d", res.Status)
	}
	if gotPath != "/v1beta/models/gemini-2.0-flash:generateContent" {
		t.Fatalf("unexpected upstream path: %s", gotPath)
	}
	if gotKey != "test-key" {
		t.Fatalf("unexpected key query: %q", gotKey)
	}
	if gotCT != "application/json" {
		t.Fatalf("unexpected content type: %q", gotCT)
	}
	if string(gotBody) != string(payload) {
		t.Fatalf("payload not forwarded verbatim: %s", gotBody)
	}
	if string(res.Body) != `{"candidates":[]}` {
		t.Fatalf("response body not passed through: %s", res.Body)
	}
}

func TestGenerateContent_ExplicitModelInPath(t *testing.T) {
	var gotPath string
	mock := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(mock.Close)

	c := &Client{BaseURL: mock.URL, APIKey: "k", DefaultModel: "gemini-2.0-flash"}
	if _, err := c.GenerateContent(context.Background(), "gemini-1.5-pro", json.RawMessage(`{}`)); err != nil {
		t.Fatalf("relay error: %v", err)
	}
	if gotPath != "/v1beta/models/gemini-1.5-pro:generateContent" {
		t.Fatalf("unexpected upstream path: %s", gotPath)
	}
}

func TestGenerateContent_NoKeySkipsUpstream(t *testing.T) {
	calls := 0
	mock := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	t.Cleanup(mock.Close)

	c := &Client{BaseURL: mock.URL, DefaultModel: "gemini-2.0-flash"}
	_, err := c.GenerateContent(context.Background(), "", json.RawMessage(`{}`))
	var rerr *Error
	if !errors.As(err, &rerr) || rerr.Kind != KindConfig {
		t.Fatalf("expected KindConfig error, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("upstream should not be called, got %d calls", calls)
	}
}

func TestGenerateContent_Non2xxIsUpstreamError(t *testing.T) {
	mock := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":503}}`, http.StatusServiceUnavailable)
	}))
	t.Cleanup(mock.Close)

	c := &Client{BaseURL: mock.URL, APIKey: "k", DefaultModel: "gemini-2.0-flash"}
	_, err := c.GenerateContent(context.Background(), "", json.RawMessage(`{}`))
	var rerr *Error
	if !errors.As(err, &rerr) || rerr.Kind != KindUpstream {
		t.Fatalf("expected KindUpstream error, got %v", err)
	}
	if !strings.Contains(rerr.Error(), "503") {
		t.Fatalf("error should name the upstream status: %v", rerr)
	}
}

func TestGenerateContent_ConnectionRefusedIsUpstreamError(t *testing.T) {
	mock := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := mock.URL
	mock.Close() // nothing listens here anymore

	c := &Client{BaseURL: base, APIKey: "sekret-value", DefaultModel: "gemini-2.0-flash"}
	_, err := c.GenerateContent(context.Background(), "", json.RawMessage(`{}`))
	var rerr *Error
	if !errors.As(err, &rerr) || rerr.Kind != KindUpstream {
		t.Fatalf("expected KindUpstream error, got %v", err)
	}
	if strings.Contains(rerr.Error(), "sekret-value") {
		t.Fatalf("error detail leaks the api key: %v", rerr)
	}
	if !strings.Contains(rerr.Error(), "REDACTED") {
		t.Fatalf("transport error should carry the redacted URL: %v", rerr)
	}
}

func TestGenerateContent_EmptyBaseURL(t *testing.T) {
	c := &Client{APIKey: "k", DefaultModel: "gemini-2.0-flash"}
	_, err := c.GenerateContent(context.Background(), "", json.RawMessage(`{}`))
	var rerr *Error
	if !errors.As(err, &rerr) || rerr.Kind != KindInternal {
		t.Fatalf("expected KindInternal error, got %v", err)
	}
}
