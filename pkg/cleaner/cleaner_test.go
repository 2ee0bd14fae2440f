package cleaner

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCleanPostsTextAndReturnsCleaned(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("authorization = %q", got)
		}
		var req cleanRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Text != "raw  text" {
			t.Errorf("text = %q", req.Text)
		}
		json.NewEncoder(w).Encode(cleanResponse{Cleaned: "raw text"})
	}))
	defer srv.Close()

	c, err := New(Config{URL: srv.URL, Token: "secret"})
	if err != nil {
		t.Fatal(err)
	}

	out, err := c.Clean(context.Background(), "raw  text")
	if err != nil {
		t.Fatal(err)
	}
	if out != "raw text" {
		t.Fatalf("cleaned = %q", out)
	}
}

func TestCleanServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, err := New(Config{URL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := c.Clean(context.Background(), "text"); err == nil {
		t.Fatal("expected error on 500 response")
	} else if !strings.Contains(err.Error(), "status=500") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCleanServiceReportedError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(cleanResponse{Error: "model overloaded"})
	}))
	defer srv.Close()

	c, err := New(Config{URL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := c.Clean(context.Background(), "text"); err == nil || err.Error() != "model overloaded" {
		t.Fatalf("expected service error, got %v", err)
	}
}

func TestCleanEmptyResponseBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(cleanResponse{})
	}))
	defer srv.Close()

	c, err := New(Config{URL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := c.Clean(context.Background(), "text"); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestNewRejectsMissingURL(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected error for empty url")
	}
	if _, err := New(Config{URL: "   "}); err == nil {
		t.Fatal("expected error for blank url")
	}
}
