package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func TestGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if ua := r.Header.Get("User-Agent"); ua != "picsum-downloader" {
			t.Errorf("expected user agent picsum-downloader, got %q", ua)
		}
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("jpegdata"))
	}))
	defer server.Close()

	client := NewClient(DefaultOptions())
	resp, err := client.Get(context.Background(), server.URL+"/100/100")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(body) != "jpegdata" {
		t.Errorf("expected 'jpegdata', got %q", body)
	}
	if resp.ContentType != "image/jpeg" {
		t.Errorf("expected content-type image/jpeg, got %s", resp.ContentType)
	}
	if resp.ContentLength != 8 {
		t.Errorf("expected content length 8, got %d", resp.ContentLength)
	}
}

func TestGetFollowsRedirect(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/100/100", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/id/7/100/100.jpg", http.StatusFound)
	})
	mux.HandleFunc("/id/7/100/100.jpg", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("redirected"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewClient(DefaultOptions())
	resp, err := client.Get(context.Background(), server.URL+"/100/100")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if string(body) != "redirected" {
		t.Errorf("expected redirected body, got %q", body)
	}
}

func TestGetStatusErrors(t *testing.T) {
	tests := []struct {
		code     int
		sentinel error
	}{
		{http.StatusNotFound, ErrNotFound},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusServiceUnavailable, ErrServerError},
		{http.StatusBadRequest, nil},
	}

	for _, tt := range tests {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.code)
		}))

		client := NewClient(DefaultOptions())
		_, err := client.Get(context.Background(), server.URL)
		server.Close()

		var statusErr *StatusError
		if !errors.As(err, &statusErr) {
			t.Errorf("status %d: expected *StatusError, got %v", tt.code, err)
			continue
		}
		if statusErr.Code != tt.code {
			t.Errorf("expected code %d, got %d", tt.code, statusErr.Code)
		}
		if tt.sentinel != nil && !errors.Is(err, tt.sentinel) {
			t.Errorf("status %d: expected %v, got %v", tt.code, tt.sentinel, err)
		}
	}
}

func TestGetNoRetry(t *testing.T) {
	var mu sync.Mutex
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		attempts++
		mu.Unlock()
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(DefaultOptions())
	if _, err := client.Get(context.Background(), server.URL); !errors.Is(err, ErrServerError) {
		t.Fatalf("expected ErrServerError, got %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if attempts != 1 {
		t.Errorf("expected exactly 1 attempt, got %d", attempts)
	}
}

func TestContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := NewClient(DefaultOptions())
	_, err := client.Get(ctx, server.URL)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected context.DeadlineExceeded, got %v", err)
	}
}

func TestTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer server.Close()

	opts := DefaultOptions()
	opts.Timeout = 50 * time.Millisecond

	client := NewClient(opts)
	if _, err := client.Get(context.Background(), server.URL); err == nil {
		t.Error("expected timeout error")
	}
}
