package llm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

func fastRetry() RetryConfig {
	return RetryConfig{
		InitialInterval:     time.Millisecond,
		MaxInterval:         5 * time.Millisecond,
		MaxElapsedTime:      time.Second,
		Multiplier:          2.0,
		RandomizationFactor: 0,
	}
}

func completionBody(text string) string {
	return `{"choices":[{"message":{"role":"assistant","content":"` + text + `"}}]}`
}

func TestClient_CompleteParsesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(completionBody("quarterly plan")))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Model: "llama3-8b", APIKeys: []string{"k1"}, Retry: fastRetry()})

	got, err := c.Complete(context.Background(), "You are the CFO.", "Draft the plan")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if got != "quarterly plan" {
		t.Errorf("expected parsed content, got %q", got)
	}
}

func TestClient_RetriesRateLimitAndRotatesKeys(t *testing.T) {
	var mu sync.Mutex
	var keys []string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		keys = append(keys, r.Header.Get("Authorization"))
		n := len(keys)
		mu.Unlock()

		if n == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(completionBody("ok")))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Model: "llama3-8b", APIKeys: []string{"k1", "k2"}, Retry: fastRetry()})

	got, err := c.Complete(context.Background(), "", "hello")
	if err != nil {
		t.Fatalf("expected retry to succeed, got: %v", err)
	}
	if got != "ok" {
		t.Errorf("expected ok, got %q", got)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(keys) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(keys))
	}
	if keys[0] != "Bearer k1" || keys[1] != "Bearer k2" {
		t.Errorf("expected key rotation across attempts, got %v", keys)
	}
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var mu sync.Mutex
	attempts := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		attempts++
		n := attempts
		mu.Unlock()

		if n < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(completionBody("recovered")))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Model: "llama3-8b", Retry: fastRetry()})

	got, err := c.Complete(context.Background(), "", "hello")
	if err != nil {
		t.Fatalf("expected recovery after 5xx, got: %v", err)
	}
	if got != "recovered" {
		t.Errorf("expected recovered, got %q", got)
	}
}

func TestClient_ClientErrorIsPermanent(t *testing.T) {
	var mu sync.Mutex
	attempts := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		attempts++
		mu.Unlock()
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Model: "llama3-8b", Retry: fastRetry()})

	_, err := c.Complete(context.Background(), "", "hello")
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("expected status in error, got: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if attempts != 1 {
		t.Errorf("expected no retry on client error, got %d attempts", attempts)
	}
}

func TestClient_CancelledContextStopsRetrying(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Model: "llama3-8b", Retry: fastRetry()})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Complete(ctx, "", "hello")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got: %v", err)
	}
}

func TestRotator_RoundRobin(t *testing.T) {
	r := NewRotator([]string{"a", "b"})
	got := []string{r.Next(), r.Next(), r.Next()}
	want := []string{"a", "b", "a"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected rotation %v, got %v", want, got)
		}
	}
}

func TestRotator_Empty(t *testing.T) {
	r := NewRotator(nil)
	if got := r.Next(); got != "" {
		t.Errorf("expected empty key, got %q", got)
	}
	if r.Len() != 0 {
		t.Errorf("expected zero keys, got %d", r.Len())
	}
}

func TestRateLimiter_SpacesRequests(t *testing.T) {
	now := time.Unix(0, 0)
	l := newRateLimiter(60, func() time.Time { return now }) // one per second

	if wait := l.Reserve(); wait != 0 {
		t.Errorf("expected first reservation immediate, got %v", wait)
	}
	if wait := l.Reserve(); wait != time.Second {
		t.Errorf("expected second reservation delayed 1s, got %v", wait)
	}

	// Advancing the clock frees up slots.
	now = now.Add(5 * time.Second)
	if wait := l.Reserve(); wait != 0 {
		t.Errorf("expected reservation after idle period immediate, got %v", wait)
	}
}

func TestRateLimiter_Disabled(t *testing.T) {
	l := NewRateLimiter(0)
	for i := 0; i < 3; i++ {
		if wait := l.Reserve(); wait != 0 {
			t.Fatalf("expected unlimited reservations, got wait %v", wait)
		}
	}
}
