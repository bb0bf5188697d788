package prover

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func fastRetry() *RetryConfig {
	cfg := DefaultRetryConfig()
	cfg.BaseDelay = time.Millisecond
	cfg.MaxDelay = 10 * time.Millisecond
	cfg.Jitter = 0
	return cfg
}

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	c, err := NewClient(Config{BaseURL: url, APIKey: "test-key", Retry: fastRetry()})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return c
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	if _, err := NewClient(Config{}); err == nil {
		t.Error("expected error for empty base URL")
	}
}

func TestNewClient_DefaultValues(t *testing.T) {
	c, err := NewClient(Config{BaseURL: "https://prover.example/"})
	if err != nil {
		t.Fatal(err)
	}
	if c.baseURL != "https://prover.example" {
		t.Errorf("baseURL = %q", c.baseURL)
	}
	if c.httpClient.Timeout != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", c.httpClient.Timeout, DefaultTimeout)
	}
	if c.retry.MaxRetries != DefaultMaxRetries {
		t.Errorf("MaxRetries = %d", c.retry.MaxRetries)
	}
	if c.log == nil {
		t.Error("logger is nil")
	}
}

func TestClient_Prove(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != provePath {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q", got)
		}

		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body["eventId"] != "e1" {
			t.Errorf("body = %v", body)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"proof":{"pi_a":["1"]},"publicSignals":["0x01","0x02"],"requestId":"job-1"}`))
	}))
	defer server.Close()

	resp, err := newTestClient(t, server.URL).Prove(context.Background(), map[string]string{"eventId": "e1"})
	if err != nil {
		t.Fatalf("Prove() error = %v", err)
	}
	if len(resp.PublicSignals) != 2 || resp.RequestID != "job-1" {
		t.Errorf("response = %+v", resp)
	}
	if string(resp.Proof) != `{"pi_a":["1"]}` {
		t.Errorf("Proof = %s", resp.Proof)
	}
}

func TestClient_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body["k"] != "v" {
			t.Errorf("attempt %d: body not resent: %v %v", calls.Load()+1, body, err)
		}
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"proof":"0xabc","publicSignals":[]}`))
	}))
	defer server.Close()

	if _, err := newTestClient(t, server.URL).Prove(context.Background(), map[string]string{"k": "v"}); err != nil {
		t.Fatalf("Prove() error = %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("calls = %d, want 3", got)
	}
}

func TestClient_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"queue full"}`))
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).Prove(context.Background(), struct{}{})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "queue full" {
		t.Errorf("error = %#v", err)
	}
	if got := calls.Load(); got != DefaultMaxRetries+1 {
		t.Errorf("calls = %d, want %d", got, DefaultMaxRetries+1)
	}
}

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		status int
		body   string
		want   error
	}{
		{http.StatusUnauthorized, `{"error":"bad key"}`, ErrUnauthorized},
		{http.StatusForbidden, ``, ErrUnauthorized},
		{http.StatusBadRequest, `{"message":"bad witness"}`, ErrInvalidWitness},
		{http.StatusUnprocessableEntity, `constraint failed`, ErrInvalidWitness},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newTestClient(t, server.URL).Prove(context.Background(), struct{}{})
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
			if calls.Load() != 1 {
				t.Errorf("non-retryable status was retried %d times", calls.Load()-1)
			}
		})
	}
}

func TestClient_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newTestClient(t, url).Prove(context.Background(), struct{}{})

	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected *NetworkError, got %T: %v", err, err)
	}
	if netErr.Attempt != DefaultMaxRetries+1 {
		t.Errorf("Attempt = %d, want %d", netErr.Attempt, DefaultMaxRetries+1)
	}
}

func TestClient_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c, err := NewClient(Config{BaseURL: server.URL, Retry: &RetryConfig{
		MaxRetries: 5, BaseDelay: time.Minute, MaxDelay: time.Minute, Multiplier: 1, RetryableOn: retryableStatus,
	}})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := c.Prove(ctx, struct{}{}); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected context.DeadlineExceeded, got %v", err)
	}
}

func TestClient_Health(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != healthPath || r.Method != http.MethodGet {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	if err := newTestClient(t, server.URL).Health(context.Background()); err != nil {
		t.Errorf("Health() error = %v", err)
	}
}

func TestClient_EmptyProof(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"publicSignals":[]}`))
	}))
	defer server.Close()

	if _, err := newTestClient(t, server.URL).Prove(context.Background(), struct{}{}); err == nil {
		t.Error("expected error for a response without a proof")
	}
}
