package httpclient

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNew_RequestsPassThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer server.Close()

	client, err := New(WithProviderName("test"), WithRequestTimeout(time.Second))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	resp, err := client.Get(server.URL)
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusTeapot {
		t.Errorf("expected 418, got %d", resp.StatusCode)
	}
	if client.Timeout != time.Second {
		t.Errorf("expected 1s timeout, got %s", client.Timeout)
	}
}

func TestNew_TimeoutApplies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	client, err := New(WithRequestTimeout(50 * time.Millisecond))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := client.Get(server.URL); err == nil {
		t.Error("expected timeout error")
	}
}
