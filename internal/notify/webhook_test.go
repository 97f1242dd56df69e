package notify

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sentinelops/macieguard/internal/model"
)

func TestSendPostsJSONOnce(t *testing.T) {
	var calls int
	var received Message
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &received); err != nil {
			t.Errorf("body is not JSON: %v", err)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected application/json, got %s", ct)
		}
	}))
	defer srv.Close()

	msg := Message{Channel: "#dlp", Text: "hello"}
	if err := Send(srv.URL, msg); err != nil {
		t.Fatalf("send: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected exactly one POST, got %d", calls)
	}
	if received.Channel != "#dlp" || received.Text != "hello" {
		t.Errorf("unexpected payload: %+v", received)
	}
}

func TestSendClientErrorNotRetried(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	err := Send(srv.URL, Message{Text: "x"})
	if err == nil {
		t.Fatal("expected error on 404")
	}
	var te *model.TransientError
	if errors.As(err, &te) {
		t.Error("a 4xx rejection is not transient")
	}
	if calls != 1 {
		t.Errorf("expected no retry, got %d calls", calls)
	}
}

func TestSendServerErrorIsTransientAndNotRetried(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := Send(srv.URL, Message{Text: "x"})
	var te *model.TransientError
	if !errors.As(err, &te) {
		t.Errorf("expected TransientError on 5xx, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected exactly one attempt, got %d", calls)
	}
}

func TestSendConnectionFailureIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	err := Send(srv.URL, Message{Text: "x"})
	var te *model.TransientError
	if !errors.As(err, &te) {
		t.Errorf("expected TransientError on connection failure, got %v", err)
	}
}
