package dispatch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestCallbackDelivererDeliver(t *testing.T) {
	var got CallbackPayload
	var gotContentType string
	calls := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		gotContentType = r.Header.Get("Content-Type")
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	d := NewCallbackDeliverer()
	payload := CallbackPayload{RunID: "r1", Status: "ok", Reply: "hello"}
	if err := d.Deliver(context.Background(), srv.URL, payload); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}

	if calls != 1 {
		t.Errorf("receiver called %d times, want 1", calls)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", gotContentType)
	}
	if got != payload {
		t.Errorf("received payload = %+v, want %+v", got, payload)
	}
}

func TestCallbackDelivererNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	d := NewCallbackDeliverer()
	err := d.Deliver(context.Background(), srv.URL, CallbackPayload{RunID: "r1", Status: "ok"})
	if err == nil {
		t.Fatal("Deliver() error = nil, want status error")
	}
	if !strings.Contains(err.Error(), "502") {
		t.Errorf("Deliver() error = %q, want status 502 mentioned", err.Error())
	}
}

func TestCallbackDelivererNetworkError(t *testing.T) {
	// Point at a server that is already closed.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	d := NewCallbackDeliverer(WithCallbackTimeout(time.Second))
	if err := d.Deliver(context.Background(), url, CallbackPayload{RunID: "r1", Status: "error"}); err == nil {
		t.Fatal("Deliver() error = nil, want network error")
	}
}

func TestCallbackPayloadOmitsEmptyFields(t *testing.T) {
	body, err := json.Marshal(CallbackPayload{RunID: "r1", Status: "error", Error: "boom"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(body), "reply") {
		t.Errorf("error payload contains reply field: %s", body)
	}

	body, _ = json.Marshal(CallbackPayload{RunID: "r1", Status: "ok", Reply: "hi"})
	if strings.Contains(string(body), `"error"`) {
		t.Errorf("ok payload contains error field: %s", body)
	}
}
