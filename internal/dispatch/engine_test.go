package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/turngate/turngate/internal/domain"
	"github.com/turngate/turngate/internal/runner"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubRunner implements runner.TurnRunner with a canned outcome.
type stubRunner struct {
	result runner.TurnResult
	err    error
	calls  chan runner.TurnRequest
}

func newStubRunner(result runner.TurnResult, err error) *stubRunner {
	return &stubRunner{result: result, err: err, calls: make(chan runner.TurnRequest, 16)}
}

func (s *stubRunner) RunTurn(ctx context.Context, req runner.TurnRequest) (runner.TurnResult, error) {
	s.calls <- req
	return s.result, s.err
}

func dispatchOnce(t *testing.T, e *Engine, def *domain.EndpointDefinition, message, callbackURL, tokenLabel string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/endpoints/"+def.ID, nil)
	e.Dispatch(c, def, message, callbackURL, tokenLabel)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return body
}

func TestDispatchSyncSuccess(t *testing.T) {
	stub := newStubRunner(runner.TurnResult{RunID: "r1", Reply: "hello"}, nil)
	e := NewEngine(stub, NewCallbackDeliverer())

	def := &domain.EndpointDefinition{ID: "support", Mode: domain.ModeSync, Instructions: "Be kind."}
	w := dispatchOnce(t, e, def, "hi", "", "alpha")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := decodeBody(t, w)
	if body["ok"] != true || body["reply"] != "hello" {
		t.Errorf("body = %v, want ok=true reply=hello", body)
	}

	req := <-stub.calls
	if req.EndpointID != "support" || req.Message != "hi" ||
		req.Instructions != "Be kind." || req.TokenLabel != "alpha" {
		t.Errorf("runner descriptor = %+v", req)
	}
}

func TestDispatchSyncFailure(t *testing.T) {
	stub := newStubRunner(runner.TurnResult{}, errors.New("runner exploded"))
	e := NewEngine(stub, NewCallbackDeliverer())

	def := &domain.EndpointDefinition{ID: "support", Mode: domain.ModeSync}
	w := dispatchOnce(t, e, def, "hi", "", "")

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	body := decodeBody(t, w)
	if body["ok"] != false || body["error"] != "runner exploded" {
		t.Errorf("body = %v, want ok=false with runner error", body)
	}
}

func TestDispatchAsyncSuccessDeliversCallback(t *testing.T) {
	received := make(chan CallbackPayload, 1)
	cb := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p CallbackPayload
		json.NewDecoder(r.Body).Decode(&p)
		received <- p
	}))
	defer cb.Close()

	stub := newStubRunner(runner.TurnResult{RunID: "ignored", Reply: "done"}, nil)
	e := NewEngine(stub, NewCallbackDeliverer(), WithRunIDFunc(func() string { return "run-42" }))

	def := &domain.EndpointDefinition{ID: "jobs", Mode: domain.ModeAsync}
	w := dispatchOnce(t, e, def, "do it", cb.URL, "")

	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", w.Code)
	}
	body := decodeBody(t, w)
	if body["ok"] != true || body["runId"] != "run-42" {
		t.Errorf("body = %v, want ok=true runId=run-42", body)
	}

	select {
	case p := <-received:
		if p.RunID != "run-42" || p.Status != "ok" || p.Reply != "done" {
			t.Errorf("callback payload = %+v", p)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("callback never delivered")
	}

	// Exactly one callback attempt: nothing else arrives.
	select {
	case p := <-received:
		t.Errorf("unexpected second callback: %+v", p)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDispatchAsyncFailureDeliversErrorCallback(t *testing.T) {
	received := make(chan CallbackPayload, 1)
	cb := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p CallbackPayload
		json.NewDecoder(r.Body).Decode(&p)
		received <- p
	}))
	defer cb.Close()

	stub := newStubRunner(runner.TurnResult{}, errors.New("turn failed: budget exceeded"))
	e := NewEngine(stub, NewCallbackDeliverer(), WithRunIDFunc(func() string { return "run-err" }))

	def := &domain.EndpointDefinition{ID: "jobs", Mode: domain.ModeAsync}
	w := dispatchOnce(t, e, def, "do it", cb.URL, "")

	// The original caller still gets 202; the failure is only visible
	// through the callback.
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", w.Code)
	}

	select {
	case p := <-received:
		if p.Status != "error" || p.RunID != "run-err" {
			t.Errorf("callback payload = %+v, want status=error runId=run-err", p)
		}
		if p.Error == "" || p.Reply != "" {
			t.Errorf("callback payload = %+v, want error text and no reply", p)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("error callback never delivered")
	}
}

func TestDispatchAsyncCallbackFailureSwallowed(t *testing.T) {
	// Callback receiver always rejects; the dispatch must not be affected.
	done := make(chan struct{}, 1)
	cb := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		done <- struct{}{}
	}))
	defer cb.Close()

	stub := newStubRunner(runner.TurnResult{Reply: "ok"}, nil)
	e := NewEngine(stub, NewCallbackDeliverer())

	def := &domain.EndpointDefinition{ID: "jobs", Mode: domain.ModeAsync}
	w := dispatchOnce(t, e, def, "do it", cb.URL, "")

	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", w.Code)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("callback attempt never made")
	}
}

func TestDispatchIndependentRunIDs(t *testing.T) {
	cb := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer cb.Close()

	stub := newStubRunner(runner.TurnResult{Reply: "ok"}, nil)
	e := NewEngine(stub, NewCallbackDeliverer())

	def := &domain.EndpointDefinition{ID: "jobs", Mode: domain.ModeAsync}
	first := decodeBody(t, dispatchOnce(t, e, def, "same message", cb.URL, ""))
	second := decodeBody(t, dispatchOnce(t, e, def, "same message", cb.URL, ""))

	// Identical requests are never deduplicated.
	if first["runId"] == second["runId"] {
		t.Errorf("both dispatches produced runId %v, want distinct ids", first["runId"])
	}

	for i := 0; i < 2; i++ {
		select {
		case <-stub.calls:
		case <-time.After(5 * time.Second):
			t.Fatal("expected two independent runner invocations")
		}
	}
}
