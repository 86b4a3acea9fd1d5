package dispatch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/dealbench/internal/model"
)

func stubSleep(t *testing.T) {
	t.Helper()
	orig := sleepFunc
	sleepFunc = func(time.Duration) {}
	t.Cleanup(func() { sleepFunc = orig })
}

func callerFor(url string) *HTTPCaller {
	return NewHTTPCaller(model.AgentConfig{
		Endpoint:          url,
		Timeout:           5 * time.Second,
		MaxRetries:        3,
		RequestsPerSecond: 1000,
		BurstSize:         1000,
	})
}

func clientRequest() *model.ArtifactAgentRequest {
	return &model.ArtifactAgentRequest{
		Version:      model.WireV2,
		CheckpointID: "cp-1",
		TaskID:       "t1",
		TaskType:     model.TaskDealAnalysis,
		Prompt:       "Analyze.",
		TurnNumber:   1,
		MaxTurns:     1,
	}
}

func TestHTTPCaller_RetriesServerErrors(t *testing.T) {
	stubSleep(t)

	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			http.Error(w, "try again", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"version": 2, "answer": "ok", "isComplete": true, "confidence": 0.5}`))
	}))
	defer server.Close()

	resp, err := callerFor(server.URL).Call(context.Background(), clientRequest())
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if resp.Answer != "ok" {
		t.Errorf("answer = %q", resp.Answer)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Errorf("server saw %d calls, want 2", calls)
	}
}

func TestHTTPCaller_ClientErrorNotRetried(t *testing.T) {
	stubSleep(t)

	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer server.Close()

	_, err := callerFor(server.URL).Call(context.Background(), clientRequest())
	if err == nil {
		t.Fatal("expected error for 400 response")
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("400 was retried: %d calls", calls)
	}
}

func TestHTTPCaller_MalformedResponseNotRetried(t *testing.T) {
	stubSleep(t)

	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	_, err := callerFor(server.URL).Call(context.Background(), clientRequest())
	if err == nil || !strings.Contains(err.Error(), "unmarshal") {
		t.Fatalf("expected unmarshal error, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("malformed response was retried: %d calls", calls)
	}
}

func TestHTTPCaller_InvalidResponseRejected(t *testing.T) {
	stubSleep(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Confidence outside [0, 1].
		_, _ = w.Write([]byte(`{"version": 2, "answer": "ok", "isComplete": true, "confidence": 7}`))
	}))
	defer server.Close()

	_, err := callerFor(server.URL).Call(context.Background(), clientRequest())
	if err == nil || !strings.Contains(err.Error(), "invalid response") {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestHTTPCaller_ValidatesRequest(t *testing.T) {
	req := clientRequest()
	req.Prompt = ""

	_, err := callerFor("http://localhost:1").Call(context.Background(), req)
	if err == nil || !strings.Contains(err.Error(), "missing prompt") {
		t.Fatalf("expected request validation error, got %v", err)
	}
}
