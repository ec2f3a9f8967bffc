package forward

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"voiceagent-platform/internal/agents"
	"voiceagent-platform/internal/billing"
	"voiceagent-platform/internal/calls"
	"voiceagent-platform/internal/ledger"
)

func TestForward_DeliversCleanPayload(t *testing.T) {
	var gotSecret string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSecret = r.Header.Get("x-webhook-secret")
		gotBody, _ = io.ReadAll(r.Body)
	}))
	defer srv.Close()

	agentID := int64(10)
	dir := agents.NewMemoryDirectory(agents.Agent{
		ID:            agentID,
		Name:          "booking-bot",
		ForwardURL:    srv.URL,
		ForwardSecret: "fwd-secret",
	})

	res := billing.Result{
		Status: billing.StatusBilled,
		Entry: ledger.Entry{
			ID:              "entry-1",
			ExternalCallID:  "call-1",
			AgentID:         &agentID,
			Direction:       calls.DirectionOutbound,
			DurationSeconds: 90,
			Outcome:         calls.OutcomeBooked,
			CustomerNumber:  "+15550001111",
			Transcript:      "Agent: hi",
			RecordingURL:    "https://cdn.example.com/rec.mp3",
		},
	}
	New(dir).Forward(context.Background(), res)

	if gotSecret != "fwd-secret" {
		t.Fatalf("secret header = %q", gotSecret)
	}
	var p payload
	if err := json.Unmarshal(gotBody, &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Type != "end-of-call-report" {
		t.Fatalf("type = %q", p.Type)
	}
	// Receivers get the ledger id, not the provider's call id.
	if p.Call.ID != "entry-1" {
		t.Fatalf("call id = %q", p.Call.ID)
	}
	if p.Call.Outcome != calls.OutcomeBooked || p.Call.Duration != 90 {
		t.Fatalf("call = %+v", p.Call)
	}
	if p.Recording == nil || p.Recording.URL != "https://cdn.example.com/rec.mp3" {
		t.Fatalf("recording = %+v", p.Recording)
	}
	if p.Agent.Name != "booking-bot" {
		t.Fatalf("agent = %+v", p.Agent)
	}
}

func TestForward_SkipsWithoutURL(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	agentID := int64(10)
	dir := agents.NewMemoryDirectory(agents.Agent{ID: agentID, Name: "quiet-bot"})

	f := New(dir)
	f.Forward(context.Background(), billing.Result{
		Status: billing.StatusBilled,
		Entry:  ledger.Entry{AgentID: &agentID},
	})
	// Skipped statuses never forward either.
	f.Forward(context.Background(), billing.Result{Status: billing.StatusAlreadyBilled})
	f.Forward(context.Background(), billing.Result{Status: billing.StatusUnattributed})

	if hits.Load() != 0 {
		t.Fatalf("unexpected deliveries: %d", hits.Load())
	}
}
