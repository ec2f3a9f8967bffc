package forward

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"voiceagent-platform/internal/agents"
	"voiceagent-platform/internal/billing"
	"voiceagent-platform/internal/calls"
	"voiceagent-platform/internal/ledger"
	"voiceagent-platform/pkg/logger"
)

const secretHeader = "x-webhook-secret"

// Forwarder relays reconciled end-of-call events to the endpoint an agent's
// owner configured. Delivery is best effort; a failed POST is logged and
// dropped, never retried against the billing path.
type Forwarder struct {
	agents agents.Directory
	http   *http.Client
}

func New(agentDir agents.Directory) *Forwarder {
	return &Forwarder{
		agents: agentDir,
		http:   &http.Client{Timeout: 10 * time.Second},
	}
}

// payload is the cleaned event shape sent downstream. Internal ledger ids
// replace upstream call ids so receivers never see provider identifiers.
type payload struct {
	Type string      `json:"type"`
	Call payloadCall `json:"call"`

	Recording      *payloadRecording `json:"recording"`
	Transcript     string            `json:"transcript,omitempty"`
	Summary        string            `json:"summary,omitempty"`
	StructuredData json.RawMessage   `json:"structuredData,omitempty"`

	Agent payloadAgent `json:"agent"`
}

type payloadCall struct {
	ID             string          `json:"id"`
	Type           calls.Direction `json:"type"`
	Duration       float64         `json:"duration"`
	Outcome        calls.Outcome   `json:"outcome"`
	CustomerNumber string          `json:"customerNumber,omitempty"`
	EndedReason    string          `json:"endedReason,omitempty"`
	StartedAt      *time.Time      `json:"startedAt"`
	EndedAt        *time.Time      `json:"endedAt"`
}

type payloadRecording struct {
	URL string `json:"url"`
}

type payloadAgent struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Forward delivers the event for a billed or recorded call. Results without
// a ledger entry or an agent forward URL are ignored.
func (f *Forwarder) Forward(ctx context.Context, res billing.Result) {
	switch res.Status {
	case billing.StatusBilled, billing.StatusRecorded, billing.StatusOutcomeRefreshed:
	default:
		return
	}
	entry := res.Entry
	if entry.AgentID == nil {
		return
	}
	log := logger.From(ctx).With("call_id", entry.ExternalCallID)

	agent, found, err := f.agents.ByID(ctx, *entry.AgentID)
	if err != nil {
		log.Error("forward: agent lookup failed", "error", err)
		return
	}
	if !found || agent.ForwardURL == "" {
		return
	}

	body, err := json.Marshal(f.buildPayload(entry, agent))
	if err != nil {
		log.Error("forward: encode payload", "error", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, agent.ForwardURL, bytes.NewReader(body))
	if err != nil {
		log.Error("forward: build request", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	if agent.ForwardSecret != "" {
		req.Header.Set(secretHeader, agent.ForwardSecret)
	}

	resp, err := f.http.Do(req)
	if err != nil {
		log.Warn("forward: delivery failed", "url", agent.ForwardURL, "error", err)
		return
	}
	resp.Body.Close()
	log.Info("forwarded end-of-call event", "url", agent.ForwardURL, "status", resp.StatusCode)
}

func (f *Forwarder) buildPayload(entry ledger.Entry, agent agents.Agent) payload {
	p := payload{
		Type: "end-of-call-report",
		Call: payloadCall{
			ID:             entry.ID,
			Type:           entry.Direction,
			Duration:       entry.DurationSeconds,
			Outcome:        entry.Outcome,
			CustomerNumber: entry.CustomerNumber,
			EndedReason:    entry.EndedReason,
			StartedAt:      entry.StartedAt,
			EndedAt:        entry.EndedAt,
		},
		Transcript:     entry.Transcript,
		Summary:        entry.Summary,
		StructuredData: entry.StructuredData,
		Agent:          payloadAgent{ID: agent.ID, Name: agent.Name},
	}
	if entry.RecordingURL != "" {
		p.Recording = &payloadRecording{URL: entry.RecordingURL}
	}
	return p
}
