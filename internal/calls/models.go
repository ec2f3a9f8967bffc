package calls

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// RawCall is the upstream provider's call record as delivered by webhook or
// list polling. Field names follow the provider wire format.
type RawCall struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	Type        string `json:"type"`
	AssistantID string `json:"assistantId"`
	EndedReason string `json:"endedReason"`

	StartedAt *time.Time `json:"startedAt,omitempty"`
	EndedAt   *time.Time `json:"endedAt,omitempty"`

	// The provider reports duration under two names depending on the
	// endpoint; either may be absent.
	Duration        float64 `json:"duration,omitempty"`
	DurationSeconds float64 `json:"durationSeconds,omitempty"`

	Analysis     *Analysis       `json:"analysis,omitempty"`
	Transcript   json.RawMessage `json:"transcript,omitempty"`
	RecordingURL string          `json:"recordingUrl,omitempty"`

	Customer    *Endpoint `json:"customer,omitempty"`
	PhoneNumber *Endpoint `json:"phoneNumber,omitempty"`
}

type Analysis struct {
	Summary        string          `json:"summary,omitempty"`
	StructuredData json.RawMessage `json:"structuredData,omitempty"`
}

type Endpoint struct {
	Number string `json:"number,omitempty"`
}

type Direction string

const (
	DirectionOutbound Direction = "outbound"
	DirectionInbound  Direction = "inbound"
)

// Terminal reports whether the call has finished on the provider side.
// Only terminal calls are eligible for billing.
func (c *RawCall) Terminal() bool {
	return c.Status == "ended"
}

// Billable reports whether the call type is charged at all. Browser test
// calls never hit the phone network and are excluded.
func (c *RawCall) Billable() bool {
	return c.Type != "webCall"
}

// Direction maps the provider call type onto a billing direction.
// Everything that is not explicitly outbound is billed as inbound.
func (c *RawCall) Direction() Direction {
	if c.Type == "outboundPhoneCall" {
		return DirectionOutbound
	}
	return DirectionInbound
}

// ResolvedDuration returns the call duration in seconds, preferring the
// explicit duration fields and falling back to the timestamp delta.
func (c *RawCall) ResolvedDuration() float64 {
	if c.Duration > 0 {
		return c.Duration
	}
	if c.DurationSeconds > 0 {
		return c.DurationSeconds
	}
	if c.StartedAt != nil && c.EndedAt != nil && c.EndedAt.After(*c.StartedAt) {
		return c.EndedAt.Sub(*c.StartedAt).Seconds()
	}
	return 0
}

// CustomerNumber returns the remote party's phone number, whichever side
// the provider populated.
func (c *RawCall) CustomerNumber() string {
	if c.Customer != nil && c.Customer.Number != "" {
		return c.Customer.Number
	}
	if c.PhoneNumber != nil && c.PhoneNumber.Number != "" {
		return c.PhoneNumber.Number
	}
	return ""
}

// Summary returns the analysis summary, if any.
func (c *RawCall) Summary() string {
	if c.Analysis == nil {
		return ""
	}
	return c.Analysis.Summary
}

// TranscriptText flattens the transcript to readable text. The provider
// sends either a plain string or an array of {role, message} turns.
func (c *RawCall) TranscriptText() string {
	if len(c.Transcript) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(c.Transcript, &s); err == nil {
		return s
	}
	var turns []struct {
		Role    string `json:"role"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(c.Transcript, &turns); err != nil {
		return ""
	}
	var b strings.Builder
	for _, t := range turns {
		if t.Message == "" {
			continue
		}
		label := "Agent"
		if t.Role == "user" || t.Role == "customer" {
			label = "Customer"
		}
		fmt.Fprintf(&b, "%s: %s\n", label, t.Message)
	}
	return strings.TrimRight(b.String(), "\n")
}

// structuredData parses analysis.structuredData into a generic map. Some
// provider payloads double-encode it as a JSON string.
func (c *RawCall) structuredData() map[string]any {
	if c.Analysis == nil || len(c.Analysis.StructuredData) == 0 {
		return nil
	}
	raw := c.Analysis.StructuredData
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		raw = []byte(s)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}
