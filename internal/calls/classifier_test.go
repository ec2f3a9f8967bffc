package calls

import (
	"encoding/json"
	"testing"
	"time"
)

func TestClassify_FailedReasonBeatsBookingSummary(t *testing.T) {
	c := RawCall{
		EndedReason: "twilio-failed-to-connect-call",
		Analysis:    &Analysis{Summary: "Appointment booked for Tuesday."},
	}
	if got := c.Classify(); got != OutcomeFailed {
		t.Fatalf("outcome = %s, want failed", got)
	}
}

func TestClassify_PipelineErrors(t *testing.T) {
	for _, reason := range []string{
		"pipeline-error-openai-llm-failed",
		"pipeline-error-deepgram-transcriber-failed",
		"customer-busy",
		"customer-did-not-answer",
		"manually-canceled",
	} {
		c := RawCall{EndedReason: reason}
		if got := c.Classify(); got != OutcomeFailed {
			t.Errorf("%s: outcome = %s, want failed", reason, got)
		}
	}
}

func TestClassify_VoicemailAndTransfer(t *testing.T) {
	if got := (&RawCall{EndedReason: "voicemail"}).Classify(); got != OutcomeVoicemail {
		t.Fatalf("voicemail: got %s", got)
	}
	if got := (&RawCall{EndedReason: "assistant-forwarded-call"}).Classify(); got != OutcomeTransferred {
		t.Fatalf("transfer: got %s", got)
	}
}

func TestClassify_StructuredDataSynonyms(t *testing.T) {
	cases := []struct {
		name string
		data string
		want Outcome
	}{
		{"booked flag", `{"booked": true}`, OutcomeBooked},
		{"appointmentBooked flag", `{"appointmentBooked": true}`, OutcomeBooked},
		{"booking_status", `{"booking_status": "booked"}`, OutcomeBooked},
		{"outcome booked", `{"outcome": "booked"}`, OutcomeBooked},
		{"interested false", `{"interested": false}`, OutcomeNotInterested},
		{"not_interested flag", `{"not_interested": true}`, OutcomeNotInterested},
		{"outcome not_interested", `{"outcome": "not_interested"}`, OutcomeNotInterested},
		{"interested true falls through", `{"interested": true}`, OutcomeUnknown},
	}
	for _, tc := range cases {
		c := RawCall{Analysis: &Analysis{StructuredData: json.RawMessage(tc.data)}}
		if got := c.Classify(); got != tc.want {
			t.Errorf("%s: outcome = %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestClassify_DoubleEncodedStructuredData(t *testing.T) {
	// Some payloads carry structuredData as a JSON string.
	encoded, _ := json.Marshal(`{"booked": true}`)
	c := RawCall{Analysis: &Analysis{StructuredData: encoded}}
	if got := c.Classify(); got != OutcomeBooked {
		t.Fatalf("outcome = %s, want booked", got)
	}
}

func TestClassify_SummaryPhrases(t *testing.T) {
	cases := []struct {
		summary string
		want    Outcome
	}{
		{"The customer's appointment booked successfully.", OutcomeBooked},
		{"Booking Confirmed for next week.", OutcomeBooked},
		{"We scheduled an appointment at 3pm.", OutcomeBooked},
		{"Successfully booked a follow-up.", OutcomeBooked},
		{"Caller said they were not interested.", OutcomeNotInterested},
		{"The prospect declined the offer.", OutcomeNotInterested},
		{"Asked us to do not call again.", OutcomeNotInterested},
		{"Pleasant chat about the weather.", OutcomeUnknown},
	}
	for _, tc := range cases {
		c := RawCall{Analysis: &Analysis{Summary: tc.summary}}
		if got := c.Classify(); got != tc.want {
			t.Errorf("%q: outcome = %s, want %s", tc.summary, got, tc.want)
		}
	}
}

func TestClassify_AnsweredReasons(t *testing.T) {
	for _, reason := range []string{
		"customer-ended-call",
		"assistant-ended-call",
		"assistant-said-end-call-phrase",
		"silence-timed-out",
		"exceeded-max-duration",
	} {
		c := RawCall{EndedReason: reason}
		if got := c.Classify(); got != OutcomeAnswered {
			t.Errorf("%s: outcome = %s, want answered", reason, got)
		}
	}
}

func TestClassify_UnknownDefault(t *testing.T) {
	if got := (&RawCall{EndedReason: "some-new-reason"}).Classify(); got != OutcomeUnknown {
		t.Fatalf("outcome = %s, want unknown", got)
	}
}

func TestResolvedDuration(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Second)

	c := RawCall{Duration: 42}
	if d := c.ResolvedDuration(); d != 42 {
		t.Fatalf("explicit duration = %v", d)
	}
	c = RawCall{DurationSeconds: 17}
	if d := c.ResolvedDuration(); d != 17 {
		t.Fatalf("durationSeconds = %v", d)
	}
	c = RawCall{StartedAt: &start, EndedAt: &end}
	if d := c.ResolvedDuration(); d != 90 {
		t.Fatalf("timestamp delta = %v, want 90", d)
	}
	c = RawCall{StartedAt: &end, EndedAt: &start}
	if d := c.ResolvedDuration(); d != 0 {
		t.Fatalf("inverted timestamps = %v, want 0", d)
	}
	if d := (&RawCall{}).ResolvedDuration(); d != 0 {
		t.Fatalf("no data = %v, want 0", d)
	}
}

func TestDirectionAndBillable(t *testing.T) {
	if d := (&RawCall{Type: "outboundPhoneCall"}).Direction(); d != DirectionOutbound {
		t.Fatalf("direction = %s", d)
	}
	if d := (&RawCall{Type: "inboundPhoneCall"}).Direction(); d != DirectionInbound {
		t.Fatalf("direction = %s", d)
	}
	if (&RawCall{Type: "webCall"}).Billable() {
		t.Fatal("web test calls must not be billable")
	}
	if !(&RawCall{Type: "outboundPhoneCall"}).Billable() {
		t.Fatal("phone calls are billable")
	}
}

func TestTranscriptText(t *testing.T) {
	c := RawCall{Transcript: json.RawMessage(`"plain text transcript"`)}
	if got := c.TranscriptText(); got != "plain text transcript" {
		t.Fatalf("string transcript = %q", got)
	}

	c = RawCall{Transcript: json.RawMessage(`[
		{"role":"assistant","message":"Hello, how can I help?"},
		{"role":"user","message":"I want to book."},
		{"role":"assistant","message":""}
	]`)}
	want := "Agent: Hello, how can I help?\nCustomer: I want to book."
	if got := c.TranscriptText(); got != want {
		t.Fatalf("turns transcript = %q, want %q", got, want)
	}

	if got := (&RawCall{}).TranscriptText(); got != "" {
		t.Fatalf("empty transcript = %q", got)
	}
}

func TestCustomerNumber(t *testing.T) {
	c := RawCall{Customer: &Endpoint{Number: "+15550001111"}}
	if got := c.CustomerNumber(); got != "+15550001111" {
		t.Fatalf("customer number = %q", got)
	}
	c = RawCall{PhoneNumber: &Endpoint{Number: "+15550002222"}}
	if got := c.CustomerNumber(); got != "+15550002222" {
		t.Fatalf("phone number fallback = %q", got)
	}
}
