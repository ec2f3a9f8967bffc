package calls

import "strings"

// Outcome is the business-level disposition of a finished call.
type Outcome string

const (
	OutcomeBooked        Outcome = "booked"
	OutcomeNotInterested Outcome = "not_interested"
	OutcomeTransferred   Outcome = "transferred"
	OutcomeVoicemail     Outcome = "voicemail"
	OutcomeAnswered      Outcome = "answered"
	OutcomeFailed        Outcome = "failed"
	OutcomeUnknown       Outcome = "unknown"
)

var failedReasons = map[string]struct{}{
	"assistant-error":                             {},
	"assistant-not-found":                         {},
	"db-error":                                    {},
	"no-server-available":                         {},
	"pipeline-error-extra-function-failed":        {},
	"pipeline-error-first-message-failed":         {},
	"pipeline-error-function-filler-failed":       {},
	"pipeline-error-function-failed":              {},
	"pipeline-error-openai-llm-failed":            {},
	"pipeline-error-azure-openai-llm-failed":      {},
	"pipeline-error-openai-voice-failed":          {},
	"pipeline-error-cartesia-voice-failed":        {},
	"pipeline-error-eleven-labs-voice-failed":     {},
	"pipeline-error-deepgram-transcriber-failed":  {},
	"pipeline-no-available-model":                 {},
	"server-shutdown":                             {},
	"twilio-failed-to-connect-call":               {},
	"assistant-join-timed-out":                    {},
	"customer-busy":                               {},
	"customer-did-not-answer":                     {},
	"customer-did-not-give-microphone-permission": {},
	"manually-canceled":                           {},
	"phone-call-provider-closed-websocket":        {},
}

var answeredReasons = map[string]struct{}{
	"customer-ended-call":            {},
	"assistant-ended-call":           {},
	"assistant-said-end-call-phrase": {},
	"silence-timed-out":              {},
	"exceeded-max-duration":          {},
}

var bookedPhrases = []string{
	"appointment booked",
	"booking confirmed",
	"scheduled an appointment",
	"successfully booked",
}

var notInterestedPhrases = []string{
	"not interested",
	"declined",
	"do not call",
}

// Classify derives the call outcome from the ended reason, the structured
// analysis payload, and the free-text summary, in that precedence order.
// Failure reasons win even when the summary claims a booking, since the
// summary is model-generated and the ended reason is factual.
func (c *RawCall) Classify() Outcome {
	if _, ok := failedReasons[c.EndedReason]; ok {
		return OutcomeFailed
	}
	if c.EndedReason == "voicemail" {
		return OutcomeVoicemail
	}
	if c.EndedReason == "assistant-forwarded-call" {
		return OutcomeTransferred
	}

	if data := c.structuredData(); data != nil {
		if boolField(data, "booked") || boolField(data, "appointmentBooked") ||
			stringField(data, "booking_status") == "booked" || stringField(data, "outcome") == "booked" {
			return OutcomeBooked
		}
		if interested, ok := data["interested"].(bool); ok && !interested {
			return OutcomeNotInterested
		}
		if boolField(data, "not_interested") || stringField(data, "outcome") == "not_interested" {
			return OutcomeNotInterested
		}
	}

	summary := strings.ToLower(c.Summary())
	for _, p := range bookedPhrases {
		if strings.Contains(summary, p) {
			return OutcomeBooked
		}
	}
	for _, p := range notInterestedPhrases {
		if strings.Contains(summary, p) {
			return OutcomeNotInterested
		}
	}

	if _, ok := answeredReasons[c.EndedReason]; ok {
		return OutcomeAnswered
	}
	return OutcomeUnknown
}

// ValidOutcome reports whether s is one of the recognized outcome values.
// Used to validate manual outcome overrides.
func ValidOutcome(s string) bool {
	switch Outcome(s) {
	case OutcomeBooked, OutcomeNotInterested, OutcomeTransferred,
		OutcomeVoicemail, OutcomeAnswered, OutcomeFailed, OutcomeUnknown:
		return true
	}
	return false
}

func boolField(m map[string]any, key string) bool {
	v, ok := m[key].(bool)
	return ok && v
}

func stringField(m map[string]any, key string) string {
	v, _ := m[key].(string)
	return v
}
