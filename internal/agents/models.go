package agents

import "time"

// Agent is the billing-relevant read model of a voice agent. The full agent
// CRUD (prompts, voices, tools) is owned by the agent management service;
// the billing core only needs ownership, the upstream assistant mapping,
// the typed pricing configuration, and the event-forwarding target.
type Agent struct {
	ID        int64  `json:"id" db:"id"`
	AccountID int64  `json:"account_id" db:"account_id"`
	Name      string `json:"name" db:"name"`

	// UpstreamAssistantID is the voice provider's identifier for this agent.
	UpstreamAssistantID string `json:"upstream_assistant_id" db:"upstream_assistant_id"`

	Pricing PricingConfig `json:"pricing"`

	// ForwardURL, when set, receives a cleaned end-of-call payload after a
	// webhook event is reconciled. ForwardSecret is sent as a header.
	ForwardURL    string `json:"forward_url,omitempty" db:"forward_url"`
	ForwardSecret string `json:"-" db:"forward_secret"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// PricingConfig is the typed model/transcriber selection read once when the
// agent row is loaded, replacing repeated parsing of raw configuration JSON.
type PricingConfig struct {
	ModelProvider       string `json:"model_provider" db:"model_provider"`
	ModelName           string `json:"model_name" db:"model_name"`
	TranscriberProvider string `json:"transcriber_provider" db:"transcriber_provider"`
}

// Complete reports whether the config names a model; without one there is
// nothing to resolve dynamic rates against.
func (p PricingConfig) Complete() bool {
	return p.ModelProvider != "" && p.ModelName != ""
}
