package reporting

import "time"

// Common filtering inputs.

type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// CallsSummaryRequest requests aggregated call metrics for one account.

type CallsSummaryRequest struct {
	AccountID int64     `json:"account_id"`
	Range     TimeRange `json:"range"`
}

type CallsSummary struct {
	AccountID int64 `json:"account_id"`

	TotalCalls int `json:"total_calls"`

	BookedCalls        int `json:"booked_calls"`
	NotInterestedCalls int `json:"not_interested_calls"`
	TransferredCalls   int `json:"transferred_calls"`
	VoicemailCalls     int `json:"voicemail_calls"`
	AnsweredCalls      int `json:"answered_calls"`
	FailedCalls        int `json:"failed_calls"`
	UnknownCalls       int `json:"unknown_calls"`

	OutboundCalls int `json:"outbound_calls"`
	InboundCalls  int `json:"inbound_calls"`

	TotalDurationSeconds   float64 `json:"total_duration_seconds"`
	AverageDurationSeconds float64 `json:"average_duration_seconds"`

	RecordedCalls int `json:"recorded_calls"`
}

// SpendSummaryRequest requests aggregated spend metrics. Spend is derived
// from settled call ledger rows scoped to the account.

type SpendSummaryRequest struct {
	AccountID int64     `json:"account_id"`
	Range     TimeRange `json:"range"`
}

type SpendSummary struct {
	AccountID int64 `json:"account_id"`

	BilledCalls   int     `json:"billed_calls"`
	UnbilledCalls int     `json:"unbilled_calls"`
	TotalCharged  float64 `json:"total_charged"`

	AverageCostPerCall   float64 `json:"average_cost_per_call"`
	AverageCostPerMinute float64 `json:"average_cost_per_minute"`
}

// ConversionMetricsRequest captures simple booking conversion metrics.

type ConversionMetricsRequest struct {
	AccountID int64     `json:"account_id"`
	Range     TimeRange `json:"range"`
}

type ConversionMetrics struct {
	AccountID int64 `json:"account_id"`

	CallsAttempted int `json:"calls_attempted"`
	CallsConnected int `json:"calls_connected"`
	Bookings       int `json:"bookings"`

	ConnectionRate float64 `json:"connection_rate"`
	BookingRate    float64 `json:"booking_rate"`
}
