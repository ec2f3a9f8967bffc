package reporting

import (
	"context"
	"errors"

	"voiceagent-platform/internal/calls"
	"voiceagent-platform/internal/ledger"
)

var ErrInvalidRequest = errors.New("reporting: invalid request")

// Service aggregates call ledger rows into per-account report views.
//
// It reads through the same ledger.Store the reconciler writes, so reports
// always reflect settled billing state.

type Service struct {
	ledger ledger.Store
}

func NewService(store ledger.Store) *Service { return &Service{ledger: store} }

func (s *Service) CallsSummary(ctx context.Context, req CallsSummaryRequest) (CallsSummary, error) {
	entries, err := s.entries(ctx, req.AccountID, req.Range)
	if err != nil {
		return CallsSummary{}, err
	}

	out := CallsSummary{AccountID: req.AccountID}
	for _, e := range entries {
		out.TotalCalls++
		out.TotalDurationSeconds += e.DurationSeconds
		if e.RecordingURL != "" {
			out.RecordedCalls++
		}
		if e.Direction == calls.DirectionOutbound {
			out.OutboundCalls++
		} else {
			out.InboundCalls++
		}
		switch e.Outcome {
		case calls.OutcomeBooked:
			out.BookedCalls++
		case calls.OutcomeNotInterested:
			out.NotInterestedCalls++
		case calls.OutcomeTransferred:
			out.TransferredCalls++
		case calls.OutcomeVoicemail:
			out.VoicemailCalls++
		case calls.OutcomeAnswered:
			out.AnsweredCalls++
		case calls.OutcomeFailed:
			out.FailedCalls++
		default:
			out.UnknownCalls++
		}
	}
	if out.TotalCalls > 0 {
		out.AverageDurationSeconds = out.TotalDurationSeconds / float64(out.TotalCalls)
	}
	return out, nil
}

func (s *Service) SpendSummary(ctx context.Context, req SpendSummaryRequest) (SpendSummary, error) {
	entries, err := s.entries(ctx, req.AccountID, req.Range)
	if err != nil {
		return SpendSummary{}, err
	}

	out := SpendSummary{AccountID: req.AccountID}
	var totalMinutes float64
	for _, e := range entries {
		if e.Settled() {
			out.BilledCalls++
			out.TotalCharged += e.CostCharged
			totalMinutes += e.DurationSeconds / 60
		} else {
			out.UnbilledCalls++
		}
	}
	if out.BilledCalls > 0 {
		out.AverageCostPerCall = out.TotalCharged / float64(out.BilledCalls)
	}
	if totalMinutes > 0 {
		out.AverageCostPerMinute = out.TotalCharged / totalMinutes
	}
	return out, nil
}

func (s *Service) ConversionMetrics(ctx context.Context, req ConversionMetricsRequest) (ConversionMetrics, error) {
	entries, err := s.entries(ctx, req.AccountID, req.Range)
	if err != nil {
		return ConversionMetrics{}, err
	}

	out := ConversionMetrics{AccountID: req.AccountID}
	out.CallsAttempted = len(entries)
	for _, e := range entries {
		switch e.Outcome {
		case calls.OutcomeBooked:
			out.Bookings++
			out.CallsConnected++
		case calls.OutcomeAnswered, calls.OutcomeNotInterested, calls.OutcomeTransferred:
			out.CallsConnected++
		}
	}
	if out.CallsAttempted > 0 {
		out.ConnectionRate = float64(out.CallsConnected) / float64(out.CallsAttempted)
		out.BookingRate = float64(out.Bookings) / float64(out.CallsAttempted)
	}
	return out, nil
}

func (s *Service) entries(ctx context.Context, accountID int64, r TimeRange) ([]ledger.Entry, error) {
	if accountID == 0 {
		return nil, ErrInvalidRequest
	}
	if s.ledger == nil {
		return nil, errors.New("reporting: ledger not configured")
	}
	all, err := s.ledger.List(ctx, ledger.ListFilter{AccountID: accountID})
	if err != nil {
		return nil, err
	}
	if r.From.IsZero() && r.To.IsZero() {
		return all, nil
	}
	out := all[:0]
	for _, e := range all {
		if !r.From.IsZero() && e.CreatedAt.Before(r.From) {
			continue
		}
		if !r.To.IsZero() && !e.CreatedAt.Before(r.To) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
