package reporting

import (
	"context"
	"testing"
	"time"

	"voiceagent-platform/internal/calls"
	"voiceagent-platform/internal/ledger"
)

func seedEntries(t *testing.T, store *ledger.MemoryStore, entries ...ledger.Entry) {
	t.Helper()
	for _, e := range entries {
		if _, err := store.Upsert(context.Background(), e); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

func TestReporting_AccountIsolation(t *testing.T) {
	store := ledger.NewMemoryStore()
	seedEntries(t, store,
		ledger.Entry{ExternalCallID: "c1", AccountID: 1, Outcome: calls.OutcomeAnswered, DurationSeconds: 30},
		ledger.Entry{ExternalCallID: "c2", AccountID: 2, Outcome: calls.OutcomeAnswered, DurationSeconds: 50},
	)
	svc := NewService(store)

	out, err := svc.CallsSummary(context.Background(), CallsSummaryRequest{AccountID: 1})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out.TotalCalls != 1 {
		t.Fatalf("expected 1 call, got %d", out.TotalCalls)
	}
	if out.TotalDurationSeconds != 30 {
		t.Fatalf("expected duration 30, got %v", out.TotalDurationSeconds)
	}
}

func TestReporting_CallsSummaryCountsOutcomes(t *testing.T) {
	store := ledger.NewMemoryStore()
	seedEntries(t, store,
		ledger.Entry{ExternalCallID: "c1", AccountID: 1, Outcome: calls.OutcomeBooked, Direction: calls.DirectionOutbound, DurationSeconds: 60, RecordingURL: "https://x/r.mp3"},
		ledger.Entry{ExternalCallID: "c2", AccountID: 1, Outcome: calls.OutcomeFailed, Direction: calls.DirectionOutbound},
		ledger.Entry{ExternalCallID: "c3", AccountID: 1, Outcome: calls.OutcomeVoicemail, Direction: calls.DirectionInbound, DurationSeconds: 20},
	)
	svc := NewService(store)

	out, err := svc.CallsSummary(context.Background(), CallsSummaryRequest{AccountID: 1})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out.BookedCalls != 1 || out.FailedCalls != 1 || out.VoicemailCalls != 1 {
		t.Fatalf("unexpected outcome counts: %+v", out)
	}
	if out.OutboundCalls != 2 || out.InboundCalls != 1 {
		t.Fatalf("unexpected direction counts: %+v", out)
	}
	if out.RecordedCalls != 1 {
		t.Fatalf("expected 1 recorded call, got %d", out.RecordedCalls)
	}
}

func TestReporting_SpendSummaryAggregates(t *testing.T) {
	store := ledger.NewMemoryStore()
	seedEntries(t, store,
		ledger.Entry{ExternalCallID: "c1", AccountID: 1, Billed: true, CostCharged: 0.25, DurationSeconds: 60},
		ledger.Entry{ExternalCallID: "c2", AccountID: 1, Billed: true, CostCharged: 0.5, DurationSeconds: 120},
		ledger.Entry{ExternalCallID: "c3", AccountID: 1, Billed: true, CostCharged: 0},
	)
	svc := NewService(store)

	out, err := svc.SpendSummary(context.Background(), SpendSummaryRequest{AccountID: 1})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out.BilledCalls != 2 {
		t.Fatalf("expected 2 billed calls, got %d", out.BilledCalls)
	}
	// The zero-cost row is not settled yet.
	if out.UnbilledCalls != 1 {
		t.Fatalf("expected 1 unbilled call, got %d", out.UnbilledCalls)
	}
	if out.TotalCharged != 0.75 {
		t.Fatalf("expected total 0.75, got %v", out.TotalCharged)
	}
	if out.AverageCostPerMinute != 0.25 {
		t.Fatalf("expected 0.25 per minute, got %v", out.AverageCostPerMinute)
	}
}

func TestReporting_ConversionMetrics(t *testing.T) {
	store := ledger.NewMemoryStore()
	seedEntries(t, store,
		ledger.Entry{ExternalCallID: "c1", AccountID: 1, Outcome: calls.OutcomeBooked},
		ledger.Entry{ExternalCallID: "c2", AccountID: 1, Outcome: calls.OutcomeAnswered},
		ledger.Entry{ExternalCallID: "c3", AccountID: 1, Outcome: calls.OutcomeFailed},
		ledger.Entry{ExternalCallID: "c4", AccountID: 1, Outcome: calls.OutcomeVoicemail},
	)
	svc := NewService(store)

	m, err := svc.ConversionMetrics(context.Background(), ConversionMetricsRequest{AccountID: 1})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if m.CallsAttempted != 4 || m.CallsConnected != 2 || m.Bookings != 1 {
		t.Fatalf("unexpected metrics: %+v", m)
	}
	if m.ConnectionRate != 0.5 || m.BookingRate != 0.25 {
		t.Fatalf("unexpected rates: %+v", m)
	}
}

func TestReporting_TimeRangeFilters(t *testing.T) {
	store := ledger.NewMemoryStore()
	seedEntries(t, store,
		ledger.Entry{ExternalCallID: "c1", AccountID: 1, Outcome: calls.OutcomeAnswered},
	)
	svc := NewService(store)

	past := TimeRange{From: time.Unix(0, 0), To: time.Unix(1, 0)}
	out, err := svc.CallsSummary(context.Background(), CallsSummaryRequest{AccountID: 1, Range: past})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out.TotalCalls != 0 {
		t.Fatalf("expected range to exclude entry, got %d", out.TotalCalls)
	}
}

func TestReporting_RequiresAccount(t *testing.T) {
	svc := NewService(ledger.NewMemoryStore())
	if _, err := svc.CallsSummary(context.Background(), CallsSummaryRequest{}); err != ErrInvalidRequest {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}
