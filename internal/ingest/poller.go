package ingest

import (
	"context"
	"fmt"

	"voiceagent-platform/internal/calls"
	"voiceagent-platform/internal/metrics"
	"voiceagent-platform/pkg/logger"
)

// CallLister is the upstream read surface the poller depends on.
type CallLister interface {
	ListCalls(ctx context.Context, limit int) ([]calls.RawCall, error)
}

// Summary reports what one poll pass accomplished.
type Summary struct {
	BilledCount  int     `json:"billed_count"`
	TotalCharged float64 `json:"total_charged"`

	// Degraded is set when some calls could not be processed; the
	// counts cover only what succeeded.
	Degraded bool `json:"degraded,omitempty"`
}

// Poller pulls recent calls from the provider and reconciles each one.
// It is the safety net for webhook deliveries that never arrived.
type Poller struct {
	upstream  CallLister
	reconcile Reconciler
	metrics   *metrics.Metrics
	batchSize int
}

func NewPoller(u CallLister, r Reconciler, m *metrics.Metrics, batchSize int) *Poller {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Poller{upstream: u, reconcile: r, metrics: m, batchSize: batchSize}
}

// Sync fetches one batch and reconciles it. Per-call failures are logged
// and skipped; only a fetch failure aborts the pass.
func (p *Poller) Sync(ctx context.Context) (Summary, error) {
	log := logger.From(ctx)

	batch, err := p.upstream.ListCalls(ctx, p.batchSize)
	if err != nil {
		p.metrics.IncPollRun("fetch_failed")
		return Summary{Degraded: true}, fmt.Errorf("list upstream calls: %w", err)
	}

	var s Summary
	for _, call := range batch {
		res, err := p.reconcile.Reconcile(ctx, call)
		if err != nil {
			log.Error("poll reconciliation failed", "call_id", call.ID, "error", err)
			s.Degraded = true
			continue
		}
		if res.Charged > 0 {
			s.BilledCount++
			s.TotalCharged += res.Charged
		}
	}

	if s.Degraded {
		p.metrics.IncPollRun("degraded")
	} else {
		p.metrics.IncPollRun("ok")
	}
	log.Info("poll sync finished",
		"fetched", len(batch),
		"billed", s.BilledCount,
		"charged", s.TotalCharged,
		"degraded", s.Degraded,
	)
	return s, nil
}
