package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"voiceagent-platform/internal/accounts"
	"voiceagent-platform/internal/agents"
	"voiceagent-platform/internal/calls"
	"voiceagent-platform/internal/credit"
	"voiceagent-platform/internal/ledger"
	"voiceagent-platform/internal/metrics"
	"voiceagent-platform/internal/rates"
	"voiceagent-platform/pkg/logger"
	"voiceagent-platform/pkg/utils"
)

// Status reports how a reconciliation attempt resolved.
type Status string

const (
	// StatusSkipped: call not terminal, or a non-billable test call.
	StatusSkipped Status = "skipped"
	// StatusUnattributed: no agent or account matches the call.
	StatusUnattributed Status = "unattributed"
	// StatusAlreadyBilled: settled entry exists, nothing to do.
	StatusAlreadyBilled Status = "already_billed"
	// StatusOutcomeRefreshed: settled entry had an unknown outcome and the
	// new payload produced a better one.
	StatusOutcomeRefreshed Status = "outcome_refreshed"
	// StatusBilled: entry written and credits debited.
	StatusBilled Status = "billed"
	// StatusRecorded: entry written but the computed cost was zero, so no
	// debit happened. The entry stays eligible for a later re-bill.
	StatusRecorded Status = "recorded"
)

// Result is the outcome of reconciling one upstream call.
type Result struct {
	Status  Status
	Entry   ledger.Entry
	Charged float64
}

// Reconciler funnels both ingestion paths into a single idempotent billing
// step. Exactly-once semantics rest on two guards: a per-call critical
// section, and the settled check on the stored ledger row.
type Reconciler struct {
	agents   agents.Directory
	accounts accounts.Directory
	rates    *rates.Service
	ledger   ledger.Store
	credits  credit.Store
	metrics  *metrics.Metrics

	// Distributed lock is optional; when nil only the in-process mutex
	// guards the critical section.
	dist     *utils.KeyedLock
	distWait time.Duration

	mu keyedMutex
}

func NewReconciler(
	agentDir agents.Directory,
	accountDir accounts.Directory,
	rateSvc *rates.Service,
	ledgerStore ledger.Store,
	creditStore credit.Store,
	m *metrics.Metrics,
) *Reconciler {
	return &Reconciler{
		agents:   agentDir,
		accounts: accountDir,
		rates:    rateSvc,
		ledger:   ledgerStore,
		credits:  creditStore,
		metrics:  m,
		distWait: 5 * time.Second,
	}
}

// WithDistributedLock adds a Redis-backed lock around the per-call critical
// section, for deployments running more than one instance.
func (r *Reconciler) WithDistributedLock(l *utils.KeyedLock) *Reconciler {
	r.dist = l
	return r
}

// Reconcile processes one upstream call record. It is safe to call
// concurrently with the same call from both ingestion paths; at most one
// debit results.
func (r *Reconciler) Reconcile(ctx context.Context, call calls.RawCall) (Result, error) {
	start := time.Now()
	defer func() {
		r.metrics.ObserveReconcile(time.Since(start).Seconds())
	}()

	res, err := r.reconcile(ctx, call)
	if err != nil {
		r.metrics.IncReconcile("error")
		return res, err
	}
	r.metrics.IncReconcile(string(res.Status))
	return res, nil
}

func (r *Reconciler) reconcile(ctx context.Context, call calls.RawCall) (Result, error) {
	log := logger.From(ctx).With("call_id", call.ID)

	if call.ID == "" {
		return Result{Status: StatusSkipped}, nil
	}
	if !call.Terminal() {
		log.Debug("call not terminal, skipping", "status", call.Status)
		return Result{Status: StatusSkipped}, nil
	}
	if !call.Billable() {
		log.Debug("non-billable call type, skipping", "type", call.Type)
		return Result{Status: StatusSkipped}, nil
	}

	agent, account, ok, err := r.attribute(ctx, call)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		log.Warn("call has no owning account", "assistant_id", call.AssistantID)
		return Result{Status: StatusUnattributed}, nil
	}

	unlock := r.mu.lock(call.ID)
	defer unlock()

	if r.dist != nil {
		release, err := r.dist.Acquire(ctx, call.ID, r.distWait)
		if err != nil {
			return Result{}, fmt.Errorf("acquire call lock: %w", err)
		}
		defer release()
	}

	outcome := call.Classify()

	existing, err := r.ledger.ByExternalID(ctx, call.ID)
	switch {
	case err == nil && existing.Settled():
		if existing.Outcome == calls.OutcomeUnknown && outcome != calls.OutcomeUnknown {
			if err := r.ledger.SetOutcome(ctx, call.ID, outcome); err != nil {
				return Result{}, fmt.Errorf("refresh outcome: %w", err)
			}
			existing.Outcome = outcome
			log.Info("refreshed outcome on settled call", "outcome", outcome)
			return Result{Status: StatusOutcomeRefreshed, Entry: existing}, nil
		}
		return Result{Status: StatusAlreadyBilled, Entry: existing}, nil
	case err != nil && err != ledger.ErrNotFound:
		return Result{}, fmt.Errorf("load ledger entry: %w", err)
	}

	duration := call.ResolvedDuration()
	rate, err := r.effectiveRate(ctx, account, agent, call.Direction())
	if err != nil {
		return Result{}, err
	}
	cost := duration / 60 * rate

	entry := r.buildEntry(call, account, agent, duration, cost, outcome)
	stored, err := r.ledger.Upsert(ctx, entry)
	if err != nil {
		return Result{}, fmt.Errorf("write ledger entry: %w", err)
	}

	if cost <= 0 {
		log.Info("recorded zero-cost call", "duration_s", duration, "outcome", outcome)
		return Result{Status: StatusRecorded, Entry: stored}, nil
	}

	if _, err := r.credits.Debit(ctx, account.ID, cost); err != nil {
		// The entry claims billed but no money moved. Reopen it so the
		// next pass retries the debit.
		if derr := r.ledger.SetBilled(ctx, call.ID, false); derr != nil {
			log.Error("failed to reopen entry after debit failure", "error", derr)
		}
		return Result{}, fmt.Errorf("debit account %d: %w", account.ID, err)
	}

	log.Info("billed call",
		"account_id", account.ID,
		"duration_s", duration,
		"cost", cost,
		"outcome", outcome,
	)
	r.metrics.RecordCharge(cost)
	return Result{Status: StatusBilled, Entry: stored, Charged: cost}, nil
}

// attribute maps the call to its agent and owning account. A missing agent
// or account is not an error; the caller records the call as unattributed.
func (r *Reconciler) attribute(ctx context.Context, call calls.RawCall) (*agents.Agent, accounts.Account, bool, error) {
	if call.AssistantID == "" {
		return nil, accounts.Account{}, false, nil
	}
	agent, found, err := r.agents.ByUpstreamAssistant(ctx, call.AssistantID)
	if err != nil {
		return nil, accounts.Account{}, false, fmt.Errorf("look up agent: %w", err)
	}
	if !found {
		return nil, accounts.Account{}, false, nil
	}
	account, err := r.accounts.Get(ctx, agent.AccountID)
	if err != nil {
		if err == accounts.ErrNotFound {
			return nil, accounts.Account{}, false, nil
		}
		return nil, accounts.Account{}, false, fmt.Errorf("look up account: %w", err)
	}
	return &agent, account, true, nil
}

// effectiveRate returns the per-minute rate: the dynamic model plus
// transcriber rate when the agent's pricing config resolves, otherwise the
// account's legacy flat rate for the call direction.
func (r *Reconciler) effectiveRate(ctx context.Context, account accounts.Account, agent *agents.Agent, dir calls.Direction) (float64, error) {
	resolved, ok, err := r.rates.Resolve(ctx, account, agent.Pricing)
	if err != nil {
		return 0, fmt.Errorf("resolve rates: %w", err)
	}
	if ok {
		return resolved.TotalRate, nil
	}
	if dir == calls.DirectionOutbound {
		return account.OutboundRate, nil
	}
	return account.InboundRate, nil
}

func (r *Reconciler) buildEntry(call calls.RawCall, account accounts.Account, agent *agents.Agent, duration, cost float64, outcome calls.Outcome) ledger.Entry {
	var structured json.RawMessage
	if call.Analysis != nil {
		structured = call.Analysis.StructuredData
	}
	agentID := agent.ID
	return ledger.Entry{
		ExternalCallID:  call.ID,
		AccountID:       account.ID,
		AgentID:         &agentID,
		Direction:       call.Direction(),
		DurationSeconds: duration,
		CostCharged:     cost,
		Billed:          true,
		Outcome:         outcome,
		EndedReason:     call.EndedReason,
		CustomerNumber:  call.CustomerNumber(),
		Summary:         call.Summary(),
		Transcript:      call.TranscriptText(),
		StructuredData:  structured,
		RecordingURL:    call.RecordingURL,
		StartedAt:       call.StartedAt,
		EndedAt:         call.EndedAt,
	}
}
