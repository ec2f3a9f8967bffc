package rates

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"voiceagent-platform/internal/accounts"
	"voiceagent-platform/internal/agents"
)

// Service resolves effective per-minute rates and owns administrative
// rate mutations.
//
// Contract:
//   - Rate hierarchy: agency override > global default > fixed fallback.
//   - Resolution is a pure read; no provider SDK calls.
//   - Global defaults are seeded at most once per process lifetime, before
//     the first resolution, and seeding is idempotent and safe to race.
type Service struct {
	repo Repository

	seedOnce sync.Once
	seedErr  error
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// EnsureSeeded installs the platform default catalog at global scope if the
// rate table is empty. Callers on read paths invoke this lazily so a fresh
// database is usable without an out-of-band provisioning step.
func (s *Service) EnsureSeeded(ctx context.Context) error {
	s.seedOnce.Do(func() {
		ok, err := s.repo.HasGlobalRates(ctx)
		if err != nil {
			s.seedErr = err
			return
		}
		if ok {
			return
		}
		models := make([]ModelRateInput, 0, len(defaultModelRates))
		for _, m := range defaultModelRates {
			models = append(models, ModelRateInput{Provider: m.Provider, Model: m.Model, Rate: m.Rate})
		}
		transcribers := make([]TranscriberRateInput, 0, len(defaultTranscriberRates))
		for _, t := range defaultTranscriberRates {
			transcribers = append(transcribers, TranscriberRateInput{Provider: t.Provider, Rate: t.Rate})
		}
		s.seedErr = s.repo.SeedGlobalDefaults(ctx, models, transcribers)
	})
	return s.seedErr
}

// Resolve returns the effective combined rate for an agent's pricing config
// under the given account, walking agency override then global default.
//
// The second return is false when neither the model nor the transcriber has
// any table entry at any scope; the caller then falls back to the account's
// legacy flat rate.
func (s *Service) Resolve(ctx context.Context, account accounts.Account, cfg agents.PricingConfig) (Resolved, bool, error) {
	if !cfg.Complete() {
		return Resolved{}, false, nil
	}
	if err := s.EnsureSeeded(ctx); err != nil {
		return Resolved{}, false, err
	}

	transcriber := cfg.TranscriberProvider
	if transcriber == "" {
		transcriber = "deepgram"
	}

	modelRates, transcriberRates, err := s.effectiveRates(ctx, account.OverrideScope())
	if err != nil {
		return Resolved{}, false, err
	}

	modelRate, modelOK := modelRates[modelKey(cfg.ModelProvider, cfg.ModelName)]
	transcriberRate, transcriberOK := transcriberRates[transcriber]

	// Dynamic pricing applies only if at least one side has a table entry.
	if !modelOK && !transcriberOK {
		return Resolved{}, false, nil
	}
	if !modelOK {
		modelRate = DefaultModelRate
	}
	if !transcriberOK {
		transcriberRate = DefaultTranscriberRate
	}

	return Resolved{
		ModelRate:       modelRate,
		TranscriberRate: transcriberRate,
		TotalRate:       modelRate + transcriberRate,
	}, true, nil
}

// EffectiveModelRates returns the global catalog with the account's agency
// overrides applied. Used for the client-facing read view.
func (s *Service) EffectiveModelRates(ctx context.Context, account accounts.Account) ([]ModelRate, error) {
	if err := s.EnsureSeeded(ctx); err != nil {
		return nil, err
	}
	global, err := s.repo.ListModelRates(ctx, GlobalScope)
	if err != nil {
		return nil, err
	}
	modelRates, _, err := s.effectiveRates(ctx, account.OverrideScope())
	if err != nil {
		return nil, err
	}
	out := make([]ModelRate, 0, len(global))
	for _, g := range global {
		if r, ok := modelRates[modelKey(g.Provider, g.Model)]; ok {
			g.RatePerMinute = r
		}
		out = append(out, g)
	}
	return out, nil
}

// EffectiveTranscriberRates mirrors EffectiveModelRates for transcribers.
func (s *Service) EffectiveTranscriberRates(ctx context.Context, account accounts.Account) ([]TranscriberRate, error) {
	if err := s.EnsureSeeded(ctx); err != nil {
		return nil, err
	}
	global, err := s.repo.ListTranscriberRates(ctx, GlobalScope)
	if err != nil {
		return nil, err
	}
	_, transcriberRates, err := s.effectiveRates(ctx, account.OverrideScope())
	if err != nil {
		return nil, err
	}
	out := make([]TranscriberRate, 0, len(global))
	for _, g := range global {
		if r, ok := transcriberRates[g.Provider]; ok {
			g.RatePerMinute = r
		}
		out = append(out, g)
	}
	return out, nil
}

// ListModelRates / ListTranscriberRates expose a single scope, for the
// owner and agency administrative views.
func (s *Service) ListModelRates(ctx context.Context, scope int64) ([]ModelRate, error) {
	if err := s.EnsureSeeded(ctx); err != nil {
		return nil, err
	}
	return s.repo.ListModelRates(ctx, scope)
}

func (s *Service) ListTranscriberRates(ctx context.Context, scope int64) ([]TranscriberRate, error) {
	if err := s.EnsureSeeded(ctx); err != nil {
		return nil, err
	}
	return s.repo.ListTranscriberRates(ctx, scope)
}

// FloorViolation describes one override entry rejected for undercutting the
// corresponding global rate.
type FloorViolation struct {
	Provider   string  `json:"provider"`
	Model      string  `json:"model,omitempty"`
	Rate       float64 `json:"rate"`
	GlobalRate float64 `json:"global_rate"`
}

// FloorError rejects an administrative write outright; no partial apply.
type FloorError struct {
	Violations []FloorViolation
}

func (e *FloorError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		key := v.Provider
		if v.Model != "" {
			key = v.Provider + "/" + v.Model
		}
		parts = append(parts, fmt.Sprintf("%s: %.4f below global %.4f", key, v.Rate, v.GlobalRate))
	}
	return "rate below global floor: " + strings.Join(parts, "; ")
}

// UpdateModelRates upserts model rates at the given scope. Override scopes
// may not price below the corresponding global rate; every violating entry
// is itemized in the returned error and nothing is written.
func (s *Service) UpdateModelRates(ctx context.Context, scope int64, in []ModelRateInput) error {
	if err := validateModelInputs(in); err != nil {
		return err
	}
	if scope != GlobalScope {
		global, err := s.repo.ListModelRates(ctx, GlobalScope)
		if err != nil {
			return err
		}
		floor := make(map[string]float64, len(global))
		for _, g := range global {
			floor[modelKey(g.Provider, g.Model)] = g.RatePerMinute
		}
		var violations []FloorViolation
		for _, e := range in {
			if g, ok := floor[modelKey(e.Provider, e.Model)]; ok && e.Rate < g {
				violations = append(violations, FloorViolation{Provider: e.Provider, Model: e.Model, Rate: e.Rate, GlobalRate: g})
			}
		}
		if len(violations) > 0 {
			return &FloorError{Violations: violations}
		}
	}
	return s.repo.UpsertModelRates(ctx, scope, in)
}

// UpdateTranscriberRates mirrors UpdateModelRates for transcribers.
func (s *Service) UpdateTranscriberRates(ctx context.Context, scope int64, in []TranscriberRateInput) error {
	if err := validateTranscriberInputs(in); err != nil {
		return err
	}
	if scope != GlobalScope {
		global, err := s.repo.ListTranscriberRates(ctx, GlobalScope)
		if err != nil {
			return err
		}
		floor := make(map[string]float64, len(global))
		for _, g := range global {
			floor[g.Provider] = g.RatePerMinute
		}
		var violations []FloorViolation
		for _, e := range in {
			if g, ok := floor[e.Provider]; ok && e.Rate < g {
				violations = append(violations, FloorViolation{Provider: e.Provider, Rate: e.Rate, GlobalRate: g})
			}
		}
		if len(violations) > 0 {
			return &FloorError{Violations: violations}
		}
	}
	return s.repo.UpsertTranscriberRates(ctx, scope, in)
}

func (s *Service) effectiveRates(ctx context.Context, overrideScope int64) (map[string]float64, map[string]float64, error) {
	globalModels, err := s.repo.ListModelRates(ctx, GlobalScope)
	if err != nil {
		return nil, nil, err
	}
	globalTranscribers, err := s.repo.ListTranscriberRates(ctx, GlobalScope)
	if err != nil {
		return nil, nil, err
	}

	modelRates := make(map[string]float64, len(globalModels))
	for _, m := range globalModels {
		modelRates[modelKey(m.Provider, m.Model)] = m.RatePerMinute
	}
	transcriberRates := make(map[string]float64, len(globalTranscribers))
	for _, t := range globalTranscribers {
		transcriberRates[t.Provider] = t.RatePerMinute
	}

	if overrideScope > 0 {
		overrideModels, err := s.repo.ListModelRates(ctx, overrideScope)
		if err != nil {
			return nil, nil, err
		}
		for _, m := range overrideModels {
			modelRates[modelKey(m.Provider, m.Model)] = m.RatePerMinute
		}
		overrideTranscribers, err := s.repo.ListTranscriberRates(ctx, overrideScope)
		if err != nil {
			return nil, nil, err
		}
		for _, t := range overrideTranscribers {
			transcriberRates[t.Provider] = t.RatePerMinute
		}
	}

	return modelRates, transcriberRates, nil
}

func validateModelInputs(in []ModelRateInput) error {
	for _, e := range in {
		if e.Provider == "" || e.Model == "" || e.Rate < 0 {
			return fmt.Errorf("invalid rate entry: provider=%q model=%q rate=%v", e.Provider, e.Model, e.Rate)
		}
	}
	return nil
}

func validateTranscriberInputs(in []TranscriberRateInput) error {
	for _, e := range in {
		if e.Provider == "" || e.Rate < 0 {
			return fmt.Errorf("invalid rate entry: provider=%q rate=%v", e.Provider, e.Rate)
		}
	}
	return nil
}

func modelKey(provider, model string) string {
	return provider + "::" + model
}
