package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"voiceagent-platform/internal/accounts"
	"voiceagent-platform/internal/audit"
	"voiceagent-platform/internal/auth"
	"voiceagent-platform/internal/calls"
	"voiceagent-platform/internal/credit"
	"voiceagent-platform/internal/ledger"
	"voiceagent-platform/internal/rates"
	"voiceagent-platform/internal/reporting"
)

type testEnv struct {
	handlers Handlers
	credits  *credit.MemoryStore
	ledger   *ledger.MemoryStore
	audit    *audit.MemoryRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	agencyID := int64(2)
	dir := accounts.NewMemoryDirectory(
		accounts.Account{ID: 1, Email: "owner@example.com", Role: "owner"},
		accounts.Account{ID: 2, Email: "agency@example.com", Role: "agency"},
		accounts.Account{ID: 3, Email: "client@example.com", Role: "client", AgencyID: &agencyID, OutboundRate: 0.10, InboundRate: 0.05},
		accounts.Account{ID: 4, Email: "stranger@example.com", Role: "client"},
	)
	credits := credit.NewMemoryStore()
	credits.Seed(3, 50)
	ledgerStore := ledger.NewMemoryStore()
	auditRepo := audit.NewMemoryRepo()

	h := Handlers{
		Accounts: dir,
		Rates:    rates.NewService(&rates.MemoryRepo{}),
		Ledger:   ledgerStore,
		Credits:  credits,
		Reports:  reporting.NewService(ledgerStore),
		Audit:    audit.NewService(auditRepo),
	}
	return &testEnv{handlers: h, credits: credits, ledger: ledgerStore, audit: auditRepo}
}

// asAccount injects an authenticated identity the way the JWT middleware
// would.
func asAccount(id int64, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := auth.WithIdentity(c.Request.Context(), id, role)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(rec, req)
	return rec
}

func TestAdjustCredits_OwnerCanTargetAnyone(t *testing.T) {
	gin.SetMode(gin.TestMode)
	env := newTestEnv(t)

	r := gin.New()
	r.POST("/v1/credits/:account_id", asAccount(1, "owner"), env.handlers.AdjustCredits)

	resp := doJSON(r, http.MethodPost, "/v1/credits/3", `{"amount": 25, "operation": "add"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.Code, resp.Body.String())
	}

	bal, _ := env.credits.Get(context.Background(), 3)
	if bal.Credits != 75 {
		t.Fatalf("balance = %v, want 75", bal.Credits)
	}
	if evs := env.audit.Events(); len(evs) != 1 || evs[0].Type != audit.EventTypeCreditAdjustment {
		t.Fatalf("audit events: %+v", evs)
	}
}

func TestAdjustCredits_AgencyLimitedToOwnClients(t *testing.T) {
	gin.SetMode(gin.TestMode)
	env := newTestEnv(t)

	r := gin.New()
	r.POST("/v1/credits/:account_id", asAccount(2, "agency"), env.handlers.AdjustCredits)

	if resp := doJSON(r, http.MethodPost, "/v1/credits/3", `{"amount": 5}`); resp.Code != http.StatusOK {
		t.Fatalf("own client: status = %d", resp.Code)
	}
	if resp := doJSON(r, http.MethodPost, "/v1/credits/4", `{"amount": 5}`); resp.Code != http.StatusForbidden {
		t.Fatalf("foreign client: status = %d, want 403", resp.Code)
	}
}

func TestAdjustCredits_SubtractFloor(t *testing.T) {
	gin.SetMode(gin.TestMode)
	env := newTestEnv(t)

	r := gin.New()
	r.POST("/v1/credits/:account_id", asAccount(1, "owner"), env.handlers.AdjustCredits)

	resp := doJSON(r, http.MethodPost, "/v1/credits/3", `{"amount": 100, "operation": "subtract"}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.Code)
	}
	if resp := doJSON(r, http.MethodPost, "/v1/credits/3", `{"amount": -5}`); resp.Code != http.StatusBadRequest {
		t.Fatalf("negative amount: status = %d, want 400", resp.Code)
	}
}

func TestUpdateModelRates_AgencyFloorViolation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	env := newTestEnv(t)

	r := gin.New()
	r.PUT("/v1/pricing/models", asAccount(2, "agency"), env.handlers.UpdateModelRates)

	resp := doJSON(r, http.MethodPut, "/v1/pricing/models",
		`{"rates": [{"provider": "openai", "model": "gpt-4o", "rate": 0.01}]}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.Code)
	}
	var body struct {
		Violations []rates.FloorViolation `json:"violations"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Violations) != 1 || body.Violations[0].Model != "gpt-4o" {
		t.Fatalf("violations: %+v", body.Violations)
	}
}

func TestUpdateModelRates_OwnerWritesGlobal(t *testing.T) {
	gin.SetMode(gin.TestMode)
	env := newTestEnv(t)

	r := gin.New()
	r.PUT("/v1/pricing/models", asAccount(1, "owner"), env.handlers.UpdateModelRates)

	resp := doJSON(r, http.MethodPut, "/v1/pricing/models",
		`{"rates": [{"provider": "openai", "model": "gpt-4o", "rate": 0.01}]}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.Code, resp.Body.String())
	}

	global, err := env.handlers.Rates.ListModelRates(context.Background(), rates.GlobalScope)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var got float64
	for _, m := range global {
		if m.Provider == "openai" && m.Model == "gpt-4o" {
			got = m.RatePerMinute
		}
	}
	if got != 0.01 {
		t.Fatalf("global gpt-4o = %v, want 0.01", got)
	}
}

func TestOverrideOutcome(t *testing.T) {
	gin.SetMode(gin.TestMode)
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.ledger.Upsert(ctx, ledger.Entry{
		ExternalCallID: "call-1",
		AccountID:      3,
		Outcome:        calls.OutcomeUnknown,
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	r := gin.New()
	r.PUT("/v1/calls/:call_id/outcome", asAccount(3, "client"), env.handlers.OverrideOutcome)

	if resp := doJSON(r, http.MethodPut, "/v1/calls/call-1/outcome", `{"outcome": "booked"}`); resp.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.Code, resp.Body.String())
	}
	e, _ := env.ledger.ByExternalID(ctx, "call-1")
	if e.Outcome != calls.OutcomeBooked {
		t.Fatalf("outcome = %s, want booked", e.Outcome)
	}

	if resp := doJSON(r, http.MethodPut, "/v1/calls/call-1/outcome", `{"outcome": "sold"}`); resp.Code != http.StatusBadRequest {
		t.Fatalf("invalid outcome: status = %d, want 400", resp.Code)
	}
	if resp := doJSON(r, http.MethodPut, "/v1/calls/missing/outcome", `{"outcome": "booked"}`); resp.Code != http.StatusNotFound {
		t.Fatalf("missing call: status = %d, want 404", resp.Code)
	}
}

func TestOverrideOutcome_ForeignCallDenied(t *testing.T) {
	gin.SetMode(gin.TestMode)
	env := newTestEnv(t)

	if _, err := env.ledger.Upsert(context.Background(), ledger.Entry{
		ExternalCallID: "call-4",
		AccountID:      4,
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	r := gin.New()
	r.PUT("/v1/calls/:call_id/outcome", asAccount(3, "client"), env.handlers.OverrideOutcome)
	if resp := doJSON(r, http.MethodPut, "/v1/calls/call-4/outcome", `{"outcome": "booked"}`); resp.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", resp.Code)
	}
}

func TestListCalls_ScopedToRequester(t *testing.T) {
	gin.SetMode(gin.TestMode)
	env := newTestEnv(t)
	ctx := context.Background()

	env.ledger.Upsert(ctx, ledger.Entry{ExternalCallID: "c1", AccountID: 3, Outcome: calls.OutcomeAnswered})
	env.ledger.Upsert(ctx, ledger.Entry{ExternalCallID: "c2", AccountID: 4, Outcome: calls.OutcomeAnswered})

	r := gin.New()
	r.GET("/v1/calls", asAccount(3, "client"), env.handlers.ListCalls)

	resp := doJSON(r, http.MethodGet, "/v1/calls", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d", resp.Code)
	}
	var body struct {
		Calls   []ledger.Entry `json:"calls"`
		Credits float64        `json:"credits"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Calls) != 1 || body.Calls[0].ExternalCallID != "c1" {
		t.Fatalf("calls: %+v", body.Calls)
	}
	if body.Credits != 50 {
		t.Fatalf("credits = %v, want 50", body.Credits)
	}
}

func TestGetModelRates_ClientSeesEffectiveView(t *testing.T) {
	gin.SetMode(gin.TestMode)
	env := newTestEnv(t)

	// Agency override applies to its client's read view.
	if err := env.handlers.Rates.UpdateModelRates(context.Background(), 2, []rates.ModelRateInput{
		{Provider: "openai", Model: "gpt-4o", Rate: 0.5},
	}); err != nil {
		t.Fatalf("override: %v", err)
	}

	r := gin.New()
	r.GET("/v1/pricing/models", asAccount(3, "client"), env.handlers.GetModelRates)

	resp := doJSON(r, http.MethodGet, "/v1/pricing/models", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d", resp.Code)
	}
	var body struct {
		Rates []rates.ModelRate `json:"rates"`
		Scope string            `json:"scope"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Scope != "effective" {
		t.Fatalf("scope = %q", body.Scope)
	}
	var got float64
	for _, m := range body.Rates {
		if m.Provider == "openai" && m.Model == "gpt-4o" {
			got = m.RatePerMinute
		}
	}
	if got != 0.5 {
		t.Fatalf("effective gpt-4o = %v, want 0.5", got)
	}
}
