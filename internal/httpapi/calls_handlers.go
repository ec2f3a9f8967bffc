package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"voiceagent-platform/internal/calls"
	"voiceagent-platform/internal/credit"
	"voiceagent-platform/internal/ledger"
	"voiceagent-platform/pkg/logger"
)

// ListCalls returns the requester's call history. A sync against the
// provider runs first so the listing reflects calls the webhook path may
// have missed; a failed sync degrades the response instead of blocking it.
func (h Handlers) ListCalls(c *gin.Context) {
	requester, ok := h.requester(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	var summary any
	degraded := false
	if h.Poller != nil {
		s, err := h.Poller.Sync(ctx)
		if err != nil {
			logger.From(ctx).Warn("call sync failed, serving stored data", "error", err)
			degraded = true
		}
		summary = s
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	filter := ledger.ListFilter{AccountID: requester.ID, Limit: limit}
	if o := c.Query("outcome"); o != "" {
		if !calls.ValidOutcome(o) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid outcome filter"})
			return
		}
		filter.Outcome = calls.Outcome(o)
	}

	entries, err := h.Ledger.List(ctx, filter)
	if err != nil {
		h.internalError(c, "list calls", err)
		return
	}

	resp := gin.H{"calls": entries, "degraded": degraded}
	if summary != nil {
		resp["billing"] = summary
	}
	if bal, err := h.Credits.Get(ctx, requester.ID); err == nil {
		resp["credits"] = bal.Credits
	}
	c.JSON(http.StatusOK, resp)
}

// SyncBilling runs one poll pass on demand and returns its summary.
func (h Handlers) SyncBilling(c *gin.Context) {
	requester, ok := h.requester(c)
	if !ok {
		return
	}
	if h.Poller == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "upstream sync not configured"})
		return
	}
	s, err := h.Poller.Sync(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"summary": s, "error": "sync degraded"})
		return
	}
	if h.Audit != nil {
		_ = h.Audit.Append(c.Request.Context(), auditBillingSync(requester.ID, requester.Role, c.ClientIP()))
	}
	c.JSON(http.StatusOK, gin.H{"summary": s})
}

type overrideOutcomeRequest struct {
	Outcome string `json:"outcome"`
}

// OverrideOutcome corrects the classified outcome of one call. Only the
// outcome changes; billing fields are untouchable through this endpoint.
func (h Handlers) OverrideOutcome(c *gin.Context) {
	requester, ok := h.requester(c)
	if !ok {
		return
	}
	callID := c.Param("call_id")
	if callID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "call_id required"})
		return
	}

	var req overrideOutcomeRequest
	if err := c.ShouldBindJSON(&req); err != nil || !calls.ValidOutcome(req.Outcome) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "valid outcome required"})
		return
	}
	ctx := c.Request.Context()

	entry, err := h.Ledger.ByExternalID(ctx, callID)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "call not found"})
			return
		}
		h.internalError(c, "load call", err)
		return
	}
	if entry.AccountID != requester.ID {
		target, err := h.Accounts.Get(ctx, entry.AccountID)
		if err != nil || !canManage(requester, target) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}
	}

	if err := h.Ledger.SetOutcome(ctx, callID, calls.Outcome(req.Outcome)); err != nil {
		h.internalError(c, "override outcome", err)
		return
	}
	if h.Audit != nil {
		if err := h.Audit.LogOutcomeOverride(ctx, requester.ID, requester.Role, c.ClientIP(), callID, `{"outcome":"`+req.Outcome+`"}`); err != nil {
			logger.From(ctx).Warn("audit append failed", "error", err)
		}
	}
	c.JSON(http.StatusOK, gin.H{"call_id": callID, "outcome": req.Outcome})
}

// GetBalance returns the requester's own credit balance.
func (h Handlers) GetBalance(c *gin.Context) {
	requester, ok := h.requester(c)
	if !ok {
		return
	}
	bal, err := h.Credits.Get(c.Request.Context(), requester.ID)
	if err != nil {
		if errors.Is(err, credit.ErrNotFound) {
			c.JSON(http.StatusOK, gin.H{"account_id": requester.ID, "credits": 0})
			return
		}
		h.internalError(c, "get balance", err)
		return
	}
	c.JSON(http.StatusOK, bal)
}
