package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"voiceagent-platform/internal/accounts"
)

// Legacy flat per-minute rates, kept for accounts whose agents have no
// pricing config.

func (h Handlers) GetFlatRates(c *gin.Context) {
	requester, ok := h.requester(c)
	if !ok {
		return
	}
	target, ok := h.targetAccount(c, requester)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"account_id":    target.ID,
		"outbound_rate": target.OutboundRate,
		"inbound_rate":  target.InboundRate,
	})
}

type updateFlatRatesRequest struct {
	OutboundRate *float64 `json:"outbound_rate"`
	InboundRate  *float64 `json:"inbound_rate"`
}

// UpdateFlatRates sets an account's legacy flat rates. Owner only.
func (h Handlers) UpdateFlatRates(c *gin.Context) {
	requester, ok := h.requester(c)
	if !ok {
		return
	}
	target, ok := h.targetAccount(c, requester)
	if !ok {
		return
	}

	var req updateFlatRatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	outbound := target.OutboundRate
	inbound := target.InboundRate
	if req.OutboundRate != nil {
		outbound = *req.OutboundRate
	}
	if req.InboundRate != nil {
		inbound = *req.InboundRate
	}
	if outbound < 0 || inbound < 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "rates must be non-negative"})
		return
	}

	updated, err := h.Accounts.UpdateFlatRates(c.Request.Context(), target.ID, outbound, inbound)
	if err != nil {
		h.internalError(c, "update flat rates", err)
		return
	}
	h.auditRateUpdate(c, requester.ID, requester.Role, target.ID)
	c.JSON(http.StatusOK, gin.H{
		"account_id":    updated.ID,
		"outbound_rate": updated.OutboundRate,
		"inbound_rate":  updated.InboundRate,
	})
}

// targetAccount resolves the :account_id path parameter (defaulting to the
// requester) and enforces visibility.
func (h Handlers) targetAccount(c *gin.Context, requester accounts.Account) (accounts.Account, bool) {
	raw := c.Param("account_id")
	if raw == "" {
		return requester, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid account id"})
		return accounts.Account{}, false
	}
	if id == requester.ID {
		return requester, true
	}
	target, err := h.Accounts.Get(c.Request.Context(), id)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "account not found"})
		return accounts.Account{}, false
	}
	if !canManage(requester, target) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return accounts.Account{}, false
	}
	return target, true
}
