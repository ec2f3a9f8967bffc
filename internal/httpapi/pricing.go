package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"voiceagent-platform/internal/accounts"
	"voiceagent-platform/internal/rates"
	"voiceagent-platform/internal/rbac"
	"voiceagent-platform/pkg/logger"
)

// Dynamic pricing endpoints.
//
// Reads are role-aware: the owner sees the global catalog as-is, everyone
// else sees the catalog with their agency's overrides applied. Writes go to
// the global scope for the owner and to the agency's own scope for an
// agency; agency writes may not undercut the global floor.

func (h Handlers) GetModelRates(c *gin.Context) {
	requester, ok := h.requester(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if rbac.IsOwner(requester.Role) {
		out, err := h.Rates.ListModelRates(ctx, rates.GlobalScope)
		if err != nil {
			h.internalError(c, "list model rates", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"rates": out, "scope": "global"})
		return
	}

	out, err := h.Rates.EffectiveModelRates(ctx, requester)
	if err != nil {
		h.internalError(c, "effective model rates", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rates": out, "scope": "effective"})
}

func (h Handlers) GetTranscriberRates(c *gin.Context) {
	requester, ok := h.requester(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if rbac.IsOwner(requester.Role) {
		out, err := h.Rates.ListTranscriberRates(ctx, rates.GlobalScope)
		if err != nil {
			h.internalError(c, "list transcriber rates", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"rates": out, "scope": "global"})
		return
	}

	out, err := h.Rates.EffectiveTranscriberRates(ctx, requester)
	if err != nil {
		h.internalError(c, "effective transcriber rates", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rates": out, "scope": "effective"})
}

type updateModelRatesRequest struct {
	Rates []rates.ModelRateInput `json:"rates"`
}

func (h Handlers) UpdateModelRates(c *gin.Context) {
	requester, ok := h.requester(c)
	if !ok {
		return
	}
	var req updateModelRatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if len(req.Rates) == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "rates must be a non-empty array"})
		return
	}

	scope := writeScope(requester)
	err := h.Rates.UpdateModelRates(c.Request.Context(), scope, req.Rates)
	if err != nil {
		h.rateUpdateError(c, err)
		return
	}
	h.auditRateUpdate(c, requester.ID, requester.Role, scope)
	c.JSON(http.StatusOK, gin.H{"updated": len(req.Rates)})
}

type updateTranscriberRatesRequest struct {
	Rates []rates.TranscriberRateInput `json:"rates"`
}

func (h Handlers) UpdateTranscriberRates(c *gin.Context) {
	requester, ok := h.requester(c)
	if !ok {
		return
	}
	var req updateTranscriberRatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if len(req.Rates) == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "rates must be a non-empty array"})
		return
	}

	scope := writeScope(requester)
	err := h.Rates.UpdateTranscriberRates(c.Request.Context(), scope, req.Rates)
	if err != nil {
		h.rateUpdateError(c, err)
		return
	}
	h.auditRateUpdate(c, requester.ID, requester.Role, scope)
	c.JSON(http.StatusOK, gin.H{"updated": len(req.Rates)})
}

func writeScope(requester accounts.Account) int64 {
	if rbac.IsOwner(requester.Role) {
		return rates.GlobalScope
	}
	return requester.ID
}

func (h Handlers) rateUpdateError(c *gin.Context, err error) {
	var floorErr *rates.FloorError
	if errors.As(err, &floorErr) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":      "rates below global floor",
			"violations": floorErr.Violations,
		})
		return
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func (h Handlers) auditRateUpdate(c *gin.Context, actorID int64, actorRole string, scope int64) {
	if h.Audit == nil {
		return
	}
	if err := h.Audit.LogRateUpdate(c.Request.Context(), actorID, actorRole, c.ClientIP(), scope, ""); err != nil {
		logger.From(c.Request.Context()).Warn("audit append failed", "error", err)
	}
}

func (h Handlers) internalError(c *gin.Context, op string, err error) {
	logger.From(c.Request.Context()).Error(op+" failed", "error", err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
