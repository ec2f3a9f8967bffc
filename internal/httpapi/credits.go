package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"voiceagent-platform/internal/audit"
	"voiceagent-platform/internal/credit"
	"voiceagent-platform/pkg/logger"
)

// Credit administration. Only the owner and agencies reach these handlers;
// the route group enforces the role, canManage enforces the target.

type creditAccountView struct {
	AccountID int64   `json:"account_id"`
	Email     string  `json:"email"`
	Name      string  `json:"name"`
	Role      string  `json:"role"`
	Credits   float64 `json:"credits"`
}

// ListCreditAccounts returns balances for every account the requester may
// manage.
func (h Handlers) ListCreditAccounts(c *gin.Context) {
	requester, ok := h.requester(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	visible, err := h.Accounts.ListVisibleTo(ctx, requester.ID, requester.Role)
	if err != nil {
		h.internalError(c, "list accounts", err)
		return
	}

	out := make([]creditAccountView, 0, len(visible))
	for _, a := range visible {
		view := creditAccountView{AccountID: a.ID, Email: a.Email, Name: a.Name, Role: a.Role}
		if bal, err := h.Credits.Get(ctx, a.ID); err == nil {
			view.Credits = bal.Credits
		}
		out = append(out, view)
	}
	c.JSON(http.StatusOK, gin.H{"accounts": out})
}

type adjustCreditsRequest struct {
	Amount    float64 `json:"amount"`
	Operation string  `json:"operation"`
}

// AdjustCredits applies a manual balance change to the target account.
func (h Handlers) AdjustCredits(c *gin.Context) {
	requester, ok := h.requester(c)
	if !ok {
		return
	}
	targetID, err := strconv.ParseInt(c.Param("account_id"), 10, 64)
	if err != nil || targetID <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid account id"})
		return
	}

	var req adjustCreditsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.Amount < 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "amount must be a positive number"})
		return
	}
	op := credit.AdjustOp(req.Operation)
	if req.Operation == "" {
		op = credit.OpAdd
	}
	switch op {
	case credit.OpAdd, credit.OpSubtract, credit.OpSet:
	default:
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "operation must be add, subtract, or set"})
		return
	}
	ctx := c.Request.Context()

	target, err := h.Accounts.Get(ctx, targetID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "account not found"})
		return
	}
	if !canManage(requester, target) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return
	}

	bal, err := h.Credits.Adjust(ctx, targetID, op, req.Amount)
	if err != nil {
		if errors.Is(err, credit.ErrInsufficientCredits) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "insufficient credits, cannot go below 0"})
			return
		}
		if errors.Is(err, credit.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "no credit account"})
			return
		}
		h.internalError(c, "adjust credits", err)
		return
	}

	if h.Audit != nil {
		meta := fmt.Sprintf(`{"op":%q,"amount":%g}`, op, req.Amount)
		if err := h.Audit.LogCreditAdjustment(ctx, requester.ID, requester.Role, c.ClientIP(), targetID, meta); err != nil {
			logger.From(ctx).Warn("audit append failed", "error", err)
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"account_id":  targetID,
		"new_balance": bal.Credits,
	})
}

func auditBillingSync(actorID int64, actorRole, ip string) audit.Event {
	return audit.Event{
		Type:           audit.EventTypeBillingSync,
		ActorAccountID: actorID,
		ActorRole:      actorRole,
		IPAddress:      ip,
		Message:        "manual billing sync",
	}
}
