package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"voiceagent-platform/internal/accounts"
	"voiceagent-platform/internal/audit"
	"voiceagent-platform/internal/auth"
	"voiceagent-platform/internal/credit"
	"voiceagent-platform/internal/ingest"
	"voiceagent-platform/internal/ledger"
	"voiceagent-platform/internal/rates"
	"voiceagent-platform/internal/rbac"
	"voiceagent-platform/internal/reporting"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.

type Handlers struct {
	Auth     *auth.Manager
	Accounts accounts.Directory
	Rates    *rates.Service
	Ledger   ledger.Store
	Credits  credit.Store
	Poller   *ingest.Poller
	Reports  *reporting.Service
	Audit    *audit.Service
}

// --- Auth ---

type loginRequest struct {
	AccountID int64 `json:"account_id"`
}

// Login issues a JWT token pair for a known account.
//
// NOTE: Credential validation (password, SSO) is not wired here; upstream
// identity is assumed to be checked by the deployment's auth proxy.
func (h Handlers) Login(c *gin.Context) {
	if h.Auth == nil || h.Accounts == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "auth not configured"})
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.AccountID == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "account_id required"})
		return
	}
	account, err := h.Accounts.Get(c.Request.Context(), req.AccountID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown account"})
		return
	}
	pair, err := h.Auth.IssuePair(time.Now(), account.ID, account.Role)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken, "refresh_token": pair.RefreshToken})
}

// Me returns the requester's identity.
func (h Handlers) Me(c *gin.Context) {
	id, _ := auth.AccountID(c.Request.Context())
	role, _ := auth.Role(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"account_id": id, "role": role})
}

// requester loads the authenticated account, aborting on failure.
func (h Handlers) requester(c *gin.Context) (accounts.Account, bool) {
	id, err := auth.AccountID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return accounts.Account{}, false
	}
	account, err := h.Accounts.Get(c.Request.Context(), id)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown account"})
		return accounts.Account{}, false
	}
	return account, true
}

// queryTargetAccount resolves the optional ?account_id query parameter,
// defaulting to the requester and enforcing visibility.
func (h Handlers) queryTargetAccount(c *gin.Context, requester accounts.Account) (int64, bool) {
	raw := c.Query("account_id")
	if raw == "" {
		return requester.ID, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid account id"})
		return 0, false
	}
	if id == requester.ID {
		return id, true
	}
	target, err := h.Accounts.Get(c.Request.Context(), id)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "account not found"})
		return 0, false
	}
	if !canManage(requester, target) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return 0, false
	}
	return id, true
}

// canManage reports whether requester may administer the target account:
// owner manages anyone, an agency manages its own clients only.
func canManage(requester accounts.Account, target accounts.Account) bool {
	if rbac.IsOwner(requester.Role) {
		return true
	}
	if rbac.IsAgency(requester.Role) {
		return target.AgencyID != nil && *target.AgencyID == requester.ID
	}
	return false
}
