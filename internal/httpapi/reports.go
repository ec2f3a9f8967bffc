package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"voiceagent-platform/internal/reporting"
)

// Report endpoints aggregate the requester's own ledger. Owners and
// agencies may inspect another visible account via ?account_id.

func (h Handlers) CallsReport(c *gin.Context) {
	accountID, r, ok := h.reportScope(c)
	if !ok {
		return
	}
	out, err := h.Reports.CallsSummary(c.Request.Context(), reporting.CallsSummaryRequest{AccountID: accountID, Range: r})
	if err != nil {
		h.internalError(c, "calls report", err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) SpendReport(c *gin.Context) {
	accountID, r, ok := h.reportScope(c)
	if !ok {
		return
	}
	out, err := h.Reports.SpendSummary(c.Request.Context(), reporting.SpendSummaryRequest{AccountID: accountID, Range: r})
	if err != nil {
		h.internalError(c, "spend report", err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) ConversionReport(c *gin.Context) {
	accountID, r, ok := h.reportScope(c)
	if !ok {
		return
	}
	out, err := h.Reports.ConversionMetrics(c.Request.Context(), reporting.ConversionMetricsRequest{AccountID: accountID, Range: r})
	if err != nil {
		h.internalError(c, "conversion report", err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) reportScope(c *gin.Context) (int64, reporting.TimeRange, bool) {
	requester, ok := h.requester(c)
	if !ok {
		return 0, reporting.TimeRange{}, false
	}
	target, ok := h.queryTargetAccount(c, requester)
	if !ok {
		return 0, reporting.TimeRange{}, false
	}

	var r reporting.TimeRange
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "from must be RFC3339"})
			return 0, reporting.TimeRange{}, false
		}
		r.From = t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "to must be RFC3339"})
			return 0, reporting.TimeRange{}, false
		}
		r.To = t
	}
	return target, r, true
}
