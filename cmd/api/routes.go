package main

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"voiceagent-platform/internal/httpapi"
	"voiceagent-platform/internal/ingest"
	"voiceagent-platform/internal/metrics"
	"voiceagent-platform/internal/rbac"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, webhook *ingest.Webhook, m *metrics.Metrics, authMW gin.HandlerFunc) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{})))

	// Provider webhook (public). Authenticated by the shared secret header,
	// checked inside the handler.
	r.POST("/webhooks/voice/events", webhook.Handle)

	v1 := r.Group("/v1")

	// AUTH routes (token issuance) sit outside the access-token middleware.
	v1.POST("/auth/login", h.Login)

	sec := v1.Group("")
	sec.Use(authMW)
	sec.Use(rbac.RequireAccount())
	{
		sec.GET("/me", h.Me)

		// PRICING routes. Reads return the caller's effective view; writes
		// are scoped to the caller (owner writes the global catalog).
		pricing := sec.Group("/pricing")
		{
			pricing.GET("/models", h.GetModelRates)
			pricing.GET("/transcribers", h.GetTranscriberRates)

			writes := pricing.Group("")
			writes.Use(rbac.RequireAnyRole(rbac.RoleOwner, rbac.RoleAgency))
			{
				writes.PUT("/models", h.UpdateModelRates)
				writes.PUT("/transcribers", h.UpdateTranscriberRates)
			}
		}

		// Legacy per-account flat rates.
		sec.GET("/accounts/:account_id/rates", h.GetFlatRates)
		sec.PUT("/accounts/:account_id/rates", rbac.RequireAnyRole(rbac.RoleOwner, rbac.RoleAgency), h.UpdateFlatRates)

		// CALLS routes
		sec.GET("/calls", h.ListCalls)
		sec.PUT("/calls/:call_id/outcome", h.OverrideOutcome)

		sec.POST("/billing/sync", h.SyncBilling)

		// CREDITS routes
		credits := sec.Group("/credits")
		{
			credits.GET("", h.GetBalance)
			credits.GET("/accounts", rbac.RequireAnyRole(rbac.RoleOwner, rbac.RoleAgency), h.ListCreditAccounts)
			credits.POST("/:account_id", rbac.RequireAnyRole(rbac.RoleOwner, rbac.RoleAgency), h.AdjustCredits)
		}

		// REPORTS routes
		reports := sec.Group("/reports")
		{
			reports.GET("/calls", h.CallsReport)
			reports.GET("/spend", h.SpendReport)
			reports.GET("/conversions", h.ConversionReport)
		}
	}
}
