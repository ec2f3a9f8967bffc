package ingest

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"voiceagent-platform/internal/billing"
	"voiceagent-platform/internal/calls"
	"voiceagent-platform/internal/metrics"
	"voiceagent-platform/pkg/logger"
)

// Reconciler is the billing entry point shared by both ingestion paths.
type Reconciler interface {
	Reconcile(ctx context.Context, call calls.RawCall) (billing.Result, error)
}

// Forwarder relays a reconciled end-of-call event to the owning agent's
// configured endpoint.
type Forwarder interface {
	Forward(ctx context.Context, res billing.Result)
}

const secretHeader = "x-vapi-secret"

// Webhook handles provider event callbacks. The provider retries on
// non-2xx, so every processing failure after authentication still acks
// with 200; the poll path catches anything dropped here.
type Webhook struct {
	secret    string
	reconcile Reconciler
	forward   Forwarder
	metrics   *metrics.Metrics

	// dispatch runs reconciliation off the request goroutine. Tests swap
	// in a synchronous version.
	dispatch func(func())
}

func NewWebhook(secret string, r Reconciler, f Forwarder, m *metrics.Metrics) *Webhook {
	return &Webhook{
		secret:    secret,
		reconcile: r,
		forward:   f,
		metrics:   m,
		dispatch:  func(fn func()) { go fn() },
	}
}

// envelope is the provider's webhook wrapper. Report-level fields override
// their call-level counterparts when present.
type envelope struct {
	Message struct {
		Type         string          `json:"type"`
		Call         *calls.RawCall  `json:"call"`
		RecordingURL string          `json:"recordingUrl,omitempty"`
		Transcript   json.RawMessage `json:"transcript,omitempty"`
		Analysis     *calls.Analysis `json:"analysis,omitempty"`
	} `json:"message"`
}

func (w *Webhook) Handle(c *gin.Context) {
	log := logger.From(c.Request.Context())

	if w.secret != "" && c.GetHeader(secretHeader) != w.secret {
		log.Warn("webhook secret mismatch")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var env envelope
	if err := c.ShouldBindJSON(&env); err != nil {
		log.Warn("malformed webhook payload", "error", err)
		w.metrics.IncWebhookEvent("malformed")
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	msgType := env.Message.Type
	if msgType == "" {
		msgType = "unknown"
	}
	w.metrics.IncWebhookEvent(msgType)

	if msgType != "end-of-call-report" || env.Message.Call == nil || env.Message.Call.ID == "" {
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	call := *env.Message.Call
	if env.Message.RecordingURL != "" {
		call.RecordingURL = env.Message.RecordingURL
	}
	if len(env.Message.Transcript) > 0 {
		call.Transcript = env.Message.Transcript
	}
	if env.Message.Analysis != nil {
		call.Analysis = env.Message.Analysis
	}
	// End-of-call reports sometimes arrive before the call record flips
	// to ended; the report itself is proof of termination.
	call.Status = "ended"

	reqLog := log.With("call_id", call.ID)
	w.dispatch(func() {
		ctx := logger.With(context.Background(), reqLog)
		res, err := w.reconcile.Reconcile(ctx, call)
		if err != nil {
			reqLog.Error("webhook reconciliation failed", "error", err)
			return
		}
		if w.forward != nil {
			w.forward.Forward(ctx, res)
		}
	})

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
