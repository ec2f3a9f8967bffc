package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds the Prometheus collectors for the platform.
type Metrics struct {
	registry *prometheus.Registry

	// Reconciliation metrics.
	ReconcileTotal      *prometheus.CounterVec
	BilledCallsTotal    prometheus.Counter
	CreditsChargedTotal prometheus.Counter
	ReconcileDuration   prometheus.Histogram

	// Ingestion metrics.
	WebhookEventsTotal *prometheus.CounterVec
	PollRunsTotal      *prometheus.CounterVec

	// Upstream client metrics.
	UpstreamRequestsTotal   *prometheus.CounterVec
	UpstreamRequestDuration prometheus.Histogram

	// Server lifecycle.
	ServerStartTime prometheus.Gauge
}

// New creates and registers all metrics on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,

		ReconcileTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "voiceagent_reconcile_total",
			Help: "Total reconciliation attempts by outcome status.",
		}, []string{"status"}),

		BilledCallsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "voiceagent_billed_calls_total",
			Help: "Total calls charged to a credit balance.",
		}),

		CreditsChargedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "voiceagent_credits_charged_total",
			Help: "Total credits debited across all accounts.",
		}),

		ReconcileDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "voiceagent_reconcile_duration_seconds",
			Help:    "Duration of single-call reconciliation in seconds.",
			Buckets: prometheus.DefBuckets,
		}),

		WebhookEventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "voiceagent_webhook_events_total",
			Help: "Total webhook events received by message type.",
		}, []string{"type"}),

		PollRunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "voiceagent_poll_runs_total",
			Help: "Total poll sync runs by result.",
		}, []string{"result"}),

		UpstreamRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "voiceagent_upstream_requests_total",
			Help: "Total upstream API requests by status code.",
		}, []string{"method", "status_code"}),

		UpstreamRequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "voiceagent_upstream_request_duration_seconds",
			Help:    "Upstream API request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}),

		ServerStartTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "voiceagent_server_start_time_seconds",
			Help: "Unix timestamp when the server started.",
		}),
	}

	reg.MustRegister(
		m.ReconcileTotal,
		m.BilledCallsTotal,
		m.CreditsChargedTotal,
		m.ReconcileDuration,
		m.WebhookEventsTotal,
		m.PollRunsTotal,
		m.UpstreamRequestsTotal,
		m.UpstreamRequestDuration,
		m.ServerStartTime,
	)

	m.ServerStartTime.Set(float64(time.Now().Unix()))

	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return m
}

// Registry returns the private Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// IncReconcile records a reconciliation attempt result.
func (m *Metrics) IncReconcile(status string) {
	if m == nil {
		return
	}
	m.ReconcileTotal.WithLabelValues(status).Inc()
}

// RecordCharge records a successful debit.
func (m *Metrics) RecordCharge(credits float64) {
	if m == nil {
		return
	}
	m.BilledCallsTotal.Inc()
	m.CreditsChargedTotal.Add(credits)
}

// ObserveReconcile records the duration of a reconciliation pass.
func (m *Metrics) ObserveReconcile(seconds float64) {
	if m == nil {
		return
	}
	m.ReconcileDuration.Observe(seconds)
}

// IncWebhookEvent records a received webhook message.
func (m *Metrics) IncWebhookEvent(msgType string) {
	if m == nil {
		return
	}
	m.WebhookEventsTotal.WithLabelValues(msgType).Inc()
}

// IncPollRun records a poll sync result.
func (m *Metrics) IncPollRun(result string) {
	if m == nil {
		return
	}
	m.PollRunsTotal.WithLabelValues(result).Inc()
}
