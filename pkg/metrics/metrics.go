package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/amoylab/nextcrm/internal/common/config"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the HTTP and CRM domain collectors. A nil *Metrics is valid
// and records nothing, so services can be built without a registry in tests.
type Metrics struct {
	registry *prometheus.Registry

	httpReqCnt *prometheus.CounterVec
	httpDur    *prometheus.HistogramVec
	httpInfl   *prometheus.GaugeVec

	leadsCreated    prometheus.Counter
	leadsConverted  prometheus.Counter
	leadsLost       prometheus.Counter
	dupRejected     *prometheus.CounterVec
	activities      *prometheus.CounterVec
	sideEffectFails *prometheus.CounterVec
	notifications   *prometheus.CounterVec
}

func New(cfg config.MetricsConfig) *Metrics {
	ns := cfg.Namespace
	r := prometheus.NewRegistry()
	r.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	r.MustRegister(collectors.NewGoCollector())

	m := &Metrics{
		registry:   r,
		httpReqCnt: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "http_requests_total"}, []string{"method", "route", "status"}),
		httpDur:    prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: ns, Name: "http_request_duration_seconds", Buckets: cfg.Buckets}, []string{"method", "route", "status"}),
		httpInfl:   prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: ns, Name: "http_requests_inflight"}, []string{"route"}),

		leadsCreated:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: ns, Name: "leads_created_total"}),
		leadsConverted:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: ns, Name: "leads_converted_total"}),
		leadsLost:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: ns, Name: "leads_marked_lost_total"}),
		dupRejected:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "lead_writes_rejected_total"}, []string{"code"}),
		activities:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "activities_logged_total"}, []string{"entity_type", "activity_type"}),
		sideEffectFails: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "side_effect_failures_total"}, []string{"kind"}),
		notifications:   prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "notifications_total"}, []string{"event", "status"}),
	}
	r.MustRegister(m.httpReqCnt, m.httpDur, m.httpInfl)
	r.MustRegister(m.leadsCreated, m.leadsConverted, m.leadsLost, m.dupRejected,
		m.activities, m.sideEffectFails, m.notifications)
	return m
}

func (m *Metrics) LeadCreated() {
	if m == nil {
		return
	}
	m.leadsCreated.Inc()
}

func (m *Metrics) LeadConverted() {
	if m == nil {
		return
	}
	m.leadsConverted.Inc()
}

func (m *Metrics) LeadMarkedLost() {
	if m == nil {
		return
	}
	m.leadsLost.Inc()
}

// LeadWriteRejected counts lead writes refused with a domain error code
func (m *Metrics) LeadWriteRejected(code string) {
	if m == nil {
		return
	}
	m.dupRejected.WithLabelValues(code).Inc()
}

func (m *Metrics) ActivityLogged(entityType, activityType string) {
	if m == nil {
		return
	}
	m.activities.WithLabelValues(entityType, activityType).Inc()
}

// SideEffectFailed counts best-effort steps that failed and were swallowed
func (m *Metrics) SideEffectFailed(kind string) {
	if m == nil {
		return
	}
	m.sideEffectFails.WithLabelValues(kind).Inc()
}

func (m *Metrics) NotificationSent(event string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.notifications.WithLabelValues(event, status).Inc()
}

func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpInfl.WithLabelValues(route).Inc()
		start := time.Now()
		c.Next()
		status := strconv.Itoa(c.Writer.Status())
		m.httpReqCnt.WithLabelValues(c.Request.Method, route, status).Inc()
		m.httpDur.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
		m.httpInfl.WithLabelValues(route).Dec()
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
