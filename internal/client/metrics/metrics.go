// Package metrics holds the Prometheus collectors of the device daemon.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/corral/internal/client/models"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics tracks fetches, uploads and origin traffic.
type Metrics struct {
	registry prometheus.Gatherer

	FetchAttempts  *prometheus.CounterVec
	FetchBytes     *prometheus.CounterVec
	FetchDuration  *prometheus.HistogramVec
	TasksInflight  prometheus.Gauge
	UploadBytes    prometheus.Counter
	Uploads        *prometheus.CounterVec
	OriginRequests *prometheus.CounterVec
}

// New registers the collectors on reg; nil uses a private registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		FetchAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "corral",
			Name:      "fetch_attempts_total",
			Help:      "Channel attempts by outcome",
		}, []string{"channel", "outcome"}),
		FetchBytes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "corral",
			Name:      "fetch_bytes_total",
			Help:      "Bytes written to the cache per channel",
		}, []string{"channel"}),
		FetchDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "corral",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of channel attempts",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 300},
		}, []string{"channel"}),
		TasksInflight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "corral",
			Name:      "tasks_inflight",
			Help:      "Fetch tasks in the registry",
		}),
		UploadBytes: f.NewCounter(prometheus.CounterOpts{
			Namespace: "corral",
			Name:      "upload_bytes_total",
			Help:      "Ciphertext bytes sent to the relay",
		}),
		Uploads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "corral",
			Name:      "uploads_total",
			Help:      "Relay uploads by outcome",
		}, []string{"outcome"}),
		OriginRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "corral",
			Name:      "origin_requests_total",
			Help:      "Local origin requests by route and status",
		}, []string{"route", "status"}),
	}
}

// Attempt records one channel attempt of the fetcher.
func (m *Metrics) Attempt(ch models.Channel, outcome models.Outcome, bytes int64, d time.Duration) {
	m.FetchAttempts.WithLabelValues(ch.String(), outcome.String()).Inc()
	if bytes > 0 {
		m.FetchBytes.WithLabelValues(ch.String()).Add(float64(bytes))
	}
	m.FetchDuration.WithLabelValues(ch.String()).Observe(d.Seconds())
}

// Upload records one finished upload.
func (m *Metrics) Upload(outcome models.Outcome, bytes int64) {
	m.Uploads.WithLabelValues(outcome.String()).Inc()
	if bytes > 0 {
		m.UploadBytes.Add(float64(bytes))
	}
}

func (m *Metrics) TaskStarted()  { m.TasksInflight.Inc() }
func (m *Metrics) TaskFinished() { m.TasksInflight.Dec() }

// Middleware counts origin requests by matched route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.OriginRequests.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
