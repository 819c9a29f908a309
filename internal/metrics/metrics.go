// Package metrics holds the dispatcher's prometheus collectors.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests.",
		Buckets: prometheus.DefBuckets,
	}, []string{"path", "method", "status"})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests.",
	}, []string{"path", "method", "status"})

	events = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatcher_events_total",
		Help: "Change events handled, by service, outcome and matched rule.",
	}, []string{"service", "outcome", "rule"})

	deliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatcher_deliveries_total",
		Help: "Outbound delivery attempts by channel and result.",
	}, []string{"channel", "outcome"})

	broadcastRecipients = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatcher_broadcast_recipients_total",
		Help: "Broadcast recipients by result.",
	}, []string{"outcome"})
)

// ObserveEvent counts one handled event.
func ObserveEvent(service, outcome, rule string) {
	if rule == "" {
		rule = "none"
	}
	events.WithLabelValues(service, outcome, rule).Inc()
}

// ObserveDelivery counts one delivery attempt.
func ObserveDelivery(channel string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	deliveries.WithLabelValues(channel, outcome).Inc()
}

// ObserveBroadcast adds the final counters of one fan-out run.
func ObserveBroadcast(sent, failed, skipped int) {
	broadcastRecipients.WithLabelValues("sent").Add(float64(sent))
	broadcastRecipients.WithLabelValues("failed").Add(float64(failed))
	broadcastRecipients.WithLabelValues("skipped").Add(float64(skipped))
}

// Middleware records request duration and count per route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		httpDuration.WithLabelValues(path, c.Request.Method, status).Observe(time.Since(start).Seconds())
		httpRequests.WithLabelValues(path, c.Request.Method, status).Inc()
	}
}
