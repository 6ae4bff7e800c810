// Package telemetry holds the console's Prometheus collectors.
package telemetry

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricsHTTPRequests *prometheus.CounterVec
	metricsHTTPDuration *prometheus.SummaryVec
	metricsWidgets      prometheus.Gauge
	metricsPublishErrs  *prometheus.CounterVec
	metricsPollResults  *prometheus.CounterVec
)

func init() {
	metricsHTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vibermm_http_requests_total",
			Help: "A count of HTTP requests served, by route and status code.",
		},
		[]string{"method", "route", "code"},
	)

	metricsHTTPDuration = promauto.NewSummaryVec(
		prometheus.SummaryOpts{
			Name: "vibermm_http_request_duration_seconds",
			Help: "A summary of HTTP request latency by route.",
		},
		[]string{"method", "route"},
	)

	metricsWidgets = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vibermm_dashboard_widgets",
			Help: "The number of widgets on the dashboard grid.",
		},
	)

	metricsPublishErrs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vibermm_event_publish_errors_total",
			Help: "A count of errors while publishing console events.",
		},
		[]string{"topic"},
	)

	metricsPollResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vibermm_device_polls_total",
			Help: "A count of SNMP device polls by resulting device status.",
		},
		[]string{"status"},
	)
}

// ObserveRequest records one served HTTP request.
func ObserveRequest(method, route string, code int, started time.Time) {
	metricsHTTPRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	metricsHTTPDuration.WithLabelValues(method, route).Observe(time.Since(started).Seconds())
}

func SetWidgetCount(n int) {
	metricsWidgets.Set(float64(n))
}

func PublishError(topic string) {
	metricsPublishErrs.WithLabelValues(topic).Inc()
}

func DevicePolled(status string) {
	metricsPollResults.WithLabelValues(status).Inc()
}
