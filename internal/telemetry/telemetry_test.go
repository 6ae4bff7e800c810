package telemetry

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveRequest(t *testing.T) {
	before := testutil.ToFloat64(metricsHTTPRequests.WithLabelValues("GET", "/api/devices", "200"))
	ObserveRequest("GET", "/api/devices", 200, time.Now())
	after := testutil.ToFloat64(metricsHTTPRequests.WithLabelValues("GET", "/api/devices", "200"))
	assert.Equal(t, before+1, after)
}

func TestSetWidgetCount(t *testing.T) {
	SetWidgetCount(4)
	assert.Equal(t, float64(4), testutil.ToFloat64(metricsWidgets))
}

func TestCounters(t *testing.T) {
	PublishError("patch.deploy")
	DevicePolled("online")
	assert.GreaterOrEqual(t, testutil.ToFloat64(metricsPublishErrs.WithLabelValues("patch.deploy")), float64(1))
	assert.GreaterOrEqual(t, testutil.ToFloat64(metricsPollResults.WithLabelValues("online")), float64(1))
}
