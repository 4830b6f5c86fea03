package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(emailsSent.WithLabelValues("sent"))
	EmailSent("sent")
	assert.Equal(t, before+1, testutil.ToFloat64(emailsSent.WithLabelValues("sent")))

	before = testutil.ToFloat64(applicationsSubmitted)
	ApplicationSubmitted()
	assert.Equal(t, before+1, testutil.ToFloat64(applicationsSubmitted))

	SecurityEvent("login_failed")
	assert.GreaterOrEqual(t, testutil.ToFloat64(securityEvents.WithLabelValues("login_failed")), 1.0)
}

func TestHandler_ExposesMetrics(t *testing.T) {
	ObserveRequest("GET", "/api/internships", "200", 0.01)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `http_requests_total{method="GET",route="/api/internships",status="200"}`)
	assert.Contains(t, string(body), "http_request_duration_seconds_bucket")
}
