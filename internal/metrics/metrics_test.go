package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestHandlerExposesCounters(t *testing.T) {
	before := testutil.ToFloat64(AuthAttempts.WithLabelValues("signin", "ok"))
	AuthAttempts.WithLabelValues("signin", "ok").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(AuthAttempts.WithLabelValues("signin", "ok")))

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "museum_auth_attempts_total")
}
