package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordPlan(t *testing.T) {
	t.Parallel()

	r, err := NewRecorder()
	require.NoError(t, err)

	r.RecordPlan(2*time.Millisecond, 42.5, 7)
	r.RecordPlan(time.Millisecond, 10, 3)
	r.RecordPlanFailure(StatusRejected)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.plansTotal.WithLabelValues(StatusOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.plansTotal.WithLabelValues(StatusRejected)))
	assert.Equal(t, 10.0, testutil.ToFloat64(r.boxesPlacedTotal))
}

func TestRecordHTTPRequest(t *testing.T) {
	t.Parallel()

	r, err := NewRecorder()
	require.NoError(t, err)

	r.RecordHTTPRequest(http.MethodPost, "POST /api/plan", http.StatusOK)
	r.RecordHTTPRequest(http.MethodPost, "POST /api/plan", http.StatusOK)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.httpRequests.WithLabelValues(http.MethodPost, "POST /api/plan", "200")))
}

func TestNilRecorderIsNoop(t *testing.T) {
	t.Parallel()

	var r *Recorder
	r.RecordPlan(time.Second, 50, 1)
	r.RecordPlanFailure(StatusError)
	r.RecordHTTPRequest(http.MethodGet, "/", http.StatusOK)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerExposesMetrics(t *testing.T) {
	t.Parallel()

	r, err := NewRecorder()
	require.NoError(t, err)
	r.RecordPlan(time.Millisecond, 55, 4)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "load_plans_total"))
	assert.True(t, strings.Contains(body, "load_plan_boxes_placed_total 4"))
}

func TestDuplicateRegistration(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	_, err := NewRecorderWith(reg, reg)
	require.NoError(t, err)

	_, err = NewRecorderWith(reg, reg)
	require.Error(t, err)
	assert.True(t, IsAlreadyRegistered(err))
}
