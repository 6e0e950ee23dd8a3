package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trego/provider/internal/job"
)

func TestRecordAction(t *testing.T) {
	m := New()

	m.RecordAction(job.ActionStart, job.OutcomeSuccess)
	m.RecordAction(job.ActionStart, job.OutcomeSuccess)
	m.RecordAction(job.ActionCancel, job.OutcomeNotFound)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.jobActions.WithLabelValues("start", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.jobActions.WithLabelValues("cancel", "not_found")))
}

func TestSubscriberGauge(t *testing.T) {
	m := New()

	m.SubscriberConnected()
	m.SubscriberConnected()
	m.SubscriberDisconnected()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.wsClients))
}

func TestMiddlewareAndHandler(t *testing.T) {
	m := New()
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reqCnt.WithLabelValues("get", "418")))

	m.RecordAction(job.ActionPause, job.OutcomeInvalidTransition)

	rec = httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `trego_job_actions_total{action="pause",outcome="invalid_transition"} 1`))
	assert.True(t, strings.Contains(body, "trego_http_requests_total"))
}
