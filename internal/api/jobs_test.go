package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trego/provider/internal/job"
)

func confirmedJob(id string) job.Job {
	return job.Job{ID: id, Title: "Fix leaking sink", Client: "Ana Costa", Status: job.StatusConfirmed}
}

func TestListJobs(t *testing.T) {
	s := newTestServer(t,
		confirmedJob("1"),
		job.Job{ID: "2", Title: "Install ceiling light", Client: "Rui Silva", Status: job.StatusOnSite},
		confirmedJob("3"),
	)

	rec := s.do("GET", "/api/jobs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, 3.0, resp["total"])
	assert.Equal(t, 20.0, resp["limit"])

	rec = s.do("GET", "/api/jobs?status=confirmed&limit=1&offset=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decode(t, rec)
	assert.Equal(t, 2.0, resp["total"])
	jobs := resp["jobs"].([]any)
	require.Len(t, jobs, 1)
	assert.Equal(t, "3", jobs[0].(map[string]any)["id"])

	rec = s.do("GET", "/api/jobs?q=rui", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1.0, decode(t, rec)["total"])
}

func TestListJobs_HugeLimit(t *testing.T) {
	s := newTestServer(t, confirmedJob("1"), confirmedJob("2"))

	rec := s.do("GET", "/api/jobs?limit=9223372036854775807&offset=1", "")

	require.Equal(t, http.StatusOK, rec.Code)
	jobs := decode(t, rec)["jobs"].([]any)
	require.Len(t, jobs, 1)
	assert.Equal(t, "2", jobs[0].(map[string]any)["id"])
}

func TestListJobs_EmptyIsArray(t *testing.T) {
	s := newTestServer(t)

	rec := s.do("GET", "/api/jobs", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{}, decode(t, rec)["jobs"])
}

func TestListJobs_UnknownStatus(t *testing.T) {
	s := newTestServer(t)

	rec := s.do("GET", "/api/jobs?status=archived", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetJob(t *testing.T) {
	s := newTestServer(t, confirmedJob("1"))

	rec := s.do("GET", "/api/jobs/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "confirmed", decode(t, rec)["status"])

	rec = s.do("GET", "/api/jobs/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "job not found", decode(t, rec)["error"])
}

func TestStartJob(t *testing.T) {
	s := newTestServer(t, confirmedJob("1"))

	rec := s.do("POST", "/api/jobs/1/start", "")

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "Job started successfully", resp["message"])
	updated := resp["updatedJob"].(map[string]any)
	assert.Equal(t, "en-route", updated["status"])
	assert.Equal(t, "2024-05-01T09:00:00Z", updated["startedAt"])

	stored, err := s.repo.Get("1")
	require.NoError(t, err)
	assert.Equal(t, job.StatusEnRoute, stored.Status)
}

func TestJobActions_NotFound(t *testing.T) {
	s := newTestServer(t, confirmedJob("1"))

	paths := []struct{ path, body string }{
		{"/api/jobs/nope/start", ""},
		{"/api/jobs/nope/on-site", ""},
		{"/api/jobs/nope/pause", ""},
		{"/api/jobs/nope/resume", ""},
		{"/api/jobs/nope/complete", ""},
		{"/api/jobs/nope/cancel", `{"reason":"client away"}`},
		{"/api/jobs/nope/reschedule", `{"date":"2024-05-03","time":"10:00"}`},
	}
	for _, p := range paths {
		rec := s.do("POST", p.path, p.body)
		assert.Equal(t, http.StatusNotFound, rec.Code, p.path)
		resp := decode(t, rec)
		assert.Equal(t, false, resp["success"], p.path)
		assert.Equal(t, "Job not found", resp["message"], p.path)
		assert.NotContains(t, resp, "updatedJob", p.path)
	}
}

func TestPauseResume(t *testing.T) {
	s := newTestServer(t, job.Job{ID: "1", Status: job.StatusOnSite})

	rec := s.do("POST", "/api/jobs/1/pause", `{"reason":"waiting for parts"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode(t, rec)["updatedJob"].(map[string]any)
	assert.Equal(t, "paused", updated["status"])
	assert.Equal(t, "on-site", updated["previousStatus"])
	assert.Equal(t, "waiting for parts", updated["pauseReason"])

	rec = s.do("POST", "/api/jobs/1/resume", "")
	require.Equal(t, http.StatusOK, rec.Code)
	updated = decode(t, rec)["updatedJob"].(map[string]any)
	assert.Equal(t, "on-site", updated["status"])
	assert.NotContains(t, updated, "previousStatus")
	assert.NotContains(t, updated, "pauseReason")
}

func TestPause_EmptyBody(t *testing.T) {
	s := newTestServer(t, job.Job{ID: "1", Status: job.StatusEnRoute})

	rec := s.do("POST", "/api/jobs/1/pause", "")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCompleteJob_FinalPrice(t *testing.T) {
	s := newTestServer(t, job.Job{ID: "1", Status: job.StatusOnSite, BidAmount: "€90", ActualPrice: "€80"})

	rec := s.do("POST", "/api/jobs/1/complete", `{"finalPrice":"€95"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode(t, rec)["updatedJob"].(map[string]any)
	assert.Equal(t, "completed", updated["status"])
	assert.Equal(t, "€95", updated["actualPrice"])
	assert.Equal(t, "€90", updated["bidAmount"])
}

func TestCancelJob_RequiresReason(t *testing.T) {
	s := newTestServer(t, confirmedJob("1"))

	rec := s.do("POST", "/api/jobs/1/cancel", `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec)["fields"], "reason")

	rec = s.do("POST", "/api/jobs/1/cancel", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	stored, err := s.repo.Get("1")
	require.NoError(t, err)
	assert.Equal(t, job.StatusConfirmed, stored.Status)

	rec = s.do("POST", "/api/jobs/1/cancel", `{"reason":"client rescheduled elsewhere"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode(t, rec)["updatedJob"].(map[string]any)
	assert.Equal(t, "cancelled", updated["status"])
	assert.Equal(t, "client rescheduled elsewhere", updated["cancellationReason"])
}

func TestRescheduleJob(t *testing.T) {
	s := newTestServer(t, confirmedJob("1"))

	rec := s.do("POST", "/api/jobs/1/reschedule", `{"date":"2024-05-03"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec)["fields"], "time")

	rec = s.do("POST", "/api/jobs/1/reschedule", `{"date":"2024-05-03","time":"10:00"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, "Job rescheduled successfully", resp["message"])
	updated := resp["updatedJob"].(map[string]any)
	assert.Equal(t, "2024-05-03", updated["scheduledDate"])
	assert.Equal(t, "10:00", updated["scheduledTime"])
	assert.Equal(t, true, updated["recentlyRescheduled"])
	assert.Equal(t, "confirmed", updated["status"])
}

func TestInvalidBody(t *testing.T) {
	s := newTestServer(t, confirmedJob("1"))

	rec := s.do("POST", "/api/jobs/1/complete", "invalid")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStrictPolicy_Conflict(t *testing.T) {
	s := newTestServerWithPolicy(t, job.PolicyStrict, job.Job{ID: "1", Status: job.StatusOnSite})

	rec := s.do("POST", "/api/jobs/1/start", "")

	require.Equal(t, http.StatusConflict, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, "Cannot start a job that is on-site", resp["message"])
}
