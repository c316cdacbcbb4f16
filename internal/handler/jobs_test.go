package handler

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/jobportal-dev/job-portal/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicJobs(t *testing.T) {
	env := newTestEnv(t)
	hr := env.seedHR(t, "meera@x.com", domain.ScopeParticipant)
	open := env.seedJob(t, hr.ID, domain.JobStatusActive)
	closed := env.seedJob(t, hr.ID, domain.JobStatusInactive)
	c := env.client(t)

	res := c.do(http.MethodGet, "/jobs", nil)
	require.Equal(t, http.StatusOK, res.status)
	jobs := res.body.Data.([]any)
	require.Len(t, jobs, 1)
	assert.Equal(t, float64(open.ID), jobs[0].(map[string]any)["jobId"])

	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/jobs/"+strconv.FormatInt(open.ID, 10), nil).status)
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, "/jobs/"+strconv.FormatInt(closed.ID, 10), nil).status)
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodGet, "/jobs/abc", nil).status)
}

func TestJobLifecycle(t *testing.T) {
	env := newTestEnv(t)
	poster := env.seedHR(t, "poster@x.com", domain.ScopeParticipant)
	peer := env.seedHR(t, "peer@x.com", domain.ScopeParticipant)
	moderator := env.seedHR(t, "mod@x.com", domain.ScopeModerator)
	cand := env.seedCandidate(t, "asha@x.com")

	p := env.client(t)
	p.signInAs(poster)

	res := p.do(http.MethodPost, "/hr/jobs", map[string]any{"role": "Data Engineer", "designation": "SDE I", "department": "Data", "location": "Remote", "experience": "1-3 years", "description": "Pipelines"})
	require.Equal(t, http.StatusCreated, res.status)
	assert.Equal(t, "ACTIVE", res.data()["jobStatus"])
	jobPath := "/hr/jobs/" + strconv.FormatInt(int64(res.data()["jobId"].(float64)), 10)

	other := env.client(t)
	other.signInAs(peer)
	res = other.do(http.MethodPut, jobPath, map[string]any{"location": "Delhi"})
	assert.Equal(t, http.StatusForbidden, res.status)
	assert.Equal(t, http.StatusForbidden, other.do(http.MethodGet, jobPath+"/applications", nil).status)

	res = p.do(http.MethodPut, jobPath, map[string]any{"location": "Delhi"})
	require.Equal(t, http.StatusOK, res.status)
	assert.Equal(t, "Delhi", res.data()["location"])

	c := env.client(t)
	c.signInAs(cand)
	jobID := int64(res.data()["jobId"].(float64))
	res = c.do(http.MethodPost, "/candidate/applications", map[string]any{"jobId": jobID})
	require.Equal(t, http.StatusCreated, res.status)
	statusPath := "/hr/applications/" + res.data()["applicationId"].(string) + "/status"

	m := env.client(t)
	m.signInAs(moderator)
	res = m.do(http.MethodGet, jobPath+"/applications", nil)
	require.Equal(t, http.StatusOK, res.status)
	assert.Len(t, res.body.Data, 1)

	assert.Equal(t, http.StatusForbidden, p.do(http.MethodPatch, statusPath, map[string]any{"status": "SHORTLISTED"}).status)

	res = m.do(http.MethodPatch, statusPath, map[string]any{"status": "HIRED"})
	assert.Equal(t, http.StatusBadRequest, res.status)
	assert.Equal(t, "invalid_status", res.body.Code)

	res = m.do(http.MethodPatch, statusPath, map[string]any{"status": "SHORTLISTED"})
	require.Equal(t, http.StatusOK, res.status)
	assert.Equal(t, "SHORTLISTED", res.data()["applicationStatus"])

	require.Equal(t, http.StatusOK, p.do(http.MethodDelete, jobPath, nil).status)
	assert.Equal(t, http.StatusNotFound, m.do(http.MethodPatch, statusPath, map[string]any{"status": "REJECTED"}).status)
}

func TestApplicationDetail(t *testing.T) {
	env := newTestEnv(t)
	poster := env.seedHR(t, "poster@x.com", domain.ScopeParticipant)
	peer := env.seedHR(t, "peer@x.com", domain.ScopeParticipant)
	moderator := env.seedHR(t, "mod@x.com", domain.ScopeModerator)
	job := env.seedJob(t, poster.ID, domain.JobStatusActive)

	withResume := env.seedCandidate(t, "asha@x.com")
	withoutResume := env.seedCandidate(t, "ravi@x.com")

	pdf := []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n%%EOF\n")
	a := env.client(t)
	a.signInAs(withResume)
	require.Equal(t, http.StatusOK, uploadResume(t, a, pdf).status)
	res := a.do(http.MethodPost, "/candidate/applications", map[string]any{"jobId": job.ID})
	require.Equal(t, http.StatusCreated, res.status)
	appPath := "/hr/applications/" + res.data()["applicationId"].(string)

	b := env.client(t)
	b.signInAs(withoutResume)
	res = b.do(http.MethodPost, "/candidate/applications", map[string]any{"jobId": job.ID})
	require.Equal(t, http.StatusCreated, res.status)
	barePath := "/hr/applications/" + res.data()["applicationId"].(string)

	p := env.client(t)
	p.signInAs(poster)
	res = p.do(http.MethodGet, appPath, nil)
	require.Equal(t, http.StatusOK, res.status)
	data := res.data()
	assert.Equal(t, "REVIEWING", data["application"].(map[string]any)["applicationStatus"])
	assert.Equal(t, job.Role, data["job"].(map[string]any)["role"])
	candidate := data["candidate"].(map[string]any)
	assert.Equal(t, "asha@x.com", candidate["email"])
	assert.Equal(t, withResume.ID+".pdf", candidate["resume"])
	assert.NotContains(t, candidate, "passwordHash")

	t.Run("peer without review scope", func(t *testing.T) {
		other := env.client(t)
		other.signInAs(peer)
		res := other.do(http.MethodGet, appPath, nil)
		assert.Equal(t, http.StatusForbidden, res.status)
		assert.Equal(t, "insufficient_scope", res.body.Code)
		assert.Equal(t, http.StatusForbidden, other.do(http.MethodGet, appPath+"/resume", nil).status)
	})

	t.Run("moderator downloads resume", func(t *testing.T) {
		m := env.client(t)
		m.signInAs(moderator)
		res := m.do(http.MethodGet, appPath+"/resume", nil)
		require.Equal(t, http.StatusOK, res.status)
		assert.Equal(t, "application/pdf", res.header.Get("Content-Type"))
		assert.Equal(t, pdf, res.raw)

		res = m.do(http.MethodGet, barePath+"/resume", nil)
		assert.Equal(t, http.StatusNotFound, res.status)
		assert.Equal(t, "not_found", res.body.Code)
	})

	t.Run("poster downloads resume", func(t *testing.T) {
		res := p.do(http.MethodGet, appPath+"/resume", nil)
		require.Equal(t, http.StatusOK, res.status)
		assert.Equal(t, pdf, res.raw)
	})

	t.Run("unknown application", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, p.do(http.MethodGet, "/hr/applications/does-not-exist", nil).status)
	})

	t.Run("candidates cannot read", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, a.do(http.MethodGet, appPath, nil).status)
	})
}
