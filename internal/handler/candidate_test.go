package handler

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"strconv"
	"testing"

	"github.com/jobportal-dev/job-portal/backend/internal/domain"
	"github.com/jobportal-dev/job-portal/backend/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	cand := env.seedCandidate(t, "asha@x.com")
	c := env.client(t)
	c.signInAs(cand)

	profile := map[string]any{
		"firstName":  "Asha",
		"lastName":   "Rao",
		"skills":     []string{" Go ", "go", "SQL"},
		"education":  []map[string]any{{"institution": "IIT Madras", "degree": "B.Tech", "startYear": 2014, "endYear": 2018}},
		"work":       []map[string]any{{"company": "Acme", "title": "Engineer", "startDate": "2018-07-01T00:00:00Z"}},
		"githubLink": "https://github.com/asha",
	}
	res := c.do(http.MethodPut, "/candidate/profile", profile)
	require.Equal(t, http.StatusOK, res.status)
	assert.Equal(t, []any{"Go", "SQL"}, res.data()["skills"])

	profile["education"] = []map[string]any{{"institution": "IIT Madras", "degree": "B.Tech", "startYear": 2018, "endYear": 2014}}
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPut, "/candidate/profile", profile).status)

	profile["education"] = nil
	profile["githubLink"] = "not a url"
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPut, "/candidate/profile", profile).status)

	res = c.do(http.MethodGet, "/candidate/profile", nil)
	require.Equal(t, http.StatusOK, res.status)
	assert.Equal(t, "https://github.com/asha", res.data()["githubLink"])
}

func uploadResume(t *testing.T, c *testClient, content []byte) result {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("resume", "resume.pdf")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, c.env.srv.URL+"/candidate/resume", &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.send(req)
}

func TestUploadResume(t *testing.T) {
	env := newTestEnv(t)
	cand := env.seedCandidate(t, "asha@x.com")
	c := env.client(t)
	c.signInAs(cand)

	pdf := []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n%%EOF\n")
	res := uploadResume(t, c, pdf)
	require.Equal(t, http.StatusOK, res.status)
	assert.Equal(t, cand.ID+".pdf", res.data()["resume"])
	assert.Equal(t, pdf, env.blobs.objects[cand.ID+".pdf"])

	res = uploadResume(t, c, []byte("plain text pretending to be a resume"))
	assert.Equal(t, http.StatusBadRequest, res.status)

	big := append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte("a"), int(env.cfg.Resume.MaxBytes))...)
	res = uploadResume(t, c, big)
	assert.Equal(t, http.StatusBadRequest, res.status)
	assert.Equal(t, storage.ErrTooLarge.Error(), res.body.Message)

	// past the multipart allowance the body reader gives out before the file does
	huge := append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte("a"), int(env.cfg.Resume.MaxBytes)+128*1024)...)
	res = uploadResume(t, c, huge)
	assert.Equal(t, http.StatusBadRequest, res.status)
	assert.Equal(t, storage.ErrTooLarge.Error(), res.body.Message)
}

func TestApplyAndSaveJobs(t *testing.T) {
	env := newTestEnv(t)
	cand := env.seedCandidate(t, "asha@x.com")
	hr := env.seedHR(t, "meera@x.com", domain.ScopeParticipant)
	open := env.seedJob(t, hr.ID, domain.JobStatusActive)
	closed := env.seedJob(t, hr.ID, domain.JobStatusInactive)

	c := env.client(t)
	c.signInAs(cand)

	res := c.do(http.MethodPost, "/candidate/applications", map[string]any{"jobId": open.ID})
	require.Equal(t, http.StatusCreated, res.status)
	assert.Equal(t, "REVIEWING", res.data()["applicationStatus"])

	res = c.do(http.MethodPost, "/candidate/applications", map[string]any{"jobId": open.ID})
	assert.Equal(t, http.StatusConflict, res.status)
	assert.Equal(t, "already_applied", res.body.Code)
	assert.Equal(t, domain.ErrAlreadyApplied.Error(), res.body.Message)

	res = c.do(http.MethodPost, "/candidate/applications", map[string]any{"jobId": closed.ID})
	assert.Equal(t, http.StatusBadRequest, res.status)
	assert.Equal(t, "job_not_active", res.body.Code)

	res = c.do(http.MethodGet, "/candidate/applications/check?jobId="+strconv.FormatInt(open.ID, 10), nil)
	assert.Equal(t, true, res.data()["hasApplied"])
	res = c.do(http.MethodGet, "/candidate/applications/check?jobId="+strconv.FormatInt(closed.ID, 10), nil)
	assert.Equal(t, false, res.data()["hasApplied"])

	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/candidate/saved-jobs", map[string]any{"jobId": open.ID}).status)
	res = c.do(http.MethodPost, "/candidate/saved-jobs", map[string]any{"jobId": open.ID})
	assert.Equal(t, "already_saved", res.body.Code)
	assert.NotContains(t, res.body.Message, "saved_jobs_candidate_job_key")

	other := env.seedJob(t, hr.ID, domain.JobStatusActive)
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/candidate/saved-jobs", map[string]any{"jobId": other.ID}).status)

	third := env.seedJob(t, hr.ID, domain.JobStatusActive)
	res = c.do(http.MethodPost, "/candidate/saved-jobs", map[string]any{"jobId": third.ID})
	assert.Equal(t, http.StatusBadRequest, res.status)
	assert.Equal(t, "saved_jobs_limit", res.body.Code)

	path := "/candidate/saved-jobs/" + strconv.FormatInt(other.ID, 10)
	assert.Equal(t, http.StatusOK, c.do(http.MethodDelete, path, nil).status)
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodDelete, path, nil).status)
}

func TestDeleteProfile(t *testing.T) {
	env := newTestEnv(t)
	cand := env.seedCandidate(t, "asha@x.com")
	cand.Resume = cand.ID + ".pdf"
	require.NoError(t, env.store.UpdateCandidate(context.Background(), cand))
	env.blobs.objects[cand.Resume] = []byte("%PDF-1.4")

	c := env.client(t)
	c.signInAs(cand)

	require.Equal(t, http.StatusOK, c.do(http.MethodDelete, "/candidate/profile", nil).status)
	assert.NotContains(t, env.blobs.objects, cand.Resume)

	_, err := env.store.GetCandidateByID(context.Background(), cand.ID)
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)

	// session cookies were cleared with the account
	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodGet, "/auth/current-user-data", nil).status)
}
