package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jobportal-dev/job-portal/backend/internal/domain"
	"github.com/jobportal-dev/job-portal/backend/internal/storage"
	"github.com/jobportal-dev/job-portal/backend/internal/utils"
)

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	c := r.Context().Value(CandidateCtx).(*domain.Candidate)
	h.successResponse(w, r, "profile loaded", c)
}

// UpdateProfile replaces the editable profile. Email, password and resume
// have their own flows.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	c := r.Context().Value(CandidateCtx).(*domain.Candidate)

	var req struct {
		FirstName       string                  `json:"firstName" validate:"required,max=100"`
		LastName        string                  `json:"lastName" validate:"max=100"`
		Age             *int32                  `json:"age" validate:"omitempty,gte=14,lte=100"`
		CurrentRole     string                  `json:"currentRole" validate:"max=200"`
		TotalExperience string                  `json:"totalExperience" validate:"max=100"`
		Location        string                  `json:"location" validate:"max=200"`
		ExpectedCTC     string                  `json:"expectedCTC" validate:"max=100"`
		Skills          []string                `json:"skills" validate:"max=50"`
		Education       []domain.EducationEntry `json:"education" validate:"max=20,dive"`
		Work            []domain.WorkEntry      `json:"work" validate:"max=30,dive"`
		PortfolioLink   string                  `json:"portfolioLink" validate:"omitempty,url"`
		GithubLink      string                  `json:"githubLink" validate:"omitempty,url"`
		LinkedinLink    string                  `json:"linkedinLink" validate:"omitempty,url"`
		TwitterLink     string                  `json:"twitterLink" validate:"omitempty,url"`
		ReadyToRelocate bool                    `json:"readyToRelocate"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	c.FirstName = req.FirstName
	c.LastName = req.LastName
	c.Age = req.Age
	c.CurrentRole = req.CurrentRole
	c.TotalExperience = req.TotalExperience
	c.Location = req.Location
	c.ExpectedCTC = req.ExpectedCTC
	c.Skills = utils.NormalizeSkills(req.Skills)
	c.Education = req.Education
	c.Work = req.Work
	c.PortfolioLink = req.PortfolioLink
	c.GithubLink = req.GithubLink
	c.LinkedinLink = req.LinkedinLink
	c.TwitterLink = req.TwitterLink
	c.ReadyToRelocate = req.ReadyToRelocate

	if err := utils.ValidateProfileHistory(c); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.store.UpdateCandidate(r.Context(), c); err != nil {
		h.domainError(w, r, err)
		return
	}

	h.successResponse(w, r, "profile updated", c)
}

// DeleteProfile removes the candidate with its applications and saved jobs,
// then ends the session.
func (h *Handler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	c := r.Context().Value(CandidateCtx).(*domain.Candidate)

	if err := h.store.DeleteCandidateCascade(r.Context(), c.ID); err != nil {
		h.domainError(w, r, err)
		return
	}

	if c.Resume != "" {
		if err := h.blobs.Delete(r.Context(), c.Resume); err != nil {
			h.log.Warn("failed to delete resume", "candidateId", c.ID, "resume", c.Resume, "error", err)
		}
	}

	h.sessions.Clear(w)
	h.successResponse(w, r, "profile deleted", nil)
}

func resumeObjectName(candidateID string) string {
	return candidateID + ".pdf"
}

func (h *Handler) UploadResume(w http.ResponseWriter, r *http.Request) {
	c := r.Context().Value(CandidateCtx).(*domain.Candidate)
	maxBytes := h.config.Resume.MaxBytes

	// room for the multipart framing around the file
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+64*1024)
	file, _, err := r.FormFile("resume")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.badRequest(w, r, storage.ErrTooLarge)
			return
		}
		h.badRequest(w, r, errors.New("a resume file is required, up to 200KB"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if err := storage.ValidateResume(data, maxBytes); err != nil {
		h.badRequest(w, r, err)
		return
	}

	name := resumeObjectName(c.ID)
	if err := h.blobs.Put(r.Context(), name, data); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	c.Resume = name
	if err := h.store.UpdateCandidate(r.Context(), c); err != nil {
		h.domainError(w, r, err)
		return
	}

	h.successResponse(w, r, "resume uploaded", map[string]string{"resume": name})
}

// activeJob loads a job that still accepts candidates.
func (h *Handler) activeJob(w http.ResponseWriter, r *http.Request, jobID int64) (*domain.Job, bool) {
	job, err := h.store.GetJobByID(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			h.errorResponse(w, r, http.StatusNotFound, "not_found", "job not found")
			return nil, false
		}
		h.domainError(w, r, err)
		return nil, false
	}
	if job.Status != domain.JobStatusActive {
		h.domainError(w, r, domain.ErrJobNotActive)
		return nil, false
	}
	return job, true
}

func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	c := r.Context().Value(CandidateCtx).(*domain.Candidate)

	var req struct {
		JobID int64 `json:"jobId" validate:"required,gt=0"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	job, ok := h.activeJob(w, r, req.JobID)
	if !ok {
		return
	}

	a := &domain.Application{JobID: job.ID, CandidateID: c.ID}
	if err := h.store.CreateApplication(r.Context(), a); err != nil {
		h.domainError(w, r, err)
		return
	}

	h.createdResponse(w, r, "application submitted", a)
}

func (h *Handler) GetMyApplications(w http.ResponseWriter, r *http.Request) {
	c := r.Context().Value(CandidateCtx).(*domain.Candidate)

	applications, err := h.store.GetApplicationsByCandidate(r.Context(), c.ID)
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	h.successResponse(w, r, "applications loaded", applications)
}

func (h *Handler) CheckApplied(w http.ResponseWriter, r *http.Request) {
	c := r.Context().Value(CandidateCtx).(*domain.Candidate)

	jobID, err := strconv.ParseInt(r.URL.Query().Get("jobId"), 10, 64)
	if err != nil {
		h.badRequest(w, r, errors.New("jobId is required"))
		return
	}

	applications, err := h.store.GetApplicationsByCandidate(r.Context(), c.ID)
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	hasApplied := false
	for _, a := range applications {
		if a.JobID == jobID {
			hasApplied = true
			break
		}
	}

	h.successResponse(w, r, "application checked", map[string]bool{"hasApplied": hasApplied})
}

func (h *Handler) GetSavedJobs(w http.ResponseWriter, r *http.Request) {
	c := r.Context().Value(CandidateCtx).(*domain.Candidate)

	jobs, err := h.store.GetSavedJobs(r.Context(), c.ID)
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	h.successResponse(w, r, "saved jobs loaded", jobs)
}

func (h *Handler) SaveJob(w http.ResponseWriter, r *http.Request) {
	c := r.Context().Value(CandidateCtx).(*domain.Candidate)

	var req struct {
		JobID int64 `json:"jobId" validate:"required,gt=0"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	job, ok := h.activeJob(w, r, req.JobID)
	if !ok {
		return
	}

	n, err := h.store.CountSavedJobs(r.Context(), c.ID)
	if err != nil {
		h.domainError(w, r, err)
		return
	}
	if n >= h.config.SavedJobs.Limit {
		h.domainError(w, r, domain.ErrSavedJobsLimit)
		return
	}

	s := &domain.SavedJob{CandidateID: c.ID, JobID: job.ID}
	if err := h.store.SaveJob(r.Context(), s); err != nil {
		h.domainError(w, r, err)
		return
	}

	h.createdResponse(w, r, "job saved", s)
}

func (h *Handler) UnsaveJob(w http.ResponseWriter, r *http.Request) {
	c := r.Context().Value(CandidateCtx).(*domain.Candidate)

	jobID, err := strconv.ParseInt(chi.URLParam(r, "jobId"), 10, 64)
	if err != nil {
		h.badRequest(w, r, errors.New("invalid job id"))
		return
	}

	if err := h.store.DeleteSavedJob(r.Context(), c.ID, jobID); err != nil {
		h.domainError(w, r, err)
		return
	}

	h.successResponse(w, r, "job removed from saved jobs", nil)
}
