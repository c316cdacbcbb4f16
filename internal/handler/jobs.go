package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/jobportal-dev/job-portal/backend/internal/auth"
	"github.com/jobportal-dev/job-portal/backend/internal/domain"
	"github.com/jobportal-dev/job-portal/backend/internal/storage"
)

func (h *Handler) GetOpenJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.store.GetJobs(r.Context(), domain.JobStatusActive)
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	h.successResponse(w, r, "jobs loaded", jobs)
}

func (h *Handler) GetOpenJob(w http.ResponseWriter, r *http.Request) {
	job := r.Context().Value(JobCtx).(*domain.Job)
	if job.Status != domain.JobStatusActive {
		h.errorResponse(w, r, http.StatusNotFound, "not_found", "job not found")
		return
	}

	h.successResponse(w, r, "job loaded", job)
}

func (h *Handler) GetMyPostedJobs(w http.ResponseWriter, r *http.Request) {
	actor := r.Context().Value(HRActorCtx).(*domain.HRAccount)

	jobs, err := h.store.GetJobsByHR(r.Context(), actor.ID)
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	h.successResponse(w, r, "jobs loaded", jobs)
}

func (h *Handler) CreateJob(w http.ResponseWriter, r *http.Request) {
	actor := r.Context().Value(HRActorCtx).(*domain.HRAccount)

	var req struct {
		Role        string           `json:"role" validate:"required,max=200"`
		Designation string           `json:"designation" validate:"required,max=200"`
		Department  string           `json:"department" validate:"required,max=200"`
		Location    string           `json:"location" validate:"required,max=200"`
		Experience  string           `json:"experience" validate:"required,max=100"`
		Description string           `json:"description" validate:"required"`
		Status      domain.JobStatus `json:"jobStatus" validate:"omitempty,oneof=ACTIVE INACTIVE"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.Status == "" {
		req.Status = domain.JobStatusActive
	}

	job := &domain.Job{
		HRID:        actor.ID,
		Role:        req.Role,
		Designation: req.Designation,
		Department:  req.Department,
		Location:    req.Location,
		Experience:  req.Experience,
		Status:      req.Status,
		Description: req.Description,
	}
	if err := h.store.CreateJob(r.Context(), job); err != nil {
		h.domainError(w, r, err)
		return
	}

	h.createdResponse(w, r, "job posted", job)
}

func (h *Handler) UpdateJob(w http.ResponseWriter, r *http.Request) {
	actor := r.Context().Value(HRActorCtx).(*domain.HRAccount)
	job := r.Context().Value(JobCtx).(*domain.Job)

	var req struct {
		Role        *string           `json:"role" validate:"omitempty,min=1,max=200"`
		Designation *string           `json:"designation" validate:"omitempty,min=1,max=200"`
		Department  *string           `json:"department" validate:"omitempty,min=1,max=200"`
		Location    *string           `json:"location" validate:"omitempty,min=1,max=200"`
		Experience  *string           `json:"experience" validate:"omitempty,min=1,max=100"`
		Description *string           `json:"description" validate:"omitempty,min=1"`
		Status      *domain.JobStatus `json:"jobStatus" validate:"omitempty,oneof=ACTIVE INACTIVE"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	if err := auth.AuthorizeJobMutation(actor, job); err != nil {
		h.domainError(w, r, err)
		return
	}

	if req.Role != nil {
		job.Role = *req.Role
	}
	if req.Designation != nil {
		job.Designation = *req.Designation
	}
	if req.Department != nil {
		job.Department = *req.Department
	}
	if req.Location != nil {
		job.Location = *req.Location
	}
	if req.Experience != nil {
		job.Experience = *req.Experience
	}
	if req.Description != nil {
		job.Description = *req.Description
	}
	if req.Status != nil {
		job.Status = *req.Status
	}

	if err := h.store.UpdateJob(r.Context(), job); err != nil {
		h.domainError(w, r, err)
		return
	}

	h.successResponse(w, r, "job updated", job)
}

func (h *Handler) DeleteJob(w http.ResponseWriter, r *http.Request) {
	actor := r.Context().Value(HRActorCtx).(*domain.HRAccount)
	job := r.Context().Value(JobCtx).(*domain.Job)

	if err := auth.AuthorizeJobMutation(actor, job); err != nil {
		h.domainError(w, r, err)
		return
	}

	if err := h.store.DeleteJobCascade(r.Context(), job.ID); err != nil {
		h.domainError(w, r, err)
		return
	}

	h.successResponse(w, r, "job deleted", nil)
}

// GetJobApplications is open to the poster, admins and anyone who reviews
// applications.
func (h *Handler) GetJobApplications(w http.ResponseWriter, r *http.Request) {
	actor := r.Context().Value(HRActorCtx).(*domain.HRAccount)
	job := r.Context().Value(JobCtx).(*domain.Job)

	if err := authorizeApplicationRead(actor, job); err != nil {
		h.domainError(w, r, err)
		return
	}

	applications, err := h.store.GetApplicationsByJob(r.Context(), job.ID)
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	h.successResponse(w, r, "applications loaded", applications)
}

func (h *Handler) UpdateApplicationStatus(w http.ResponseWriter, r *http.Request) {
	actor := r.Context().Value(HRActorCtx).(*domain.HRAccount)
	application := r.Context().Value(ApplicationCtx).(*domain.Application)

	var req struct {
		Status domain.ApplicationStatus `json:"status" validate:"required"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if !req.Status.Valid() {
		h.domainError(w, r, domain.ErrInvalidTransition)
		return
	}

	if err := auth.AuthorizeApplicationReview(actor); err != nil {
		h.domainError(w, r, err)
		return
	}

	if err := h.store.UpdateApplicationStatus(r.Context(), application.ID, req.Status); err != nil {
		h.domainError(w, r, err)
		return
	}
	application.Status = req.Status

	h.successResponse(w, r, "application status updated", application)
}

// authorizeApplicationRead lets the job's managers and any scope above
// participant see its applications.
func authorizeApplicationRead(actor *domain.HRAccount, job *domain.Job) error {
	if auth.CanMutateJob(actor, job) {
		return nil
	}
	return auth.AuthorizeApplicationReview(actor)
}

// applicationSubject loads the job and candidate behind the application in
// context and checks the actor may read them.
func (h *Handler) applicationSubject(w http.ResponseWriter, r *http.Request) (*domain.Job, *domain.Candidate, bool) {
	actor := r.Context().Value(HRActorCtx).(*domain.HRAccount)
	application := r.Context().Value(ApplicationCtx).(*domain.Application)

	job, err := h.store.GetJobByID(r.Context(), application.JobID)
	if err != nil {
		h.domainError(w, r, err)
		return nil, nil, false
	}
	if err := authorizeApplicationRead(actor, job); err != nil {
		h.domainError(w, r, err)
		return nil, nil, false
	}

	candidate, err := h.store.GetCandidateByID(r.Context(), application.CandidateID)
	if err != nil {
		h.domainError(w, r, err)
		return nil, nil, false
	}
	return job, candidate, true
}

func (h *Handler) GetApplication(w http.ResponseWriter, r *http.Request) {
	application := r.Context().Value(ApplicationCtx).(*domain.Application)

	job, candidate, ok := h.applicationSubject(w, r)
	if !ok {
		return
	}

	h.successResponse(w, r, "application loaded", map[string]any{
		"application": application,
		"job": map[string]any{
			"jobId":       job.ID,
			"role":        job.Role,
			"designation": job.Designation,
			"department":  job.Department,
			"location":    job.Location,
		},
		"candidate": candidate,
	})
}

var errNoResume = errors.New("candidate has not uploaded a resume")

// DownloadApplicationResume streams the applicant's resume as a PDF.
func (h *Handler) DownloadApplicationResume(w http.ResponseWriter, r *http.Request) {
	_, candidate, ok := h.applicationSubject(w, r)
	if !ok {
		return
	}
	if candidate.Resume == "" {
		h.errorResponse(w, r, http.StatusNotFound, "not_found", errNoResume.Error())
		return
	}

	data, err := h.blobs.Get(r.Context(), candidate.Resume)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			h.log.Warn("resume reference points at a missing object", "candidateId", candidate.ID, "resume", candidate.Resume)
			h.errorResponse(w, r, http.StatusNotFound, "not_found", errNoResume.Error())
			return
		}
		h.internalServerError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="`+candidate.ID+`.pdf"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.log.Warn("failed to write resume", "candidateId", candidate.ID, "error", err)
	}
}
