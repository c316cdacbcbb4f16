package domain

import (
	"errors"
	"time"
)

type JobStatus string

const (
	JobStatusActive   JobStatus = "ACTIVE"
	JobStatusInactive JobStatus = "INACTIVE"
)

type Job struct {
	ID          int64     `json:"jobId"`
	HRID        string    `json:"hrId"`
	Role        string    `json:"role"`
	Designation string    `json:"designation"`
	Department  string    `json:"department"`
	Location    string    `json:"location"`
	Experience  string    `json:"experience"`
	Status      JobStatus `json:"jobStatus"`
	Description string    `json:"description"`
	PostedOn    time.Time `json:"postedOn"`
	Version     int32     `json:"-"`
}

type ApplicationStatus string

const (
	ApplicationReviewing   ApplicationStatus = "REVIEWING"
	ApplicationShortlisted ApplicationStatus = "SHORTLISTED"
	ApplicationRejected    ApplicationStatus = "REJECTED"
)

type Application struct {
	ID          string            `json:"applicationId"`
	JobID       int64             `json:"jobId"`
	CandidateID string            `json:"candidateId"`
	Status      ApplicationStatus `json:"applicationStatus"`
	AppliedOn   time.Time         `json:"appliedOn"`
}

type SavedJob struct {
	ID          int64     `json:"id"`
	CandidateID string    `json:"candidateId"`
	JobID       int64     `json:"jobId"`
	SavedAt     time.Time `json:"savedAt"`
}

var (
	ErrJobNotActive      = errors.New("job is not accepting applications")
	ErrAlreadyApplied    = errors.New("you have already applied to this job")
	ErrAlreadySaved      = errors.New("job is already saved")
	ErrSavedJobsLimit    = errors.New("saved jobs limit reached")
	ErrInvalidTransition = errors.New("invalid application status")
)

func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationReviewing, ApplicationShortlisted, ApplicationRejected:
		return true
	}
	return false
}
