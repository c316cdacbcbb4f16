package repository

import (
	"context"

	"github.com/jobportal-dev/job-portal/backend/internal/domain"
)

// SaveJob returns domain.ErrAlreadySaved when the pair already exists.
func (r *Repository) SaveJob(ctx context.Context, s *domain.SavedJob) error {
	query := `
		INSERT INTO saved_jobs (candidate_id, job_id)
		VALUES ($1, $2)
		RETURNING id, saved_at
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	if err := r.dbpool.QueryRowContext(ctx, query, s.CandidateID, s.JobID).Scan(&s.ID, &s.SavedAt); err != nil {
		return translate(err)
	}

	return nil
}

func (r *Repository) CountSavedJobs(ctx context.Context, candidateID string) (int, error) {
	query := `SELECT COUNT(*) FROM saved_jobs WHERE candidate_id = $1`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	var n int
	if err := r.dbpool.QueryRowContext(ctx, query, candidateID).Scan(&n); err != nil {
		return 0, translate(err)
	}

	return n, nil
}

// GetSavedJobs returns the saved jobs themselves, most recently saved first.
func (r *Repository) GetSavedJobs(ctx context.Context, candidateID string) ([]*domain.Job, error) {
	query := `
		SELECT j.id, j.hr_id, j.role, j.designation, j.department, j.location, j.experience, j.status, j.description, j.posted_on, j.version
		FROM saved_jobs s JOIN jobs j ON j.id = s.job_id
		WHERE s.candidate_id = $1
		ORDER BY s.saved_at DESC
	`
	return r.listJobs(ctx, query, candidateID)
}

func (r *Repository) DeleteSavedJob(ctx context.Context, candidateID string, jobID int64) error {
	query := `DELETE FROM saved_jobs WHERE candidate_id = $1 AND job_id = $2`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	res, err := r.dbpool.ExecContext(ctx, query, candidateID, jobID)
	if err != nil {
		return translate(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}
