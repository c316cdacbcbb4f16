package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jobportal-dev/job-portal/backend/internal/domain"
)

const applicationColumns = `id, job_id, candidate_id, status, applied_on`

func scanApplication(row rowScanner) (*domain.Application, error) {
	a := &domain.Application{}
	if err := row.Scan(&a.ID, &a.JobID, &a.CandidateID, &a.Status, &a.AppliedOn); err != nil {
		return nil, translate(err)
	}
	return a, nil
}

// CreateApplication returns domain.ErrAlreadyApplied for a second application
// to the same job.
func (r *Repository) CreateApplication(ctx context.Context, a *domain.Application) error {
	query := `
		INSERT INTO applications (id, job_id, candidate_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING applied_on
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	id := uuid.NewString()
	if a.Status == "" {
		a.Status = domain.ApplicationReviewing
	}
	if err := r.dbpool.QueryRowContext(ctx, query, id, a.JobID, a.CandidateID, a.Status).Scan(&a.AppliedOn); err != nil {
		return translate(err)
	}
	a.ID = id

	return nil
}

func (r *Repository) GetApplicationByID(ctx context.Context, id string) (*domain.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	return scanApplication(r.dbpool.QueryRowContext(ctx, query, id))
}

func (r *Repository) GetApplicationsByJob(ctx context.Context, jobID int64) ([]*domain.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE job_id = $1 ORDER BY applied_on DESC`
	return r.listApplications(ctx, query, jobID)
}

func (r *Repository) GetApplicationsByCandidate(ctx context.Context, candidateID string) ([]*domain.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE candidate_id = $1 ORDER BY applied_on DESC`
	return r.listApplications(ctx, query, candidateID)
}

func (r *Repository) listApplications(ctx context.Context, query string, args ...any) ([]*domain.Application, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	applications := make([]*domain.Application, 0)
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		applications = append(applications, a)
	}

	if err := rows.Err(); err != nil {
		return nil, translate(err)
	}

	return applications, nil
}

func (r *Repository) UpdateApplicationStatus(ctx context.Context, id string, status domain.ApplicationStatus) error {
	query := `UPDATE applications SET status = $1 WHERE id = $2`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	res, err := r.dbpool.ExecContext(ctx, query, status, id)
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
