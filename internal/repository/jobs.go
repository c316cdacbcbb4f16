package repository

import (
	"context"

	"github.com/jobportal-dev/job-portal/backend/internal/domain"
)

const jobColumns = `id, hr_id, role, designation, department, location, experience, status, description, posted_on, version`

func scanJob(row rowScanner) (*domain.Job, error) {
	j := &domain.Job{}
	dst := []any{&j.ID, &j.HRID, &j.Role, &j.Designation, &j.Department, &j.Location, &j.Experience, &j.Status, &j.Description, &j.PostedOn, &j.Version}
	if err := row.Scan(dst...); err != nil {
		return nil, translate(err)
	}
	return j, nil
}

func (r *Repository) CreateJob(ctx context.Context, j *domain.Job) error {
	query := `
		INSERT INTO jobs (hr_id, role, designation, department, location, experience, status, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, posted_on, version
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	args := []any{j.HRID, j.Role, j.Designation, j.Department, j.Location, j.Experience, j.Status, j.Description}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&j.ID, &j.PostedOn, &j.Version); err != nil {
		return translate(err)
	}

	return nil
}

func (r *Repository) GetJobByID(ctx context.Context, id int64) (*domain.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	return scanJob(r.dbpool.QueryRowContext(ctx, query, id))
}

// GetJobs lists jobs newest first. An empty status lists every job.
func (r *Repository) GetJobs(ctx context.Context, status domain.JobStatus) ([]*domain.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE ($1 = '' OR status = $1) ORDER BY posted_on DESC`
	return r.listJobs(ctx, query, string(status))
}

func (r *Repository) GetJobsByHR(ctx context.Context, hrID string) ([]*domain.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE hr_id = $1 ORDER BY posted_on DESC`
	return r.listJobs(ctx, query, hrID)
}

func (r *Repository) listJobs(ctx context.Context, query string, args ...any) ([]*domain.Job, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	jobs := make([]*domain.Job, 0)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}

	if err := rows.Err(); err != nil {
		return nil, translate(err)
	}

	return jobs, nil
}

func (r *Repository) UpdateJob(ctx context.Context, j *domain.Job) error {
	query := `
		UPDATE jobs
		SET
			role = $1,
			designation = $2,
			department = $3,
			location = $4,
			experience = $5,
			status = $6,
			description = $7,
			version = version + 1
		WHERE id = $8 AND version = $9
		RETURNING version
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	args := []any{j.Role, j.Designation, j.Department, j.Location, j.Experience, j.Status, j.Description, j.ID, j.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&j.Version); err != nil {
		err = translate(err)
		if err == domain.ErrRecordNotFound {
			return domain.ErrEditConflict
		}
		return err
	}

	return nil
}
