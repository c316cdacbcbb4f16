package repository

import (
	"context"

	"github.com/jobportal-dev/job-portal/backend/internal/domain"
)

type cascadeStep struct {
	name string
	run  func(ctx context.Context) error
}

// runCascade executes steps in order and stops at the first failure. Earlier
// steps are not rolled back.
func runCascade(ctx context.Context, steps []cascadeStep) error {
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return &domain.CascadeError{Step: step.name, Err: err}
		}
		if err := step.run(ctx); err != nil {
			return &domain.CascadeError{Step: step.name, Err: err}
		}
	}
	return nil
}

func (r *Repository) exec(query string, args ...any) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		ctx, cancel := r.queryContext(ctx)
		defer cancel()

		_, err := r.dbpool.ExecContext(ctx, query, args...)
		return translate(err)
	}
}

// DeleteCandidateCascade removes the candidate's applications, then saved jobs,
// then the candidate.
func (r *Repository) DeleteCandidateCascade(ctx context.Context, id string) error {
	return runCascade(ctx, []cascadeStep{
		{name: "applications", run: r.exec(`DELETE FROM applications WHERE candidate_id = $1`, id)},
		{name: "saved_jobs", run: r.exec(`DELETE FROM saved_jobs WHERE candidate_id = $1`, id)},
		{name: "candidate", run: func(ctx context.Context) error { return r.DeleteCandidate(ctx, id) }},
	})
}

// DeleteHRCascade removes every job the account posted, along with the
// applications and saved entries of those jobs, then the account.
func (r *Repository) DeleteHRCascade(ctx context.Context, id string) error {
	return runCascade(ctx, []cascadeStep{
		{name: "applications", run: r.exec(`DELETE FROM applications WHERE job_id IN (SELECT id FROM jobs WHERE hr_id = $1)`, id)},
		{name: "saved_jobs", run: r.exec(`DELETE FROM saved_jobs WHERE job_id IN (SELECT id FROM jobs WHERE hr_id = $1)`, id)},
		{name: "jobs", run: r.exec(`DELETE FROM jobs WHERE hr_id = $1`, id)},
		{name: "hr_account", run: func(ctx context.Context) error { return r.DeleteHR(ctx, id) }},
	})
}

func (r *Repository) DeleteJobCascade(ctx context.Context, id int64) error {
	return runCascade(ctx, []cascadeStep{
		{name: "applications", run: r.exec(`DELETE FROM applications WHERE job_id = $1`, id)},
		{name: "saved_jobs", run: r.exec(`DELETE FROM saved_jobs WHERE job_id = $1`, id)},
		{name: "job", run: r.exec(`DELETE FROM jobs WHERE id = $1`, id)},
	})
}
