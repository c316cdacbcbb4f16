package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jobportal-dev/job-portal/backend/internal/domain"
)

const candidateColumns = `
	id, email, first_name, last_name, password_hash, age, current_position, total_experience,
	location, expected_ctc, skills, education, work, portfolio_link, github_link, linkedin_link,
	twitter_link, resume, ready_to_relocate, created_at, updated_at, version
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCandidate(row rowScanner) (*domain.Candidate, error) {
	c := &domain.Candidate{}
	var age sql.NullInt32
	var skills, education, work []byte

	dst := []any{
		&c.ID, &c.Email, &c.FirstName, &c.LastName, &c.PasswordHash, &age, &c.CurrentRole, &c.TotalExperience,
		&c.Location, &c.ExpectedCTC, &skills, &education, &work, &c.PortfolioLink, &c.GithubLink, &c.LinkedinLink,
		&c.TwitterLink, &c.Resume, &c.ReadyToRelocate, &c.CreatedAt, &c.UpdatedAt, &c.Version,
	}
	if err := row.Scan(dst...); err != nil {
		return nil, translate(err)
	}

	if age.Valid {
		c.Age = &age.Int32
	}
	if err := json.Unmarshal(skills, &c.Skills); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(education, &c.Education); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(work, &c.Work); err != nil {
		return nil, err
	}

	return c, nil
}

// profileJSON encodes the list columns. nil slices are stored as empty arrays.
func profileJSON(c *domain.Candidate) (skills, education, work []byte, err error) {
	if c.Skills == nil {
		c.Skills = []string{}
	}
	if c.Education == nil {
		c.Education = []domain.EducationEntry{}
	}
	if c.Work == nil {
		c.Work = []domain.WorkEntry{}
	}

	if skills, err = json.Marshal(c.Skills); err != nil {
		return
	}
	if education, err = json.Marshal(c.Education); err != nil {
		return
	}
	work, err = json.Marshal(c.Work)
	return
}

func (r *Repository) GetCandidateByEmail(ctx context.Context, email string) (*domain.Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM candidates WHERE email = $1`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	return scanCandidate(r.dbpool.QueryRowContext(ctx, query, email))
}

func (r *Repository) GetCandidateByID(ctx context.Context, id string) (*domain.Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM candidates WHERE id = $1`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	return scanCandidate(r.dbpool.QueryRowContext(ctx, query, id))
}

// CreateCandidate returns domain.ErrEmailTaken when the email is already
// registered as a candidate.
func (r *Repository) CreateCandidate(ctx context.Context, c *domain.Candidate) error {
	skills, education, work, err := profileJSON(c)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO candidates (id, email, first_name, last_name, password_hash, skills, education, work)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at, version
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	id := uuid.NewString()
	args := []any{id, c.Email, c.FirstName, c.LastName, c.PasswordHash, skills, education, work}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&c.CreatedAt, &c.UpdatedAt, &c.Version); err != nil {
		return translate(err)
	}
	c.ID = id

	return nil
}

// UpdateCandidate writes every mutable column. The row must still carry the
// version that was read, otherwise domain.ErrEditConflict is returned.
func (r *Repository) UpdateCandidate(ctx context.Context, c *domain.Candidate) error {
	skills, education, work, err := profileJSON(c)
	if err != nil {
		return err
	}

	query := `
		UPDATE candidates
		SET
			first_name = $1,
			last_name = $2,
			password_hash = $3,
			age = $4,
			current_position = $5,
			total_experience = $6,
			location = $7,
			expected_ctc = $8,
			skills = $9,
			education = $10,
			work = $11,
			portfolio_link = $12,
			github_link = $13,
			linkedin_link = $14,
			twitter_link = $15,
			resume = $16,
			ready_to_relocate = $17,
			updated_at = NOW(),
			version = version + 1
		WHERE id = $18 AND version = $19
		RETURNING updated_at, version
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	args := []any{
		c.FirstName, c.LastName, c.PasswordHash, c.Age, c.CurrentRole, c.TotalExperience, c.Location, c.ExpectedCTC,
		skills, education, work, c.PortfolioLink, c.GithubLink, c.LinkedinLink, c.TwitterLink, c.Resume,
		c.ReadyToRelocate, c.ID, c.Version,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&c.UpdatedAt, &c.Version); err != nil {
		err = translate(err)
		if err == domain.ErrRecordNotFound {
			return domain.ErrEditConflict
		}
		return err
	}

	return nil
}

func (r *Repository) DeleteCandidate(ctx context.Context, id string) error {
	query := `DELETE FROM candidates WHERE id = $1`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	return translate(err)
}

// EmailRegistered reports whether the email exists in either collection.
func (r *Repository) EmailRegistered(ctx context.Context, email string) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM candidates WHERE email = $1)
			OR EXISTS (SELECT 1 FROM hr_accounts WHERE email = $1)
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	isExists := false
	if err := r.dbpool.QueryRowContext(ctx, query, email).Scan(&isExists); err != nil {
		return false, translate(err)
	}

	return isExists, nil
}
