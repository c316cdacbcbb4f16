package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jobportal-dev/job-portal/backend/internal/domain"
)

const hrColumns = `id, email, first_name, last_name, password_hash, scope, designation, created_at, updated_at, version`

func scanHR(row rowScanner) (*domain.HRAccount, error) {
	h := &domain.HRAccount{}
	dst := []any{&h.ID, &h.Email, &h.FirstName, &h.LastName, &h.PasswordHash, &h.Scope, &h.Designation, &h.CreatedAt, &h.UpdatedAt, &h.Version}
	if err := row.Scan(dst...); err != nil {
		return nil, translate(err)
	}
	return h, nil
}

func (r *Repository) GetHRByEmail(ctx context.Context, email string) (*domain.HRAccount, error) {
	query := `SELECT ` + hrColumns + ` FROM hr_accounts WHERE email = $1`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	return scanHR(r.dbpool.QueryRowContext(ctx, query, email))
}

func (r *Repository) GetHRByID(ctx context.Context, id string) (*domain.HRAccount, error) {
	query := `SELECT ` + hrColumns + ` FROM hr_accounts WHERE id = $1`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	return scanHR(r.dbpool.QueryRowContext(ctx, query, id))
}

func (r *Repository) GetAllHR(ctx context.Context) ([]*domain.HRAccount, error) {
	query := `SELECT ` + hrColumns + ` FROM hr_accounts ORDER BY created_at`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	accounts := make([]*domain.HRAccount, 0)
	for rows.Next() {
		h, err := scanHR(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, h)
	}

	if err := rows.Err(); err != nil {
		return nil, translate(err)
	}

	return accounts, nil
}

// CreateHR returns domain.ErrEmailTaken when the email is already registered
// as an hr account.
func (r *Repository) CreateHR(ctx context.Context, h *domain.HRAccount) error {
	query := `
		INSERT INTO hr_accounts (id, email, first_name, last_name, password_hash, scope, designation)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at, version
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	id := uuid.NewString()
	args := []any{id, h.Email, h.FirstName, h.LastName, h.PasswordHash, h.Scope, h.Designation}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&h.CreatedAt, &h.UpdatedAt, &h.Version); err != nil {
		return translate(err)
	}
	h.ID = id

	return nil
}

func (r *Repository) UpdateHR(ctx context.Context, h *domain.HRAccount) error {
	query := `
		UPDATE hr_accounts
		SET
			first_name = $1,
			last_name = $2,
			password_hash = $3,
			scope = $4,
			designation = $5,
			updated_at = NOW(),
			version = version + 1
		WHERE id = $6 AND version = $7
		RETURNING updated_at, version
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	args := []any{h.FirstName, h.LastName, h.PasswordHash, h.Scope, h.Designation, h.ID, h.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&h.UpdatedAt, &h.Version); err != nil {
		err = translate(err)
		if err == domain.ErrRecordNotFound {
			return domain.ErrEditConflict
		}
		return err
	}

	return nil
}

func (r *Repository) DeleteHR(ctx context.Context, id string) error {
	query := `DELETE FROM hr_accounts WHERE id = $1`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	return translate(err)
}
