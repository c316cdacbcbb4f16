package seed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/jobportal-dev/job-portal/backend/internal/domain"
	"github.com/jobportal-dev/job-portal/backend/internal/utils"
)

// Columns the postings export must carry, in any order.
var requiredHeaders = []string{
	"email", "first_name", "last_name", "scope", "designation",
	"job_role", "job_designation", "department", "location", "experience", "description",
}

type Store interface {
	GetHRByEmail(ctx context.Context, email string) (*domain.HRAccount, error)
	CreateHR(ctx context.Context, h *domain.HRAccount) error
	CreateJob(ctx context.Context, j *domain.Job) error
}

type Summary struct {
	HRCreated   int
	JobsCreated int
	Skipped     int
}

// ImportPostings loads a CSV export of job postings, one posting per row.
// Posters are created on first sight with passwordHash; rows that fail are
// logged and skipped.
func ImportPostings(ctx context.Context, store Store, r io.Reader, passwordHash string, logger *slog.Logger) (Summary, error) {
	var sum Summary

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		return sum, fmt.Errorf("read header: %w", err)
	}
	for i := range headers {
		headers[i] = strings.ToLower(strings.TrimSpace(headers[i]))
	}
	for _, h := range requiredHeaders {
		if !slices.Contains(headers, h) {
			return sum, fmt.Errorf("missing column %q", h)
		}
	}

	posters := map[string]*domain.HRAccount{}
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return sum, fmt.Errorf("line %d: %w", line, err)
		}

		record := make(map[string]string, len(headers))
		for i, value := range row {
			record[headers[i]] = strings.TrimSpace(value)
		}

		email := utils.NormalizeEmail(record["email"])
		if email == "" {
			logger.Warn("row without email", "line", line)
			sum.Skipped++
			continue
		}

		poster, ok := posters[email]
		if !ok {
			var created bool
			poster, created, err = posterFor(ctx, store, record, email, passwordHash)
			if err != nil {
				logger.Error("failed to load poster", "line", line, "email", email, "error", err)
				sum.Skipped++
				continue
			}
			if created {
				sum.HRCreated++
			}
			posters[email] = poster
		}

		job := &domain.Job{
			HRID:        poster.ID,
			Role:        record["job_role"],
			Designation: record["job_designation"],
			Department:  record["department"],
			Location:    record["location"],
			Experience:  record["experience"],
			Status:      domain.JobStatusActive,
			Description: record["description"],
		}
		if strings.EqualFold(record["status"], string(domain.JobStatusInactive)) {
			job.Status = domain.JobStatusInactive
		}
		if err := store.CreateJob(ctx, job); err != nil {
			logger.Error("failed to create job", "line", line, "error", err)
			sum.Skipped++
			continue
		}
		sum.JobsCreated++
	}

	return sum, nil
}

func posterFor(ctx context.Context, store Store, record map[string]string, email, passwordHash string) (*domain.HRAccount, bool, error) {
	hr, err := store.GetHRByEmail(ctx, email)
	if err == nil {
		return hr, false, nil
	}
	if !errors.Is(err, domain.ErrRecordNotFound) {
		return nil, false, err
	}

	// imports never mint owners
	scope := domain.Scope(strings.ToLower(record["scope"]))
	if !slices.Contains(domain.Scopes, scope) || scope == domain.ScopeOwner {
		scope = domain.ScopeParticipant
	}

	hr = &domain.HRAccount{
		Email:        email,
		FirstName:    record["first_name"],
		LastName:     record["last_name"],
		PasswordHash: passwordHash,
		Scope:        scope,
		Designation:  record["designation"],
	}
	if err := store.CreateHR(ctx, hr); err != nil {
		return nil, false, err
	}
	return hr, true, nil
}
