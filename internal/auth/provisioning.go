package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jobportal-dev/job-portal/backend/internal/domain"
	"github.com/jobportal-dev/job-portal/backend/internal/metrics"
)

const (
	DefaultFirstName          = "Google"
	DefaultCandidateLastName  = "User"
	DefaultHRLastName         = "HR"
	DefaultHRDesignation      = "HR Manager"
	DefaultProvisionedHRScope = domain.ScopeParticipant
)

// Provisioned is the record a federated principal maps to after provisioning.
// Created is false when a concurrent call inserted it first.
type Provisioned struct {
	Role      domain.Role
	Candidate *domain.Candidate
	HR        *domain.HRAccount
	Created   bool
}

func (p *Provisioned) Principal(email string) *domain.Principal {
	if p.Candidate != nil {
		return &domain.Principal{Email: email, Name: p.Candidate.FullName(), Role: domain.RoleCandidate, IdentityID: p.Candidate.ID, Method: domain.AuthMethodFederated}
	}
	return &domain.Principal{Email: email, Name: p.HR.FullName(), Role: domain.RoleHR, IdentityID: p.HR.ID, Method: domain.AuthMethodFederated}
}

type Provisioner struct {
	store  IdentityStore
	logger *slog.Logger
}

func NewProvisioner(store IdentityStore, logger *slog.Logger) *Provisioner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provisioner{store: store, logger: logger}
}

// SplitDisplayName takes the first whitespace separated token as the first
// name and the remainder as the last name, falling back to placeholders.
func SplitDisplayName(displayName string, role domain.Role) (first, last string) {
	first, last = DefaultFirstName, DefaultCandidateLastName
	if role == domain.RoleHR {
		last = DefaultHRLastName
	}

	fields := strings.Fields(displayName)
	if len(fields) > 0 {
		first = fields[0]
	}
	if len(fields) > 1 {
		last = strings.Join(fields[1:], " ")
	}
	return first, last
}

// ProvisionFederated creates the record for a federated principal in the
// requested collection. The unique email constraint makes it create-once: a
// conflicting insert re-reads the row that won the race instead of failing.
func (p *Provisioner) ProvisionFederated(ctx context.Context, email, displayName string, role domain.Role) (*Provisioned, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("cannot provision role %q", role)
	}

	first, last := SplitDisplayName(displayName, role)

	var err error
	out := &Provisioned{Role: role, Created: true}
	switch role {
	case domain.RoleCandidate:
		c := &domain.Candidate{
			Email:        email,
			FirstName:    first,
			LastName:     last,
			PasswordHash: domain.FederatedPasswordSentinel,
		}
		err = p.store.CreateCandidate(ctx, c)
		out.Candidate = c
	case domain.RoleHR:
		h := &domain.HRAccount{
			Email:        email,
			FirstName:    first,
			LastName:     last,
			PasswordHash: domain.FederatedPasswordSentinel,
			Scope:        DefaultProvisionedHRScope,
			Designation:  DefaultHRDesignation,
		}
		err = p.store.CreateHR(ctx, h)
		out.HR = h
	}

	switch {
	case err == nil:
		metrics.ObserveProvisioning(string(role), "created")
		p.logger.Info("provisioned federated account", "email", email, "role", role)
		return out, nil
	case errors.Is(err, domain.ErrEmailTaken):
		return p.reread(ctx, email, role)
	default:
		metrics.ObserveProvisioning(string(role), "error")
		return nil, err
	}
}

func (p *Provisioner) reread(ctx context.Context, email string, role domain.Role) (*Provisioned, error) {
	out := &Provisioned{Role: role}

	var err error
	switch role {
	case domain.RoleCandidate:
		out.Candidate, err = p.store.GetCandidateByEmail(ctx, email)
	case domain.RoleHR:
		out.HR, err = p.store.GetHRByEmail(ctx, email)
	}
	if err != nil {
		metrics.ObserveProvisioning(string(role), "error")
		if errors.Is(err, domain.ErrRecordNotFound) {
			// the winning row vanished between the conflict and the read
			return nil, fmt.Errorf("%w: %s", domain.ErrProvisioningConflict, email)
		}
		return nil, err
	}

	metrics.ObserveProvisioning(string(role), "existing")
	p.logger.Info("federated account already provisioned", "email", email, "role", role)
	return out, nil
}
