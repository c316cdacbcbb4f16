package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jobportal-dev/job-portal/backend/internal/domain"
	"github.com/jobportal-dev/job-portal/backend/internal/metrics"
	"golang.org/x/sync/errgroup"
)

// IdentityStore is the persistence the role core needs. Each method touches
// exactly one collection.
type IdentityStore interface {
	GetCandidateByEmail(ctx context.Context, email string) (*domain.Candidate, error)
	GetHRByEmail(ctx context.Context, email string) (*domain.HRAccount, error)
	CreateCandidate(ctx context.Context, c *domain.Candidate) error
	CreateHR(ctx context.Context, h *domain.HRAccount) error
}

type ResolutionKind int

const (
	NotFound ResolutionKind = iota
	ResolvedCandidate
	ResolvedHR
	Ambiguous
	NotFoundInRequestedRole
)

func (k ResolutionKind) String() string {
	switch k {
	case ResolvedCandidate:
		return "resolved_candidate"
	case ResolvedHR:
		return "resolved_hr"
	case Ambiguous:
		return "ambiguous"
	case NotFoundInRequestedRole:
		return "not_found_in_requested_role"
	default:
		return "not_found"
	}
}

// Resolution is the outcome of looking an email up in both collections.
// Exactly one of Candidate or HR is set for the resolved kinds.
type Resolution struct {
	Kind              ResolutionKind
	Email             string
	Requested         domain.Role
	Candidate         *domain.Candidate
	HR                *domain.HRAccount
	ExistsInOtherRole bool
}

func (r Resolution) Resolved() bool {
	return r.Kind == ResolvedCandidate || r.Kind == ResolvedHR
}

// Role is the resolved role, or RoleUnresolved.
func (r Resolution) Role() domain.Role {
	switch r.Kind {
	case ResolvedCandidate:
		return domain.RoleCandidate
	case ResolvedHR:
		return domain.RoleHR
	default:
		return domain.RoleUnresolved
	}
}

// Principal builds the session principal of a resolved outcome.
func (r Resolution) Principal(method domain.AuthMethod) *domain.Principal {
	switch r.Kind {
	case ResolvedCandidate:
		return &domain.Principal{Email: r.Email, Name: r.Candidate.FullName(), Role: domain.RoleCandidate, IdentityID: r.Candidate.ID, Method: method}
	case ResolvedHR:
		return &domain.Principal{Email: r.Email, Name: r.HR.FullName(), Role: domain.RoleHR, IdentityID: r.HR.ID, Method: method}
	default:
		return nil
	}
}

// Err maps unresolved outcomes onto the error taxonomy. Resolved outcomes
// return nil.
func (r Resolution) Err() error {
	switch r.Kind {
	case Ambiguous:
		return domain.ErrAmbiguousIdentity
	case NotFoundInRequestedRole:
		return &domain.NotFoundInRoleError{Role: r.Requested, ExistsInOtherRole: r.ExistsInOtherRole}
	case NotFound:
		return domain.ErrNotFoundInRole
	default:
		return nil
	}
}

type Resolver struct {
	store  IdentityStore
	logger *slog.Logger
}

func NewResolver(store IdentityStore, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{store: store, logger: logger}
}

// Resolve looks the email up in both collections concurrently and decides only
// after both reads complete. requested may be RoleUnresolved. It never writes.
func (r *Resolver) Resolve(ctx context.Context, email string, requested domain.Role) (Resolution, error) {
	candidate, hr, err := r.lookup(ctx, email)
	if errors.Is(err, domain.ErrStorageUnavailable) {
		r.logger.Warn("identity lookup failed, retrying once", "email", email, "error", err)
		candidate, hr, err = r.lookup(ctx, email)
	}
	if err != nil {
		return Resolution{}, err
	}

	res := decide(email, requested, candidate, hr)

	metrics.ObserveResolution(res.Kind.String())
	if res.Kind == Ambiguous {
		metrics.ObserveAmbiguousIdentity()
		r.logger.Error("email exists in both candidate and hr collections", "email", email, "candidateId", candidate.ID, "hrId", hr.ID)
	}

	return res, nil
}

func (r *Resolver) lookup(ctx context.Context, email string) (*domain.Candidate, *domain.HRAccount, error) {
	var candidate *domain.Candidate
	var hr *domain.HRAccount

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := r.store.GetCandidateByEmail(gctx, email)
		if err != nil && !errors.Is(err, domain.ErrRecordNotFound) {
			return err
		}
		candidate = c
		return nil
	})
	g.Go(func() error {
		h, err := r.store.GetHRByEmail(gctx, email)
		if err != nil && !errors.Is(err, domain.ErrRecordNotFound) {
			return err
		}
		hr = h
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return candidate, hr, nil
}

func decide(email string, requested domain.Role, candidate *domain.Candidate, hr *domain.HRAccount) Resolution {
	res := Resolution{Email: email, Requested: requested}

	switch {
	case candidate != nil && hr != nil:
		res.Kind = Ambiguous
		return res
	case candidate == nil && hr == nil:
		if requested.Valid() {
			res.Kind = NotFoundInRequestedRole
		} else {
			res.Kind = NotFound
		}
		return res
	}

	found := domain.RoleCandidate
	if hr != nil {
		found = domain.RoleHR
	}

	if requested.Valid() && requested != found {
		res.Kind = NotFoundInRequestedRole
		res.ExistsInOtherRole = true
		return res
	}

	if found == domain.RoleCandidate {
		res.Kind = ResolvedCandidate
		res.Candidate = candidate
	} else {
		res.Kind = ResolvedHR
		res.HR = hr
	}
	return res
}
