package auth

import (
	"github.com/jobportal-dev/job-portal/backend/internal/domain"
	"github.com/jobportal-dev/job-portal/backend/internal/metrics"
)

// manages lists, for each scope, the scopes strictly below it.
var manages = map[domain.Scope][]domain.Scope{
	domain.ScopeOwner:       {domain.ScopeAdmin, domain.ScopeModerator, domain.ScopeParticipant},
	domain.ScopeAdmin:       {domain.ScopeModerator, domain.ScopeParticipant},
	domain.ScopeModerator:   {domain.ScopeParticipant},
	domain.ScopeParticipant: {},
}

// CanManage reports whether target is strictly below actor. Unknown scopes
// manage nothing and cannot be managed.
func CanManage(actor, target domain.Scope) bool {
	for _, s := range manages[actor] {
		if s == target {
			return true
		}
	}
	return false
}

// CanAssignScope uses the same relation, so nobody can grant a scope equal to
// or above their own.
func CanAssignScope(actor, newScope domain.Scope) bool {
	return CanManage(actor, newScope)
}

func ValidScope(s domain.Scope) bool {
	_, ok := manages[s]
	return ok
}

// AuthorizeManage gates edits and deletes of another hr account.
func AuthorizeManage(actor, target *domain.HRAccount) error {
	if actor.ID == target.ID {
		return deny(domain.ErrSelfActionForbidden, "self_action")
	}
	if !CanManage(actor.Scope, target.Scope) {
		return deny(domain.ErrInsufficientScope, "manage")
	}
	return nil
}

// AuthorizeScopeChange gates moving target to newScope.
func AuthorizeScopeChange(actor, target *domain.HRAccount, newScope domain.Scope) error {
	if err := AuthorizeManage(actor, target); err != nil {
		return err
	}
	if !CanAssignScope(actor.Scope, newScope) {
		return deny(domain.ErrInsufficientScope, "assign_scope")
	}
	return nil
}

// AuthorizeCreate gates creating an hr account. Only owners add hr users.
func AuthorizeCreate(actor *domain.HRAccount, newScope domain.Scope) error {
	if actor.Scope != domain.ScopeOwner || !CanAssignScope(actor.Scope, newScope) {
		return deny(domain.ErrInsufficientScope, "create")
	}
	return nil
}

// CanMutateJob allows the posting account, or any owner or admin.
func CanMutateJob(actor *domain.HRAccount, job *domain.Job) bool {
	return job.HRID == actor.ID || actor.Scope == domain.ScopeOwner || actor.Scope == domain.ScopeAdmin
}

func AuthorizeJobMutation(actor *domain.HRAccount, job *domain.Job) error {
	if !CanMutateJob(actor, job) {
		return deny(domain.ErrInsufficientScope, "job")
	}
	return nil
}

// AuthorizeApplicationReview lets every scope above participant move
// applications between statuses.
func AuthorizeApplicationReview(actor *domain.HRAccount) error {
	if !CanManage(actor.Scope, domain.ScopeParticipant) {
		return deny(domain.ErrInsufficientScope, "application_review")
	}
	return nil
}

func deny(err error, reason string) error {
	metrics.ObserveDenial(reason)
	return err
}
