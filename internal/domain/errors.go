package domain

import (
	"errors"
	"fmt"
	"slices"
)

// FederatedPasswordSentinel is stored as the password hash of accounts created
// through federated sign-in. It is not a bcrypt digest and never verifies.
const FederatedPasswordSentinel = "google-oauth-user"

var legacyFederatedSentinels = []string{FederatedPasswordSentinel, "google-oauth", "google_oauth_user"}

// IsFederatedSentinel also accepts the spellings written by older releases.
func IsFederatedSentinel(passwordHash string) bool {
	return slices.Contains(legacyFederatedSentinels, passwordHash)
}

var (
	ErrNotFoundInRole         = errors.New("no account found with this email")
	ErrAmbiguousIdentity      = errors.New("email is registered as both candidate and hr")
	ErrFederatedOnlyAccount   = errors.New("this account uses google sign-in, please continue with google")
	ErrInvalidCredentials     = errors.New("invalid email or password")
	ErrInsufficientScope      = errors.New("insufficient scope for this action")
	ErrSelfActionForbidden    = errors.New("you cannot perform this action on your own account")
	ErrProvisioningConflict   = errors.New("account was provisioned concurrently")
	ErrStorageUnavailable     = errors.New("storage temporarily unavailable")
	ErrRecordNotFound         = errors.New("record not found")
	ErrEmailTaken             = errors.New("email already registered")
	ErrEditConflict           = errors.New("record was modified concurrently")
	ErrNoSession              = errors.New("no valid session")
	ErrRoleUnresolved         = errors.New("session role has not been resolved")
	ErrSelectionMismatch      = errors.New("role selection does not belong to this session")
	ErrSelectionAlreadyMerged = errors.New("role selection was already used")
)

// NotFoundInRoleError reports that an email has no record in the requested
// collection. ExistsInOtherRole tells the caller the email is registered under
// the other role.
type NotFoundInRoleError struct {
	Role              Role
	ExistsInOtherRole bool
}

func (e *NotFoundInRoleError) Error() string {
	if e.ExistsInOtherRole {
		return fmt.Sprintf("no %s account found with this email, it is registered as %s", e.Role, e.Role.Other())
	}
	return fmt.Sprintf("no %s account found with this email", e.Role)
}

func (e *NotFoundInRoleError) Is(target error) bool {
	return target == ErrNotFoundInRole
}

// CascadeError names the step of a multi-step delete that failed. Steps before
// it have already been applied.
type CascadeError struct {
	Step string
	Err  error
}

func (e *CascadeError) Error() string {
	return fmt.Sprintf("cascade delete failed at %s: %v", e.Step, e.Err)
}

func (e *CascadeError) Unwrap() error {
	return e.Err
}
