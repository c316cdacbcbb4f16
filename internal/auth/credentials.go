package auth

import (
	"errors"

	"github.com/jobportal-dev/job-portal/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

const MinBcryptCost = 12

type Credentials struct {
	cost int
}

// NewCredentials clamps cost to at least MinBcryptCost.
func NewCredentials(cost int) *Credentials {
	if cost < MinBcryptCost {
		cost = MinBcryptCost
	}
	return &Credentials{cost: cost}
}

func (c *Credentials) Hash(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), c.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify fails closed: any outcome other than a matching bcrypt digest is an
// error. Federated accounts report domain.ErrFederatedOnlyAccount.
func (c *Credentials) Verify(passwordHash, supplied string) error {
	if domain.IsFederatedSentinel(passwordHash) {
		return domain.ErrFederatedOnlyAccount
	}
	if passwordHash == "" || supplied == "" {
		return domain.ErrInvalidCredentials
	}

	err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(supplied))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return domain.ErrInvalidCredentials
	default:
		return err
	}
}
