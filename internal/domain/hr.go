package domain

import (
	"strings"
	"time"
)

// Scope is the permission tier of an HR account.
type Scope string

const (
	ScopeOwner       Scope = "owner"
	ScopeAdmin       Scope = "admin"
	ScopeModerator   Scope = "moderator"
	ScopeParticipant Scope = "participant"
)

var Scopes = []Scope{ScopeOwner, ScopeAdmin, ScopeModerator, ScopeParticipant}

type HRAccount struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	PasswordHash string    `json:"-"`
	Scope        Scope     `json:"scope"`
	Designation  string    `json:"designation"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	Version      int32     `json:"-"`
}

func (h *HRAccount) FullName() string {
	return joinName(h.FirstName, h.LastName)
}

func joinName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}
