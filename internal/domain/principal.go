package domain

// Role tags which identity collection a principal resolved to.
type Role string

const (
	RoleUnresolved Role = ""
	RoleCandidate  Role = "candidate"
	RoleHR         Role = "hr"
)

func (r Role) Valid() bool {
	return r == RoleCandidate || r == RoleHR
}

// Other returns the opposite collection.
func (r Role) Other() Role {
	switch r {
	case RoleCandidate:
		return RoleHR
	case RoleHR:
		return RoleCandidate
	default:
		return RoleUnresolved
	}
}

type AuthMethod string

const (
	AuthMethodPassword  AuthMethod = "password"
	AuthMethodFederated AuthMethod = "federated"
)

// Principal is the identity carried by the session. Role may be RoleUnresolved,
// in which case IdentityID is empty.
type Principal struct {
	Email      string     `json:"email"`
	Name       string     `json:"name"`
	Role       Role       `json:"userType"`
	IdentityID string     `json:"id"`
	Method     AuthMethod `json:"method"`
}

func (p *Principal) Resolved() bool {
	return p != nil && p.Role.Valid() && p.IdentityID != ""
}
