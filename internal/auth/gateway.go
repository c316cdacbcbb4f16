package auth

import (
	"github.com/jobportal-dev/job-portal/backend/internal/domain"
	"github.com/jobportal-dev/job-portal/backend/internal/metrics"
)

type Outcome int

const (
	Authorized Outcome = iota
	AwaitingResolution
	Redirect
	DenyWithReason
	DenyRedirectLogin
)

func (o Outcome) String() string {
	switch o {
	case Authorized:
		return "authorized"
	case AwaitingResolution:
		return "awaiting_resolution"
	case Redirect:
		return "redirect"
	case DenyWithReason:
		return "deny"
	default:
		return "deny_redirect_login"
	}
}

const LoginRedirect = "/login?error=Unauthorized"

// EntryPoints maps each role to the page it lands on.
var EntryPoints = map[domain.Role]string{
	domain.RoleCandidate: "/candidate/dashboard",
	domain.RoleHR:        "/hr/dashboard",
}

type Decision struct {
	Outcome  Outcome
	Location string
	Reason   string
}

// Decide is the per-request state machine for protected routes. A nil
// principal means there is no valid session.
func Decide(p *domain.Principal, required domain.Role) Decision {
	d := decideRoute(p, required)
	metrics.ObserveGatewayDecision(d.Outcome.String())
	return d
}

func decideRoute(p *domain.Principal, required domain.Role) Decision {
	switch {
	case p == nil:
		return Decision{Outcome: DenyRedirectLogin, Location: LoginRedirect, Reason: "not signed in"}
	case p.Role == domain.RoleUnresolved:
		return Decision{Outcome: AwaitingResolution}
	case p.Role == required:
		return Decision{Outcome: Authorized}
	}

	if entry, ok := EntryPoints[p.Role]; ok {
		return Decision{Outcome: Redirect, Location: entry, Reason: "this area is for " + string(required) + " accounts"}
	}
	return Decision{Outcome: DenyWithReason, Reason: "unknown role " + string(p.Role)}
}
