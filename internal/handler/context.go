package handler

import (
	"net/http"

	"github.com/jobportal-dev/job-portal/backend/internal/domain"
)

type ContextKey string

var (
	PrincipalCtx   ContextKey = "principal"
	HRActorCtx     ContextKey = "hrActor"
	CandidateCtx   ContextKey = "candidate"
	TargetHRCtx    ContextKey = "targetHR"
	JobCtx         ContextKey = "job"
	ApplicationCtx ContextKey = "application"
)

// principal is nil when the request carries no valid session.
func principal(r *http.Request) *domain.Principal {
	p, _ := r.Context().Value(PrincipalCtx).(*domain.Principal)
	return p
}
