package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jobportal-dev/job-portal/backend/internal/auth"
	"github.com/jobportal-dev/job-portal/backend/internal/domain"
)

type ResponseWriter struct {
	http.ResponseWriter
	StatusCode int
}

func (rw *ResponseWriter) WriteHeader(statusCode int) {
	rw.StatusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (h *Handler) logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &ResponseWriter{ResponseWriter: w, StatusCode: http.StatusOK}
		next.ServeHTTP(rw, r)
		duration := time.Since(start)
		h.log.Info("request handled", "status", rw.StatusCode, "ip", r.RemoteAddr, "method", r.Method, "path", r.URL.Path, "duration", duration)
	})
}

func (h *Handler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				h.internalServerError(w, r, fmt.Errorf("panic: %v", err))
				fmt.Print(string(debug.Stack()))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// session loads the principal, merging a pending role selection. Requests
// without a valid session continue with a nil principal.
func (h *Handler) session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := h.sessions.CurrentPrincipal(r.Context(), w, r)
		if err != nil {
			if !errors.Is(err, domain.ErrNoSession) {
				h.internalServerError(w, r, err)
				return
			}
			p = nil
		}

		ctx := context.WithValue(r.Context(), PrincipalCtx, p)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if principal(r) == nil {
			h.domainError(w, r, domain.ErrNoSession)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// apiGateway enforces the required role on JSON endpoints. Redirect
// decisions become 403 with the entry point in data so the client can move.
func (h *Handler) apiGateway(required domain.Role) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := auth.Decide(principal(r), required)
			switch d.Outcome {
			case auth.Authorized:
				next.ServeHTTP(w, r)
			case auth.AwaitingResolution:
				h.domainError(w, r, domain.ErrRoleUnresolved)
			case auth.Redirect:
				h.writeJSON(w, r, http.StatusForbidden, Response{
					Message: d.Reason,
					Code:    "wrong_role",
					Data:    map[string]string{"redirect": d.Location},
				})
			case auth.DenyRedirectLogin:
				h.writeJSON(w, r, http.StatusUnauthorized, Response{
					Message: d.Reason,
					Code:    "unauthorized",
					Data:    map[string]string{"redirect": d.Location},
				})
			default:
				h.errorResponse(w, r, http.StatusForbidden, "forbidden", d.Reason)
			}
		})
	}
}

// pageGateway is the browser flavour: unresolved principals reach the page,
// which finishes resolution itself.
func (h *Handler) pageGateway(required domain.Role) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := auth.Decide(principal(r), required)
			switch d.Outcome {
			case auth.Authorized, auth.AwaitingResolution:
				next.ServeHTTP(w, r)
			case auth.Redirect, auth.DenyRedirectLogin:
				http.Redirect(w, r, d.Location, http.StatusFound)
			default:
				http.Error(w, d.Reason, http.StatusForbidden)
			}
		})
	}
}

// hrActor loads the acting hr account. A session whose account is gone is
// cleared.
func (h *Handler) hrActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, err := h.store.GetHRByID(r.Context(), principal(r).IdentityID)
		if err != nil {
			if errors.Is(err, domain.ErrRecordNotFound) {
				h.sessions.Clear(w)
				h.domainError(w, r, domain.ErrNoSession)
				return
			}
			h.domainError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), HRActorCtx, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) candidateActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := h.store.GetCandidateByID(r.Context(), principal(r).IdentityID)
		if err != nil {
			if errors.Is(err, domain.ErrRecordNotFound) {
				h.sessions.Clear(w)
				h.domainError(w, r, domain.ErrNoSession)
				return
			}
			h.domainError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), CandidateCtx, c)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) targetHR(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		target, err := h.store.GetHRByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			if errors.Is(err, domain.ErrRecordNotFound) {
				h.errorResponse(w, r, http.StatusNotFound, "not_found", "hr user not found")
				return
			}
			h.domainError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), TargetHRCtx, target)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) preventOperateInitialOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		target := r.Context().Value(TargetHRCtx).(*domain.HRAccount)
		if target.Email == h.config.InitialOwner.Email {
			h.errorResponse(w, r, http.StatusForbidden, "initial_owner", "the initial owner cannot be modified")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) job(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		jobID, err := strconv.ParseInt(chi.URLParam(r, "jobId"), 10, 64)
		if err != nil {
			h.badRequest(w, r, errors.New("invalid job id"))
			return
		}

		job, err := h.store.GetJobByID(r.Context(), jobID)
		if err != nil {
			if errors.Is(err, domain.ErrRecordNotFound) {
				h.errorResponse(w, r, http.StatusNotFound, "not_found", "job not found")
				return
			}
			h.domainError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), JobCtx, job)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) application(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a, err := h.store.GetApplicationByID(r.Context(), chi.URLParam(r, "applicationId"))
		if err != nil {
			if errors.Is(err, domain.ErrRecordNotFound) {
				h.errorResponse(w, r, http.StatusNotFound, "not_found", "application not found")
				return
			}
			h.domainError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), ApplicationCtx, a)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
