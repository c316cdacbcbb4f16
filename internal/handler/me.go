package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jobportal-dev/job-portal/backend/internal/domain"
)

// CurrentUserData answers with the session's role and the matching record.
// The session middleware has already merged any pending role selection.
func (h *Handler) CurrentUserData(w http.ResponseWriter, r *http.Request) {
	p := principal(r)

	if !p.Resolved() {
		h.successResponse(w, r, "role not selected yet", map[string]any{
			"userType": nil,
			"email":    p.Email,
			"name":     p.Name,
			"userData": nil,
		})
		return
	}

	var data any
	var err error
	switch p.Role {
	case domain.RoleCandidate:
		data, err = h.store.GetCandidateByID(r.Context(), p.IdentityID)
	case domain.RoleHR:
		data, err = h.store.GetHRByID(r.Context(), p.IdentityID)
	}
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			h.sessions.Clear(w)
			h.domainError(w, r, domain.ErrNoSession)
			return
		}
		h.domainError(w, r, err)
		return
	}

	h.successResponse(w, r, "user data loaded", map[string]any{
		"userType": p.Role,
		"userData": data,
	})
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	if !p.Resolved() {
		h.domainError(w, r, domain.ErrRoleUnresolved)
		return
	}

	var req struct {
		CurrentPassword string `json:"currentPassword" validate:"required"`
		NewPassword     string `json:"newPassword" validate:"required"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if len(req.NewPassword) < h.config.Password.MinLength {
		h.badRequest(w, r, fmt.Errorf("new password must be at least %d characters", h.config.Password.MinLength))
		return
	}

	ctx := r.Context()
	switch p.Role {
	case domain.RoleCandidate:
		c, err := h.store.GetCandidateByID(ctx, p.IdentityID)
		if err != nil {
			h.domainError(w, r, err)
			return
		}
		if err := h.credentials.Verify(c.PasswordHash, req.CurrentPassword); err != nil {
			h.domainError(w, r, err)
			return
		}
		if c.PasswordHash, err = h.credentials.Hash(req.NewPassword); err != nil {
			h.internalServerError(w, r, err)
			return
		}
		if err := h.store.UpdateCandidate(ctx, c); err != nil {
			h.domainError(w, r, err)
			return
		}
	case domain.RoleHR:
		hr, err := h.store.GetHRByID(ctx, p.IdentityID)
		if err != nil {
			h.domainError(w, r, err)
			return
		}
		if err := h.credentials.Verify(hr.PasswordHash, req.CurrentPassword); err != nil {
			h.domainError(w, r, err)
			return
		}
		if hr.PasswordHash, err = h.credentials.Hash(req.NewPassword); err != nil {
			h.internalServerError(w, r, err)
			return
		}
		if err := h.store.UpdateHR(ctx, hr); err != nil {
			h.domainError(w, r, err)
			return
		}
	}

	h.successResponse(w, r, "password updated", nil)
}
