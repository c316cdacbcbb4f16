package handler

import (
	"fmt"
	"net/http"

	"github.com/jobportal-dev/job-portal/backend/internal/auth"
	"github.com/jobportal-dev/job-portal/backend/internal/domain"
	"github.com/jobportal-dev/job-portal/backend/internal/utils"
)

func (h *Handler) GetAllHR(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.GetAllHR(r.Context())
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	h.successResponse(w, r, "hr users loaded", users)
}

func (h *Handler) CreateHR(w http.ResponseWriter, r *http.Request) {
	actor := r.Context().Value(HRActorCtx).(*domain.HRAccount)

	var req struct {
		Email       emailAddress `json:"email" validate:"required,email"`
		FirstName   string       `json:"firstName" validate:"required,max=100"`
		LastName    string       `json:"lastName" validate:"max=100"`
		Scope       domain.Scope `json:"scope" validate:"required,oneof=owner admin moderator participant"`
		Designation string       `json:"designation" validate:"required,max=100"`
		Password    string       `json:"password"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	if err := auth.AuthorizeCreate(actor, req.Scope); err != nil {
		h.domainError(w, r, err)
		return
	}

	ctx := r.Context()
	email := string(req.Email)

	// hr and candidate emails share one namespace
	exists, err := h.store.EmailRegistered(ctx, email)
	if err != nil {
		h.domainError(w, r, err)
		return
	}
	if exists {
		h.domainError(w, r, domain.ErrEmailTaken)
		return
	}

	password := req.Password
	if password == "" {
		if password, err = utils.GenerateRandomPassword(h.config.NewUser.PasswordLength); err != nil {
			h.internalServerError(w, r, err)
			return
		}
	} else if len(password) < h.config.Password.MinLength {
		h.badRequest(w, r, fmt.Errorf("password must be at least %d characters", h.config.Password.MinLength))
		return
	}

	passwordHash, err := h.credentials.Hash(password)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	hr := &domain.HRAccount{
		Email:        email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: passwordHash,
		Scope:        req.Scope,
		Designation:  req.Designation,
	}
	if err := h.store.CreateHR(ctx, hr); err != nil {
		h.domainError(w, r, err)
		return
	}

	if err := h.mail.Publish(ctx, domain.MailMessage{
		Type: domain.MailHRAccountCreated,
		To:   hr.Email,
		Data: domain.HRAccountCreatedMailData{
			FullName:    hr.FullName(),
			Email:       hr.Email,
			Password:    password,
			Scope:       hr.Scope,
			Designation: hr.Designation,
			LoginURL:    h.config.Server.FrontendURL + "/login",
		},
	}); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.log.Info("hr user created", "actor", actor.Email, "email", hr.Email, "scope", hr.Scope)
	h.createdResponse(w, r, "hr user created", hr)
}

// UpdateHR edits another hr account. A scope change is checked separately so
// that an admin who may edit a target still cannot raise it to owner.
func (h *Handler) UpdateHR(w http.ResponseWriter, r *http.Request) {
	actor := r.Context().Value(HRActorCtx).(*domain.HRAccount)
	target := r.Context().Value(TargetHRCtx).(*domain.HRAccount)

	var req struct {
		FirstName   *string       `json:"firstName" validate:"omitempty,min=1,max=100"`
		LastName    *string       `json:"lastName" validate:"omitempty,max=100"`
		Designation *string       `json:"designation" validate:"omitempty,min=1,max=100"`
		Scope       *domain.Scope `json:"scope" validate:"omitempty,oneof=owner admin moderator participant"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	if err := auth.AuthorizeManage(actor, target); err != nil {
		h.domainError(w, r, err)
		return
	}
	if req.Scope != nil && *req.Scope != target.Scope {
		if err := auth.AuthorizeScopeChange(actor, target, *req.Scope); err != nil {
			h.domainError(w, r, err)
			return
		}
		target.Scope = *req.Scope
	}

	if req.FirstName != nil {
		target.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		target.LastName = *req.LastName
	}
	if req.Designation != nil {
		target.Designation = *req.Designation
	}

	if err := h.store.UpdateHR(r.Context(), target); err != nil {
		h.domainError(w, r, err)
		return
	}

	h.successResponse(w, r, "hr user updated", target)
}

func (h *Handler) DeleteHR(w http.ResponseWriter, r *http.Request) {
	actor := r.Context().Value(HRActorCtx).(*domain.HRAccount)
	target := r.Context().Value(TargetHRCtx).(*domain.HRAccount)

	if err := auth.AuthorizeManage(actor, target); err != nil {
		h.domainError(w, r, err)
		return
	}

	if err := h.store.DeleteHRCascade(r.Context(), target.ID); err != nil {
		h.domainError(w, r, err)
		return
	}

	h.log.Info("hr user deleted", "actor", actor.Email, "email", target.Email)
	h.successResponse(w, r, "hr user deleted", nil)
}
