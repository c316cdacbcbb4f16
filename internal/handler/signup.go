package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jobportal-dev/job-portal/backend/internal/domain"
	"github.com/jobportal-dev/job-portal/backend/internal/otp"
	"github.com/jobportal-dev/job-portal/backend/internal/utils"
)

func (h *Handler) CheckEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email emailAddress `json:"email" validate:"required,email"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	exists, err := h.store.EmailRegistered(r.Context(), string(req.Email))
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	h.successResponse(w, r, "email checked", map[string]bool{"exists": exists})
}

func (h *Handler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email emailAddress `json:"email" validate:"required,email"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	email := string(req.Email)

	exists, err := h.store.EmailRegistered(r.Context(), email)
	if err != nil {
		h.domainError(w, r, err)
		return
	}
	if exists {
		h.domainError(w, r, domain.ErrEmailTaken)
		return
	}

	code, err := utils.GenerateRandomOTP()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if err := h.otp.Issue(r.Context(), email, code); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// the mail shows minutes, the config is in seconds
	if err := h.mail.Publish(r.Context(), domain.MailMessage{
		Type: domain.MailSignupOTP,
		To:   email,
		Data: domain.SignupOTPMailData{OTP: code, Expiration: h.config.OTP.Expiration / 60},
	}); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "OTP sent successfully", nil)
}

func (h *Handler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email emailAddress `json:"email" validate:"required,email"`
		OTP   string       `json:"otp" validate:"required,len=6,numeric"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.otp.Verify(r.Context(), string(req.Email), req.OTP); err != nil {
		if errors.Is(err, otp.ErrMismatch) {
			h.errorResponse(w, r, http.StatusBadRequest, "otp_invalid", err.Error())
			return
		}
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "OTP verified successfully", nil)
}

// CompleteSignup creates a password candidate account for a verified email.
func (h *Handler) CompleteSignup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FirstName       string       `json:"firstName" validate:"required,max=100"`
		LastName        string       `json:"lastName" validate:"required,max=100"`
		Email           emailAddress `json:"email" validate:"required,email"`
		Password        string       `json:"password" validate:"required"`
		ConfirmPassword string       `json:"confirmPassword" validate:"required"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if err := utils.ValidatePasswordPair(req.Password, req.ConfirmPassword); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if len(req.Password) < h.config.Password.MinLength {
		h.badRequest(w, r, fmt.Errorf("password must be at least %d characters", h.config.Password.MinLength))
		return
	}

	ctx := r.Context()
	email := string(req.Email)

	verified, err := h.otp.IsVerified(ctx, email)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if !verified {
		h.errorResponse(w, r, http.StatusBadRequest, "email_not_verified", "verify your email before completing signup")
		return
	}

	exists, err := h.store.EmailRegistered(ctx, email)
	if err != nil {
		h.domainError(w, r, err)
		return
	}
	if exists {
		h.domainError(w, r, domain.ErrEmailTaken)
		return
	}

	passwordHash, err := h.credentials.Hash(req.Password)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	c := &domain.Candidate{
		Email:        email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: passwordHash,
	}
	if err := h.store.CreateCandidate(ctx, c); err != nil {
		h.domainError(w, r, err)
		return
	}

	if err := h.otp.Consume(ctx, email); err != nil {
		h.log.Warn("failed to clear signup OTP", "email", email, "error", err)
	}

	h.createdResponse(w, r, "signup completed successfully", map[string]string{"candidateId": c.ID})
}
