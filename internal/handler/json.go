package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jobportal-dev/job-portal/backend/internal/domain"
	"github.com/jobportal-dev/job-portal/backend/internal/utils"
)

const maxBodyBytes = 1 << 20

func (h *Handler) logInternalServerError(r *http.Request, err error) {
	h.log.Error("internal server error", "method", r.Method, "path", r.URL.Path, "error", err)
}

func (h *Handler) readJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.New("request body is not valid JSON")
	}
	return nil
}

// emailAddress is normalized while decoding, so validation sees the stored form.
type emailAddress string

func (e *emailAddress) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*e = emailAddress(utils.NormalizeEmail(s))
	return nil
}

// decode reads and validates a request body, answering 400 itself on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := h.readJSON(w, r, v); err != nil {
		h.badRequest(w, r, err)
		return false
	}
	if err := h.validate.Struct(v); err != nil {
		h.badRequest(w, r, err)
		return false
	}
	return true
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logInternalServerError(r, err)
	}
}

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Data    any    `json:"data"`
}

func (h *Handler) errorResponse(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	h.writeJSON(w, r, status, Response{
		Success: false,
		Message: msg,
		Code:    code,
		Data:    nil,
	})
}

func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		h.errorResponse(w, r, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	h.errorResponse(w, r, http.StatusBadRequest, "invalid_request", validationErrors[0].Translate(h.translator))
}

func (h *Handler) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	h.logInternalServerError(r, err)
	h.writeJSON(w, r, http.StatusInternalServerError, Response{
		Success: false,
		Message: "internal server error",
		Code:    "internal",
		Data:    nil,
	})
}

func (h *Handler) successResponse(w http.ResponseWriter, r *http.Request, msg string, data any) {
	h.writeJSON(w, r, http.StatusOK, Response{
		Success: true,
		Message: msg,
		Data:    data,
	})
}

func (h *Handler) createdResponse(w http.ResponseWriter, r *http.Request, msg string, data any) {
	h.writeJSON(w, r, http.StatusCreated, Response{
		Success: true,
		Message: msg,
		Data:    data,
	})
}

type errorKind struct {
	err    error
	status int
	code   string
	// detailed kinds answer with the full error text, the rest with the sentinel's
	detailed bool
}

// errorKinds is checked in order with errors.Is.
var errorKinds = []errorKind{
	{domain.ErrNotFoundInRole, http.StatusNotFound, "not_found", true},
	{domain.ErrAmbiguousIdentity, http.StatusConflict, "ambiguous_identity", false},
	{domain.ErrFederatedOnlyAccount, http.StatusBadRequest, "google_oauth", false},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials", false},
	{domain.ErrInsufficientScope, http.StatusForbidden, "insufficient_scope", false},
	{domain.ErrSelfActionForbidden, http.StatusForbidden, "self_action_forbidden", false},
	{domain.ErrNoSession, http.StatusUnauthorized, "unauthorized", false},
	{domain.ErrRoleUnresolved, http.StatusForbidden, "role_unresolved", false},
	{domain.ErrStorageUnavailable, http.StatusServiceUnavailable, "storage_unavailable", false},
	{domain.ErrRecordNotFound, http.StatusNotFound, "not_found", false},
	{domain.ErrEmailTaken, http.StatusConflict, "email_taken", false},
	{domain.ErrEditConflict, http.StatusConflict, "edit_conflict", false},
	{domain.ErrJobNotActive, http.StatusBadRequest, "job_not_active", false},
	{domain.ErrAlreadyApplied, http.StatusConflict, "already_applied", false},
	{domain.ErrAlreadySaved, http.StatusConflict, "already_saved", false},
	{domain.ErrSavedJobsLimit, http.StatusBadRequest, "saved_jobs_limit", false},
	{domain.ErrInvalidTransition, http.StatusBadRequest, "invalid_status", false},
}

// domainError answers with the status and code of err's kind. Unknown errors
// are internal.
func (h *Handler) domainError(w http.ResponseWriter, r *http.Request, err error) {
	var cascadeErr *domain.CascadeError
	if errors.As(err, &cascadeErr) {
		h.log.Error("cascade delete aborted", "step", cascadeErr.Step, "error", cascadeErr.Err)
		h.errorResponse(w, r, http.StatusInternalServerError, "cascade_failed", "delete failed at step "+cascadeErr.Step)
		return
	}

	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			msg := k.err.Error()
			if k.detailed {
				msg = err.Error()
			}
			if k.status >= http.StatusInternalServerError {
				h.logInternalServerError(r, err)
			} else if msg != err.Error() {
				h.log.Debug("request rejected", "code", k.code, "error", err)
			}
			h.errorResponse(w, r, k.status, k.code, msg)
			return
		}
	}

	h.internalServerError(w, r, err)
}
