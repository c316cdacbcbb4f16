package handler

import (
	"errors"
	"net/http"

	"github.com/jobportal-dev/job-portal/backend/internal/auth"
	"github.com/jobportal-dev/job-portal/backend/internal/domain"
	"github.com/jobportal-dev/job-portal/backend/internal/oauth"
)

// userData is the role-shaped payload returned by the auth endpoints.
func userData(res auth.Resolution) any {
	switch res.Kind {
	case auth.ResolvedCandidate:
		return res.Candidate
	case auth.ResolvedHR:
		return res.HR
	default:
		return nil
	}
}

func provisionedData(p *auth.Provisioned) any {
	if p.Candidate != nil {
		return p.Candidate
	}
	return p.HR
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    emailAddress `json:"email" validate:"required,email"`
		Password string       `json:"password" validate:"required"`
		UserType domain.Role  `json:"userType" validate:"required,oneof=candidate hr"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	email := string(req.Email)

	res, err := h.resolver.Resolve(r.Context(), email, req.UserType)
	if err != nil {
		h.domainError(w, r, err)
		return
	}
	if !res.Resolved() {
		h.domainError(w, r, res.Err())
		return
	}

	var passwordHash string
	if res.Candidate != nil {
		passwordHash = res.Candidate.PasswordHash
	} else {
		passwordHash = res.HR.PasswordHash
	}
	if err := h.credentials.Verify(passwordHash, req.Password); err != nil {
		h.domainError(w, r, err)
		return
	}

	if err := h.sessions.CommitRole(r.Context(), w, r, res.Principal(domain.AuthMethodPassword)); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "login successful", map[string]any{
		"userType": res.Role(),
		"userData": userData(res),
	})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w)
	h.successResponse(w, r, "logout successful", nil)
}

func (h *Handler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	h.google.LoginHandler().ServeHTTP(w, r)
}

// GoogleCallback starts a federated session with no role. The frontend
// callback page then validates and selects a role.
func (h *Handler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	onIdentity := func(w http.ResponseWriter, r *http.Request, id oauth.Identity) {
		if err := h.sessions.IssueUnresolved(w, id.Email, id.Name, domain.AuthMethodFederated); err != nil {
			h.internalServerError(w, r, err)
			return
		}
		h.log.Info("federated sign-in", "email", id.Email)
		http.Redirect(w, r, h.config.Server.FrontendURL+"/auth/google-callback", http.StatusFound)
	}
	onError := func(w http.ResponseWriter, r *http.Request, err error) {
		h.log.Warn("federated sign-in rejected", "error", err)
		http.Redirect(w, r, h.config.Server.FrontendURL+"/login?error=OAuthAccountNotLinked", http.StatusFound)
	}

	h.google.CallbackHandler(onIdentity, onError).ServeHTTP(w, r)
}

var errEmailMismatch = errors.New("email does not match the signed in account")

// ValidateRole checks the chosen role against the identity store. A federated
// user with no account in either role gets one provisioned here.
func (h *Handler) ValidateRole(w http.ResponseWriter, r *http.Request) {
	p := principal(r)

	var req struct {
		Email        emailAddress `json:"email" validate:"required,email"`
		SelectedRole domain.Role  `json:"selectedRole" validate:"required,oneof=candidate hr"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	email := string(req.Email)
	if email != p.Email {
		h.errorResponse(w, r, http.StatusForbidden, "email_mismatch", errEmailMismatch.Error())
		return
	}

	res, err := h.resolver.Resolve(r.Context(), email, req.SelectedRole)
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	switch {
	case res.Resolved():
		h.successResponse(w, r, "role validated", map[string]any{
			"valid":    true,
			"userData": userData(res),
		})
	case res.Kind == auth.NotFoundInRequestedRole && !res.ExistsInOtherRole && p.Method == domain.AuthMethodFederated:
		prov, err := h.provisioner.ProvisionFederated(r.Context(), email, p.Name, req.SelectedRole)
		if err != nil {
			h.domainError(w, r, err)
			return
		}
		h.successResponse(w, r, "role validated", map[string]any{
			"valid":    true,
			"created":  prov.Created,
			"userData": provisionedData(prov),
		})
	default:
		h.domainError(w, r, res.Err())
	}
}

// SetSessionRole records the role choice in the short lived selection
// cookie. It is merged into the session on the next read.
func (h *Handler) SetSessionRole(w http.ResponseWriter, r *http.Request) {
	p := principal(r)

	var req struct {
		SelectedRole domain.Role `json:"selectedRole" validate:"required,oneof=candidate hr"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	if p.Resolved() {
		if p.Role == req.SelectedRole {
			h.successResponse(w, r, "role already set", map[string]any{"userType": p.Role})
			return
		}
		h.errorResponse(w, r, http.StatusConflict, "role_committed", "this session is signed in as "+string(p.Role)+", sign out to switch")
		return
	}

	res, err := h.resolver.Resolve(r.Context(), p.Email, req.SelectedRole)
	if err != nil {
		h.domainError(w, r, err)
		return
	}
	if !res.Resolved() {
		h.domainError(w, r, res.Err())
		return
	}

	resolved := res.Principal(p.Method)
	sel := auth.Selection{
		Email:      resolved.Email,
		Role:       resolved.Role,
		IdentityID: resolved.IdentityID,
		Name:       resolved.Name,
	}
	if err := h.sessions.SelectRole(w, sel); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "role selected", map[string]any{"userType": resolved.Role})
}

func (h *Handler) CreateFederatedUser(w http.ResponseWriter, r *http.Request) {
	p := principal(r)

	var req struct {
		Email emailAddress `json:"email" validate:"required,email"`
		Name  string       `json:"name" validate:"max=200"`
		Role  domain.Role  `json:"role" validate:"required,oneof=candidate hr"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	email := string(req.Email)
	if email != p.Email {
		h.errorResponse(w, r, http.StatusForbidden, "email_mismatch", errEmailMismatch.Error())
		return
	}
	if p.Method != domain.AuthMethodFederated {
		h.errorResponse(w, r, http.StatusForbidden, "not_federated", "only federated sign-ins can create accounts here")
		return
	}

	res, err := h.resolver.Resolve(r.Context(), email, req.Role)
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	switch {
	case res.Resolved():
		h.successResponse(w, r, "account already exists", map[string]any{
			"created":  false,
			"userData": userData(res),
		})
		return
	case res.Kind == auth.Ambiguous:
		h.domainError(w, r, res.Err())
		return
	case res.ExistsInOtherRole:
		h.errorResponse(w, r, http.StatusConflict, "exists_in_other_role", res.Err().Error())
		return
	}

	name := req.Name
	if name == "" {
		name = p.Name
	}
	prov, err := h.provisioner.ProvisionFederated(r.Context(), email, name, req.Role)
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	data := map[string]any{"created": prov.Created, "userData": provisionedData(prov)}
	if prov.Created {
		h.createdResponse(w, r, "account created", data)
		return
	}
	h.successResponse(w, r, "account already exists", data)
}
