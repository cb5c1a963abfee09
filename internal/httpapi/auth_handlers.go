package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"dashcomm.org/internal/audit"
	"dashcomm.org/internal/auth"
	"dashcomm.org/internal/directory"
)

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token     string              `json:"token"`
	ExpiresAt time.Time           `json:"expires_at"`
	Identity  *directory.Identity `json:"identity"`
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Password) < 8 {
		writeError(w, r, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}
	identity, err := a.directory.Register(r.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		a.writeDirectoryError(w, r, err)
		return
	}
	_ = audit.LogEvent(a.auditCtx(r), "auth.register", map[string]any{
		"identity_id": identity.ID,
		"email":       identity.Email,
	})
	a.issueToken(w, r, identity)
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	identity, err := a.directory.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		a.writeDirectoryError(w, r, err)
		return
	}
	_ = audit.LogEvent(a.auditCtx(r), "auth.login", map[string]any{
		"identity_id": identity.ID,
	})
	a.issueToken(w, r, identity)
}

// handleLogout is stateless on the server; tokens simply expire. It exists
// so clients have a single place to report sign-out and for the audit trail.
func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	_ = audit.LogEvent(a.auditCtx(r), "auth.logout", nil)
	w.WriteHeader(http.StatusNoContent)
}

type sessionResponse struct {
	Identity    *directory.Identity    `json:"identity"`
	Memberships []directory.Membership `json:"memberships"`
}

func (a *API) handleSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	identityID, ok := auth.IdentityIDFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "not authenticated")
		return
	}
	identity, err := a.directory.Identity(r.Context(), identityID)
	if err != nil {
		a.writeDirectoryError(w, r, err)
		return
	}
	memberships, err := a.directory.Memberships(r.Context(), identityID)
	if err != nil {
		a.writeDirectoryError(w, r, err)
		return
	}
	if memberships == nil {
		memberships = []directory.Membership{}
	}
	writeJSON(w, http.StatusOK, sessionResponse{Identity: identity, Memberships: memberships})
}

type bootstrapRequest struct {
	Name string `json:"name,omitempty"`
}

type bootstrapResponse struct {
	TenantID string `json:"tenant_id"`
	Created  bool   `json:"created"`
}

// handleBootstrap provisions the caller's workspace. Safe to retry: the
// existence check inside EnsureTenant makes repeat calls adopt, not
// duplicate.
func (a *API) handleBootstrap(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	identityID, ok := auth.IdentityIDFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "not authenticated")
		return
	}
	var req bootstrapRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
	}
	tenantID, created, err := a.directory.EnsureTenant(r.Context(), identityID, req.Name)
	if err != nil {
		a.writeDirectoryError(w, r, err)
		return
	}
	if created {
		_ = audit.LogEvent(a.auditCtx(r), "tenant.bootstrap", map[string]any{
			"tenant_id": tenantID,
		})
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, bootstrapResponse{TenantID: tenantID, Created: created})
}

func (a *API) issueToken(w http.ResponseWriter, r *http.Request, identity *directory.Identity) {
	token, expires, err := a.tokens.Issue(identity.ID, identity.Email)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "could not issue token")
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token, ExpiresAt: expires, Identity: identity})
}

func (a *API) auditCtx(r *http.Request) context.Context {
	return audit.WithRequestID(r.Context(), RequestIDFromContext(r.Context()))
}

func (a *API) writeDirectoryError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, r, http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, auth.ErrAlreadyRegistered):
		writeError(w, r, http.StatusConflict, "email is already registered")
	case errors.Is(err, directory.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, "invalid input")
	case errors.Is(err, directory.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, directory.ErrProvisioning):
		msg := "workspace provisioning failed"
		var pe *directory.ProvisioningError
		if errors.As(err, &pe) && pe.Step != "" {
			msg = msg + " at step " + pe.Step
		}
		writeError(w, r, http.StatusBadGateway, msg)
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
