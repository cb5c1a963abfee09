package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"dashcomm.org/internal/auth"
	"dashcomm.org/internal/directory"
)

var publicPaths = map[string]bool{
	"/":                 true,
	"/healthz":          true,
	"/readyz":           true,
	"/metrics":          true,
	"/v1/info":          true,
	"/v1/auth/register": true,
	"/v1/auth/login":    true,
}

// withAuth verifies the bearer token on protected routes and stashes the
// caller identity in the request context.
func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if publicPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}
		token, err := bearerToken(r)
		if err != nil {
			writeError(w, r, http.StatusUnauthorized, err.Error())
			return
		}
		claims, err := a.tokens.Parse(token)
		if err != nil {
			writeError(w, r, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		ctx := auth.ContextWithIdentity(r.Context(), claims.Subject, claims.Email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errors.New("missing Authorization header")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", errors.New("Authorization header must be a bearer token")
	}
	return parts[1], nil
}

// resolveTenant picks the tenant scope for a request. An explicit
// X-Tenant-ID header wins when the caller belongs to it, otherwise the
// caller's first membership is used. directory.ErrNotFound means the
// identity has no workspace yet and must bootstrap one first.
func (a *API) resolveTenant(r *http.Request) (string, error) {
	identityID, ok := auth.IdentityIDFromContext(r.Context())
	if !ok {
		return "", errors.New("no identity in request context")
	}
	if want := r.Header.Get("X-Tenant-ID"); want != "" {
		ok, err := a.directory.BelongsTo(r.Context(), identityID, want)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", directory.ErrNotFound
		}
		return want, nil
	}
	memberships, err := a.directory.Memberships(r.Context(), identityID)
	if err != nil {
		return "", err
	}
	if len(memberships) == 0 {
		return "", directory.ErrNotFound
	}
	return memberships[0].TenantID, nil
}

// requireTenant resolves the tenant or writes the error response.
// A 409 tells the client to run tenant bootstrap before retrying.
func (a *API) requireTenant(w http.ResponseWriter, r *http.Request) (string, bool) {
	tenantID, err := a.resolveTenant(r)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			writeError(w, r, http.StatusConflict, "no workspace for this account; call /v1/tenants/bootstrap")
			return "", false
		}
		writeError(w, r, http.StatusInternalServerError, "could not resolve workspace")
		return "", false
	}
	return tenantID, true
}
