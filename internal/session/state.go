// Package session answers "who is signed in and which tenant should the
// client operate against". It owns a small observable state machine driven
// by auth session changes, provisions a tenant for first-time identities,
// and gates protected views until both questions are resolved.
package session

import "dashcomm.org/internal/directory"

// State enumerates the resolver's observable states.
type State int

const (
	// StateUnresolved is the initial state; treated as loading.
	StateUnresolved State = iota
	// StateAnonymous means the auth gateway reports no identity.
	StateAnonymous
	// StateAuthenticatedNoTenant means an identity is present but holds no
	// membership yet (or its last bootstrap failed and awaits retry).
	StateAuthenticatedNoTenant
	// StateProvisioning means membership lookup or tenant creation is in
	// flight.
	StateProvisioning
	// StateReady means identity and tenant are both resolved.
	StateReady
)

func (s State) String() string {
	switch s {
	case StateUnresolved:
		return "unresolved"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticatedNoTenant:
		return "authenticated_no_tenant"
	case StateProvisioning:
		return "provisioning"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Snapshot is the read-only triple exposed to the rest of the application.
// TenantID is never non-empty while Identity is nil.
type Snapshot struct {
	State    State
	Identity *directory.Identity
	TenantID string
	// Err records the last resolver-level failure (auth or provisioning).
	// It is cleared on the next successful transition.
	Err error
}

// IsLoading reports whether the triple is still being resolved.
func (s Snapshot) IsLoading() bool {
	return s.State == StateUnresolved || s.State == StateProvisioning
}

// Decision is the view-gating outcome for a protected view.
type Decision int

const (
	// DecideLoading: show a neutral loading state.
	DecideLoading Decision = iota
	// DecideSignIn: redirect to sign-in, preserving the requested location.
	DecideSignIn
	// DecideSetup: redirect to the tenant bootstrap/setup view.
	DecideSetup
	// DecideRender: render the requested view.
	DecideRender
)

// Gating is the result of applying the view-gating rule to a snapshot.
type Gating struct {
	Decision Decision
	// ReturnTo carries the originally requested location for post-login
	// return when Decision is DecideSignIn.
	ReturnTo string
}

// Gate applies the gating rule consumed by the UI layer: loading while
// resolving, sign-in for anonymous, setup for untenanted, render otherwise.
func Gate(s Snapshot, requestedPath string) Gating {
	if s.IsLoading() {
		return Gating{Decision: DecideLoading}
	}
	if s.Identity == nil {
		return Gating{Decision: DecideSignIn, ReturnTo: requestedPath}
	}
	if s.TenantID == "" {
		return Gating{Decision: DecideSetup}
	}
	return Gating{Decision: DecideRender}
}
