package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"dashcomm.org/internal/directory"
)

const (
	defaultBootstrapTimeout = 5 * time.Second
	defaultTenantName       = "My Business"
)

// Session is the authenticated session reported by the auth gateway.
type Session struct {
	Identity directory.Identity
	Token    string
}

// AuthGateway is the narrow auth capability the resolver consumes. The
// change listener fires at least once with the current state and again on
// every sign-in and sign-out.
type AuthGateway interface {
	SignIn(ctx context.Context, email, password string) error
	SignUp(ctx context.Context, email, password, displayName string) error
	SignOut(ctx context.Context) error
	CurrentSession(ctx context.Context) (*Session, error)
	OnSessionChange(fn func(*Session)) (unsubscribe func())
}

// DirectoryGateway is the tenant-membership capability the resolver
// consumes during bootstrap.
type DirectoryGateway interface {
	FindMembershipsByIdentity(ctx context.Context, identityID string) ([]directory.Membership, error)
	CreateTenant(ctx context.Context, name string) (string, error)
	CreateMembership(ctx context.Context, tenantID, identityID, role string) error
}

// Resolver owns the session/tenant state machine. All mutation flows
// through its event handlers; callers only read snapshots and subscribe.
type Resolver struct {
	auth AuthGateway
	dir  DirectoryGateway

	mu       sync.Mutex
	snap     Snapshot
	epoch    uint64
	watchers map[int]func(Snapshot)
	nextID   int

	timeout    time.Duration
	tenantName string
	// schedule runs the bootstrap continuation outside the triggering
	// session-change callback, so the gateway is never re-entered from
	// within its own notification.
	schedule func(func())

	unsubscribe func()
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithBootstrapTimeout bounds how long a single bootstrap attempt may run.
func WithBootstrapTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithTenantName overrides the display name used for a freshly provisioned
// tenant.
func WithTenantName(name string) Option {
	return func(r *Resolver) {
		if name != "" {
			r.tenantName = name
		}
	}
}

// WithScheduler overrides the deferred-execution primitive, for tests.
func WithScheduler(schedule func(func())) Option {
	return func(r *Resolver) {
		if schedule != nil {
			r.schedule = schedule
		}
	}
}

// NewResolver constructs a resolver in the Unresolved state. Call Start to
// begin listening for session changes.
func NewResolver(auth AuthGateway, dir DirectoryGateway, opts ...Option) *Resolver {
	r := &Resolver{
		auth:       auth,
		dir:        dir,
		snap:       Snapshot{State: StateUnresolved},
		watchers:   make(map[int]func(Snapshot)),
		timeout:    defaultBootstrapTimeout,
		tenantName: defaultTenantName,
		schedule:   func(fn func()) { go fn() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start registers the session-change listener, then performs the initial
// session check. Listener and initial check may complete in any order:
// handleSession converges idempotently, so whichever lands last wins.
func (r *Resolver) Start(ctx context.Context) error {
	r.unsubscribe = r.auth.OnSessionChange(r.handleSession)

	sess, err := r.auth.CurrentSession(ctx)
	if err != nil {
		r.handleSession(nil)
		return err
	}
	r.handleSession(sess)
	return nil
}

// Close detaches the resolver from the auth gateway.
func (r *Resolver) Close() {
	if r.unsubscribe != nil {
		r.unsubscribe()
		r.unsubscribe = nil
	}
}

// Current returns the latest completed snapshot.
func (r *Resolver) Current() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snap
}

// Subscribe registers a watcher invoked after every state transition. The
// returned function unsubscribes it.
func (r *Resolver) Subscribe(fn func(Snapshot)) func() {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.watchers[id] = fn
	r.mu.Unlock()
	return func() {
		r.mu.Lock()
		delete(r.watchers, id)
		r.mu.Unlock()
	}
}

// SignIn delegates to the auth gateway. On failure the state machine is
// left untouched; on success the session-change listener, not this call
// site, advances the state toward Ready.
func (r *Resolver) SignIn(ctx context.Context, email, password string) error {
	return r.auth.SignIn(ctx, email, password)
}

// Register parallels SignIn for new identities.
func (r *Resolver) Register(ctx context.Context, email, password, displayName string) error {
	return r.auth.SignUp(ctx, email, password, displayName)
}

// SignOut delegates to the auth gateway and resets to Anonymous
// synchronously. No tenant id is ever reused across identities.
func (r *Resolver) SignOut(ctx context.Context) error {
	err := r.auth.SignOut(ctx)
	r.handleSession(nil)
	return err
}

// Retry re-runs bootstrap after a provisioning failure. It is a no-op
// unless an identity is parked without a tenant.
func (r *Resolver) Retry() {
	r.mu.Lock()
	if r.snap.State != StateAuthenticatedNoTenant || r.snap.Identity == nil {
		r.mu.Unlock()
		return
	}
	identity := *r.snap.Identity
	epoch := r.epoch
	r.snap = Snapshot{State: StateProvisioning, Identity: &identity}
	watchers, snap := r.watchersAndSnapLocked()
	r.mu.Unlock()
	notify(watchers, snap)

	r.schedule(func() { r.bootstrap(epoch, identity) })
}

// handleSession is the single mutation entry point driven by the gateway.
func (r *Resolver) handleSession(sess *Session) {
	r.mu.Lock()
	if sess == nil {
		r.epoch++
		if r.snap.State == StateAnonymous {
			r.mu.Unlock()
			return
		}
		r.snap = Snapshot{State: StateAnonymous}
		watchers, snap := r.watchersAndSnapLocked()
		r.mu.Unlock()
		notify(watchers, snap)
		return
	}

	identity := sess.Identity
	sameIdentity := r.snap.Identity != nil && r.snap.Identity.ID == identity.ID
	// Applying Ready twice is a no-op: the tenant id is only (re)computed
	// when it is currently unset or the identity has changed.
	if sameIdentity && (r.snap.TenantID != "" || r.snap.State == StateProvisioning) {
		r.mu.Unlock()
		return
	}

	r.epoch++
	epoch := r.epoch
	r.snap = Snapshot{State: StateProvisioning, Identity: &identity}
	watchers, snap := r.watchersAndSnapLocked()
	r.mu.Unlock()
	notify(watchers, snap)

	// Deferred to the next tick so the gateway's own callback has returned
	// before the directory is consulted.
	r.schedule(func() { r.bootstrap(epoch, identity) })
}

// bootstrap resolves or provisions the tenant for an identity. Results for
// a superseded epoch (identity changed or signed out underneath) are
// discarded, never applied to a stale snapshot.
func (r *Resolver) bootstrap(epoch uint64, identity directory.Identity) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	memberships, err := r.dir.FindMembershipsByIdentity(ctx, identity.ID)
	if err != nil {
		r.failBootstrap(epoch, identity, &directory.ProvisioningError{Step: "lookup", Err: err})
		return
	}
	if len(memberships) > 0 {
		r.applyReady(epoch, identity, memberships[0].TenantID)
		return
	}

	// Zero memberships observed; the existence check above is what keeps
	// tenant creation at-most-once per identity.
	if !r.transition(epoch, identity, StateAuthenticatedNoTenant) {
		return
	}
	if !r.transition(epoch, identity, StateProvisioning) {
		return
	}

	name := r.tenantName
	if identity.DisplayName != "" {
		name = fmt.Sprintf("%s's Business", identity.DisplayName)
	}
	tenantID, err := r.dir.CreateTenant(ctx, name)
	if err != nil {
		r.failBootstrap(epoch, identity, &directory.ProvisioningError{Step: "create_tenant", Err: err})
		return
	}
	if err := r.dir.CreateMembership(ctx, tenantID, identity.ID, directory.RoleOwner); err != nil {
		r.failBootstrap(epoch, identity, &directory.ProvisioningError{Step: "create_membership", Err: err})
		return
	}
	r.applyReady(epoch, identity, tenantID)
}

func (r *Resolver) applyReady(epoch uint64, identity directory.Identity, tenantID string) {
	r.mu.Lock()
	if epoch != r.epoch {
		r.mu.Unlock()
		return
	}
	if r.snap.State == StateReady && r.snap.TenantID == tenantID {
		r.mu.Unlock()
		return
	}
	r.snap = Snapshot{State: StateReady, Identity: &identity, TenantID: tenantID}
	watchers, snap := r.watchersAndSnapLocked()
	r.mu.Unlock()
	notify(watchers, snap)
}

// failBootstrap parks the identity without a tenant and surfaces the error.
// Policy is strict: no fabricated tenant id, no silent success; the setup
// view may call Retry.
func (r *Resolver) failBootstrap(epoch uint64, identity directory.Identity, err error) {
	r.mu.Lock()
	if epoch != r.epoch {
		r.mu.Unlock()
		return
	}
	r.snap = Snapshot{State: StateAuthenticatedNoTenant, Identity: &identity, Err: err}
	watchers, snap := r.watchersAndSnapLocked()
	r.mu.Unlock()
	notify(watchers, snap)
}

func (r *Resolver) transition(epoch uint64, identity directory.Identity, state State) bool {
	r.mu.Lock()
	if epoch != r.epoch {
		r.mu.Unlock()
		return false
	}
	if r.snap.State == state {
		r.mu.Unlock()
		return true
	}
	r.snap = Snapshot{State: state, Identity: &identity}
	watchers, snap := r.watchersAndSnapLocked()
	r.mu.Unlock()
	notify(watchers, snap)
	return true
}

func (r *Resolver) watchersAndSnapLocked() ([]func(Snapshot), Snapshot) {
	watchers := make([]func(Snapshot), 0, len(r.watchers))
	for _, fn := range r.watchers {
		watchers = append(watchers, fn)
	}
	return watchers, r.snap
}

// notify runs outside the resolver lock so watchers may read Current or
// subscribe without deadlocking.
func notify(watchers []func(Snapshot), snap Snapshot) {
	for _, fn := range watchers {
		fn(snap)
	}
}
