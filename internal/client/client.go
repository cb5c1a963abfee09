// Package client is the Go consumer of the DashComm API. It implements the
// auth and directory gateways the session resolver drives, plus cached
// record access for dashboard consumers.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"dashcomm.org/internal/directory"
	"dashcomm.org/internal/session"
)

// APIError is a non-2xx response from the service.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
}

// ErrNoSession is returned when an authenticated call is made while signed
// out.
var ErrNoSession = errors.New("client: no active session")

// Client talks to a DashComm API server. It is safe for concurrent use.
type Client struct {
	baseURL string
	hc      *http.Client

	mu        sync.Mutex
	sess      *session.Session
	listeners map[int]func(*session.Session)
	nextID    int

	cacheMu sync.Mutex
	cache   recordCache
}

var (
	_ session.AuthGateway      = (*Client)(nil)
	_ session.DirectoryGateway = (*Client)(nil)
)

// New builds a client for the given base URL.
func New(baseURL string) *Client {
	return &Client{
		baseURL:   baseURL,
		hc:        &http.Client{Timeout: 30 * time.Second},
		listeners: make(map[int]func(*session.Session)),
	}
}

// WithHTTPClient overrides the underlying http.Client, for tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.hc = hc
	}
	return c
}

// --- session.AuthGateway ---

type credentialsPayload struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name,omitempty"`
}

type tokenPayload struct {
	Token     string             `json:"token"`
	ExpiresAt time.Time          `json:"expires_at"`
	Identity  directory.Identity `json:"identity"`
}

// SignIn authenticates and stores the session. Listeners fire on success.
func (c *Client) SignIn(ctx context.Context, email, password string) error {
	var out tokenPayload
	err := c.do(ctx, http.MethodPost, "/v1/auth/login", credentialsPayload{Email: email, Password: password}, &out, false)
	if err != nil {
		return err
	}
	c.setSession(&session.Session{Identity: out.Identity, Token: out.Token})
	return nil
}

// SignUp registers a new identity and signs it in.
func (c *Client) SignUp(ctx context.Context, email, password, displayName string) error {
	var out tokenPayload
	payload := credentialsPayload{Email: email, Password: password, DisplayName: displayName}
	if err := c.do(ctx, http.MethodPost, "/v1/auth/register", payload, &out, false); err != nil {
		return err
	}
	c.setSession(&session.Session{Identity: out.Identity, Token: out.Token})
	return nil
}

// SignOut drops the local session and tells the server. The local session
// is cleared even when the server call fails.
func (c *Client) SignOut(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/v1/auth/logout", nil, nil, true)
	c.setSession(nil)
	c.clearCaches()
	if err != nil && !errors.Is(err, ErrNoSession) {
		return err
	}
	return nil
}

// CurrentSession returns the stored session, or nil when signed out.
func (c *Client) CurrentSession(ctx context.Context) (*session.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess == nil {
		return nil, nil
	}
	copied := *c.sess
	return &copied, nil
}

// OnSessionChange registers a listener. It fires immediately with the
// current session and again after every sign-in and sign-out.
func (c *Client) OnSessionChange(fn func(*session.Session)) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	current := c.sess
	c.mu.Unlock()

	fn(current)

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

func (c *Client) setSession(sess *session.Session) {
	c.mu.Lock()
	c.sess = sess
	fns := make([]func(*session.Session), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()
	for _, fn := range fns {
		fn(sess)
	}
}

// --- session.DirectoryGateway ---

type sessionPayload struct {
	Identity    directory.Identity     `json:"identity"`
	Memberships []directory.Membership `json:"memberships"`
}

// FindMembershipsByIdentity lists the caller's memberships. The server
// scopes the query to the bearer token, so identityID must match the
// signed-in identity.
func (c *Client) FindMembershipsByIdentity(ctx context.Context, identityID string) ([]directory.Membership, error) {
	var out sessionPayload
	if err := c.do(ctx, http.MethodGet, "/v1/session", nil, &out, true); err != nil {
		return nil, err
	}
	if out.Identity.ID != identityID {
		return nil, fmt.Errorf("client: session identity %q does not match %q", out.Identity.ID, identityID)
	}
	return out.Memberships, nil
}

type bootstrapPayload struct {
	TenantID string `json:"tenant_id"`
	Created  bool   `json:"created"`
}

// CreateTenant provisions the caller's workspace through the server's
// bootstrap endpoint. The server creates the owner membership in the same
// call, so the follow-up CreateMembership only confirms it.
func (c *Client) CreateTenant(ctx context.Context, name string) (string, error) {
	var out bootstrapPayload
	payload := map[string]string{"name": name}
	if err := c.do(ctx, http.MethodPost, "/v1/tenants/bootstrap", payload, &out, true); err != nil {
		return "", err
	}
	return out.TenantID, nil
}

// CreateMembership verifies the owner membership the bootstrap endpoint
// created. An absent membership is reported as an error so the resolver
// never reaches Ready on an unprovisioned tenant.
func (c *Client) CreateMembership(ctx context.Context, tenantID, identityID, role string) error {
	memberships, err := c.FindMembershipsByIdentity(ctx, identityID)
	if err != nil {
		return err
	}
	for _, m := range memberships {
		if m.TenantID == tenantID {
			return nil
		}
	}
	return fmt.Errorf("client: membership in tenant %q was not provisioned", tenantID)
}

// --- transport ---

func (c *Client) do(ctx context.Context, method, path string, in, out any, authed bool) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		c.mu.Lock()
		sess := c.sess
		c.mu.Unlock()
		if sess == nil {
			return ErrNoSession
		}
		req.Header.Set("Authorization", "Bearer "+sess.Token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		msg := resp.Status
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			msg = apiErr.Error
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
