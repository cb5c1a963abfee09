package client

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"dashcomm.org/internal/auth"
	"dashcomm.org/internal/directory"
	"dashcomm.org/internal/feed"
	"dashcomm.org/internal/finance"
	"dashcomm.org/internal/httpapi"
	"dashcomm.org/internal/session"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	tokens, err := auth.NewTokens("client-test-secret-0123456789", time.Hour)
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}
	api := httpapi.New(
		httpapi.ReadyProbe{},
		"test",
		tokens,
		directory.NewService(directory.NewInMemory()),
		finance.NewInMemory(),
		feed.New(),
	).WithRate(10000, 10000)
	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestSessionLifecycleEmitsListeners(t *testing.T) {
	srv := newServer(t)
	c := New(srv.URL)
	ctx := context.Background()

	var got []*session.Session
	unsub := c.OnSessionChange(func(s *session.Session) { got = append(got, s) })
	defer unsub()

	if len(got) != 1 || got[0] != nil {
		t.Fatalf("listener should fire immediately with nil session, got %v", got)
	}

	if err := c.SignUp(ctx, "lara@example.com", "correct-horse", "Lara"); err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if len(got) != 2 || got[1] == nil || got[1].Identity.Email != "lara@example.com" {
		t.Fatalf("sign-up should emit the new session, got %v", got)
	}

	sess, err := c.CurrentSession(ctx)
	if err != nil || sess == nil || sess.Token == "" {
		t.Fatalf("CurrentSession = %v, %v", sess, err)
	}

	if err := c.SignOut(ctx); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if len(got) != 3 || got[2] != nil {
		t.Fatalf("sign-out should emit nil, got %v", got)
	}
	if sess, _ := c.CurrentSession(ctx); sess != nil {
		t.Fatalf("session should be cleared, got %v", sess)
	}
}

func TestAuthedCallWithoutSession(t *testing.T) {
	srv := newServer(t)
	c := New(srv.URL)

	if _, err := c.Transactions(context.Background()); !errors.Is(err, ErrNoSession) {
		t.Fatalf("Transactions while signed out: got %v, want ErrNoSession", err)
	}
}

func TestSignInRejectsBadPassword(t *testing.T) {
	srv := newServer(t)
	c := New(srv.URL)
	ctx := context.Background()

	if err := c.SignUp(ctx, "kim@example.com", "correct-horse", ""); err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if err := c.SignOut(ctx); err != nil {
		t.Fatalf("SignOut: %v", err)
	}

	err := c.SignIn(ctx, "kim@example.com", "wrong")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != 401 {
		t.Fatalf("bad password: got %v, want 401 APIError", err)
	}
	if sess, _ := c.CurrentSession(ctx); sess != nil {
		t.Fatalf("failed sign-in must not store a session, got %v", sess)
	}
}

func waitForState(t *testing.T, snaps <-chan session.Snapshot, want session.State) session.Snapshot {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case snap := <-snaps:
			if snap.State == want {
				return snap
			}
		case <-deadline:
			t.Fatalf("timed out waiting for state %v", want)
		}
	}
}

func TestResolverReachesReadyAgainstLiveServer(t *testing.T) {
	srv := newServer(t)
	c := New(srv.URL)
	ctx := context.Background()

	res := session.NewResolver(c, c)
	defer res.Close()

	snaps := make(chan session.Snapshot, 64)
	unsub := res.Subscribe(func(s session.Snapshot) { snaps <- s })
	defer unsub()

	if err := res.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if got := res.Current().State; got != session.StateAnonymous {
		t.Fatalf("initial state = %v, want Anonymous", got)
	}

	if err := res.Register(ctx, "amy@example.com", "correct-horse", "Amy"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	ready := waitForState(t, snaps, session.StateReady)
	if ready.TenantID == "" {
		t.Fatal("Ready snapshot has no tenant id")
	}
	if ready.Identity == nil || ready.Identity.Email != "amy@example.com" {
		t.Fatalf("Ready identity = %v", ready.Identity)
	}

	memberships, err := c.FindMembershipsByIdentity(ctx, ready.Identity.ID)
	if err != nil {
		t.Fatalf("FindMembershipsByIdentity: %v", err)
	}
	if len(memberships) != 1 || memberships[0].TenantID != ready.TenantID {
		t.Fatalf("memberships = %v, want exactly one in %s", memberships, ready.TenantID)
	}

	// Sign out, sign back in: same workspace is adopted, never recreated.
	if err := res.SignOut(ctx); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if got := res.Current().State; got != session.StateAnonymous {
		t.Fatalf("state after sign-out = %v, want Anonymous", got)
	}

	if err := res.SignIn(ctx, "amy@example.com", "correct-horse"); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	again := waitForState(t, snaps, session.StateReady)
	if again.TenantID != ready.TenantID {
		t.Fatalf("re-login resolved tenant %q, want %q", again.TenantID, ready.TenantID)
	}
}

func TestRecordCacheMergesWrites(t *testing.T) {
	srv := newServer(t)
	c := New(srv.URL)
	ctx := context.Background()

	if err := c.SignUp(ctx, "pat@example.com", "correct-horse", ""); err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if _, err := c.CreateTenant(ctx, "Pat LLC"); err != nil {
		t.Fatalf("CreateTenant: %v", err)
	}

	if list, err := c.Transactions(ctx); err != nil || len(list) != 0 {
		t.Fatalf("initial Transactions = %v, %v", list, err)
	}

	created, err := c.RecordTransaction(ctx, NewTransaction{
		Date:        time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
		Kind:        finance.KindInflow,
		AmountGross: 5000,
		Status:      finance.StatusReceived,
		Description: "first sale",
	})
	if err != nil {
		t.Fatalf("RecordTransaction: %v", err)
	}
	if created.ID == "" || created.TenantID == "" {
		t.Fatalf("server did not fill identifiers: %+v", created)
	}

	// The write is visible in the cache before any refetch.
	cached := c.CachedTransactions()
	if len(cached) != 1 || cached[0].ID != created.ID {
		t.Fatalf("cache after write = %v", cached)
	}

	fetched, err := c.Transactions(ctx)
	if err != nil || len(fetched) != 1 || fetched[0].ID != created.ID {
		t.Fatalf("refetch = %v, %v", fetched, err)
	}

	summary, err := c.DashboardSummary(ctx)
	if err != nil {
		t.Fatalf("DashboardSummary: %v", err)
	}
	if summary.MonthRevenue < 0 {
		t.Fatalf("summary = %+v", summary)
	}
}
