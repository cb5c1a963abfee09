package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dashcomm.org/internal/auth"
	"dashcomm.org/internal/directory"
	"dashcomm.org/internal/feed"
	"dashcomm.org/internal/finance"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequestIDMinted(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if seen == "" {
		t.Fatal("no request id in context")
	}
	if got := rec.Header().Get("X-Request-ID"); got != seen {
		t.Fatalf("header %q does not match context %q", got, seen)
	}
}

func TestRequestIDEchoed(t *testing.T) {
	h := RequestID(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "req-123" {
		t.Fatalf("X-Request-ID = %q, want req-123", got)
	}
}

func TestSecurityHeaders(t *testing.T) {
	h := SecurityHeaders(okHandler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	for header, want := range map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Cache-Control":          "no-store",
	} {
		if got := rec.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	h := CORS(okHandler())
	req := httptest.NewRequest(http.MethodOptions, "/v1/transactions", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Fatalf("Allow-Origin = %q", got)
	}
}

func TestRateLimitReturns429(t *testing.T) {
	h := RateLimit(okHandler(), 2, 1)

	statuses := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.1.2.3:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		statuses = append(statuses, rec.Code)
	}

	if statuses[0] != http.StatusOK || statuses[1] != http.StatusOK {
		t.Fatalf("burst requests should pass, got %v", statuses)
	}
	if statuses[3] != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after burst, got %v", statuses)
	}

	// Another client has its own bucket.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.9.9.9:5555"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("separate client got %d, want 200", rec.Code)
	}
}

func TestClientIPPrefersForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	if got := clientIP(req); got != "203.0.113.7" {
		t.Fatalf("clientIP = %q, want 203.0.113.7", got)
	}

	req.Header.Del("X-Forwarded-For")
	if got := clientIP(req); got != "10.0.0.1" {
		t.Fatalf("clientIP = %q, want 10.0.0.1", got)
	}
}

func TestMaxBodyConfigurableAboveDefault(t *testing.T) {
	tokens, err := auth.NewTokens("unit-test-secret-0123456789", time.Hour)
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}
	api := New(
		ReadyProbe{},
		"test",
		tokens,
		directory.NewService(directory.NewInMemory()),
		finance.NewInMemory(),
		feed.New(),
	).WithRate(10000, 10000).WithMaxBody(4 << 20)
	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)
	c := &testClient{t: t, srv: srv}

	// A body above the old 1 MiB floor must pass when the cap is raised.
	name := make([]byte, 2<<20)
	for i := range name {
		name[i] = 'n'
	}
	code, body := c.do(http.MethodPost, "/v1/auth/register", map[string]any{
		"email":        "wide@example.com",
		"password":     "correct-horse",
		"display_name": string(name),
	})
	if code != http.StatusOK {
		t.Fatalf("register with 2MiB body under 4MiB cap: %d %v", code, body)
	}
}

func TestMaxBodyBytes(t *testing.T) {
	_, srv := newTestAPI(t)
	c := &testClient{t: t, srv: srv}

	big := make([]byte, 2<<20)
	for i := range big {
		big[i] = 'a'
	}
	code, _ := c.do(http.MethodPost, "/v1/auth/register", map[string]any{
		"email":    "big@example.com",
		"password": string(big),
	})
	if code != http.StatusBadRequest {
		t.Fatalf("oversized body: got %d, want 400", code)
	}
}
