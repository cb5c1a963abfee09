package obs

import "testing"

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                              "/",
		"/metrics":                      "/metrics",
		"/v1/transactions/01ABC":        "/v1/transactions/:id",
		"/v1/bills/01ABC":               "/v1/bills/:id",
		"/v1/bills/upcoming":            "/v1/bills/upcoming",
		"/v1/tenants/bootstrap":         "/v1/tenants/bootstrap",
		"/v1/contacts/01ABC":            "/v1/contacts/:id",
		"/v1/dashboard/summary":         "/v1/dashboard/summary",
		"/v1/dashboard/cashflow?days=7": "/v1/dashboard/cashflow",
	}
	for input, expected := range cases {
		if got := CanonicalPath(input); got != expected {
			t.Fatalf("CanonicalPath(%q)=%q, want %q", input, got, expected)
		}
	}
}
