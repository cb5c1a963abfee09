package httpapi

import (
	"net/http"
	"time"

	"dashcomm.org/internal/finance"
	"dashcomm.org/internal/report"
)

// summaryResponse is the headline card set of the dashboard. All totals
// are minor units; deltas are percentages against the previous month.
type summaryResponse struct {
	AsOf              time.Time `json:"as_of"`
	MonthRevenue      int64     `json:"month_revenue"`
	MonthExpenses     int64     `json:"month_expenses"`
	RevenueDelta      float64   `json:"revenue_delta"`
	ExpensesDelta     float64   `json:"expenses_delta"`
	PendingReceivable int64     `json:"pending_receivable"`
	PendingPayable    int64     `json:"pending_payable"`
	NewCustomers      int       `json:"new_customers"`
}

func (a *API) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	tenantID, ok := a.requireTenant(w, r)
	if !ok {
		return
	}

	entries, err := a.records.ListEntries(r.Context(), tenantID)
	if err != nil {
		a.writeFinanceError(w, r, err)
		return
	}
	bills, err := a.records.ListBills(r.Context(), tenantID)
	if err != nil {
		a.writeFinanceError(w, r, err)
		return
	}
	contacts, err := a.records.ListContacts(r.Context(), tenantID)
	if err != nil {
		a.writeFinanceError(w, r, err)
		return
	}

	now := a.now().UTC()
	prev := now.AddDate(0, -1, 0)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	// Revenue counts settled inflows either way; expenses only once paid.
	revenueStatuses := []string{finance.StatusReceived, finance.StatusPaid}
	expenseStatuses := []string{finance.StatusPaid}
	revenue := report.MonthlyTotal(entries, finance.KindInflow, now, revenueStatuses)
	revenuePrev := report.MonthlyTotal(entries, finance.KindInflow, prev, revenueStatuses)
	expenses := report.MonthlyTotal(entries, finance.KindOutflow, now, expenseStatuses)
	expensesPrev := report.MonthlyTotal(entries, finance.KindOutflow, prev, expenseStatuses)

	writeJSON(w, http.StatusOK, summaryResponse{
		AsOf:              now,
		MonthRevenue:      revenue,
		MonthExpenses:     expenses,
		RevenueDelta:      report.PercentDelta(revenue, revenuePrev),
		ExpensesDelta:     report.PercentDelta(expenses, expensesPrev),
		PendingReceivable: report.PendingSum(bills, finance.BoardReceivable),
		PendingPayable:    report.PendingSum(bills, finance.BoardPayable),
		NewCustomers:      report.NewContactsSince(contacts, finance.ContactCustomer, monthStart),
	})
}

func (a *API) handleCashflow(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	tenantID, ok := a.requireTenant(w, r)
	if !ok {
		return
	}
	days, err := parseBoundedInt(r.URL.Query().Get("days"), 30, 1, 365)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "days must be an integer between 1 and 365")
		return
	}
	entries, err := a.records.ListEntries(r.Context(), tenantID)
	if err != nil {
		a.writeFinanceError(w, r, err)
		return
	}
	buckets := report.DailyBuckets(entries, days, a.now())
	if buckets == nil {
		buckets = []report.DayBucket{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"days":    days,
		"buckets": buckets,
	})
}

func (a *API) handleUpcomingBills(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	tenantID, ok := a.requireTenant(w, r)
	if !ok {
		return
	}
	days, err := parseBoundedInt(r.URL.Query().Get("days"), 7, 0, 365)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "days must be an integer between 0 and 365")
		return
	}
	bills, err := a.records.ListBills(r.Context(), tenantID)
	if err != nil {
		a.writeFinanceError(w, r, err)
		return
	}
	upcoming := report.Upcoming(bills, days, a.now())
	if upcoming == nil {
		upcoming = []finance.Bill{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"days":  days,
		"bills": upcoming,
	})
}
