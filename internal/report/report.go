// Package report computes the derived aggregates the dashboard displays.
// Every function is a pure, total transformation of already-fetched,
// tenant-scoped records: no fetching, no mutation, deterministic output.
// Aggregates are recomputed on every read and never persisted.
package report

import (
	"sort"
	"time"

	"dashcomm.org/internal/finance"
)

// DayBucket accumulates one calendar date of cash flow.
type DayBucket struct {
	Date         time.Time `json:"date"`
	InflowTotal  int64     `json:"inflow_total"`
	OutflowTotal int64     `json:"outflow_total"`
}

// MonthlyTotal sums AmountNet over entries whose date falls inside the
// calendar month containing month, whose kind matches, and whose status is
// in acceptedStatuses. An empty input yields 0, not an error.
func MonthlyTotal(entries []finance.LedgerEntry, kind string, month time.Time, acceptedStatuses []string) int64 {
	start := startOfMonth(month)
	end := endOfMonth(month)
	accepted := make(map[string]struct{}, len(acceptedStatuses))
	for _, s := range acceptedStatuses {
		accepted[s] = struct{}{}
	}

	var total int64
	for _, e := range entries {
		if e.Kind != kind {
			continue
		}
		if _, ok := accepted[e.Status]; !ok {
			continue
		}
		d := dateOnly(e.Date)
		if d.Before(start) || d.After(end) {
			continue
		}
		total += e.AmountNet
	}
	return total
}

// PercentDelta returns the period-over-period change in percent.
// A zero previous value is defined, not thrown: 100 when current is
// positive, 0 otherwise. The result is never NaN.
func PercentDelta(current, previous int64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return float64(current-previous) / float64(previous) * 100
}

// PendingSum totals TotalAmount over pending bills on the given board.
func PendingSum(bills []finance.Bill, board string) int64 {
	var total int64
	for _, b := range bills {
		if b.Board != board || b.Status != finance.BillPending {
			continue
		}
		total += b.TotalAmount
	}
	return total
}

// DailyBuckets groups entries from the trailing windowDays-day window
// ending at referenceDate into one bucket per calendar date, ascending.
// Dates with no entries are omitted; consumers must not assume contiguous
// dates.
func DailyBuckets(entries []finance.LedgerEntry, windowDays int, referenceDate time.Time) []DayBucket {
	if windowDays <= 0 {
		return nil
	}
	end := dateOnly(referenceDate)
	start := end.AddDate(0, 0, -(windowDays - 1))

	byDate := make(map[time.Time]*DayBucket)
	for _, e := range entries {
		d := dateOnly(e.Date)
		if d.Before(start) || d.After(end) {
			continue
		}
		bucket, ok := byDate[d]
		if !ok {
			bucket = &DayBucket{Date: d}
			byDate[d] = bucket
		}
		switch e.Kind {
		case finance.KindInflow:
			bucket.InflowTotal += e.AmountNet
		case finance.KindOutflow:
			bucket.OutflowTotal += e.AmountNet
		}
	}

	out := make([]DayBucket, 0, len(byDate))
	for _, b := range byDate {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Upcoming returns pending bills due on or before referenceDate plus
// withinDays, ascending by due date. Ties keep their input order.
func Upcoming(bills []finance.Bill, withinDays int, referenceDate time.Time) []finance.Bill {
	cutoff := dateOnly(referenceDate).AddDate(0, 0, withinDays)

	var out []finance.Bill
	for _, b := range bills {
		if b.Status != finance.BillPending {
			continue
		}
		if dateOnly(b.DueDate).After(cutoff) {
			continue
		}
		out = append(out, b)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return dateOnly(out[i].DueDate).Before(dateOnly(out[j].DueDate))
	})
	return out
}

// NewContactsSince counts contacts of the given type created at or after
// since.
func NewContactsSince(contacts []finance.Contact, contactType string, since time.Time) int {
	count := 0
	for _, c := range contacts {
		if c.Type != contactType {
			continue
		}
		if c.CreatedAt.Before(since) {
			continue
		}
		count++
	}
	return count
}

func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func startOfMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func endOfMonth(t time.Time) time.Time {
	return startOfMonth(t).AddDate(0, 1, -1)
}
