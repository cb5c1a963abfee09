package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"dashcomm.org/internal/client"
	"dashcomm.org/internal/finance"
	"dashcomm.org/internal/session"
)

// smoke drives a full user journey against a running dashcomm-api:
// register, resolve a workspace, record money movement, read the summary.
func main() {
	baseURL := os.Getenv("DASHCOMM_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c := client.New(baseURL)

	res := session.NewResolver(c, c)
	defer res.Close()

	ready := make(chan session.Snapshot, 1)
	unsub := res.Subscribe(func(s session.Snapshot) {
		if s.State == session.StateReady {
			select {
			case ready <- s:
			default:
			}
		}
	})
	defer unsub()

	if err := res.Start(ctx); err != nil {
		log.Fatalf("start resolver: %v", err)
	}

	email := fmt.Sprintf("smoke-%d@example.com", rand.Int63())
	if err := res.Register(ctx, email, "smoke-password-1", "Smoke"); err != nil {
		log.Fatalf("register %s: %v", email, err)
	}

	var snap session.Snapshot
	select {
	case snap = <-ready:
	case <-time.After(15 * time.Second):
		log.Fatalf("resolver never reached Ready, state=%v", res.Current().State)
	}
	if snap.TenantID == "" {
		log.Fatal("Ready without a tenant id")
	}

	if _, err := c.RecordTransaction(ctx, client.NewTransaction{
		Date:        time.Now().UTC(),
		Kind:        finance.KindInflow,
		AmountGross: 125_00,
		Status:      finance.StatusReceived,
		Description: "smoke sale",
	}); err != nil {
		log.Fatalf("record transaction: %v", err)
	}

	if _, err := c.RecordBill(ctx, client.NewBill{
		DueDate:     time.Now().UTC().Add(72 * time.Hour),
		TotalAmount: 80_00,
		Board:       finance.BoardPayable,
	}); err != nil {
		log.Fatalf("record bill: %v", err)
	}

	summary, err := c.DashboardSummary(ctx)
	if err != nil {
		log.Fatalf("dashboard summary: %v", err)
	}
	if summary.MonthRevenue != 125_00 {
		log.Fatalf("month revenue = %d, want 12500", summary.MonthRevenue)
	}
	if summary.PendingPayable != 80_00 {
		log.Fatalf("pending payable = %d, want 8000", summary.PendingPayable)
	}

	upcoming, err := c.UpcomingBills(ctx, 7)
	if err != nil {
		log.Fatalf("upcoming bills: %v", err)
	}
	if len(upcoming) != 1 {
		log.Fatalf("upcoming bills = %d, want 1", len(upcoming))
	}

	if err := res.SignOut(ctx); err != nil {
		log.Fatalf("sign out: %v", err)
	}

	fmt.Printf("✅ dashcomm smoke test passed: tenant=%s\n", snap.TenantID)
}
