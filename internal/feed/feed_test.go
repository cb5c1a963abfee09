package feed

import (
	"context"
	"testing"
	"time"
)

func TestPublishReachesMatchingTenantOnly(t *testing.T) {
	f := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mine := f.Subscribe(ctx, "tenant-a")
	other := f.Subscribe(ctx, "tenant-b")

	f.Publish(Event{TenantID: "tenant-a", Kind: EventEntryRecorded, RecordID: "r1"})

	select {
	case evt := <-mine:
		if evt.RecordID != "r1" {
			t.Fatalf("unexpected event: %+v", evt)
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber did not receive its tenant's event")
	}

	select {
	case evt := <-other:
		t.Fatalf("event leaked across tenants: %+v", evt)
	default:
	}
}

func TestSubscribeClosesOnContextEnd(t *testing.T) {
	f := New()
	ctx, cancel := context.WithCancel(context.Background())
	ch := f.Subscribe(ctx, "tenant-a")
	cancel()

	select {
	case _, open := <-ch:
		if open {
			t.Fatal("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatal("channel was not closed after context end")
	}
}

func TestSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	f := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_ = f.Subscribe(ctx, "tenant-a")
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			f.Publish(Event{TenantID: "tenant-a", Kind: EventEntryRecorded})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}
