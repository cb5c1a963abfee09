// Package feed fan-outs tenant activity events (record writes, bill status
// changes) to live dashboard subscribers.
package feed

import (
	"context"
	"sync"
	"time"
)

// Activity event kinds.
const (
	EventEntryRecorded  = "entry.recorded"
	EventBillRecorded   = "bill.recorded"
	EventContactCreated = "contact.created"
)

// Event describes one activity item shown in the dashboard feed.
type Event struct {
	TenantID   string    `json:"tenant_id"`
	Kind       string    `json:"kind"`
	RecordID   string    `json:"record_id"`
	Summary    string    `json:"summary,omitempty"`
	Amount     int64     `json:"amount,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Feed fan-outs events to all active subscribers (SSE clients).
type Feed struct {
	mu   sync.RWMutex
	subs map[int]subscriber
	next int
}

type subscriber struct {
	tenantID string
	ch       chan Event
}

// New initialises an empty feed.
func New() *Feed {
	return &Feed{subs: make(map[int]subscriber)}
}

// Subscribe registers a subscriber for one tenant's events and returns the
// channel receiving them. The channel is closed when ctx ends.
func (f *Feed) Subscribe(ctx context.Context, tenantID string) <-chan Event {
	ch := make(chan Event, 16)

	f.mu.Lock()
	id := f.next
	f.next++
	f.subs[id] = subscriber{tenantID: tenantID, ch: ch}
	f.mu.Unlock()

	go func() {
		<-ctx.Done()
		f.mu.Lock()
		delete(f.subs, id)
		close(ch)
		f.mu.Unlock()
	}()

	return ch
}

// Publish fan-outs the event to subscribers of its tenant.
func (f *Feed) Publish(evt Event) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, sub := range f.subs {
		if sub.tenantID != evt.TenantID {
			continue
		}
		select {
		case sub.ch <- evt:
		default:
			// Drop when a subscriber is slow to avoid blocking writers.
		}
	}
}
