package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/accounts-service/internal/core/domain"
)

type recordingRepo struct {
	mu     sync.Mutex
	events []domain.AccountEvent
	done   chan struct{}
	want   int
}

func (r *recordingRepo) InsertEvent(_ context.Context, e *domain.AccountEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, *e)
	if len(r.events) == r.want {
		close(r.done)
	}
	return nil
}

type countingObserver struct {
	mu      sync.Mutex
	dropped int
}

func (o *countingObserver) AuditQueueDepth(string, int) {}
func (o *countingObserver) AuditEventDropped() {
	o.mu.Lock()
	o.dropped++
	o.mu.Unlock()
}

func TestDispatcher_DeliversInOrderPerAccount(t *testing.T) {
	repo := &recordingRepo{done: make(chan struct{}), want: 3}
	d := NewDispatcher(2, repo, nil, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	types := []domain.AccountEventType{domain.EventAccountCreated, domain.EventAccountUpdated, domain.EventAccountDeleted}
	for _, typ := range types {
		d.Publish(domain.AccountEvent{Type: typ, AccountID: 7, Username: "alice"})
	}

	select {
	case <-repo.done:
	case <-time.After(2 * time.Second):
		t.Fatalf("events not delivered in time")
	}
	cancel()
	d.Wait()

	for i, typ := range types {
		if repo.events[i].Type != typ {
			t.Fatalf("event %d: expected %s, got %s", i, typ, repo.events[i].Type)
		}
	}
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	obs := &countingObserver{}
	d := NewDispatcher(1, &recordingRepo{done: make(chan struct{}), want: -1}, obs, zerolog.Nop())

	// Not started: the buffer fills up and the rest are dropped.
	for i := 0; i < channelBuffer+5; i++ {
		d.Publish(domain.AccountEvent{Type: domain.EventAccountUpdated, AccountID: 1})
	}
	if obs.dropped != 5 {
		t.Fatalf("expected 5 dropped events, got %d", obs.dropped)
	}
}

func TestDispatcher_ShardIndexHandlesNegativeIDs(t *testing.T) {
	d := NewDispatcher(3, NewLogSink(zerolog.Nop()), nil, zerolog.Nop())
	for _, id := range []int64{-4, 0, 5, 1 << 40} {
		if idx := d.shardIndex(id); idx < 0 || idx >= 3 {
			t.Fatalf("shard index out of range for %d: %d", id, idx)
		}
	}
}

func TestDispatcher_DrainsBufferedEventsOnShutdown(t *testing.T) {
	const n = 20
	repo := &recordingRepo{done: make(chan struct{}), want: n}
	d := NewDispatcher(2, repo, nil, zerolog.Nop())

	// Everything is buffered before any worker runs.
	for i := 0; i < n; i++ {
		d.Publish(domain.AccountEvent{Type: domain.EventAccountUpdated, AccountID: int64(i)})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Start(ctx)
	d.Wait()

	repo.mu.Lock()
	defer repo.mu.Unlock()
	if len(repo.events) != n {
		t.Fatalf("expected %d events stored on shutdown, got %d", n, len(repo.events))
	}
}
