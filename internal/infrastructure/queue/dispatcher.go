// Package queue delivers account audit events to their store off the
// request path.
package queue

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/accounts-service/internal/core/domain"
	"github.com/99minutos/accounts-service/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	insertTimeout  = 5 * time.Second
	drainTimeout   = 10 * time.Second
)

// Observer receives queue statistics. Implemented by the metrics package.
type Observer interface {
	AuditQueueDepth(worker string, depth int)
	AuditEventDropped()
}

type nopObserver struct{}

func (nopObserver) AuditQueueDepth(string, int) {}
func (nopObserver) AuditEventDropped()          {}

// Dispatcher routes audit events to a fixed set of workers sharded by
// account id, so events of one account are stored in publish order.
type Dispatcher struct {
	workers  []chan domain.AccountEvent
	repo     ports.AuditRepository
	observer Observer
	log      zerolog.Logger
	wg       sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers shards.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, repo ports.AuditRepository, observer Observer, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	if observer == nil {
		observer = nopObserver{}
	}
	d := &Dispatcher{
		workers:  make([]chan domain.AccountEvent, numWorkers),
		repo:     repo,
		observer: observer,
		log:      log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.AccountEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. When ctx is cancelled each worker
// stores what is still buffered, bounded by drainTimeout, and stops; Wait
// blocks until they have.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

func (d *Dispatcher) Wait() { d.wg.Wait() }

// Publish enqueues event without blocking. When the shard is full the event
// is dropped and logged.
func (d *Dispatcher) Publish(event domain.AccountEvent) {
	idx := d.shardIndex(event.AccountID)
	select {
	case d.workers[idx] <- event:
		d.observer.AuditQueueDepth(strconv.Itoa(idx), len(d.workers[idx]))
	default:
		d.observer.AuditEventDropped()
		d.log.Warn().
			Str("type", string(event.Type)).
			Int64("account_id", event.AccountID).
			Int("worker_id", idx).
			Msg("audit queue full, event dropped")
	}
}

func (d *Dispatcher) shardIndex(accountID int64) int {
	n := int64(len(d.workers))
	return int(((accountID % n) + n) % n)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.AccountEvent) {
	defer d.wg.Done()
	worker := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			d.drain(ctx, id, ch)
			return
		case event := <-ch:
			d.observer.AuditQueueDepth(worker, len(ch))
			// An insert already taken off the queue finishes even if shutdown
			// starts meanwhile.
			d.store(context.WithoutCancel(ctx), id, event)
		}
	}
}

func (d *Dispatcher) drain(ctx context.Context, id int, ch <-chan domain.AccountEvent) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), drainTimeout)
	defer cancel()

	for {
		if ctx.Err() != nil {
			if n := len(ch); n > 0 {
				d.log.Warn().Int("worker_id", id).Int("pending", n).Msg("audit drain timed out, events lost")
			}
			return
		}
		select {
		case event := <-ch:
			d.store(ctx, id, event)
		default:
			return
		}
	}
}

func (d *Dispatcher) store(ctx context.Context, id int, event domain.AccountEvent) {
	ctx, cancel := context.WithTimeout(ctx, insertTimeout)
	defer cancel()

	if err := d.repo.InsertEvent(ctx, &event); err != nil {
		d.log.Error().Err(err).
			Str("type", string(event.Type)).
			Int64("account_id", event.AccountID).
			Int("worker_id", id).
			Msg("audit event persistence failed")
	}
}

// LogSink is an AuditRepository that only writes events to the log. It backs
// the memory store driver.
type LogSink struct {
	log zerolog.Logger
}

func NewLogSink(log zerolog.Logger) *LogSink { return &LogSink{log: log} }

func (s *LogSink) InsertEvent(_ context.Context, event *domain.AccountEvent) error {
	s.log.Info().
		Str("type", string(event.Type)).
		Int64("account_id", event.AccountID).
		Str("username", event.Username).
		Int64("actor_id", event.ActorID).
		Time("at", event.At).
		Msg("account event")
	return nil
}
