// Package queue moves audit-trail writes off the request path.
package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/kopinusa/storefront/internal/core/domain"
	"github.com/kopinusa/storefront/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	writeTimeout   = 5 * time.Second
)

// ErrQueueFull is returned by Record when the actor's worker is backed up.
var ErrQueueFull = errors.New("activity queue full")

// ActivityDispatcher routes admin activity entries to a fixed set of workers
// using consistent hashing on the actor ID, so one operator's entries are
// written in the order they happened. It satisfies ports.ActivityRepository:
// Record enqueues and Recent reads straight from the underlying store.
type ActivityDispatcher struct {
	workers []chan domain.AdminActivity
	store   ports.ActivityRepository
	log     zerolog.Logger
	wg      sync.WaitGroup
}

var _ ports.ActivityRepository = (*ActivityDispatcher)(nil)

// NewActivityDispatcher creates a dispatcher with numWorkers sharded workers
// writing to store. If numWorkers <= 0, defaultWorkers is used.
func NewActivityDispatcher(numWorkers int, store ports.ActivityRepository, log zerolog.Logger) *ActivityDispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &ActivityDispatcher{
		workers: make([]chan domain.AdminActivity, numWorkers),
		store:   store,
		log:     log.With().Str("component", "activity_dispatcher").Logger(),
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.AdminActivity, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. When ctx is cancelled each worker
// drains what is already queued and exits; Wait blocks until they have.
func (d *ActivityDispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has stopped.
func (d *ActivityDispatcher) Wait() {
	d.wg.Wait()
}

// Record enqueues a on its actor's worker without blocking.
func (d *ActivityDispatcher) Record(_ context.Context, a *domain.AdminActivity) error {
	select {
	case d.workers[d.shardIndex(a.ActorID)] <- *a:
		return nil
	default:
		return ErrQueueFull
	}
}

func (d *ActivityDispatcher) Recent(ctx context.Context, limit int) ([]domain.AdminActivity, error) {
	return d.store.Recent(ctx, limit)
}

// shardIndex maps an actor ID deterministically to a worker index.
func (d *ActivityDispatcher) shardIndex(actorID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(actorID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *ActivityDispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.AdminActivity) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			for {
				select {
				case entry := <-ch:
					d.write(id, entry)
				default:
					return
				}
			}
		case entry := <-ch:
			d.write(id, entry)
		}
	}
}

// write persists one entry with its own deadline; the request that produced
// it is long gone.
func (d *ActivityDispatcher) write(id int, entry domain.AdminActivity) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := d.store.Record(ctx, &entry); err != nil {
		d.log.Error().Err(err).
			Str("actor_id", entry.ActorID).
			Str("entity", entry.Entity).
			Str("action", entry.Action).
			Int("worker_id", id).
			Msg("activity write failed")
	}
}
