package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/storefront/ecommerce-api/internal/api/metrics"
	"github.com/storefront/ecommerce-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	deleteTimeout  = 30 * time.Second
)

// Dispatcher deletes orphaned images in the background. References are
// sharded over a fixed set of workers by hash, so repeated cleanups of one
// reference never race each other.
type Dispatcher struct {
	workers []chan string
	store   ports.ImageStore
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, store ports.ImageStore, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan string, numWorkers),
		store:   store,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan string, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. When ctx is cancelled each worker
// finishes the jobs already in its buffer and then returns.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() { d.wg.Wait() }

// Enqueue schedules ref for deletion. It never blocks: when the worker's
// buffer is full the job is dropped and logged, leaving an orphaned file.
func (d *Dispatcher) Enqueue(ref string) {
	if ref == "" {
		return
	}
	idx := d.shardIndex(ref)
	select {
	case d.workers[idx] <- ref:
		metrics.CleanupQueueDepth.WithLabelValues(strconv.Itoa(idx)).Inc()
	default:
		metrics.ImageCleanupsTotal.WithLabelValues("dropped").Inc()
		d.log.Warn().Str("ref", ref).Int("worker_id", idx).Msg("cleanup queue full, image left behind")
	}
}

// shardIndex maps a reference deterministically to a worker index.
func (d *Dispatcher) shardIndex(ref string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(ref))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan string) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			d.drain(ctx, id, ch)
			return
		case ref, ok := <-ch:
			if !ok {
				return
			}
			metrics.CleanupQueueDepth.WithLabelValues(label).Dec()
			d.delete(ctx, id, ref)
		}
	}
}

// drain runs the jobs still buffered in ch without waiting for new ones.
func (d *Dispatcher) drain(ctx context.Context, id int, ch <-chan string) {
	label := strconv.Itoa(id)
	for {
		select {
		case ref, ok := <-ch:
			if !ok {
				return
			}
			metrics.CleanupQueueDepth.WithLabelValues(label).Dec()
			d.delete(ctx, id, ref)
		default:
			return
		}
	}
}

// delete is bounded by deleteTimeout only. Shutdown does not abort a job
// that has already been taken off the queue.
func (d *Dispatcher) delete(ctx context.Context, id int, ref string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), deleteTimeout)
	defer cancel()

	if err := d.store.Delete(ctx, ref); err != nil {
		metrics.ImageCleanupsTotal.WithLabelValues("failed").Inc()
		d.log.Error().Err(err).
			Str("ref", ref).
			Int("worker_id", id).
			Msg("image cleanup failed")
		return
	}
	metrics.ImageCleanupsTotal.WithLabelValues("deleted").Inc()
	d.log.Debug().Str("ref", ref).Int("worker_id", id).Msg("image deleted")
}
