// Package worker provides an asynchronous worker pool for persisting
// completed exchanges using the provided storage.Driver and announcing them
// on the provided eventstream.Publisher.
//
// The pool decouples storage operations from the advisor's request path so
// that a slow or failing store never delays or alters an answer.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/farmergpt/farmergpt/pkg/eventstream"
	"github.com/farmergpt/farmergpt/pkg/eventstream/nop"
	"github.com/farmergpt/farmergpt/pkg/llm"
	"github.com/farmergpt/farmergpt/pkg/logger"
	"github.com/farmergpt/farmergpt/pkg/metrics"
	"github.com/farmergpt/farmergpt/pkg/storage"
)

var (
	defaultNumWorkers   uint = 3
	defaultJobQueueSize uint = 256
	defaultJobTimeout        = 15 * time.Second
)

// Job is a unit of work for the worker pool to execute against.
type Job struct {
	Exchange llm.Exchange
}

// Config is the configuration options for the worker pool.
type Config struct {
	// Driver is the storage backend for persisting exchanges.
	Driver storage.Driver

	// Publisher announces stored exchanges. Defaults to a no-op publisher.
	Publisher eventstream.Publisher

	// Metrics records failures and drops. Optional.
	Metrics *metrics.Metrics

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 256).
	QueueSize uint

	// JobTimeout bounds the storage and publish calls of a single job.
	JobTimeout time.Duration

	// Logger is the provided slog logger
	Logger *slog.Logger
}

// Pool processes storage jobs asynchronously via a worker pool.
type Pool struct {
	config *Config
	queue  chan Job
	wg     sync.WaitGroup
	logger *slog.Logger

	// mu guards closed and sends on queue
	mu     sync.RWMutex
	closed bool
}

// NewPool creates a new Pool and starts its worker goroutines.
func NewPool(c *Config) (*Pool, error) {
	if c.Driver == nil {
		return nil, errors.New("worker pool requires a storage driver")
	}

	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}

	if c.JobTimeout <= 0 {
		c.JobTimeout = defaultJobTimeout
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	if c.Publisher == nil {
		c.Publisher = nop.NewPublisher()
	}

	if c.Logger == nil {
		c.Logger = logger.Nop()
	}

	wp := &Pool{
		config: c,
		queue:  make(chan Job, c.QueueSize),
		logger: c.Logger,
	}

	wp.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go wp.worker(i)
	}

	return wp, nil
}

// Enqueue submits a job for processing by the worker pool.
// Returns true if enqueued, false if the queue is full or the pool is closed,
// resulting in the job being dropped. It never blocks.
func (p *Pool) Enqueue(job Job) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		p.config.Metrics.JobDropped()
		p.logger.Warn("job not queued, pool closed, job dropped",
			"session_id", job.Exchange.SessionID,
		)
		return false
	}

	select {
	case p.queue <- job:
		p.logger.Debug("job queued",
			"session_id", job.Exchange.SessionID,
			"model", job.Exchange.Model,
		)
		return true
	default:
		p.config.Metrics.JobDropped()
		p.logger.Error("job not queued, queue full, job dropped",
			"session_id", job.Exchange.SessionID,
			"model", job.Exchange.Model,
		)
		return false
	}
}

// Persist implements the advisor's persister contract on top of Enqueue.
func (p *Pool) Persist(ex llm.Exchange) {
	p.Enqueue(Job{Exchange: ex})
}

// Close signals workers to stop and waits for in-flight jobs to drain.
// Call this during graceful shutdown after the HTTP server has stopped.
func (p *Pool) Close() {
	p.stop()
	p.wg.Wait()
}

// Shutdown is Close bounded by ctx. Jobs still queued when ctx expires keep
// running in the background; their results are only logged.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.stop()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		p.logger.Warn("worker pool shutdown timed out", "pending", len(p.queue))
		return ctx.Err()
	}
}

// Pending returns the number of queued jobs not yet picked up.
func (p *Pool) Pending() int {
	return len(p.queue)
}

func (p *Pool) stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	close(p.queue)
}

// worker is the inner worker thread that continuously pulls jobs off the jobs queue
func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("worker started", "worker_id", id)

	for job := range p.queue {
		p.processJob(job)
	}

	p.logger.Debug("storage worker stopped", "worker_id", id)
}

// processJob stores the exchange and then publishes it. A storage failure
// skips the publish.
func (p *Pool) processJob(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), p.config.JobTimeout)
	defer cancel()

	ex := job.Exchange
	if err := p.config.Driver.Insert(ctx, &ex); err != nil {
		p.config.Metrics.PersistenceFailed("insert")
		p.logger.Error("could not store exchange",
			"session_id", ex.SessionID,
			"error", err,
		)
		return
	}

	p.logger.Info("exchange stored",
		"id", ex.ID,
		"session_id", ex.SessionID,
		"language", ex.Language,
	)

	event := eventstream.NewExchangeRecordedEvent(ex)
	if err := p.config.Publisher.PublishExchange(ctx, event); err != nil {
		p.config.Metrics.PersistenceFailed("publish")
		p.logger.Warn("could not publish exchange event",
			"event_id", event.EventID,
			"error", err,
		)
		return
	}

	p.logger.Debug("exchange event published", "event_id", event.EventID)
}
