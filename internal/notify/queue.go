package notify

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/sakif/dailylog/internal/config"
	"github.com/sakif/dailylog/internal/metrics"
	"github.com/sakif/dailylog/internal/model"
)

// Queue runs entry notifications in the background.
//
// LIFECYCLE:
//
//	q := NewQueue(mailer, cfg, logger)
//	q.Start()          // spawn workers (idempotent)
//	q.Enqueue(entry)   // never blocks; drops when the buffer is full
//	q.Stop()           // stop accepting, drain what is buffered, wait
//
// Run(ctx) wraps Start/Stop for use under an errgroup next to the HTTP server.
//
// RETRIES:
// Each entry gets up to MaxAttempts sends with exponential backoff starting
// at BaseBackoff. Once Stop is called, backoff waits are cut short, so a
// buffered job gets exactly one more attempt during the drain.
type Queue struct {
	notifier Notifier
	cfg      config.NotifyConfig
	logger   *slog.Logger

	jobs chan model.Entry
	done chan struct{}

	// stopCtx is canceled by Stop to interrupt backoff waits.
	stopCtx context.Context
	cancel  context.CancelFunc

	// mu orders sends against Stop: Enqueue holds it for reading while it
	// checks closed and pushes, Stop takes it for writing to set closed.
	// Once Stop holds it, no send can land after the drain has begun.
	mu        sync.RWMutex
	wg        sync.WaitGroup
	startOnce sync.Once
	stopOnce  sync.Once
	closed    atomic.Bool
}

// NewQueue creates a stopped queue. Call Start (or Run) before enqueuing.
func NewQueue(n Notifier, cfg config.NotifyConfig, logger *slog.Logger) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Queue{
		notifier: n,
		cfg:      cfg,
		logger:   logger,
		jobs:     make(chan model.Entry, cfg.QueueSize),
		done:     make(chan struct{}),
		stopCtx:  ctx,
		cancel:   cancel,
	}
}

// Enabled reports whether the underlying notifier delivers anywhere.
func (q *Queue) Enabled() bool {
	return q.notifier.Enabled()
}

// Start spawns the worker goroutines. Calling it more than once is a no-op.
func (q *Queue) Start() {
	q.startOnce.Do(func() {
		q.logger.Info("starting notification queue",
			slog.Int("workers", q.cfg.Workers),
			slog.Int("queueSize", q.cfg.QueueSize),
			slog.Bool("emailEnabled", q.notifier.Enabled()),
		)
		for i := 0; i < q.cfg.Workers; i++ {
			q.wg.Add(1)
			go q.worker(i)
		}
	})
}

// Stop stops accepting entries, drains the buffer and waits for workers.
// Safe to call more than once.
func (q *Queue) Stop() {
	q.stopOnce.Do(func() {
		q.mu.Lock()
		q.closed.Store(true)
		q.mu.Unlock()
		q.logger.Info("stopping notification queue", slog.Int("pending", len(q.jobs)))
		q.cancel()
		close(q.done)
		q.wg.Wait()
		metrics.NotifyQueueDepth.Set(0)
	})
}

// Run starts the queue and blocks until ctx is canceled, then stops it.
func (q *Queue) Run(ctx context.Context) error {
	q.Start()
	<-ctx.Done()
	q.Stop()
	return nil
}

// Enqueue schedules a notification for entry and reports whether it was
// accepted. It never blocks: a full or stopped queue drops the entry.
func (q *Queue) Enqueue(entry model.Entry) bool {
	if !q.notifier.Enabled() {
		return false
	}

	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed.Load() {
		q.drop(entry, "queue stopped")
		return false
	}

	select {
	case q.jobs <- entry:
		metrics.NotifyQueueDepth.Set(float64(len(q.jobs)))
		return true
	default:
		q.drop(entry, "queue full")
		return false
	}
}

func (q *Queue) drop(entry model.Entry, reason string) {
	metrics.NotificationsTotal.WithLabelValues(metrics.ResultDropped).Inc()
	q.logger.Warn("notification dropped",
		slog.String("entryId", entry.ID),
		slog.String("reason", reason),
	)
}

func (q *Queue) worker(idx int) {
	defer q.wg.Done()

	for {
		select {
		case entry := <-q.jobs:
			metrics.NotifyQueueDepth.Set(float64(len(q.jobs)))
			q.deliver(entry)

		case <-q.done:
			// Drain what is still buffered, then exit.
			for {
				select {
				case entry := <-q.jobs:
					q.deliver(entry)
				default:
					q.logger.Debug("notification worker stopped", slog.Int("worker", idx))
					return
				}
			}
		}
	}
}

// deliver sends one notification with retries and records the outcome.
func (q *Queue) deliver(entry model.Entry) {
	start := time.Now()
	defer func() {
		metrics.NotifySendDuration.Observe(time.Since(start).Seconds())
	}()

	// A panicking notifier must not take the worker down with it.
	defer func() {
		if r := recover(); r != nil {
			metrics.NotificationsTotal.WithLabelValues(metrics.ResultFailed).Inc()
			q.logger.Error("notification panic", slog.String("entryId", entry.ID), slog.Any("panic", r))
		}
	}()

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = q.cfg.BaseBackoff
	exp.Multiplier = 2
	exp.MaxElapsedTime = 0
	exp.Reset()

	policy := backoff.WithContext(
		backoff.WithMaxRetries(exp, uint64(q.cfg.MaxAttempts-1)),
		q.stopCtx,
	)

	attempt := 0
	op := func() error {
		attempt++
		ctx, cancel := context.WithTimeout(context.Background(), q.sendTimeout())
		defer cancel()
		return q.notifier.NotifyEntry(ctx, entry)
	}
	onRetry := func(err error, wait time.Duration) {
		q.logger.Warn("notification attempt failed, retrying",
			slog.String("entryId", entry.ID),
			slog.Int("attempt", attempt),
			slog.Duration("wait", wait),
			slog.String("error", err.Error()),
		)
	}

	if err := backoff.RetryNotify(op, policy, onRetry); err != nil {
		metrics.NotificationsTotal.WithLabelValues(metrics.ResultFailed).Inc()
		q.logger.Error("notification failed",
			slog.String("entryId", entry.ID),
			slog.Int("attempts", attempt),
			slog.String("error", err.Error()),
		)
		return
	}

	metrics.NotificationsTotal.WithLabelValues(metrics.ResultSent).Inc()
	q.logger.Info("notification sent",
		slog.String("entryId", entry.ID),
		slog.String("title", entry.Title),
		slog.Int("attempts", attempt),
	)
}

func (q *Queue) sendTimeout() time.Duration {
	if q.cfg.SendTimeout > 0 {
		return q.cfg.SendTimeout
	}
	return 20 * time.Second
}
