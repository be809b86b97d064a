package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/yungbote/doccontrol-backend/internal/observability"
	"github.com/yungbote/doccontrol-backend/internal/platform/ctxutil"
	"github.com/yungbote/doccontrol-backend/internal/platform/logger"
)

var ErrDispatcherClosed = errors.New("notify dispatcher closed")

type DispatcherConfig struct {
	Workers   int
	QueueSize int
	Timeout   time.Duration
}

func (c DispatcherConfig) withDefaults() DispatcherConfig {
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 256
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	return c
}

type job struct {
	kind  string
	trace *ctxutil.TraceData
	fn    func(ctx context.Context) error
}

// Dispatcher is a bounded worker pool. Jobs run on a context detached from
// the caller with their own timeout; a full queue drops the job.
type Dispatcher struct {
	log     *logger.Logger
	cfg     DispatcherConfig
	metrics *observability.Metrics

	queue chan job
	wg    sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(log *logger.Logger, cfg DispatcherConfig, metrics *observability.Metrics) *Dispatcher {
	cfg = cfg.withDefaults()
	d := &Dispatcher{
		log:     log.With("component", "NotifyDispatcher"),
		cfg:     cfg,
		metrics: metrics,
		queue:   make(chan job, cfg.QueueSize),
	}
	d.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go d.worker()
	}
	return d
}

// Submit enqueues fn. It never blocks and reports whether the job was accepted.
func (d *Dispatcher) Submit(ctx context.Context, kind string, fn func(ctx context.Context) error) bool {
	if d == nil || fn == nil {
		return false
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.drop(kind, ErrDispatcherClosed)
		return false
	}
	j := job{kind: kind, trace: ctxutil.GetTraceData(ctx), fn: fn}
	select {
	case d.queue <- j:
		d.metrics.SetNotifyQueueDepth(len(d.queue))
		return true
	default:
		d.drop(kind, fmt.Errorf("queue full (%d)", d.cfg.QueueSize))
		return false
	}
}

// Close stops accepting jobs and waits for queued ones until ctx is done.
func (d *Dispatcher) Close(ctx context.Context) error {
	if d == nil {
		return nil
	}
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for j := range d.queue {
		d.metrics.SetNotifyQueueDepth(len(d.queue))
		d.run(j)
	}
}

func (d *Dispatcher) run(j job) {
	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.Timeout)
	defer cancel()
	if j.trace != nil {
		ctx = ctxutil.WithTraceData(ctx, j.trace)
	}

	start := time.Now()
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return j.fn(ctx)
	}()

	status := "delivered"
	if err != nil {
		status = "failed"
		fields := []any{"kind", j.kind, "error", err}
		if j.trace != nil {
			fields = append(fields, "request_id", j.trace.RequestID)
		}
		d.log.Warn("notify delivery failed", fields...)
	}
	d.metrics.ObserveNotify(j.kind, status, time.Since(start))
}

func (d *Dispatcher) drop(kind string, reason error) {
	d.log.Warn("notify event dropped", "kind", kind, "reason", reason)
	d.metrics.ObserveNotify(kind, "dropped", 0)
}
