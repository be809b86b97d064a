package notify

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yungbote/doccontrol-backend/internal/platform/ctxutil"
	"github.com/yungbote/doccontrol-backend/internal/platform/logger"
)

func TestDispatcherRunsJobsWithDetachedTimeout(t *testing.T) {
	d := NewDispatcher(logger.Nop(), DispatcherConfig{Workers: 2, QueueSize: 4, Timeout: time.Second}, nil)
	defer d.Close(context.Background())

	parent, cancel := context.WithCancel(ctxutil.WithTraceData(context.Background(), &ctxutil.TraceData{RequestID: "req-1"}))
	cancel()

	got := make(chan context.Context, 1)
	if !d.Submit(parent, "activity", func(ctx context.Context) error {
		got <- ctx
		return nil
	}) {
		t.Fatalf("submit rejected")
	}
	select {
	case ctx := <-got:
		if ctx.Err() != nil {
			t.Fatalf("job context inherited caller cancellation: %v", ctx.Err())
		}
		if _, ok := ctx.Deadline(); !ok {
			t.Fatalf("job context has no deadline")
		}
		if td := ctxutil.GetTraceData(ctx); td == nil || td.RequestID != "req-1" {
			t.Fatalf("trace data not carried: %+v", td)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("job did not run")
	}
}

func TestDispatcherDropsWhenQueueFull(t *testing.T) {
	d := NewDispatcher(logger.Nop(), DispatcherConfig{Workers: 1, QueueSize: 1, Timeout: time.Second}, nil)

	started := make(chan struct{})
	release := make(chan struct{})
	d.Submit(context.Background(), "notification", func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	})
	<-started

	if !d.Submit(context.Background(), "notification", func(ctx context.Context) error { return nil }) {
		t.Fatalf("second job should fit in the queue")
	}
	if d.Submit(context.Background(), "notification", func(ctx context.Context) error { return nil }) {
		t.Fatalf("third job should be dropped")
	}
	close(release)
	if err := d.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestDispatcherSwallowsFailuresAndPanics(t *testing.T) {
	d := NewDispatcher(logger.Nop(), DispatcherConfig{Workers: 1, QueueSize: 8, Timeout: time.Second}, nil)

	var ran int32
	d.Submit(context.Background(), "activity", func(ctx context.Context) error {
		atomic.AddInt32(&ran, 1)
		return errors.New("sink down")
	})
	d.Submit(context.Background(), "activity", func(ctx context.Context) error {
		atomic.AddInt32(&ran, 1)
		panic("boom")
	})
	d.Submit(context.Background(), "activity", func(ctx context.Context) error {
		atomic.AddInt32(&ran, 1)
		return nil
	})
	if err := d.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	if got := atomic.LoadInt32(&ran); got != 3 {
		t.Fatalf("jobs run: want=3 got=%d", got)
	}
}

func TestDispatcherRejectsAfterClose(t *testing.T) {
	d := NewDispatcher(logger.Nop(), DispatcherConfig{Workers: 1, QueueSize: 1}, nil)
	if err := d.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := d.Close(context.Background()); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if d.Submit(context.Background(), "activity", func(ctx context.Context) error { return nil }) {
		t.Fatalf("submit after close should be rejected")
	}
}
