package publish

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/muurk/bleradar/internal/discovery"
	"github.com/muurk/bleradar/internal/logging"
)

// Async wraps a Publisher so that Publish never blocks the caller on the
// underlying sink. A single worker goroutine drains a mailbox of depth one;
// when a new snapshot arrives before the previous one was taken, the older
// one is dropped.
type Async struct {
	next Publisher

	mu      sync.Mutex
	pending *discovery.Snapshot
	closed  bool
	wake    chan struct{}
	done    chan struct{}
	dropped uint64
}

// NewAsync starts the worker. Close must be called to stop it.
func NewAsync(next Publisher) *Async {
	a := &Async{
		next: next,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go a.run()
	return a
}

// Publish queues snap and returns immediately. Errors from the wrapped
// publisher are logged by the worker.
func (a *Async) Publish(ctx context.Context, snap *discovery.Snapshot) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return ErrClosed
	}
	if a.pending != nil {
		a.dropped++
	}
	a.pending = snap

	select {
	case a.wake <- struct{}{}:
	default:
	}
	a.mu.Unlock()
	return nil
}

// Dropped returns how many snapshots were superseded before delivery.
func (a *Async) Dropped() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dropped
}

// Close delivers any pending snapshot, stops the worker and waits for it.
func (a *Async) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	close(a.wake)
	a.mu.Unlock()

	<-a.done
	return nil
}

func (a *Async) run() {
	defer close(a.done)
	for range a.wake {
		a.drain()
	}
	a.drain()
}

func (a *Async) drain() {
	a.mu.Lock()
	snap := a.pending
	a.pending = nil
	a.mu.Unlock()

	if snap == nil {
		return
	}
	if err := a.next.Publish(context.Background(), snap); err != nil {
		logging.Error("Asynchronous publish failed",
			zap.String("adapter", snap.Adapter),
			zap.Uint64("cycle", snap.Cycle),
			zap.Error(err),
		)
	}
}
