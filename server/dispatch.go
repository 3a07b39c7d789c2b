package server

import (
	"context"
	"runtime"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// Dispatcher offloads CPU-bound analysis queries onto a bounded worker pool
// so the single-threaded protocol reactor stays responsive (spec.md §4.O,
// §5). Each offloaded call is a cancellable Task keyed by a uuid so
// $/cancelRequest can look up and abort the specific in-flight call.
type Dispatcher struct {
	sem *semaphore.Weighted

	mu    sync.Mutex
	tasks map[uuid.UUID]context.CancelFunc
}

// NewDispatcher builds a Dispatcher with a pool sized to GOMAXPROCS.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		sem:   semaphore.NewWeighted(int64(runtime.GOMAXPROCS(0))),
		tasks: make(map[uuid.UUID]context.CancelFunc),
	}
}

// Run acquires a pool slot, registers a cancellable task under id, and
// invokes fn with the task's context. Release happens in a defer
// immediately before Run returns its result, so a cancelled request still
// frees its slot (spec.md §5). The caller picks id (typically uuid.New())
// before calling Run so it can be handed to Cancel from a $/cancelRequest
// handler while the task is still in flight. Returns fn's result, or
// ctx.Err() if cancelled or the parent context ended before a slot was
// acquired.
func Run[T any](d *Dispatcher, id uuid.UUID, parent context.Context, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	ctx, cancel := context.WithCancel(parent)

	d.mu.Lock()
	d.tasks[id] = cancel
	d.mu.Unlock()
	defer func() {
		d.mu.Lock()
		delete(d.tasks, id)
		d.mu.Unlock()
		cancel()
	}()

	if err := d.sem.Acquire(ctx, 1); err != nil {
		return zero, err
	}
	defer d.sem.Release(1)

	return fn(ctx)
}

// Cancel aborts the task identified by id, if still in flight. The caller
// is responsible for mapping the LSP request id carried by $/cancelRequest
// to the uuid a prior Run call was given.
func (d *Dispatcher) Cancel(id uuid.UUID) bool {
	d.mu.Lock()
	cancel, ok := d.tasks[id]
	d.mu.Unlock()
	if !ok {
		return false
	}
	cancel()
	return true
}
