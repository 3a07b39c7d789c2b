package server

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestRun_ReturnsValue(t *testing.T) {
	t.Parallel()

	d := NewDispatcher()
	got, err := Run(d, uuid.New(), context.Background(), func(ctx context.Context) (int, error) {
		return 42, nil
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if got != 42 {
		t.Errorf("Run() = %d; want 42", got)
	}
}

func TestRun_PropagatesError(t *testing.T) {
	t.Parallel()

	d := NewDispatcher()
	wantErr := errors.New("boom")
	_, err := Run(d, uuid.New(), context.Background(), func(ctx context.Context) (int, error) {
		return 0, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("Run() error = %v; want %v", err, wantErr)
	}
}

func TestRun_CleansUpTaskOnCompletion(t *testing.T) {
	t.Parallel()

	d := NewDispatcher()
	id := uuid.New()
	if _, err := Run(d, id, context.Background(), func(ctx context.Context) (int, error) {
		return 0, nil
	}); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if d.Cancel(id) {
		t.Error("Cancel() = true for a task that already completed; want false")
	}
}

func TestRun_Cancel(t *testing.T) {
	t.Parallel()

	d := NewDispatcher()
	id := uuid.New()

	started := make(chan struct{})
	resultCh := make(chan error, 1)
	go func() {
		_, err := Run(d, id, context.Background(), func(ctx context.Context) (int, error) {
			close(started)
			<-ctx.Done()
			return 0, ctx.Err()
		})
		resultCh <- err
	}()

	<-started
	if !d.Cancel(id) {
		t.Fatal("Cancel() = false; want true for an in-flight task")
	}

	select {
	case err := <-resultCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() error = %v; want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run() did not return after Cancel()")
	}
}

func TestDispatcher_Cancel_UnknownID(t *testing.T) {
	t.Parallel()

	d := NewDispatcher()
	if d.Cancel(uuid.New()) {
		t.Error("Cancel() = true for an unknown id; want false")
	}
}

func TestRun_ReleasesSlotForConcurrentCallers(t *testing.T) {
	t.Parallel()

	d := NewDispatcher()
	const n = 32 // larger than GOMAXPROCS on any machine this runs on

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := Run(d, uuid.New(), context.Background(), func(ctx context.Context) (int, error) {
				return i, nil
			})
			errs[i] = err
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("Run() call %d error: %v", i, err)
		}
	}
}
