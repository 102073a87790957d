package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_RunsAllTasks(t *testing.T) {
	p := NewPool(4, zerolog.Nop())
	defer p.Shutdown()

	var done atomic.Int32
	for i := 0; i < 250; i++ {
		ok := p.Submit(Task{Name: "count", Work: func(ctx context.Context) error {
			done.Add(1)
			return nil
		}})
		require.True(t, ok)
	}

	require.Eventually(t, func() bool { return done.Load() == 250 }, 2*time.Second, 5*time.Millisecond)
}

func TestPool_TaskContextTimesOut(t *testing.T) {
	p := NewPool(1, zerolog.Nop(), WithTimeout(20*time.Millisecond))
	defer p.Shutdown()

	errc := make(chan error, 1)
	p.Submit(Task{Name: "slow", Work: func(ctx context.Context) error {
		<-ctx.Done()
		errc <- ctx.Err()
		return ctx.Err()
	}})

	select {
	case err := <-errc:
		assert.True(t, errors.Is(err, context.DeadlineExceeded))
	case <-time.After(time.Second):
		t.Fatal("task context was not cancelled")
	}
}

func TestPool_ParentContextCancelled(t *testing.T) {
	p := NewPool(1, zerolog.Nop())
	defer p.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	errc := make(chan error, 1)
	p.Submit(Task{Ctx: ctx, Name: "cancelled", Work: func(ctx context.Context) error {
		errc <- ctx.Err()
		return nil
	}})

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("task did not run")
	}
}

func TestPool_SubmitAfterShutdown(t *testing.T) {
	p := NewPool(2, zerolog.Nop())
	p.Shutdown()

	ok := p.Submit(Task{Name: "late", Work: func(ctx context.Context) error { return nil }})
	assert.False(t, ok)

	// a second shutdown must not panic
	p.Shutdown()
}
