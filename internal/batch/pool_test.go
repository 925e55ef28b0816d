package batch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunPreservesInputOrder(t *testing.T) {
	results, err := Run(context.Background(), 3, 20, func(i int) int { return i * i })
	require.NoError(t, err)
	for i, r := range results {
		assert.Equal(t, i*i, r)
	}
}

func TestRunDefaultsWorkersToNumCPU(t *testing.T) {
	results, err := Run(context.Background(), 0, 5, func(i int) int { return i })
	require.NoError(t, err)
	assert.Len(t, results, 5)
}

func TestSubmitAfterShutdownErrors(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Shutdown()

	err := pool.Submit(context.Background(), func() {})
	assert.ErrorIs(t, err, ErrPoolShutdown)
}

func TestSubmitHonorsContextCancellation(t *testing.T) {
	pool := NewWorkerPool(1)
	defer pool.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Occupy the single worker with a task that blocks until the test
	// returns, then fill the two-slot buffer, so the next Submit must
	// return on ctx.Done, not the happy-path send.
	release := make(chan struct{})
	defer close(release)
	_ = pool.Submit(context.Background(), func() { <-release })
	for i := 0; i < 2; i++ {
		_ = pool.Submit(context.Background(), func() {})
	}
	err := pool.Submit(ctx, func() {})
	assert.ErrorIs(t, err, context.Canceled)
}
