// Package batch provides a small bounded worker pool for running many
// independent dioph.Engine checks concurrently — one problem file per
// task, each with its own Engine and LRA instance, so nothing here needs
// to touch Engine's single-threaded state from more than one goroutine
// at a time.
package batch

import (
	"context"
	"fmt"
	"runtime"
	"sync"
)

// WorkerPool runs submitted tasks on a bounded number of goroutines.
type WorkerPool struct {
	maxWorkers   int
	taskChan     chan func()
	workerWg     sync.WaitGroup
	shutdownChan chan struct{}
	once         sync.Once
}

// NewWorkerPool creates a pool with the given worker count. A
// non-positive count defaults to the number of CPU cores.
func NewWorkerPool(maxWorkers int) *WorkerPool {
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU()
	}

	pool := &WorkerPool{
		maxWorkers:   maxWorkers,
		taskChan:     make(chan func(), maxWorkers*2),
		shutdownChan: make(chan struct{}),
	}

	for i := 0; i < maxWorkers; i++ {
		pool.workerWg.Add(1)
		go pool.worker()
	}

	return pool
}

func (wp *WorkerPool) worker() {
	defer wp.workerWg.Done()
	for {
		select {
		case task := <-wp.taskChan:
			if task != nil {
				task()
			}
		case <-wp.shutdownChan:
			return
		}
	}
}

// Submit enqueues a task, blocking if the pool's backlog is full.
func (wp *WorkerPool) Submit(ctx context.Context, task func()) error {
	select {
	case <-wp.shutdownChan:
		return ErrPoolShutdown
	default:
	}
	select {
	case wp.taskChan <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-wp.shutdownChan:
		return ErrPoolShutdown
	}
}

// Shutdown waits for in-flight tasks to finish, then stops every worker.
func (wp *WorkerPool) Shutdown() {
	wp.once.Do(func() {
		close(wp.shutdownChan)
		close(wp.taskChan)
		wp.workerWg.Wait()
	})
}

// ErrPoolShutdown is returned by Submit after Shutdown has been called.
var ErrPoolShutdown = fmt.Errorf("worker pool has been shut down")

// Run submits one task per item and waits for all of them, collecting
// results in input order. item i's result is produced by calling fn(i).
func Run[T any](ctx context.Context, workers int, n int, fn func(i int) T) ([]T, error) {
	pool := NewWorkerPool(workers)
	defer pool.Shutdown()

	results := make([]T, n)
	var wg sync.WaitGroup
	var firstErr error
	var mu sync.Mutex

	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		err := pool.Submit(ctx, func() {
			defer wg.Done()
			results[i] = fn(i)
		})
		if err != nil {
			wg.Done()
			mu.Lock()
			if firstErr == nil {
				firstErr = err
			}
			mu.Unlock()
		}
	}
	wg.Wait()
	return results, firstErr
}
