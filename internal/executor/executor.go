// Package executor fans repeated invocations of one capability out over a
// fixed pool of workers.
package executor

import (
	"context"
	"sync"

	"github.com/vk/hotswap/internal/ctxlog"
	"github.com/vk/hotswap/internal/sandbox"
	"github.com/zclconf/go-cty/cty"
)

// Invoker runs a capability by name.
type Invoker interface {
	Invoke(ctx context.Context, name string, args sandbox.Bindings) (cty.Value, error)
}

// Result is the outcome of one invocation. Index is its position in the batch.
type Result struct {
	Index int
	Value cty.Value
	Err   error
}

// Executor dispatches batches of invocations.
type Executor struct {
	inv     Invoker
	workers int
}

// New creates an Executor with the given number of workers, at least one.
func New(inv Invoker, workers int) *Executor {
	if workers < 1 {
		workers = 1
	}
	return &Executor{inv: inv, workers: workers}
}

// Workers returns the pool size.
func (e *Executor) Workers() int {
	return e.workers
}

// Run invokes name n times with args and returns the results ordered by
// index. Invocations not started before ctx is done report ctx.Err().
func (e *Executor) Run(ctx context.Context, name string, args sandbox.Bindings, n int) []Result {
	logger := ctxlog.FromContext(ctx)
	if n < 1 {
		return nil
	}

	results := make([]Result, n)
	jobs := make(chan int, n)
	for i := range n {
		jobs <- i
	}
	close(jobs)

	workers := min(e.workers, n)
	logger.Debug("Dispatching invocations.", "capability", name, "count", n, "workers", workers)

	var wg sync.WaitGroup
	wg.Add(workers)
	for id := range workers {
		go func() {
			defer wg.Done()
			e.worker(ctx, jobs, results, name, args, id)
		}()
	}
	wg.Wait()

	return results
}
