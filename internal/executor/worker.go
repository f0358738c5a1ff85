package executor

import (
	"context"

	"github.com/vk/hotswap/internal/ctxlog"
	"github.com/vk/hotswap/internal/sandbox"
)

// worker is the processing loop for a single concurrent worker. Each index is
// owned by exactly one worker, so results needs no lock.
func (e *Executor) worker(ctx context.Context, jobs <-chan int, results []Result, name string, args sandbox.Bindings, workerID int) {
	logger := ctxlog.FromContext(ctx).With("workerID", workerID)
	logger.Debug("Worker started.")

	for i := range jobs {
		if err := ctx.Err(); err != nil {
			results[i] = Result{Index: i, Err: err}
			continue
		}
		val, err := e.inv.Invoke(ctx, name, args)
		if err != nil {
			logger.Debug("Invocation failed.", "index", i, "error", err)
		}
		results[i] = Result{Index: i, Value: val, Err: err}
	}
	logger.Debug("Worker finished.")
}
