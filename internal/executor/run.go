package executor

import (
	"context"
	"fmt"
	"time"
)

// Result is the outcome of a timed tool call.
type Result struct {
	Output   string
	Err      error
	TimedOut bool
	Duration time.Duration
}

// RunWithTimeout invokes the named tool under a deadline. On expiry it
// returns immediately with TimedOut=true and an error message of the form
// "timed out after Ns"; the underlying goroutine is not guaranteed to stop
// promptly (spec §5: subprocess calls may outlive the deadline and are
// treated as forgotten, not cancelled).
func (e *Executor) RunWithTimeout(ctx context.Context, tool string, args map[string]any, timeout time.Duration) Result {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	type callResult struct {
		output string
		err    error
	}
	done := make(chan callResult, 1)

	go func() {
		output, err := e.Execute(callCtx, tool, args)
		done <- callResult{output, err}
	}()

	select {
	case r := <-done:
		return Result{Output: r.output, Err: r.err, Duration: time.Since(start)}
	case <-callCtx.Done():
		secs := int(timeout.Seconds())
		return Result{
			Err:      fmt.Errorf("timed out after %ds", secs),
			TimedOut: true,
			Duration: time.Since(start),
		}
	}
}
