// Package pool provides a bounded-concurrency fan-out helper used to run a
// batch of independent jobs (one per detector family, one per chunk, one
// per recognizer label batch) against a shared context, collecting results
// in the caller's original order.
package pool

import (
	"context"
	"sync"
)

// Job is one unit of fan-out work. It must be safe to call concurrently
// with other jobs in the same Run.
type Job[T any] func(ctx context.Context) (T, error)

// Result pairs a job's output with its index in the original job slice,
// since goroutines complete out of order.
type Result[T any] struct {
	Index int
	Value T
	Err   error
}

// Run executes jobs with at most maxConcurrency goroutines in flight and
// returns one Result per job, in the same order as jobs. A maxConcurrency
// of 0 or less is treated as unbounded (len(jobs) workers).
//
// Run does not stop remaining jobs when one fails: callers decide how to
// treat partial failure (the Orchestrator, for instance, contains
// per-detector failures rather than aborting the whole request).
func Run[T any](ctx context.Context, jobs []Job[T], maxConcurrency int) []Result[T] {
	results := make([]Result[T], len(jobs))
	if len(jobs) == 0 {
		return results
	}

	workers := maxConcurrency
	if workers <= 0 || workers > len(jobs) {
		workers = len(jobs)
	}

	indices := make(chan int, len(jobs))
	for i := range jobs {
		indices <- i
	}
	close(indices)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range indices {
				value, err := jobs[i](ctx)
				results[i] = Result[T]{Index: i, Value: value, Err: err}
			}
		}()
	}
	wg.Wait()

	return results
}
