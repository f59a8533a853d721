// Package splitconquer runs independent engine.Engine instances over
// disjoint initial case splits concurrently, returning as soon as any
// instance proves SAT (spec.md §5: "Independent solver instances may
// run in parallel at a higher level (split-and-conquer), but each
// instance owns its state exclusively").
//
// Adapted from internal/parallel.WorkerPool's bounded-concurrency
// Submit/task-channel design, trimmed to the one thing a fixed,
// finite batch of independent solves needs: a worker-count cap and
// first-SAT-wins cancellation. The teacher's dynamic
// scaling/deadlock-detector machinery exists to keep a long-lived pool
// healthy under a continuous, unbounded task stream; a split-and-conquer
// batch is finite and known up front, so that machinery has no
// SPEC_FULL.md component to serve here (documented in DESIGN.md).
package splitconquer

import (
	"context"
	"runtime"
)

// Outcome is one instance's solve result.
type Outcome struct {
	SAT      bool
	Solution map[int]float64
}

// Instance is one independently-owned solver run over one disjoint
// initial case split. internal/engine.Engine does not implement it
// directly (its Solve returns a Solution and a State), so an engine
// run is wrapped by the caller to fit this interface.
type Instance interface {
	Solve(ctx context.Context) (Outcome, error)
}

// Result is the outcome of running a batch of instances.
type Result struct {
	// SAT is true if any instance found a satisfying assignment.
	SAT bool
	// Solution is populated only when SAT is true.
	Solution map[int]float64
	// Err holds the first error any instance returned, when no
	// instance found SAT (even if other instances answered UNSAT), or
	// the parent context's error if it was cancelled first.
	Err error
}

type indexedOutcome struct {
	outcome Outcome
	err     error
}

// Run launches every instance with bounded concurrency (numWorkers,
// defaulting to NumCPU when <= 0) and returns as soon as one reports
// SAT, cancelling the shared context so the rest stop early. If every
// instance finishes without SAT, Run reports UNSAT (or the first error,
// if any instance errored and none found SAT).
func Run(ctx context.Context, instances []Instance, numWorkers int) Result {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if numWorkers > len(instances) {
		numWorkers = len(instances)
	}
	if len(instances) == 0 {
		return Result{SAT: false}
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan int, len(instances))
	for i := range instances {
		jobs <- i
	}
	close(jobs)

	results := make(chan indexedOutcome, len(instances))

	for w := 0; w < numWorkers; w++ {
		go func() {
			for i := range jobs {
				outcome, err := instances[i].Solve(runCtx)
				select {
				case results <- indexedOutcome{outcome: outcome, err: err}:
				case <-runCtx.Done():
					return
				}
				if runCtx.Err() != nil {
					return
				}
			}
		}()
	}

	var firstErr error
	for i := 0; i < len(instances); i++ {
		select {
		case r := <-results:
			if r.err != nil {
				if firstErr == nil {
					firstErr = r.err
				}
				continue
			}
			if r.outcome.SAT {
				cancel()
				return Result{SAT: true, Solution: r.outcome.Solution}
			}
		case <-ctx.Done():
			return Result{Err: ctx.Err()}
		}
	}

	return Result{SAT: false, Err: firstErr}
}
