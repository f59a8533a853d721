package engine

import "errors"

// Sentinel errors returned by Engine.Solve, wrapped with %w at each
// propagation boundary in the teacher's style (see
// pkg/minikanren/fd_solver.go's fmt.Errorf("...: %w", err) usage).
var (
	// ErrInfeasibleQuery identifies a ground query (before any search)
	// that is already infeasible: a variable's bounds are inverted, or
	// a ground equation cannot be satisfied by any point in the initial
	// box. Per spec.md §7 this is a terminal UNSAT result, not a
	// construction-time failure: New() never returns it. It remains
	// exported so callers that want to tell "UNSAT because the ground
	// box is inverted" apart from other Solve outcomes have a stable
	// value to compare against, even though nothing currently wraps it.
	ErrInfeasibleQuery = errors.New("engine: infeasible query")

	// ErrVariableOutOfBounds is returned when an Equation, Constraint,
	// or Objective term references a variable index outside
	// [0, NumVariables).
	ErrVariableOutOfBounds = errors.New("engine: variable index out of bounds")

	// ErrFeatureNotSupported is returned when a query requests a
	// capability this build does not implement: a MILP bound-tightening
	// mode other than none, a constraint matrix with redundant rows, or
	// a case-split equation shape that has no reserved tableau row.
	ErrFeatureNotSupported = errors.New("engine: feature not supported")

	// ErrUnboundedVariable is returned when a named input variable has
	// no finite ground bound on one side; every input must be boxed.
	ErrUnboundedVariable = errors.New("engine: unbounded input variable")

	// ErrNLRUnavailable names the case where the configured symbolic
	// bound-tightening mode requires a layer graph but the query
	// supplied none. New() and Solve() never return it: New() falls back
	// to no symbolic bound tightening and logs a warning instead.
	ErrNLRUnavailable = errors.New("engine: network-level reasoner unavailable")

	// ErrRestorationFailed is returned when precision restoration
	// itself fails twice consecutively, escalating what would
	// otherwise be a recoverable degradation into a fatal error.
	ErrRestorationFailed = errors.New("engine: precision restoration failed")
)
