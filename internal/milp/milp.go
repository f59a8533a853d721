// Package milp defines the contract the engine needs from an external
// MILP solver back-end (spec.md §6) and ships a no-op implementation.
// A real MILP back-end is an explicit Non-goal (SPEC_FULL.md
// "Non-goals"): the engine only ever needs to *compile* against this
// interface and degrade gracefully when LP_SOLVER_TYPE selects
// EXTERNAL_MILP without a real backend wired in.
package milp

import (
	"fmt"
	"time"
)

// Status is the MILP solve outcome (spec.md §6).
type Status int

const (
	Optimal Status = iota
	Infeasible
	Timeout
	Other
)

func (s Status) String() string {
	switch s {
	case Optimal:
		return "OPTIMAL"
	case Infeasible:
		return "INFEASIBLE"
	case Timeout:
		return "TIMEOUT"
	default:
		return "OTHER"
	}
}

// ConstraintType distinguishes the linear-constraint senses a back-end
// needs to accept.
type ConstraintType int

const (
	LE ConstraintType = iota
	GE
	EQ
)

// Term is one (coefficient, variable-name) pair of a linear expression
// over the back-end's own variable namespace.
type Term struct {
	Coefficient float64
	Variable    string
}

// IndicatorConstraint encodes one piecewise-linear phase as an
// indicator: when Binary equals ActiveValue, the linear Terms ==
// Scalar holds (spec.md §6: "add an indicator constraint for a
// piecewise-linear phase").
type IndicatorConstraint struct {
	Binary      string
	ActiveValue int
	Terms       []Term
	Scalar      float64
	Type        ConstraintType
}

// Backend is every operation the engine's façade requires from an
// external MILP solver (spec.md §6 "External MILP back-end").
type Backend interface {
	// AddVariable registers a real-valued decision variable with
	// bounds [lb, ub] under the given name.
	AddVariable(name string, lb, ub float64) error

	// AddConstraint installs sum(terms) <cmpType> scalar.
	AddConstraint(terms []Term, cmpType ConstraintType, scalar float64) error

	// AddIndicatorConstraint installs one piecewise-linear phase
	// encoding.
	AddIndicatorConstraint(ic IndicatorConstraint) error

	// SetObjective installs the linear objective to minimise.
	SetObjective(terms []Term) error

	// SetTimeLimit bounds how long Solve may run.
	SetTimeLimit(d time.Duration) error

	// Solve runs the MILP solver against the model built so far.
	Solve() (Status, error)

	// Solution extracts the name -> value assignment found by the
	// most recent successful Solve.
	Solution() (map[string]float64, error)

	// IterationCount reports the number of simplex iterations the
	// most recent Solve performed, for statistics.
	IterationCount() (int, error)

	// UpdateBounds tightens an already-built model's variable bounds
	// incrementally, without rebuilding it from scratch.
	UpdateBounds(name string, lb, ub float64) error
}

// ErrFeatureNotSupported is returned by every NoopBackend operation
// (spec.md §7 *FeatureNotSupported*: "configuration asked for a
// combination the native engine cannot handle... surfaced as a fatal
// error with a message naming the combination").
type ErrFeatureNotSupported struct {
	Operation string
}

func (e *ErrFeatureNotSupported) Error() string {
	return fmt.Sprintf("milp: %s: no MILP backend is configured (EXTERNAL_MILP requested without one)", e.Operation)
}

// NoopBackend implements Backend by rejecting every call with
// ErrFeatureNotSupported, so the engine can be built and exercised end
// to end with LP_SOLVER_TYPE=NATIVE while still type-checking the
// EXTERNAL_MILP configuration path.
type NoopBackend struct{}

func (NoopBackend) AddVariable(string, float64, float64) error {
	return &ErrFeatureNotSupported{Operation: "AddVariable"}
}

func (NoopBackend) AddConstraint([]Term, ConstraintType, float64) error {
	return &ErrFeatureNotSupported{Operation: "AddConstraint"}
}

func (NoopBackend) AddIndicatorConstraint(IndicatorConstraint) error {
	return &ErrFeatureNotSupported{Operation: "AddIndicatorConstraint"}
}

func (NoopBackend) SetObjective([]Term) error {
	return &ErrFeatureNotSupported{Operation: "SetObjective"}
}

func (NoopBackend) SetTimeLimit(time.Duration) error {
	return &ErrFeatureNotSupported{Operation: "SetTimeLimit"}
}

func (NoopBackend) Solve() (Status, error) {
	return Other, &ErrFeatureNotSupported{Operation: "Solve"}
}

func (NoopBackend) Solution() (map[string]float64, error) {
	return nil, &ErrFeatureNotSupported{Operation: "Solution"}
}

func (NoopBackend) IterationCount() (int, error) {
	return 0, &ErrFeatureNotSupported{Operation: "IterationCount"}
}

func (NoopBackend) UpdateBounds(string, float64, float64) error {
	return &ErrFeatureNotSupported{Operation: "UpdateBounds"}
}
