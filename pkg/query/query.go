// Package query defines the stable external input/output types a
// parser or CLI (out of scope here) would construct: the Query a
// caller hands to internal/engine, and the Solution it gets back on
// SAT (spec.md §6 "Query object" / "Solution object"). Grounded on
// pkg/minikanren's Goal-construction style: callers build a value by
// reference, mutating it with setters, then hand it to the solver
// rather than threading unstructured arguments through Run.
package query

import (
	"github.com/gitrdm/veriplex/internal/nlr"
	"github.com/gitrdm/veriplex/internal/numeric"
	"github.com/gitrdm/veriplex/internal/pwl"
	"github.com/gitrdm/veriplex/internal/tableau"
)

// Query is the solver's input: a variable count, per-variable ground
// bounds, an ordered list of linear Equations, an unordered set of
// piecewise-linear Constraints, and optionally a LayerGraph for the
// network-level reasoner (spec.md §6).
type Query struct {
	NumVariables int
	LowerBounds  []float64
	UpperBounds  []float64

	Equations   []*tableau.Equation
	Constraints []pwl.Constraint

	Network *nlr.LayerGraph

	// InputVariables and OutputVariables name the query's boundary
	// neurons, used by heuristics (LargestInterval) and by the
	// UnboundedVariable check (every input variable must carry a
	// finite ground box).
	InputVariables  []int
	OutputVariables []int

	// Objective is the optional linear expression to minimise once a
	// feasible point is found (spec.md §8 scenario 5). Nil means the
	// query only asks for SAT/UNSAT.
	Objective []tableau.Addend

	// DebuggingSolution is an optional known-SAT witness (spec.md §6).
	// The engine does not read it: no tightening is checked against
	// it.
	DebuggingSolution map[int]float64
}

// New allocates a Query over n variables, all initially unbounded.
func New(n int) *Query {
	q := &Query{
		NumVariables: n,
		LowerBounds:  make([]float64, n),
		UpperBounds:  make([]float64, n),
	}
	for i := 0; i < n; i++ {
		q.LowerBounds[i] = numeric.NegativeInfinity
		q.UpperBounds[i] = numeric.Infinity
	}
	return q
}

// SetBounds narrows variable v's ground box.
func (q *Query) SetBounds(v int, lb, ub float64) {
	q.LowerBounds[v] = lb
	q.UpperBounds[v] = ub
}

// AddEquation appends one linear equation to the ordered list.
func (q *Query) AddEquation(eq *tableau.Equation) {
	q.Equations = append(q.Equations, eq)
}

// AddConstraint registers one piecewise-linear constraint.
func (q *Query) AddConstraint(c pwl.Constraint) {
	q.Constraints = append(q.Constraints, c)
}

// Solution is the solver's output on SAT: the assigned value of every
// original variable index (spec.md §6). The preprocessor neither
// renumbers nor eliminates caller variables, so each value is read
// straight from the final tableau assignment.
type Solution struct {
	Values map[int]float64
}

// Value returns variable v's assigned value, or 0 if v was never part
// of the solved query.
func (s *Solution) Value(v int) float64 { return s.Values[v] }
