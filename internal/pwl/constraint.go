// Package pwl implements the piecewise-linear constraint capability
// set (spec.md §4.4): ReLU, AbsoluteValue, Sign, Max, LeakyReLU,
// Round, Disjunction, and Bilinear, all satisfying one shared
// interface so the search core never switches on a constraint's
// concrete type. Grounded on
// pkg/minikanren/propagation.go's PropagationConstraint interface,
// which lets AllDifferent, Arithmetic, and Inequality constraints all
// implement one Propagate contract — the same shape, generalized from
// "propagate to fixed point" to "expose phase/case-split/fix
// capabilities to a DPLL(T) search core".
package pwl

import (
	"github.com/gitrdm/veriplex/internal/numeric"
	"github.com/gitrdm/veriplex/internal/tableau"
)

// Fix is a local assignment change that would restore satisfaction of
// a violated constraint (spec.md §4.4 "getPossibleFixes").
type Fix struct {
	Variable int
	Value    float64
}

// CaseSplit is a set of Tightenings plus an optional list of
// Equations; applying it tightens bounds (and installs any equations)
// into the current subproblem (spec.md §3 "PiecewiseLinearCaseSplit").
type CaseSplit struct {
	Tightenings []tableau.Tightening
	Equations   []*tableau.Equation
}

// Assignment is the read-only view a constraint needs to evaluate
// satisfaction and possible fixes: the current concrete value of any
// variable.
type Assignment interface {
	Value(variable int) float64
}

// Constraint is the capability set every piecewise-linear variant
// exposes (spec.md §4.4).
type Constraint interface {
	tableau.Watcher

	// ParticipatingVariables returns every tableau variable this
	// constraint reads or constrains.
	ParticipatingVariables() []int

	// PhaseFixed reports whether the current bounds imply a single
	// active phase (so the constraint can be replaced by an equation
	// instead of branched on).
	PhaseFixed() bool

	// GetValidCaseSplit returns the case split implied by a fixed
	// phase. Only meaningful when PhaseFixed() is true.
	GetValidCaseSplit() CaseSplit

	// GetCaseSplits returns the finite list of complementary case
	// splits used for branching when the phase is not fixed.
	GetCaseSplits() []CaseSplit

	// Satisfied reports whether the given assignment satisfies this
	// constraint.
	Satisfied(a Assignment) bool

	// GetPossibleFixes proposes local assignment changes that would
	// restore satisfaction, given a currently-violated assignment.
	GetPossibleFixes(a Assignment) []Fix

	// GetEntailedTightenings returns bound tightenings implied by the
	// constraint's own semantics given its current lb/ub view (not
	// requiring the phase to be fixed).
	GetEntailedTightenings() []tableau.Tightening
}

// boundsTracker is the shared "local lb/ub map kept in sync via
// watcher notifications" every variant embeds, per spec.md §4.4's
// registration protocol: "the constraint uses [notifications] to
// update its local lb/ub maps".
type boundsTracker struct {
	lb, ub map[int]float64
}

func newBoundsTracker(vars ...int) boundsTracker {
	bt := boundsTracker{lb: make(map[int]float64), ub: make(map[int]float64)}
	for _, v := range vars {
		bt.lb[v] = numeric.NegativeInfinity
		bt.ub[v] = numeric.Infinity
	}
	return bt
}

func (bt *boundsTracker) NotifyLowerBound(variable int, value float64) {
	if _, ok := bt.lb[variable]; ok {
		bt.lb[variable] = value
	}
}

func (bt *boundsTracker) NotifyUpperBound(variable int, value float64) {
	if _, ok := bt.ub[variable]; ok {
		bt.ub[variable] = value
	}
}

// NotifyVariableValue is a no-op by default: most variants don't need
// the concrete value, only bounds. Variants that do (none currently)
// would override it.
func (bt *boundsTracker) NotifyVariableValue(int, float64) {}
