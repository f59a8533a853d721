package engine

import (
	"fmt"

	"github.com/gitrdm/veriplex/internal/numeric"
	"github.com/gitrdm/veriplex/internal/tableau"
	"github.com/gitrdm/veriplex/pkg/query"
)

// preprocessed is the result of turning a query.Query into a tableau
// layout: a flat list of EQ-only rows (the query's ground equations in
// their own order, each LE/GE one carrying a slack, followed by the
// reserved case-split rows) plus
// the per-variable ground bounds the tableau should start from.
//
// Variable indices below NumOriginal are the caller's own; indices at
// or above it are this preprocessor's own slack and auxiliary columns,
// never seen by pkg/query callers.
type preprocessed struct {
	NumOriginal int
	n           int
	rows        []*tableau.Equation
	lb, ub      []float64
	reserved    map[equationKey]equationRow
}

// preprocess validates q, converts its LE/GE ground equations into
// EQ-with-slack form (the tableau only carries equality rows; every
// inequality becomes an equality against a nonnegative slack, the
// teacher's standard-form convention applied to inequalities too), and
// reserves one tableau row and one free auxiliary variable for every
// distinct multi-addend equation shape any constraint's GetCaseSplits
// could ever install (spec.md §4.6's "structural alternatives are
// known before search begins").
//
// A variable whose LowerBounds[v] == UpperBounds[v] is left as an
// ordinary, already-pinned tableau column: the simplex engine and
// BoundManager already treat a zero-width box as a fixed non-basic
// variable without special-casing, so no separate elimination pass is
// needed to honour that invariant. Likewise an alias equation
// x_i - x_j = 0 is installed as an ordinary EQ row rather than a true
// column merge: internal/pwl.Constraint exposes no variable-remapping
// hook, so folding x_j into x_i would require rewriting every
// constraint that references it; forcing their equality through a row
// has the same LP-level effect (documented as a scope decision in
// DESIGN.md).
func preprocess(q *query.Query, epsilon float64) (*preprocessed, error) {
	n := q.NumVariables
	if n <= 0 {
		return nil, fmt.Errorf("engine: query has no variables")
	}
	if len(q.LowerBounds) != n || len(q.UpperBounds) != n {
		return nil, fmt.Errorf("engine: bounds length mismatch: %w", ErrVariableOutOfBounds)
	}

	// A ground lb > ub is a terminal UNSAT result (spec.md §7), not a
	// construction-time failure: it is deliberately not rejected here.
	// internal/boundmgr.BoundManager.AnyInconsistent detects the same
	// condition generically once bounds are loaded, and New() routes
	// that into a ground-infeasible Engine whose Solve immediately
	// reports StateUnsat instead of erroring out of New().

	checkVar := func(v int) error {
		if v < 0 || v >= n {
			return fmt.Errorf("engine: variable index %d out of range [0,%d): %w", v, n, ErrVariableOutOfBounds)
		}
		return nil
	}
	for _, eq := range q.Equations {
		for _, a := range eq.Addends {
			if err := checkVar(a.Variable); err != nil {
				return nil, err
			}
		}
	}
	for _, c := range q.Constraints {
		for _, v := range c.ParticipatingVariables() {
			if err := checkVar(v); err != nil {
				return nil, err
			}
		}
	}
	for _, a := range q.Objective {
		if err := checkVar(a.Variable); err != nil {
			return nil, err
		}
	}

	for _, v := range q.InputVariables {
		if err := checkVar(v); err != nil {
			return nil, err
		}
		if !numeric.IsFinite(q.LowerBounds[v]) || !numeric.IsFinite(q.UpperBounds[v]) {
			return nil, fmt.Errorf("engine: input variable %d: %w", v, ErrUnboundedVariable)
		}
	}

	p := &preprocessed{
		NumOriginal: n,
		lb:          append([]float64(nil), q.LowerBounds...),
		ub:          append([]float64(nil), q.UpperBounds...),
		reserved:    make(map[equationKey]equationRow),
	}
	nextVar := n

	allocSlack := func() int {
		v := nextVar
		nextVar++
		p.lb = append(p.lb, 0)
		p.ub = append(p.ub, numeric.Infinity)
		return v
	}
	allocAux := func() int {
		v := nextVar
		nextVar++
		p.lb = append(p.lb, numeric.NegativeInfinity)
		p.ub = append(p.ub, numeric.Infinity)
		return v
	}

	for _, eq := range q.Equations {
		switch eq.Type {
		case tableau.EQ:
			p.rows = append(p.rows, eq.Clone())
		case tableau.LE:
			slack := allocSlack()
			row := eq.Clone()
			row.AddAddend(1, slack)
			row.Type = tableau.EQ
			p.rows = append(p.rows, row)
		case tableau.GE:
			slack := allocSlack()
			row := eq.Clone()
			row.AddAddend(-1, slack)
			row.Type = tableau.EQ
			p.rows = append(p.rows, row)
		}
	}

	seen := make(map[equationKey]bool)
	for _, c := range q.Constraints {
		for _, split := range c.GetCaseSplits() {
			for _, eq := range split.Equations {
				if len(eq.Addends) <= 1 {
					continue
				}
				key := canonicalKey(eq)
				if seen[key] {
					continue
				}
				seen[key] = true

				aux := allocAux()
				row := eq.Clone()
				row.Addends = append(row.Addends, tableau.Addend{Coefficient: -1, Variable: aux})
				row.Scalar = 0
				row.Type = tableau.EQ

				rowIndex := len(p.rows)
				p.rows = append(p.rows, row)
				p.reserved[key] = equationRow{row: rowIndex, aux: aux}
			}
		}
	}

	p.n = nextVar
	return p, nil
}
