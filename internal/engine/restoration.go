package engine

import (
	"fmt"

	"github.com/gitrdm/veriplex/internal/boundmgr"
	"github.com/gitrdm/veriplex/internal/tableau"
)

// restorer rebuilds the tableau's LU factorisation when floating-point
// drift has made the running assignment unreliable (spec.md §9's
// "dynamic and eager precision restoration triggers"). It owns the
// dense constraint matrix needed to re-pick a basis from scratch
// (restore-basics mode); do-not-restore-basics mode just refactorizes
// the current basis in place.
type restorer struct {
	tab         *tableau.Tableau
	eliminator  *tableau.MarkowitzEliminator
	denseA      []float64
	m, n        int
	pivotThresh float64
	epsilon     float64
}

func newRestorer(tab *tableau.Tableau, eliminator *tableau.MarkowitzEliminator, denseA []float64, m, n int, pivotThresh, epsilon float64) *restorer {
	return &restorer{tab: tab, eliminator: eliminator, denseA: denseA, m: m, n: n, pivotThresh: pivotThresh, epsilon: epsilon}
}

// restoreInPlace refactorizes the current basis without changing which
// columns are basic. Cheaper than restoreFromScratch; sufficient when
// the basis itself is still a valid choice and only the LU factors
// have accumulated error.
func (r *restorer) restoreInPlace() error {
	basis := r.tab.BasicVariables()
	if err := r.tab.SetBasis(basis, r.eliminator); err != nil {
		return fmt.Errorf("engine: in-place restoration: %w", err)
	}
	r.tab.ComputeAssignment()
	return nil
}

// restoreFromScratch re-derives an initial basis from the dense
// constraint matrix via Markowitz-rule column selection and rebuilds
// the tableau around it. Used when the current basis itself is
// suspected degenerate (repeated cycling, not just numeric drift).
func (r *restorer) restoreFromScratch() error {
	analyser := boundmgr.NewMatrixAnalyser(r.denseA, r.m, r.n, r.pivotThresh, r.epsilon)
	analyser.Analyze()

	basis := analyser.IndependentColumns()
	if len(basis) != r.m {
		return fmt.Errorf("engine: constraint matrix has %d redundant row(s), cannot re-pick a basis: %w", r.m-len(basis), ErrFeatureNotSupported)
	}

	if err := r.tab.SetBasis(basis, r.eliminator); err != nil {
		return fmt.Errorf("engine: from-scratch restoration: %w", err)
	}
	r.tab.ComputeAssignment()
	return nil
}
