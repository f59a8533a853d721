package boundmgr

import (
	"github.com/gitrdm/veriplex/internal/numeric"
	"github.com/gitrdm/veriplex/internal/tableau"
)

// RowTightener implements tableau.RowScanner: given one tableau row —
// "x_basicVariable + sum_j coeff_j * x_j = rowRHS" — it isolates each
// variable with a nonzero coefficient in turn and derives an implied
// bound from interval arithmetic over every other variable's current
// bounds (spec.md §4.3, "Row bound tightener"). A variable only yields
// a tightening when every other term in the row has a finite bound;
// an unbounded co-variable makes the isolation vacuous.
type RowTightener struct {
	bm *BoundManager
}

// NewRowTightener wires a row tightener to the bound manager whose
// Tighten queue it feeds.
func NewRowTightener(bm *BoundManager) *RowTightener { return &RowTightener{bm: bm} }

// ScanRow implements tableau.RowScanner.
func (rt *RowTightener) ScanRow(row []float64, rowRHS float64, basicVariable int) []tableau.Tightening {
	var nonzero []int
	for col, coeff := range row {
		if !numeric.IsZero(coeff, rt.bm.epsilon) {
			nonzero = append(nonzero, col)
		}
	}
	if len(nonzero) == 0 {
		return nil
	}

	// sumLow/sumHigh bound sum_j coeff_j * x_j over every column, so that
	// isolating column k subtracts that one column's own contribution
	// back out.
	var sumLow, sumHigh float64
	finite := true
	contribLow := make(map[int]float64, len(nonzero))
	contribHigh := make(map[int]float64, len(nonzero))
	for _, col := range nonzero {
		coeff := row[col]
		lb := rt.bm.LowerBound(col)
		ub := rt.bm.UpperBound(col)
		var lo, hi float64
		if coeff > 0 {
			lo, hi = coeff*lb, coeff*ub
		} else {
			lo, hi = coeff*ub, coeff*lb
		}
		if !numeric.IsFinite(lo) || !numeric.IsFinite(hi) {
			finite = false
		}
		contribLow[col] = lo
		contribHigh[col] = hi
		sumLow += lo
		sumHigh += hi
	}

	var tightenings []tableau.Tightening
	for _, col := range nonzero {
		coeff := row[col]
		restLow := sumLow - contribLow[col]
		restHigh := sumHigh - contribHigh[col]
		if !finite && (!numeric.IsFinite(restLow) || !numeric.IsFinite(restHigh)) {
			continue
		}
		// col's contribution = rowRHS - rest, so col's interval is that
		// divided by coeff (flipping endpoints when coeff < 0).
		loNumerator := rowRHS - restHigh
		hiNumerator := rowRHS - restLow
		var lo, hi float64
		if coeff > 0 {
			lo, hi = loNumerator/coeff, hiNumerator/coeff
		} else {
			lo, hi = hiNumerator/coeff, loNumerator/coeff
		}
		if numeric.IsFinite(lo) && lo > rt.bm.LowerBound(col)+rt.bm.epsilon {
			t := tableau.Tightening{Variable: col, Kind: tableau.LB, Value: lo}
			rt.bm.Tighten(t)
			tightenings = append(tightenings, t)
		}
		if numeric.IsFinite(hi) && hi < rt.bm.UpperBound(col)-rt.bm.epsilon {
			t := tableau.Tightening{Variable: col, Kind: tableau.UB, Value: hi}
			rt.bm.Tighten(t)
			tightenings = append(tightenings, t)
		}
	}
	_ = basicVariable // identity coefficient already folded into `row`
	return tightenings
}
