package tableau

import (
	"fmt"

	"github.com/gitrdm/veriplex/internal/numeric"
)

// ErrMalformedBasis is returned when a basis column set has become rank
// deficient (no acceptable pivot exists and no singleton row/column is
// found), spec.md §7 "MalformedBasis".
var ErrMalformedBasis = fmt.Errorf("tableau: malformed basis")

// MarkowitzEliminator factorises a dense m x m basis matrix into
// LUFactors using Markowitz-rule Gaussian elimination with threshold
// pivoting, per spec.md §4.1. The original's GaussianEliminator.cpp
// only implements partial pivoting; this re-derives the Markowitz rule
// the spec text describes, using the same column-by-column / row-header
// structure.
type MarkowitzEliminator struct {
	pivotThreshold float64 // c in (0,1]
	epsilon        float64
}

// NewMarkowitzEliminator constructs an eliminator with the given
// threshold-pivoting constant (spec.md default 0.1) and comparison
// epsilon.
func NewMarkowitzEliminator(pivotThreshold, epsilon float64) *MarkowitzEliminator {
	return &MarkowitzEliminator{pivotThreshold: pivotThreshold, epsilon: epsilon}
}

// Factorize computes A = F*V = P*L*U*Q for the given dense m x m matrix
// A (row-major), returning a fresh LUFactors.
func (e *MarkowitzEliminator) Factorize(a []float64, m int) (*LUFactors, error) {
	if len(a) != m*m {
		return nil, fmt.Errorf("tableau: factorize: matrix has %d entries, want %d", len(a), m*m)
	}

	lu := NewLUFactors(m, e.epsilon)
	// active is a working copy of A under the current P,Q orderings;
	// we track it directly indexed by logical (row, col) so that
	// row/column counts and the Markowitz search can scan it cheaply.
	active := append([]float64(nil), a...)

	rowNNZ := make([]int, m)
	colNNZ := make([]int, m)
	for i := 0; i < m; i++ {
		for j := 0; j < m; j++ {
			if !numeric.IsZero(active[i*m+j], e.epsilon) {
				rowNNZ[i]++
				colNNZ[j]++
			}
		}
	}

	for k := 0; k < m; k++ {
		pr, pc, err := e.choosePivot(active, m, k, rowNNZ, colNNZ)
		if err != nil {
			return nil, err
		}

		lu.P.SwapRows(k, pr)
		lu.Q.SwapRows(k, pc)
		// Mirror the swap in the active-submatrix bookkeeping: swap the
		// physical rows/cols in `active`, rowNNZ, colNNZ so the next
		// iteration's k..m-1 window lines up with the permutations.
		swapRows(active, m, k, pr)
		rowNNZ[k], rowNNZ[pr] = rowNNZ[pr], rowNNZ[k]
		swapCols(active, m, k, pc)
		colNNZ[k], colNNZ[pc] = colNNZ[pc], colNNZ[k]

		pivot := active[k*m+k]

		// Record column k of L (in F) and row k of U (in V) at their
		// permuted positions, mirroring LUFactors' F = P*L*P', V = P*U*Q'.
		fCol := lu.P.ColumnOrdering(k)
		for i := k; i < m; i++ {
			fRow := lu.P.ColumnOrdering(i)
			lu.F[fRow*m+fCol] = active[i*m+k] / pivot
		}
		vRow := lu.P.ColumnOrdering(k)
		for j := k; j < m; j++ {
			vCol := lu.Q.RowOrdering(j)
			lu.V[vRow*m+vCol] = active[k*m+j]
		}

		// Eliminate rows k+1..m-1 of the active submatrix.
		for i := k + 1; i < m; i++ {
			factor := active[i*m+k] / pivot
			if numeric.IsZero(factor, e.epsilon) {
				continue
			}
			for j := k; j < m; j++ {
				before := active[i*m+j]
				wasNZ := !numeric.IsZero(before, e.epsilon)
				after := before - factor*active[k*m+j]
				active[i*m+j] = after
				isNZ := !numeric.IsZero(after, e.epsilon)
				if wasNZ && !isNZ {
					rowNNZ[i]--
					colNNZ[j]--
				} else if !wasNZ && isNZ {
					rowNNZ[i]++
					colNNZ[j]++
				}
			}
		}
	}

	return lu, nil
}

// choosePivot implements spec.md §4.1's pivot-selection rule: prefer a
// singleton row, else a singleton column, else the Markowitz-minimal
// entry subject to the magnitude threshold, ties broken by magnitude.
func (e *MarkowitzEliminator) choosePivot(active []float64, m, k int, rowNNZ, colNNZ []int) (int, int, error) {
	// Singleton row in the active submatrix.
	for i := k; i < m; i++ {
		if rowNNZ[i] != 1 {
			continue
		}
		for j := k; j < m; j++ {
			if !numeric.IsZero(active[i*m+j], e.epsilon) {
				return i, j, nil
			}
		}
	}

	// Singleton column.
	for j := k; j < m; j++ {
		if colNNZ[j] != 1 {
			continue
		}
		for i := k; i < m; i++ {
			if !numeric.IsZero(active[i*m+j], e.epsilon) {
				return i, j, nil
			}
		}
	}

	// Markowitz-minimal entry subject to the magnitude threshold.
	bestCost := -1
	bestMag := -1.0
	bestI, bestJ := -1, -1
	for j := k; j < m; j++ {
		colMax := 0.0
		for i := k; i < m; i++ {
			mag := abs(active[i*m+j])
			if mag > colMax {
				colMax = mag
			}
		}
		if colMax == 0 {
			continue
		}
		threshold := e.pivotThreshold * colMax
		for i := k; i < m; i++ {
			mag := abs(active[i*m+j])
			if mag < threshold || numeric.IsZero(mag, e.epsilon) {
				continue
			}
			cost := (rowNNZ[i] - 1) * (colNNZ[j] - 1)
			if bestI == -1 || cost < bestCost || (cost == bestCost && mag > bestMag) {
				bestCost, bestMag, bestI, bestJ = cost, mag, i, j
			}
		}
	}

	if bestI == -1 {
		return 0, 0, ErrMalformedBasis
	}
	return bestI, bestJ, nil
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func swapRows(a []float64, m, i, j int) {
	if i == j {
		return
	}
	for c := 0; c < m; c++ {
		a[i*m+c], a[j*m+c] = a[j*m+c], a[i*m+c]
	}
}

func swapCols(a []float64, m, i, j int) {
	if i == j {
		return
	}
	for r := 0; r < m; r++ {
		a[r*m+i], a[r*m+j] = a[r*m+j], a[r*m+i]
	}
}
