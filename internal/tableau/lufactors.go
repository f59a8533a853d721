package tableau

import (
	"fmt"

	"github.com/gitrdm/veriplex/internal/numeric"
)

// LUFactors represents A = F*V = P*L*U*Q where L is unit lower
// triangular, U is upper triangular, and P, Q are permutations. F and V
// are stored explicitly (dense, m x m, row-major); L and U are implicit
// (L = P'*F*P, U = P'*V*Q'). Grounded line-for-line on
// original_source/src/basis_factorization/LUFactors.cpp.
type LUFactors struct {
	m int
	F []float64 // m*m, row-major
	V []float64 // m*m, row-major
	P *PermutationMatrix
	Q *PermutationMatrix

	epsilon float64
}

// NewLUFactors allocates an m x m factorisation initialised to the
// identity (F = V = I, P = Q = identity permutation).
func NewLUFactors(m int, epsilon float64) *LUFactors {
	lu := &LUFactors{
		m:       m,
		F:       make([]float64, m*m),
		V:       make([]float64, m*m),
		P:       NewPermutationMatrix(m),
		Q:       NewPermutationMatrix(m),
		epsilon: epsilon,
	}
	for i := 0; i < m; i++ {
		lu.F[i*m+i] = 1
		lu.V[i*m+i] = 1
	}
	return lu
}

// Size returns the factorisation's dimension.
func (lu *LUFactors) Size() int { return lu.m }

// Clone returns a deep copy, used by precision restoration snapshots
// and by the split stack when a subproblem's tableau state must be
// preserved across a branching decision.
func (lu *LUFactors) Clone() *LUFactors {
	clone := &LUFactors{
		m:       lu.m,
		F:       append([]float64(nil), lu.F...),
		V:       append([]float64(nil), lu.V...),
		P:       lu.P.Clone(),
		Q:       lu.Q.Clone(),
		epsilon: lu.epsilon,
	}
	return clone
}

// fForwardTransformation solves F*x = y. F = P*L*P', so the i'th
// column of L is the fColumn'th column of F where fColumn =
// P.columnOrdering[i]; L's diagonal is implicitly 1.
func (lu *LUFactors) fForwardTransformation(y, x []float64) {
	copy(x, y)
	m := lu.m
	for lColumn := 0; lColumn < m; lColumn++ {
		fColumn := lu.P.ColumnOrdering(lColumn)
		if numeric.IsZero(x[fColumn], lu.epsilon) {
			continue
		}
		for lRow := lColumn + 1; lRow < m; lRow++ {
			fRow := lu.P.ColumnOrdering(lRow)
			x[fRow] -= lu.F[fRow*m+fColumn] * x[fColumn]
		}
	}
}

// fBackwardTransformation solves x*F = y.
func (lu *LUFactors) fBackwardTransformation(y, x []float64) {
	copy(x, y)
	m := lu.m
	for lRow := m - 1; lRow >= 0; lRow-- {
		fRow := lu.P.ColumnOrdering(lRow)
		if numeric.IsZero(x[fRow], lu.epsilon) {
			continue
		}
		for lColumn := lRow - 1; lColumn >= 0; lColumn-- {
			fColumn := lu.P.ColumnOrdering(lColumn)
			x[fColumn] -= lu.F[fRow*m+fColumn] * x[fRow]
		}
	}
}

// vForwardTransformation solves V*x = y. V = P*U*Q, U = P'*V*Q'.
func (lu *LUFactors) vForwardTransformation(y, x []float64) {
	m := lu.m
	for uRow := m - 1; uRow >= 0; uRow-- {
		vRow := lu.P.ColumnOrdering(uRow)
		xBeingSolved := lu.Q.RowOrdering(uRow)
		x[xBeingSolved] = y[vRow]

		for uColumn := uRow + 1; uColumn < m; uColumn++ {
			vColumn := lu.Q.RowOrdering(uColumn)
			x[xBeingSolved] -= lu.V[vRow*m+vColumn] * x[vColumn]
		}

		if numeric.IsZero(x[xBeingSolved], lu.epsilon) {
			x[xBeingSolved] = 0
		} else {
			x[xBeingSolved] *= 1.0 / lu.V[vRow*m+lu.Q.RowOrdering(uRow)]
		}
	}
}

// vBackwardTransformation solves x*V = y.
func (lu *LUFactors) vBackwardTransformation(y, x []float64) {
	m := lu.m
	for uColumn := 0; uColumn < m; uColumn++ {
		vColumn := lu.Q.RowOrdering(uColumn)
		xBeingSolved := lu.P.ColumnOrdering(uColumn)
		x[xBeingSolved] = y[vColumn]

		for uRow := 0; uRow < uColumn; uRow++ {
			vRow := lu.P.ColumnOrdering(uRow)
			x[xBeingSolved] -= lu.V[vRow*m+vColumn] * x[vRow]
		}

		if numeric.IsZero(x[xBeingSolved], lu.epsilon) {
			x[xBeingSolved] = 0
		} else {
			x[xBeingSolved] *= 1.0 / lu.V[lu.P.ColumnOrdering(uColumn)*m+vColumn]
		}
	}
}

// ForwardTransformation solves A*x = y: first F*z = y, then V*x = z.
func (lu *LUFactors) ForwardTransformation(y []float64) []float64 {
	z := make([]float64, lu.m)
	x := make([]float64, lu.m)
	lu.fForwardTransformation(y, z)
	lu.vForwardTransformation(z, x)
	return x
}

// BackwardTransformation solves x*A = y: first z*V = y, then x*F = z.
func (lu *LUFactors) BackwardTransformation(y []float64) []float64 {
	z := make([]float64, lu.m)
	x := make([]float64, lu.m)
	lu.vBackwardTransformation(y, z)
	lu.fBackwardTransformation(z, x)
	return x
}

// InvertBasis explicitly multiplies the identity by inv(L) then inv(U)
// then applies Q and P, producing the dense inverse of the basis this
// factorisation represents (spec.md §3, "explicit basis inversion").
func (lu *LUFactors) InvertBasis() []float64 {
	m := lu.m
	work := make([]float64, m*m)
	if m == 0 {
		return work
	}
	for i := 0; i < m; i++ {
		work[i*m+i] = 1
	}

	// Step 1: left-multiply I by inv(L), sweeping L's columns left to right.
	for lColumn := 0; lColumn < m-1; lColumn++ {
		for lRow := lColumn + 1; lRow < m; lRow++ {
			multiplier := -lu.F[lu.P.ColumnOrdering(lRow)*m+lu.P.ColumnOrdering(lColumn)]
			for i := 0; i <= lColumn; i++ {
				work[lRow*m+i] += work[lColumn*m+i] * multiplier
			}
		}
	}

	// Step 2: left-multiply by inv(U), sweeping U's columns right to left.
	for uColumn := m - 1; uColumn >= 0; uColumn-- {
		vRow := lu.P.ColumnOrdering(uColumn)
		pivot := lu.V[vRow*m+lu.Q.RowOrdering(uColumn)]
		for i := 0; i < m; i++ {
			work[uColumn*m+i] /= pivot
		}
		for uRow := 0; uRow < uColumn; uRow++ {
			vRowAbove := lu.P.ColumnOrdering(uRow)
			factor := lu.V[vRowAbove*m+lu.Q.RowOrdering(uColumn)]
			if factor == 0 {
				continue
			}
			for i := 0; i < m; i++ {
				work[uRow*m+i] -= factor * work[uColumn*m+i]
			}
		}
	}

	// work now holds inv(L)*inv(U) = inv(U)*inv(L) applied to rows indexed
	// by uRow/uColumn (i.e. inv(LU)). Apply Q on the left and P on the right:
	// inv(A) = Q' * inv(LU) * P'.
	result := make([]float64, m*m)
	for i := 0; i < m; i++ {
		srcRow := lu.Q.ColumnOrdering(i)
		for j := 0; j < m; j++ {
			srcCol := lu.P.RowOrdering(j)
			result[i*m+j] = work[srcRow*m+srcCol]
		}
	}
	return result
}

// Residual computes the L1 norm of F*V - A_B for a supplied dense basis
// matrix, used by precision restoration to detect degradation (spec.md
// §3 invariants: "the LU factorisation... satisfies A_B = F*V up to a
// bounded degradation").
func (lu *LUFactors) Residual(basis []float64) (float64, error) {
	m := lu.m
	if len(basis) != m*m {
		return 0, fmt.Errorf("tableau: residual: basis has %d entries, want %d", len(basis), m*m)
	}
	product := make([]float64, m*m)
	for i := 0; i < m; i++ {
		for k := 0; k < m; k++ {
			fik := lu.F[i*m+k]
			if fik == 0 {
				continue
			}
			for j := 0; j < m; j++ {
				product[i*m+j] += fik * lu.V[k*m+j]
			}
		}
	}
	var residual float64
	for i := range product {
		diff := product[i] - basis[i]
		if diff < 0 {
			diff = -diff
		}
		residual += diff
	}
	return residual, nil
}
