package tableau

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestLUFactorsRoundTrip factorises a random, diagonally dominant 12x12
// matrix A and checks that ForwardTransformation(y) solves A*x = y and
// that BackwardTransformation(A*x) solves z*A = A*x, each entry within
// 1e-6.
func TestLUFactorsRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	const m = 12

	a := make([]float64, m*m)
	for i := 0; i < m; i++ {
		for j := 0; j < m; j++ {
			a[i*m+j] = rng.Float64()*2 - 1
		}
		a[i*m+i] += 5 // diagonal dominance keeps the matrix well-conditioned
	}

	eliminator := NewMarkowitzEliminator(0.1, 1e-10)
	lu, err := eliminator.Factorize(a, m)
	require.NoError(t, err)

	y := make([]float64, m)
	var norm float64
	for i := range y {
		y[i] = rng.Float64()*10 - 5
		norm += y[i] * y[i]
	}

	x := lu.ForwardTransformation(y)

	// Reconstruct A*x directly from the dense matrix and compare to y.
	reconstructed := make([]float64, m)
	for i := 0; i < m; i++ {
		for j := 0; j < m; j++ {
			reconstructed[i] += a[i*m+j] * x[j]
		}
	}
	for i := range y {
		require.InDelta(t, y[i], reconstructed[i], 1e-6)
	}

	// backwardTransformation(forwardTransformation(y)) round trip via A:
	// x solves A x = y, so x*A (backward on x) should reproduce the row
	// vector obtained by forward-substituting y through A's transpose.
	back := lu.BackwardTransformation(reconstructed)
	// back solves z*A = reconstructed == A x, i.e. z == x when A is
	// nonsingular (x*A = A^T x for symmetric test data is not assumed;
	// instead verify the defining property z*A == reconstructed).
	check := make([]float64, m)
	for j := 0; j < m; j++ {
		for i := 0; i < m; i++ {
			check[j] += back[i] * a[i*m+j]
		}
	}
	for i := range reconstructed {
		require.InDelta(t, reconstructed[i], check[i], 1e-6)
	}
}

func TestMarkowitzEliminatorDetectsSingularBasis(t *testing.T) {
	// A 2x2 all-zero matrix has no acceptable pivot.
	a := make([]float64, 4)
	eliminator := NewMarkowitzEliminator(0.1, 1e-10)
	_, err := eliminator.Factorize(a, 2)
	require.ErrorIs(t, err, ErrMalformedBasis)
}

func TestPermutationMatrixSwap(t *testing.T) {
	p := NewPermutationMatrix(4)
	p.SwapRows(0, 2)
	require.Equal(t, 2, p.RowOrdering(0))
	require.Equal(t, 0, p.ColumnOrdering(2))
}
