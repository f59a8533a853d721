package boundmgr

import (
	"testing"

	"github.com/gitrdm/veriplex/internal/tableau"
	"github.com/stretchr/testify/require"
)

func TestPushPopContextRestoresBounds(t *testing.T) {
	bm := New(2, 1e-9)
	bm.SetLowerBound(0, -5)
	bm.SetUpperBound(0, 5)

	bm.PushContext()
	bm.Tighten(tableau.Tightening{Variable: 0, Kind: tableau.LB, Value: 1})
	applied := bm.FlushPending()
	require.Len(t, applied, 1)
	require.Equal(t, 1.0, bm.LowerBound(0))

	require.NoError(t, bm.PopContext())
	require.Equal(t, -5.0, bm.LowerBound(0))
}

func TestFlushPendingStrongestWins(t *testing.T) {
	bm := New(1, 1e-9)
	bm.SetLowerBound(0, 0)
	bm.SetUpperBound(0, 10)

	bm.Tighten(tableau.Tightening{Variable: 0, Kind: tableau.LB, Value: 2})
	bm.Tighten(tableau.Tightening{Variable: 0, Kind: tableau.LB, Value: 5})
	bm.Tighten(tableau.Tightening{Variable: 0, Kind: tableau.LB, Value: 3})
	applied := bm.FlushPending()
	require.Len(t, applied, 2) // 2 then 5 change the bound; 3 does not
	require.Equal(t, 5.0, bm.LowerBound(0))
}

func TestInconsistentFlagsCrossedBounds(t *testing.T) {
	bm := New(1, 1e-9)
	bm.SetLowerBound(0, 0)
	bm.SetUpperBound(0, 10)
	require.False(t, bm.Inconsistent(0))

	bm.Tighten(tableau.Tightening{Variable: 0, Kind: tableau.LB, Value: 11})
	bm.FlushPending()
	require.True(t, bm.Inconsistent(0))
	require.True(t, bm.AnyInconsistent())
}

func TestRowTightenerDerivesBound(t *testing.T) {
	// Row: x0 + 2*x1 = 10, x1 in [0,3] => x0 in [4,10].
	bm := New(2, 1e-9)
	bm.SetLowerBound(0, -1000)
	bm.SetUpperBound(0, 1000)
	bm.SetLowerBound(1, 0)
	bm.SetUpperBound(1, 3)

	rt := NewRowTightener(bm)
	row := []float64{1, 2}
	rt.ScanRow(row, 10, 0)
	applied := bm.FlushPending()
	require.NotEmpty(t, applied)
	require.Equal(t, 4.0, bm.LowerBound(0))
	require.Equal(t, 10.0, bm.UpperBound(0))
}

func TestMatrixAnalyserFindsIndependentColumns(t *testing.T) {
	// 2x3 matrix, rows independent, expect 2 pivot columns chosen.
	matrix := []float64{
		1, 0, 2,
		0, 1, 3,
	}
	a := NewMatrixAnalyser(matrix, 2, 3, 0.1, 1e-9)
	a.Analyze()
	require.Len(t, a.IndependentColumns(), 2)
	require.Empty(t, a.RedundantRows())
}

func TestMatrixAnalyserDetectsRedundantRow(t *testing.T) {
	// Row 1 is 2x Row 0: no second independent pivot exists.
	matrix := []float64{
		1, 1,
		2, 2,
	}
	a := NewMatrixAnalyser(matrix, 2, 2, 0.1, 1e-9)
	a.Analyze()
	require.Len(t, a.RedundantRows(), 1)
}
