package pwl

import (
	"testing"

	"github.com/gitrdm/veriplex/internal/tableau"
	"github.com/stretchr/testify/require"
)

type fakeAssignment map[int]float64

func (f fakeAssignment) Value(v int) float64 { return f[v] }

func TestReLUPhaseAndSatisfaction(t *testing.T) {
	r := NewReLU(0, 1)
	require.False(t, r.PhaseFixed())

	r.NotifyLowerBound(0, 1)
	require.True(t, r.PhaseFixed())
	split := r.GetValidCaseSplit()
	require.Len(t, split.Equations, 1)

	require.True(t, r.Satisfied(fakeAssignment{0: 3, 1: 3}))
	require.False(t, r.Satisfied(fakeAssignment{0: 3, 1: 2}))

	fixes := r.GetPossibleFixes(fakeAssignment{0: -2, 1: 5})
	require.NotEmpty(t, fixes)
}

func TestReLUInactivePhase(t *testing.T) {
	r := NewReLU(0, 1)
	r.NotifyUpperBound(0, -1)
	require.True(t, r.PhaseFixed())
	split := r.GetValidCaseSplit()
	require.Contains(t, split.Tightenings, tableau.Tightening{Variable: 1, Kind: tableau.UB, Value: 0})
}

func TestMaxArgmaxFixedAndSplits(t *testing.T) {
	m := NewMax(2, []int{0, 1})
	m.NotifyLowerBound(0, 5)
	m.NotifyUpperBound(1, 3)
	require.True(t, m.PhaseFixed())

	splits := m.GetCaseSplits()
	require.Len(t, splits, 2)

	require.True(t, m.Satisfied(fakeAssignment{0: 5, 1: 2, 2: 5}))
	require.False(t, m.Satisfied(fakeAssignment{0: 5, 1: 2, 2: 4}))
}

func TestSignPhaseAndValue(t *testing.T) {
	s := NewSign(0, 1)
	s.NotifyLowerBound(0, 0.5)
	require.True(t, s.PhaseFixed())
	require.True(t, s.Satisfied(fakeAssignment{0: 2, 1: 1}))
	require.False(t, s.Satisfied(fakeAssignment{0: 2, 1: -1}))
}

func TestLeakyReLUBranches(t *testing.T) {
	l := NewLeakyReLU(0, 1, 0.1)
	require.True(t, l.Satisfied(fakeAssignment{0: -2, 1: -0.2}))
	require.True(t, l.Satisfied(fakeAssignment{0: 3, 1: 3}))
	require.False(t, l.Satisfied(fakeAssignment{0: 3, 1: 2}))
}

func TestBilinearMcCormick(t *testing.T) {
	b := NewBilinear(0, 1, 2)
	b.NotifyLowerBound(0, 1)
	b.NotifyUpperBound(0, 2)
	b.NotifyLowerBound(1, 1)
	b.NotifyUpperBound(1, 2)
	tightenings := b.GetEntailedTightenings()
	require.Len(t, tightenings, 2)
	require.True(t, b.Satisfied(fakeAssignment{0: 2, 1: 3, 2: 6}))
}

func TestDisjunctionLiveSplitNarrowsToOne(t *testing.T) {
	split1 := CaseSplit{Tightenings: []tableau.Tightening{{Variable: 0, Kind: tableau.UB, Value: 0}}}
	split2 := CaseSplit{Tightenings: []tableau.Tightening{{Variable: 0, Kind: tableau.LB, Value: 0}}}
	d := NewDisjunction([]int{0}, []CaseSplit{split1, split2})
	require.False(t, d.PhaseFixed())

	d.NotifyLowerBound(0, 1)
	require.True(t, d.PhaseFixed())
}

func TestRoundCandidateRange(t *testing.T) {
	r := NewRound(0, 1)
	r.NotifyLowerBound(0, 2.6)
	r.NotifyUpperBound(0, 2.6)
	require.True(t, r.PhaseFixed())
	require.True(t, r.Satisfied(fakeAssignment{0: 2.6, 1: 3}))
}
