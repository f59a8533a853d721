package search

import (
	"testing"

	"github.com/gitrdm/veriplex/internal/boundmgr"
	"github.com/gitrdm/veriplex/internal/numeric"
	"github.com/gitrdm/veriplex/internal/pwl"
	"github.com/gitrdm/veriplex/internal/tableau"
	"github.com/stretchr/testify/require"
)

type noopInstaller struct{ installed []*tableau.Equation }

func (n *noopInstaller) InstallEquation(eq *tableau.Equation) error {
	n.installed = append(n.installed, eq)
	return nil
}

func TestPerformSplitAppliesFirstAlternative(t *testing.T) {
	bm := boundmgr.New(2, 1e-9)
	bm.SetLowerBound(0, numeric.NegativeInfinity)
	bm.SetUpperBound(0, numeric.Infinity)

	stack := NewSplitStack(bm)
	relu := pwl.NewReLU(0, 1)
	installer := &noopInstaller{}

	require.NoError(t, stack.PerformSplit(relu.GetCaseSplits(), installer))
	require.Equal(t, 1, stack.Depth())
	require.Equal(t, 1, bm.Depth())
	// Active split first: lb(b) = 0, plus one equation f = b.
	require.Equal(t, 0.0, bm.LowerBound(0))
	require.Len(t, installer.installed, 1)
}

func TestPopSplitAdvancesToNextAlternativeThenExhausts(t *testing.T) {
	bm := boundmgr.New(2, 1e-9)
	stack := NewSplitStack(bm)
	relu := pwl.NewReLU(0, 1)
	installer := &noopInstaller{}

	require.NoError(t, stack.PerformSplit(relu.GetCaseSplits(), installer))
	require.Equal(t, 0.0, bm.LowerBound(0)) // active phase tightening

	ok, err := stack.PopSplit(installer)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 1, stack.Depth())
	// Inactive phase: ub(b) = 0, and the active phase's lb(b)=0 tightening
	// from the first alternative must have been undone.
	require.Equal(t, numeric.NegativeInfinity, bm.LowerBound(0))
	require.Equal(t, 0.0, bm.UpperBound(0))

	ok, err = stack.PopSplit(installer)
	require.NoError(t, err)
	require.False(t, ok, "only two alternatives exist; the stack must empty")
	require.Equal(t, 0, stack.Depth())
	require.Equal(t, 0, bm.Depth())
}

func TestImpliedSplitsClearedOnAlternativeSwitch(t *testing.T) {
	bm := boundmgr.New(3, 1e-9)
	stack := NewSplitStack(bm)
	relu := pwl.NewReLU(0, 1)
	installer := &noopInstaller{}

	require.NoError(t, stack.PerformSplit(relu.GetCaseSplits(), installer))
	implied := pwl.CaseSplit{Tightenings: []tableau.Tightening{{Variable: 2, Kind: tableau.LB, Value: 3}}}
	require.NoError(t, stack.RecordImpliedValidSplit(implied, installer))
	require.Equal(t, 3.0, bm.LowerBound(2))

	_, err := stack.PopSplit(installer)
	require.NoError(t, err)
	// The implied tightening on variable 2 belonged to the exhausted
	// alternative's context frame and must be undone with it.
	require.Equal(t, numeric.NegativeInfinity, bm.LowerBound(2))
	require.Empty(t, stack.Top().Implied)
}

func TestViolationTrackerPicksMostFrequent(t *testing.T) {
	vt := NewViolationTracker()
	a := pwl.NewReLU(0, 1)
	b := pwl.NewReLU(2, 3)
	vt.ReportViolatedConstraint(a)
	vt.ReportViolatedConstraint(b)
	vt.ReportViolatedConstraint(b)

	chosen := vt.ChooseViolatedConstraintForFixing([]pwl.Constraint{a, b})
	require.Same(t, b, chosen)
}

func TestEarliestReLUPicksFirstUnfixed(t *testing.T) {
	bm := boundmgr.New(4, 1e-9)
	first := pwl.NewReLU(0, 1)
	second := pwl.NewReLU(2, 3)
	first.NotifyLowerBound(0, 5) // phase fixed, should be skipped

	ctx := &DivideContext{Constraints: []pwl.Constraint{first, second}, Bounds: bm}
	alts, ok := EarliestReLUHeuristic{}.SelectSplit(ctx)
	require.True(t, ok)
	require.Equal(t, second.GetCaseSplits(), alts)
}

func TestPolarityPicksMostCenteredInterval(t *testing.T) {
	bm := boundmgr.New(4, 1e-9)
	bm.SetLowerBound(0, -1)
	bm.SetUpperBound(0, 10) // far from centred
	bm.SetLowerBound(2, -5)
	bm.SetUpperBound(2, 5) // perfectly centred

	skewed := pwl.NewReLU(0, 1)
	skewed.NotifyLowerBound(0, -1)
	skewed.NotifyUpperBound(0, 10)
	centered := pwl.NewReLU(2, 3)
	centered.NotifyLowerBound(2, -5)
	centered.NotifyUpperBound(2, 5)

	ctx := &DivideContext{Constraints: []pwl.Constraint{skewed, centered}, Bounds: bm}
	alts, ok := PolarityHeuristic{}.SelectSplit(ctx)
	require.True(t, ok)
	require.Equal(t, centered.GetCaseSplits(), alts)
}

func TestLargestIntervalSplitsAtMidpoint(t *testing.T) {
	bm := boundmgr.New(2, 1e-9)
	bm.SetLowerBound(0, -1)
	bm.SetUpperBound(0, 1)
	bm.SetLowerBound(1, 0)
	bm.SetUpperBound(1, 10)

	ctx := &DivideContext{Bounds: bm, InputVariables: []int{0, 1}}
	alts, ok := LargestIntervalHeuristic{}.SelectSplit(ctx)
	require.True(t, ok)
	require.Len(t, alts, 2)
	require.Equal(t, tableau.Tightening{Variable: 1, Kind: tableau.UB, Value: 5}, alts[0].Tightenings[0])
	require.Equal(t, tableau.Tightening{Variable: 1, Kind: tableau.LB, Value: 5}, alts[1].Tightenings[0])
}

func TestAutoHeuristicSwitchesAtDepthThreshold(t *testing.T) {
	bm := boundmgr.New(2, 1e-9)
	c := pwl.NewReLU(0, 1)
	depth := 0
	auto := NewAutoHeuristic(2, func() int { return depth })
	ctx := &DivideContext{Constraints: []pwl.Constraint{c}, Bounds: bm}

	alts, ok := auto.SelectSplit(ctx)
	require.True(t, ok)
	require.Equal(t, c.GetCaseSplits(), alts) // EarliestReLU path at shallow depth

	depth = 5
	_, ok = auto.SelectSplit(ctx) // PseudoImpact path; no source wired, falls back to score 0
	require.True(t, ok)
}
