package pwl

import (
	"math"

	"github.com/gitrdm/veriplex/internal/tableau"
)

// maxRoundCases caps how many candidate integers a Round constraint
// will enumerate as case splits; beyond this the constraint still
// reports entailed interval tightenings but relies on the NLR's
// symbolic relaxation (§4.5) rather than exhaustive branching.
const maxRoundCases = 64

// Round relates b and f: f = round(b) to the nearest integer (spec.md
// §4.4).
type Round struct {
	boundsTracker
	B, F int
}

func NewRound(b, f int) *Round {
	return &Round{boundsTracker: newBoundsTracker(b, f), B: b, F: f}
}

func (c *Round) ParticipatingVariables() []int { return []int{c.B, c.F} }

func (c *Round) candidateRange() (lo, hi int, ok bool) {
	lo = int(math.Floor(c.lb[c.B] + 0.5))
	hi = int(math.Floor(c.ub[c.B] + 0.5))
	if hi < lo || hi-lo+1 > maxRoundCases {
		return 0, 0, false
	}
	return lo, hi, true
}

func (c *Round) PhaseFixed() bool {
	lo, hi, ok := c.candidateRange()
	return ok && lo == hi
}

func (c *Round) splitFor(k int) CaseSplit {
	eq := tableau.NewEquation(tableau.EQ)
	eq.AddAddend(1, c.F)
	eq.Scalar = float64(k)
	return CaseSplit{
		Tightenings: []tableau.Tightening{
			{Variable: c.B, Kind: tableau.LB, Value: float64(k) - 0.5},
			{Variable: c.B, Kind: tableau.UB, Value: float64(k) + 0.5},
		},
		Equations: []*tableau.Equation{eq},
	}
}

func (c *Round) GetValidCaseSplit() CaseSplit {
	lo, _, ok := c.candidateRange()
	if !ok {
		return CaseSplit{}
	}
	return c.splitFor(lo)
}

func (c *Round) GetCaseSplits() []CaseSplit {
	lo, hi, ok := c.candidateRange()
	if !ok {
		return nil
	}
	splits := make([]CaseSplit, 0, hi-lo+1)
	for k := lo; k <= hi; k++ {
		splits = append(splits, c.splitFor(k))
	}
	return splits
}

func (c *Round) Satisfied(a Assignment) bool {
	b, f := a.Value(c.B), a.Value(c.F)
	return floatNear(f, math.Floor(b+0.5))
}

func (c *Round) GetPossibleFixes(a Assignment) []Fix {
	b := a.Value(c.B)
	return []Fix{{Variable: c.F, Value: math.Floor(b + 0.5)}}
}

func (c *Round) GetEntailedTightenings() []tableau.Tightening {
	return []tableau.Tightening{
		{Variable: c.F, Kind: tableau.LB, Value: math.Floor(c.lb[c.B] + 0.5)},
		{Variable: c.F, Kind: tableau.UB, Value: math.Floor(c.ub[c.B] + 0.5)},
	}
}
