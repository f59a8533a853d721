package pwl

import "github.com/gitrdm/veriplex/internal/tableau"

// Sign relates b and f: f = +1 when b >= 0, f = -1 when b < 0 (spec.md
// §4.4). The symbolic relaxation when not phase-fixed lives in
// internal/nlr (§4.5); here only the discrete case-split capability
// set is implemented.
type Sign struct {
	boundsTracker
	B, F int
}

func NewSign(b, f int) *Sign {
	return &Sign{boundsTracker: newBoundsTracker(b, f), B: b, F: f}
}

func (c *Sign) ParticipatingVariables() []int { return []int{c.B, c.F} }

func (c *Sign) PhaseFixed() bool {
	return c.lb[c.B] >= 0 || c.ub[c.B] < 0
}

func (c *Sign) positiveSplit() CaseSplit {
	return CaseSplit{Tightenings: []tableau.Tightening{
		{Variable: c.B, Kind: tableau.LB, Value: 0},
		{Variable: c.F, Kind: tableau.LB, Value: 1},
		{Variable: c.F, Kind: tableau.UB, Value: 1},
	}}
}

func (c *Sign) negativeSplit() CaseSplit {
	return CaseSplit{Tightenings: []tableau.Tightening{
		{Variable: c.B, Kind: tableau.UB, Value: -1e-12},
		{Variable: c.F, Kind: tableau.LB, Value: -1},
		{Variable: c.F, Kind: tableau.UB, Value: -1},
	}}
}

func (c *Sign) GetValidCaseSplit() CaseSplit {
	if c.lb[c.B] >= 0 {
		return c.positiveSplit()
	}
	return c.negativeSplit()
}

func (c *Sign) GetCaseSplits() []CaseSplit {
	return []CaseSplit{c.positiveSplit(), c.negativeSplit()}
}

func (c *Sign) Satisfied(a Assignment) bool {
	b, f := a.Value(c.B), a.Value(c.F)
	if b >= 0 {
		return floatNear(f, 1)
	}
	return floatNear(f, -1)
}

func (c *Sign) GetPossibleFixes(a Assignment) []Fix {
	b := a.Value(c.B)
	if b >= 0 {
		return []Fix{{Variable: c.F, Value: 1}}
	}
	return []Fix{{Variable: c.F, Value: -1}}
}

func (c *Sign) GetEntailedTightenings() []tableau.Tightening {
	return []tableau.Tightening{
		{Variable: c.F, Kind: tableau.LB, Value: -1},
		{Variable: c.F, Kind: tableau.UB, Value: 1},
	}
}
