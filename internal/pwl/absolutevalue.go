package pwl

import "github.com/gitrdm/veriplex/internal/tableau"

// AbsoluteValue relates b and f: f = |b| (spec.md §4.4).
type AbsoluteValue struct {
	boundsTracker
	B, F int
}

func NewAbsoluteValue(b, f int) *AbsoluteValue {
	return &AbsoluteValue{boundsTracker: newBoundsTracker(b, f), B: b, F: f}
}

func (c *AbsoluteValue) ParticipatingVariables() []int { return []int{c.B, c.F} }

func (c *AbsoluteValue) PhaseFixed() bool {
	return c.lb[c.B] >= 0 || c.ub[c.B] <= 0
}

func (c *AbsoluteValue) positiveSplit() CaseSplit {
	eq := tableau.NewEquation(tableau.EQ)
	eq.AddAddend(1, c.F)
	eq.AddAddend(-1, c.B)
	return CaseSplit{
		Tightenings: []tableau.Tightening{{Variable: c.B, Kind: tableau.LB, Value: 0}},
		Equations:   []*tableau.Equation{eq},
	}
}

func (c *AbsoluteValue) negativeSplit() CaseSplit {
	eq := tableau.NewEquation(tableau.EQ)
	eq.AddAddend(1, c.F)
	eq.AddAddend(1, c.B)
	return CaseSplit{
		Tightenings: []tableau.Tightening{{Variable: c.B, Kind: tableau.UB, Value: 0}},
		Equations:   []*tableau.Equation{eq},
	}
}

func (c *AbsoluteValue) GetValidCaseSplit() CaseSplit {
	if c.lb[c.B] >= 0 {
		return c.positiveSplit()
	}
	return c.negativeSplit()
}

func (c *AbsoluteValue) GetCaseSplits() []CaseSplit {
	return []CaseSplit{c.positiveSplit(), c.negativeSplit()}
}

func (c *AbsoluteValue) Satisfied(a Assignment) bool {
	b, f := a.Value(c.B), a.Value(c.F)
	expected := b
	if expected < 0 {
		expected = -expected
	}
	return floatNear(f, expected)
}

func (c *AbsoluteValue) GetPossibleFixes(a Assignment) []Fix {
	b := a.Value(c.B)
	target := b
	if target < 0 {
		target = -target
	}
	return []Fix{{Variable: c.F, Value: target}}
}

func (c *AbsoluteValue) GetEntailedTightenings() []tableau.Tightening {
	var out []tableau.Tightening
	out = append(out, tableau.Tightening{Variable: c.F, Kind: tableau.LB, Value: 0})
	bound := c.ub[c.B]
	if -c.lb[c.B] > bound {
		bound = -c.lb[c.B]
	}
	if bound < c.ub[c.F] {
		out = append(out, tableau.Tightening{Variable: c.F, Kind: tableau.UB, Value: bound})
	}
	return out
}
