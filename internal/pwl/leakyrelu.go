package pwl

import "github.com/gitrdm/veriplex/internal/tableau"

// LeakyReLU relates b and f with slope 1 on the positive side and
// slope Alpha (> 0) on the negative side (spec.md §4.4).
type LeakyReLU struct {
	boundsTracker
	B, F  int
	Alpha float64
}

func NewLeakyReLU(b, f int, alpha float64) *LeakyReLU {
	return &LeakyReLU{boundsTracker: newBoundsTracker(b, f), B: b, F: f, Alpha: alpha}
}

func (c *LeakyReLU) ParticipatingVariables() []int { return []int{c.B, c.F} }

func (c *LeakyReLU) PhaseFixed() bool {
	return c.lb[c.B] >= 0 || c.ub[c.B] <= 0
}

func (c *LeakyReLU) activeSplit() CaseSplit {
	eq := tableau.NewEquation(tableau.EQ)
	eq.AddAddend(1, c.F)
	eq.AddAddend(-1, c.B)
	return CaseSplit{
		Tightenings: []tableau.Tightening{{Variable: c.B, Kind: tableau.LB, Value: 0}},
		Equations:   []*tableau.Equation{eq},
	}
}

func (c *LeakyReLU) inactiveSplit() CaseSplit {
	eq := tableau.NewEquation(tableau.EQ)
	eq.AddAddend(1, c.F)
	eq.AddAddend(-c.Alpha, c.B)
	return CaseSplit{
		Tightenings: []tableau.Tightening{{Variable: c.B, Kind: tableau.UB, Value: 0}},
		Equations:   []*tableau.Equation{eq},
	}
}

func (c *LeakyReLU) GetValidCaseSplit() CaseSplit {
	if c.lb[c.B] >= 0 {
		return c.activeSplit()
	}
	return c.inactiveSplit()
}

func (c *LeakyReLU) GetCaseSplits() []CaseSplit {
	return []CaseSplit{c.activeSplit(), c.inactiveSplit()}
}

func (c *LeakyReLU) expected(b float64) float64 {
	if b >= 0 {
		return b
	}
	return c.Alpha * b
}

func (c *LeakyReLU) Satisfied(a Assignment) bool {
	return floatNear(a.Value(c.F), c.expected(a.Value(c.B)))
}

func (c *LeakyReLU) GetPossibleFixes(a Assignment) []Fix {
	b, f := a.Value(c.B), a.Value(c.F)
	fixes := []Fix{{Variable: c.F, Value: c.expected(b)}}
	if c.Alpha > 0 {
		var invertedB float64
		if f >= 0 {
			invertedB = f
		} else {
			invertedB = f / c.Alpha
		}
		fixes = append(fixes, Fix{Variable: c.B, Value: invertedB})
	}
	return fixes
}

func (c *LeakyReLU) GetEntailedTightenings() []tableau.Tightening {
	var out []tableau.Tightening
	if c.lb[c.B] >= 0 {
		out = append(out,
			tableau.Tightening{Variable: c.F, Kind: tableau.LB, Value: c.lb[c.B]},
			tableau.Tightening{Variable: c.F, Kind: tableau.UB, Value: c.ub[c.B]},
		)
	} else if c.ub[c.B] <= 0 {
		out = append(out,
			tableau.Tightening{Variable: c.F, Kind: tableau.LB, Value: c.Alpha * c.ub[c.B]},
			tableau.Tightening{Variable: c.F, Kind: tableau.UB, Value: c.Alpha * c.lb[c.B]},
		)
	}
	return out
}
