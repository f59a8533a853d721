package pwl

import "github.com/gitrdm/veriplex/internal/tableau"

// ReLU relates b (pre-activation) and f (post-activation): f =
// max(b, 0). Grounded on spec.md §4.4's ReLU entry.
type ReLU struct {
	boundsTracker
	B, F int
}

// NewReLU constructs a ReLU constraint over (b, f).
func NewReLU(b, f int) *ReLU {
	return &ReLU{boundsTracker: newBoundsTracker(b, f), B: b, F: f}
}

func (r *ReLU) ParticipatingVariables() []int { return []int{r.B, r.F} }

// PhaseFixed reports the active phase (lb(b) >= 0) or the inactive
// phase (ub(b) <= 0).
func (r *ReLU) PhaseFixed() bool {
	return r.lb[r.B] >= 0 || r.ub[r.B] <= 0
}

func (r *ReLU) GetValidCaseSplit() CaseSplit {
	if r.lb[r.B] >= 0 {
		return r.activeSplit()
	}
	return r.inactiveSplit()
}

// activeSplit: b >= 0, f = b.
func (r *ReLU) activeSplit() CaseSplit {
	eq := tableau.NewEquation(tableau.EQ)
	eq.AddAddend(1, r.F)
	eq.AddAddend(-1, r.B)
	return CaseSplit{
		Tightenings: []tableau.Tightening{{Variable: r.B, Kind: tableau.LB, Value: 0}},
		Equations:   []*tableau.Equation{eq},
	}
}

// inactiveSplit: b <= 0, f = 0.
func (r *ReLU) inactiveSplit() CaseSplit {
	return CaseSplit{
		Tightenings: []tableau.Tightening{
			{Variable: r.B, Kind: tableau.UB, Value: 0},
			{Variable: r.F, Kind: tableau.UB, Value: 0},
			{Variable: r.F, Kind: tableau.LB, Value: 0},
		},
	}
}

func (r *ReLU) GetCaseSplits() []CaseSplit {
	return []CaseSplit{r.activeSplit(), r.inactiveSplit()}
}

func (r *ReLU) Satisfied(a Assignment) bool {
	b, f := a.Value(r.B), a.Value(r.F)
	expected := b
	if expected < 0 {
		expected = 0
	}
	return floatNear(f, expected)
}

func (r *ReLU) GetPossibleFixes(a Assignment) []Fix {
	b, f := a.Value(r.B), a.Value(r.F)
	target := b
	if target < 0 {
		target = 0
	}
	fixes := []Fix{{Variable: r.F, Value: target}}
	if f >= 0 {
		fixes = append(fixes, Fix{Variable: r.B, Value: f})
	}
	return fixes
}

// GetEntailedTightenings implements spec.md's "f >= 0, f >= b, and
// mirrors from b's sign".
func (r *ReLU) GetEntailedTightenings() []tableau.Tightening {
	var out []tableau.Tightening
	out = append(out, tableau.Tightening{Variable: r.F, Kind: tableau.LB, Value: 0})
	if r.lb[r.B] > r.lb[r.F] {
		out = append(out, tableau.Tightening{Variable: r.F, Kind: tableau.LB, Value: r.lb[r.B]})
	}
	if r.ub[r.B] < r.ub[r.F] && r.ub[r.B] > 0 {
		out = append(out, tableau.Tightening{Variable: r.F, Kind: tableau.UB, Value: r.ub[r.B]})
	}
	if r.lb[r.B] >= 0 {
		out = append(out, tableau.Tightening{Variable: r.F, Kind: tableau.UB, Value: r.ub[r.B]})
	}
	if r.ub[r.B] <= 0 {
		out = append(out, tableau.Tightening{Variable: r.F, Kind: tableau.UB, Value: 0})
	}
	return out
}

func floatNear(x, y float64) bool {
	d := x - y
	if d < 0 {
		d = -d
	}
	return d <= 1e-8
}
