package pwl

import "github.com/gitrdm/veriplex/internal/tableau"

// Disjunction represents s_1 ∨ ... ∨ s_k over a finite list of
// CaseSplits (spec.md §4.4): "the system represents arbitrary
// finite-case reasoning" this way, e.g. input-interval bisection
// produces a 2-element disjunction.
type Disjunction struct {
	boundsTracker
	vars   []int
	splits []CaseSplit
}

// NewDisjunction builds a disjunction over the given splits; vars is
// the union of every variable any split's tightenings reference, used
// for watcher registration.
func NewDisjunction(vars []int, splits []CaseSplit) *Disjunction {
	return &Disjunction{boundsTracker: newBoundsTracker(vars...), vars: append([]int(nil), vars...), splits: splits}
}

func (d *Disjunction) ParticipatingVariables() []int { return d.vars }

// PhaseFixed is true once every split but one is ruled out by the
// current bounds (a tightening in that split now conflicts with the
// tracked bounds).
func (d *Disjunction) PhaseFixed() bool {
	return len(d.liveSplits()) == 1
}

func (d *Disjunction) liveSplits() []CaseSplit {
	var live []CaseSplit
	for _, s := range d.splits {
		if d.consistent(s) {
			live = append(live, s)
		}
	}
	return live
}

func (d *Disjunction) consistent(s CaseSplit) bool {
	for _, t := range s.Tightenings {
		switch t.Kind {
		case tableau.LB:
			if ub, ok := d.ub[t.Variable]; ok && t.Value > ub+1e-9 {
				return false
			}
		case tableau.UB:
			if lb, ok := d.lb[t.Variable]; ok && t.Value < lb-1e-9 {
				return false
			}
		}
	}
	return true
}

func (d *Disjunction) GetValidCaseSplit() CaseSplit {
	live := d.liveSplits()
	if len(live) == 0 {
		return CaseSplit{}
	}
	return live[0]
}

func (d *Disjunction) GetCaseSplits() []CaseSplit { return d.splits }

// Satisfied reports whether the assignment satisfies at least one
// disjunct: every one of its tightenings and every one of its
// equations, each within 1e-8.
func (d *Disjunction) Satisfied(a Assignment) bool {
	for _, s := range d.splits {
		if splitSatisfied(s, a) {
			return true
		}
	}
	return false
}

func splitSatisfied(s CaseSplit, a Assignment) bool {
	for _, t := range s.Tightenings {
		v := a.Value(t.Variable)
		switch t.Kind {
		case tableau.LB:
			if v < t.Value-1e-8 {
				return false
			}
		case tableau.UB:
			if v > t.Value+1e-8 {
				return false
			}
		}
	}
	for _, eq := range s.Equations {
		if !equationHolds(eq, a) {
			return false
		}
	}
	return true
}

func equationHolds(eq *tableau.Equation, a Assignment) bool {
	var sum float64
	for _, add := range eq.Addends {
		sum += add.Coefficient * a.Value(add.Variable)
	}
	switch eq.Type {
	case tableau.LE:
		return sum <= eq.Scalar+1e-8
	case tableau.GE:
		return sum >= eq.Scalar-1e-8
	default:
		return floatNear(sum, eq.Scalar)
	}
}

// GetPossibleFixes has no generic local fix: a disjunction is fixed by
// choosing and applying one of its disjuncts as a case split, not by
// nudging a single variable.
func (d *Disjunction) GetPossibleFixes(a Assignment) []Fix { return nil }

// GetEntailedTightenings returns tightenings common to every live
// disjunct (sound regardless of which disjunct is eventually chosen).
func (d *Disjunction) GetEntailedTightenings() []tableau.Tightening {
	live := d.liveSplits()
	if len(live) == 0 {
		return nil
	}
	counts := make(map[tableau.Tightening]int)
	for _, s := range live {
		for _, t := range s.Tightenings {
			counts[t]++
		}
	}
	var out []tableau.Tightening
	for t, n := range counts {
		if n == len(live) {
			out = append(out, t)
		}
	}
	return out
}
