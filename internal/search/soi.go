package search

import (
	"math"
	"math/rand"

	"github.com/gitrdm/veriplex/internal/pwl"
	"github.com/gitrdm/veriplex/internal/tableau"
)

// assignmentView adapts the tableau's current assignment to
// pwl.Assignment, so SoI can call Satisfied/GetPossibleFixes without
// internal/pwl importing internal/tableau's Engine type.
type assignmentView struct{ t *tableau.Tableau }

func (a assignmentView) Value(variable int) float64 { return a.t.Assignment(variable) }

// SoI implements the Sum-of-Infeasibilities local search (spec.md
// §4.6): build a phase pattern, minimise its linear cost via simplex
// steps, then hill-climb the pattern itself by proposing one-constraint
// flips accepted with a Metropolis rule. Grounded on spec.md's five
// numbered steps; the per-phase linear cost reuses
// tableau.CostFunctionManager.ComputeCoreCostFunction's sign
// convention (push a value toward a bound with the sign of its
// violation) applied to a case split's own tightenings/equations
// instead of to the tableau's basic-variable bounds.
type SoI struct {
	engine      *tableau.Engine
	rng         *rand.Rand
	temperature float64

	pseudoImpact map[pwl.Constraint]float64
}

// NewSoI wires the local search to the simplex engine it drives.
// temperature controls the Metropolis acceptance rate for
// cost-increasing flips; spec.md leaves its value as a hyperparameter.
func NewSoI(engine *tableau.Engine, seed int64, temperature float64) *SoI {
	return &SoI{
		engine:       engine,
		rng:          rand.New(rand.NewSource(seed)),
		temperature:  temperature,
		pseudoImpact: make(map[pwl.Constraint]float64),
	}
}

// PseudoImpact implements PseudoImpactSource for the PseudoImpact
// branching heuristic.
func (s *SoI) PseudoImpact(c pwl.Constraint) float64 { return s.pseudoImpact[c] }

// Pattern maps each unfixed constraint to the index (into its own
// GetCaseSplits()) of the phase currently driving the SoI cost.
type Pattern map[pwl.Constraint]int

// InitialPattern builds a starting phase pattern by picking, for each
// unfixed constraint, whichever case split's tightenings are already
// closest to satisfied given the current assignment (spec.md §4.6 step
// 1: "pick a phase heuristically").
func (s *SoI) InitialPattern(constraints []pwl.Constraint) Pattern {
	view := assignmentView{t: s.engine.Tableau()}
	pattern := make(Pattern)
	for _, c := range constraints {
		if c.PhaseFixed() {
			continue
		}
		splits := c.GetCaseSplits()
		best := 0
		bestCost := math.Inf(1)
		for i, split := range splits {
			cost := splitResidual(split, view)
			if cost < bestCost {
				bestCost = cost
				best = i
			}
		}
		pattern[c] = best
	}
	return pattern
}

// splitResidual measures how far the current assignment is from
// satisfying a case split's tightenings, summing the amount each
// participating variable currently violates its proposed bound.
func splitResidual(split pwl.CaseSplit, view assignmentView) float64 {
	var residual float64
	for _, t := range split.Tightenings {
		v := view.Value(t.Variable)
		switch t.Kind {
		case tableau.LB:
			if v < t.Value {
				residual += t.Value - v
			}
		case tableau.UB:
			if v > t.Value {
				residual += v - t.Value
			}
		}
	}
	for _, eq := range split.Equations {
		residual += math.Abs(eq.Evaluate(rawAssignment(view)) - eq.Scalar)
	}
	return residual
}

// rawAssignment materialises the tableau's whole assignment as a dense
// slice, one entry per tableau column, since Equation.Evaluate indexes
// it directly by variable.
func rawAssignment(view assignmentView) []float64 {
	// internal/tableau.Tableau tracks every variable densely, so the
	// assignment slice can be read straight through Assignment(v) for
	// any v the caller names; Evaluate only reads indices named by the
	// equation's own addends, so a lazily-sized slice works as long as
	// it covers them. Equation.Evaluate indexes directly, so build
	// against the tableau's full variable count.
	_, n := view.t.Dimensions()
	a := make([]float64, n)
	for i := range a {
		a[i] = view.t.Assignment(i)
	}
	return a
}

// costAddends converts a pattern into the linear cost that, when
// minimised, drives every chosen phase's tightenings and equations
// toward being satisfied (spec.md §4.6 step 2).
func costAddends(pattern Pattern, constraints []pwl.Constraint) []tableau.Addend {
	var addends []tableau.Addend
	for _, c := range constraints {
		idx, ok := pattern[c]
		if !ok {
			continue
		}
		splits := c.GetCaseSplits()
		if idx >= len(splits) {
			continue
		}
		split := splits[idx]
		for _, t := range split.Tightenings {
			switch t.Kind {
			case tableau.LB:
				addends = append(addends, tableau.Addend{Coefficient: -1, Variable: t.Variable})
			case tableau.UB:
				addends = append(addends, tableau.Addend{Coefficient: 1, Variable: t.Variable})
			}
		}
		for _, eq := range split.Equations {
			addends = append(addends, eq.Addends...)
		}
	}
	return addends
}

// RoundResult reports what one SoI round accomplished.
type RoundResult struct {
	Satisfied bool
	Pattern   Pattern
	Objective float64
}

// RunRound executes spec.md §4.6's SoI steps 1-4 once: build (or reuse)
// a phase pattern, minimise its cost for up to maxPivots simplex steps,
// check whether every constraint is now genuinely satisfied, and if
// not, propose and Metropolis-test one flip before returning.
func (s *SoI) RunRound(constraints []pwl.Constraint, scanner tableau.RowScanner, maxPivots int, pattern Pattern) (RoundResult, error) {
	if pattern == nil {
		pattern = s.InitialPattern(constraints)
	}

	objective, err := s.minimise(pattern, constraints, scanner, maxPivots)
	if err != nil {
		return RoundResult{}, err
	}

	if s.allSatisfied(constraints) {
		return RoundResult{Satisfied: true, Pattern: pattern, Objective: objective}, nil
	}

	s.proposeFlip(pattern, constraints, scanner, maxPivots, objective)

	return RoundResult{Satisfied: false, Pattern: pattern, Objective: objective}, nil
}

func (s *SoI) minimise(pattern Pattern, constraints []pwl.Constraint, scanner tableau.RowScanner, maxPivots int) (float64, error) {
	addends := costAddends(pattern, constraints)
	s.engine.CostFunctionManager().ComputeGivenCostFunction(addends)
	s.engine.ToggleOptimization(true)

	for i := 0; i < maxPivots; i++ {
		outcome, _, err := s.engine.PerformSimplexStep(scanner)
		if err != nil {
			return 0, err
		}
		if outcome != tableau.Progressed {
			break
		}
	}
	return s.objectiveValue(addends), nil
}

func (s *SoI) objectiveValue(addends []tableau.Addend) float64 {
	var total float64
	for _, a := range addends {
		total += a.Coefficient * s.engine.Tableau().Assignment(a.Variable)
	}
	return total
}

func (s *SoI) allSatisfied(constraints []pwl.Constraint) bool {
	view := assignmentView{t: s.engine.Tableau()}
	for _, c := range constraints {
		if !c.Satisfied(view) {
			return false
		}
	}
	return true
}

// proposeFlip picks one unfixed constraint at random, flips it to the
// other phase in its pattern, re-minimises, and accepts or rejects the
// flip via a Metropolis rule, updating that constraint's pseudo-impact
// estimate either way (spec.md §4.6 step 4).
func (s *SoI) proposeFlip(pattern Pattern, constraints []pwl.Constraint, scanner tableau.RowScanner, maxPivots int, before float64) {
	candidates := make([]pwl.Constraint, 0, len(pattern))
	for c := range pattern {
		candidates = append(candidates, c)
	}
	if len(candidates) == 0 {
		return
	}
	chosen := candidates[s.rng.Intn(len(candidates))]
	splits := chosen.GetCaseSplits()
	if len(splits) < 2 {
		return
	}
	originalIdx := pattern[chosen]
	flipped := (originalIdx + 1) % len(splits)

	trial := make(Pattern, len(pattern))
	for k, v := range pattern {
		trial[k] = v
	}
	trial[chosen] = flipped

	after, err := s.minimise(trial, constraints, scanner, maxPivots)
	if err != nil {
		return
	}

	delta := after - before
	accept := delta <= 0
	if !accept && s.temperature > 0 {
		accept = s.rng.Float64() < math.Exp(-delta/s.temperature)
	}

	if accept {
		pattern[chosen] = flipped
		s.pseudoImpact[chosen] += before - after
	} else {
		// Revert the cost function to the pre-flip pattern so the
		// caller's subsequent reads of the tableau reflect the
		// accepted state, not the rejected trial.
		s.minimise(pattern, constraints, scanner, maxPivots)
		s.pseudoImpact[chosen] += before - after
	}
}
