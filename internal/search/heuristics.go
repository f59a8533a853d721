package search

import (
	"github.com/gitrdm/veriplex/internal/boundmgr"
	"github.com/gitrdm/veriplex/internal/pwl"
	"github.com/gitrdm/veriplex/internal/tableau"
)

// PseudoImpactSource gives the PseudoImpact heuristic read access to the
// running impact estimate the SoI local search maintains per
// constraint (spec.md §4.6: "pick the constraint with the highest
// running estimate of cost change from SoI proposals").
type PseudoImpactSource interface {
	PseudoImpact(c pwl.Constraint) float64
}

// DivideContext collects everything a DivideStrategy heuristic may
// need. Constraints is expected in topological (construction) order,
// matching the layer graph's own ordering, so EarliestReLU can simply
// take the first unfixed entry.
type DivideContext struct {
	Constraints  []pwl.Constraint
	Bounds       *boundmgr.BoundManager
	PseudoImpact PseudoImpactSource

	// InputVariables is only used by LargestInterval, which
	// branches on an input variable directly rather than on a
	// piecewise-linear constraint.
	InputVariables []int
}

// Heuristic selects the next branching decision (spec.md §4.6). A
// heuristic that finds nothing to branch on returns ok=false; the
// engine then tries to fix a violated constraint directly instead.
type Heuristic interface {
	Name() string
	SelectSplit(ctx *DivideContext) (alternatives []pwl.CaseSplit, ok bool)
}

// PolarityHeuristic picks the unfixed ReLU whose pre-activation
// interval is most symmetric about 0 (spec.md §4.6: "polarity closest
// to 0"). Only *pwl.ReLU participates; other variants are skipped, in
// keeping with the original's ReLU-specific scoring.
type PolarityHeuristic struct{}

func (PolarityHeuristic) Name() string { return "Polarity" }

func (PolarityHeuristic) SelectSplit(ctx *DivideContext) ([]pwl.CaseSplit, bool) {
	var best *pwl.ReLU
	bestPolarity := 2.0 // polarity ranges over [-1, 1]; anything beats this
	for _, c := range ctx.Constraints {
		relu, ok := c.(*pwl.ReLU)
		if !ok || relu.PhaseFixed() {
			continue
		}
		lb := ctx.Bounds.LowerBound(relu.B)
		ub := ctx.Bounds.UpperBound(relu.B)
		width := ub - lb
		if width <= 0 {
			continue
		}
		polarity := (lb + ub) / width // 0 when the interval is centred on 0
		if polarity < 0 {
			polarity = -polarity
		}
		if polarity < bestPolarity {
			bestPolarity = polarity
			best = relu
		}
	}
	if best == nil {
		return nil, false
	}
	return best.GetCaseSplits(), true
}

// BaBSRHeuristic approximates "a bound-propagation-based estimate of
// search-tree reduction" (spec.md §4.6) with a cheap proxy: the
// product of the pre-activation interval's width and how centred it is
// on 0 (the same ingredients Polarity uses, combined instead of
// selected alone). This deliberately does not re-run DeepPoly
// forward/backward per candidate the way the original's BaBSR score
// does — that full estimate belongs to internal/nlr and is out of this
// heuristic's scope; this proxy is a documented simplification, not a
// spec requirement.
type BaBSRHeuristic struct{}

func (BaBSRHeuristic) Name() string { return "BaBSR" }

func (BaBSRHeuristic) SelectSplit(ctx *DivideContext) ([]pwl.CaseSplit, bool) {
	var best pwl.Constraint
	bestScore := -1.0
	for _, c := range ctx.Constraints {
		relu, ok := c.(*pwl.ReLU)
		if !ok || relu.PhaseFixed() {
			continue
		}
		lb := ctx.Bounds.LowerBound(relu.B)
		ub := ctx.Bounds.UpperBound(relu.B)
		width := ub - lb
		if width <= 0 {
			continue
		}
		centering := 1 - absFloat((lb+ub)/width)
		score := width * centering
		if score > bestScore {
			bestScore = score
			best = relu
		}
	}
	if best == nil {
		return nil, false
	}
	return best.GetCaseSplits(), true
}

// EarliestReLUHeuristic picks the first unfixed constraint in
// construction (topological) order (spec.md §4.6).
type EarliestReLUHeuristic struct{}

func (EarliestReLUHeuristic) Name() string { return "EarliestReLU" }

func (EarliestReLUHeuristic) SelectSplit(ctx *DivideContext) ([]pwl.CaseSplit, bool) {
	for _, c := range ctx.Constraints {
		if !c.PhaseFixed() {
			return c.GetCaseSplits(), true
		}
	}
	return nil, false
}

// LargestIntervalHeuristic picks the input variable with the widest
// current interval and synthesises a 2-element disjunction splitting
// it at the midpoint (spec.md §4.6).
type LargestIntervalHeuristic struct{}

func (LargestIntervalHeuristic) Name() string { return "LargestInterval" }

func (LargestIntervalHeuristic) SelectSplit(ctx *DivideContext) ([]pwl.CaseSplit, bool) {
	bestVar := -1
	bestWidth := 0.0
	for _, v := range ctx.InputVariables {
		lb := ctx.Bounds.LowerBound(v)
		ub := ctx.Bounds.UpperBound(v)
		width := ub - lb
		if width > bestWidth {
			bestWidth = width
			bestVar = v
		}
	}
	if bestVar == -1 {
		return nil, false
	}
	lb := ctx.Bounds.LowerBound(bestVar)
	ub := ctx.Bounds.UpperBound(bestVar)
	mid := lb + (ub-lb)/2
	return []pwl.CaseSplit{
		{Tightenings: []tableau.Tightening{{Variable: bestVar, Kind: tableau.UB, Value: mid}}},
		{Tightenings: []tableau.Tightening{{Variable: bestVar, Kind: tableau.LB, Value: mid}}},
	}, true
}

// PseudoImpactHeuristic picks the unfixed constraint with the highest
// running pseudo-impact estimate (spec.md §4.6: the default for deeper
// stacks). Falls back to EarliestReLU order among ties and among
// constraints with no recorded impact yet (score 0).
type PseudoImpactHeuristic struct{}

func (PseudoImpactHeuristic) Name() string { return "PseudoImpact" }

func (PseudoImpactHeuristic) SelectSplit(ctx *DivideContext) ([]pwl.CaseSplit, bool) {
	var best pwl.Constraint
	bestScore := -1.0
	for _, c := range ctx.Constraints {
		if c.PhaseFixed() {
			continue
		}
		score := 0.0
		if ctx.PseudoImpact != nil {
			score = ctx.PseudoImpact.PseudoImpact(c)
		}
		if best == nil || score > bestScore {
			bestScore = score
			best = c
		}
	}
	if best == nil {
		return nil, false
	}
	return best.GetCaseSplits(), true
}

// AutoHeuristic implements DIVIDE_STRATEGY=Auto: EarliestReLU while the
// split stack is shallow (branching order barely matters yet), then
// PseudoImpact once it has accumulated enough history to be useful
// (spec.md §4.6: "PseudoImpact (default for deeper stacks)").
type AutoHeuristic struct {
	ShallowDepthThreshold int
	depth                 func() int
}

// NewAutoHeuristic wires the heuristic to a depth accessor (typically
// (*SplitStack).Depth).
func NewAutoHeuristic(shallowDepthThreshold int, depth func() int) *AutoHeuristic {
	return &AutoHeuristic{ShallowDepthThreshold: shallowDepthThreshold, depth: depth}
}

func (h *AutoHeuristic) Name() string { return "Auto" }

func (h *AutoHeuristic) SelectSplit(ctx *DivideContext) ([]pwl.CaseSplit, bool) {
	if h.depth() < h.ShallowDepthThreshold {
		return EarliestReLUHeuristic{}.SelectSplit(ctx)
	}
	return PseudoImpactHeuristic{}.SelectSplit(ctx)
}

func absFloat(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
