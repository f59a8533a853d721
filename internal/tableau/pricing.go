package tableau

// PricingRule selects and ranks candidate entering variables. The
// revised-simplex engine is generic over this interface so alternative
// pricing strategies could be swapped in without touching the pivot
// loop, mirroring the teacher's pluggable LabelingStrategy.
type PricingRule interface {
	// EntryCandidates returns, in preference order, the non-basic
	// columns whose reduced cost makes them eligible to enter.
	EntryCandidates(t *Tableau, cost *CostFunctionManager, epsilon float64) []int
	// UpdateWeights lets the rule refresh its internal edge-norm
	// estimates after a pivot, given the exact pivot row and element.
	UpdateWeights(pivotRow []float64, pivotElement float64, entering int)
}

// SteepestEdgePricing implements the projected-steepest-edge rule
// (spec.md GLOSSARY): each candidate is weighted by an estimate of the
// norm of its edge projected onto the feasible space, gamma_j. Weights
// start at 1 (the unit-column estimate) and are updated incrementally
// after each pivot using the standard steepest-edge recurrence.
type SteepestEdgePricing struct {
	gamma []float64 // n entries
}

// NewSteepestEdgePricing allocates unit initial weights for n columns.
func NewSteepestEdgePricing(n int) *SteepestEdgePricing {
	gamma := make([]float64, n)
	for i := range gamma {
		gamma[i] = 1
	}
	return &SteepestEdgePricing{gamma: gamma}
}

// EntryCandidates ranks non-basic columns with a nonzero, sign-eligible
// reduced cost by descending |reduced cost| / sqrt(gamma), the
// projected-steepest-edge score.
func (p *SteepestEdgePricing) EntryCandidates(t *Tableau, cost *CostFunctionManager, epsilon float64) []int {
	type scored struct {
		col   int
		score float64
	}
	var candidates []scored
	for col := 0; col < t.n; col++ {
		if t.inBasis[col] {
			continue
		}
		rc := cost.ReducedCost(col)
		if rc > -epsilon && rc < epsilon {
			continue
		}
		// Only columns that can actually improve (decrease) the cost
		// given their current bound-side are eligible: a variable sitting
		// at its lower bound may only increase (rc < 0 improves), one at
		// its upper bound may only decrease (rc > 0 improves).
		improving := rc < -epsilon
		atUpper := t.Assignment(col) >= t.bounds.UpperBound(col)-epsilon && t.bounds.UpperBound(col) < t.bounds.LowerBound(col)+1e18
		if atUpper {
			improving = rc > epsilon
		}
		if !improving {
			continue
		}
		score := rc * rc / p.gamma[col]
		candidates = append(candidates, scored{col: col, score: score})
	}

	// Selection sort descending by score; candidate lists in verification
	// LPs are small enough that O(k^2) is fine and keeps this readable.
	result := make([]int, len(candidates))
	for i := range result {
		best := i
		for j := i + 1; j < len(candidates); j++ {
			if candidates[j].score > candidates[best].score {
				best = j
			}
		}
		candidates[i], candidates[best] = candidates[best], candidates[i]
		result[i] = candidates[i].col
	}
	return result
}

// UpdateWeights applies the steepest-edge recurrence given the exact
// pivot row and pivot element, called by the simplex engine right before
// PerformPivot.
func (p *SteepestEdgePricing) UpdateWeights(pivotRow []float64, pivotElement float64, entering int) {
	if pivotElement == 0 {
		return
	}
	enteringGamma := p.gamma[entering]
	for col, coeff := range pivotRow {
		if col == entering || coeff == 0 {
			continue
		}
		ratio := coeff / pivotElement
		candidate := p.gamma[col] - 2*ratio*coeff + ratio*ratio*enteringGamma
		if candidate > p.gamma[col] {
			p.gamma[col] = candidate
		} else if candidate > 1e-10 {
			p.gamma[col] = candidate
		}
	}
	p.gamma[entering] = enteringGamma / (pivotElement * pivotElement)
	if p.gamma[entering] < 1e-10 {
		p.gamma[entering] = 1
	}
}
