package tableau

import "github.com/gitrdm/veriplex/internal/numeric"

// Engine is the revised-simplex engine specialised for verification
// queries: a sparse LU-factorised basis, pricing-rule-driven entering
// variable selection, a ratio test with fake-pivot support, and
// cost-function management for both feasibility-seeking and
// user-objective optimisation (spec.md §4.2).
type Engine struct {
	t          *Tableau
	cost       *CostFunctionManager
	pricing    *SteepestEdgePricing
	eliminator *MarkowitzEliminator

	epsilon            float64
	pivotThreshold     float64 // ACCEPTABLE_SIMPLEX_PIVOT_THRESHOLD
	stabilityThreshold float64 // below this, prefer a fresh basis before accepting

	maxTries int

	unstablePivots int
}

// NewEngine wires a Tableau, its cost-function manager, and a
// steepest-edge pricing rule into one revised-simplex engine.
func NewEngine(t *Tableau, eliminator *MarkowitzEliminator, epsilon, pivotThreshold float64) *Engine {
	_, n := t.Dimensions()
	return &Engine{
		t:                  t,
		cost:               NewCostFunctionManager(n),
		pricing:            NewSteepestEdgePricing(n),
		eliminator:         eliminator,
		epsilon:            epsilon,
		pivotThreshold:     pivotThreshold,
		stabilityThreshold: pivotThreshold * 10,
		maxTries:           n + 1,
	}
}

// Tableau exposes the underlying tableau for callers (search core, bound
// tightener) that need direct read access.
func (e *Engine) Tableau() *Tableau { return e.t }

// CostFunctionManager exposes the cost-function manager, e.g. for the
// SoI local search to install a custom objective.
func (e *Engine) CostFunctionManager() *CostFunctionManager { return e.cost }

// ToggleOptimization switches between feasibility-seeking and
// user-objective minimisation.
func (e *Engine) ToggleOptimization(optimize bool) { e.cost.ToggleOptimization(optimize) }

// UnstablePivots reports how many pivots were accepted below the
// stability threshold, a degradation signal consumed by precision
// restoration.
func (e *Engine) UnstablePivots() int { return e.unstablePivots }

// RowScanner is injected so a pivot's row can be scanned for
// implied tightenings (spec.md §4.2 step 5); the concrete
// implementation lives in internal/boundmgr and is wired by the engine
// façade to avoid a tableau -> boundmgr import.
type RowScanner interface {
	ScanRow(row []float64, rowRHS float64, basicVariable int) []Tightening
}

// PerformSimplexStep attempts one pivot towards reducing infeasibility
// (feasibility-seeking mode) or optimising the current cost
// (optimisation mode), implementing spec.md §4.2's numbered protocol.
func (e *Engine) PerformSimplexStep(scanner RowScanner) (StepOutcome, []Tightening, error) {
	// Step 1: ensure the cost function is usable.
	if e.cost.Invalid() {
		e.cost.ComputeCoreCostFunction(e.t, e.epsilon)
	}

	// Step 2: collect entry candidates from the pricing rule.
	candidates := e.pricing.EntryCandidates(e.t, e.cost, e.epsilon)
	excluded := make(map[int]bool)

	var bestCandidate = -1
	var bestPivotMagnitude float64 = -1
	var bestBasisRow int
	var bestChangeColumn []float64

	tries := 0
	for tries < e.maxTries {
		tries++

		var entering = -1
		for _, c := range candidates {
			if !excluded[c] {
				entering = c
				break
			}
		}
		if entering == -1 {
			break
		}

		changeColumn := e.t.ChangeColumn(entering)
		basisRow, pivotElement, fake := e.pickLeavingVariable(entering, changeColumn)

		if fake {
			e.applyFakePivot(entering)
			return Progressed, nil, nil
		}

		magnitude := numeric.Max(pivotElement, -pivotElement)
		if magnitude >= e.pivotThreshold {
			tightenings, err := e.acceptPivot(entering, basisRow, changeColumn, pivotElement, scanner)
			if err != nil {
				return NeedsRestoration, nil, err
			}
			return Progressed, tightenings, nil
		}

		if magnitude > bestPivotMagnitude {
			bestPivotMagnitude = magnitude
			bestCandidate = entering
			bestBasisRow = basisRow
			bestChangeColumn = changeColumn
		}
		excluded[entering] = true
	}

	// Step 4: no candidate had an acceptable pivot.
	if e.t.Status() != JustComputed {
		if err := e.t.ComputeAssignment(); err != nil {
			return NeedsRestoration, nil, err
		}
		return e.PerformSimplexStep(scanner)
	}
	if !e.cost.JustComputed() {
		e.cost.Invalidate()
		return e.PerformSimplexStep(scanner)
	}

	if bestCandidate != -1 && bestPivotMagnitude > 0 {
		// Step 5: below stability threshold but the basis is fresh —
		// accept the best-so-far candidate rather than stall.
		if bestPivotMagnitude < e.stabilityThreshold {
			e.unstablePivots++
		}
		tightenings, err := e.acceptPivot(bestCandidate, bestBasisRow, bestChangeColumn, bestChangeColumn[bestBasisRow], scanner)
		if err != nil {
			return NeedsRestoration, nil, err
		}
		return Progressed, tightenings, nil
	}

	if e.cost.Optimizing() {
		return OptimalReached, nil, nil
	}
	return InfeasibleDetected, nil, nil
}

func (e *Engine) acceptPivot(entering, basisRow int, changeColumn []float64, pivotElement float64, scanner RowScanner) ([]Tightening, error) {
	row := e.t.PivotRow(basisRow)
	var tightenings []Tightening
	if scanner != nil {
		rowRHS := e.t.RowRHS(basisRow)
		tightenings = scanner.ScanRow(row, rowRHS, e.t.basis[basisRow])
	}

	e.pricing.UpdateWeights(row, pivotElement, entering)

	if err := e.t.PerformPivot(basisRow, entering, changeColumn, e.eliminator); err != nil {
		return nil, err
	}
	if err := e.t.ComputeAssignment(); err != nil {
		return nil, err
	}
	e.cost.Invalidate()
	return tightenings, nil
}

// pickLeavingVariable implements the ratio test (spec.md §4.2 step
// 3c): scan the change column for the tightest ratio that keeps every
// basic variable within its bounds, honouring the direction the
// entering variable is moving. A "fake pivot" — the entering variable
// flips between its own bounds with nothing leaving — is always
// accepted when no basic variable would be violated first.
func (e *Engine) pickLeavingVariable(entering int, changeColumn []float64) (basisRow int, pivotElement float64, fake bool) {
	increasing := e.cost.ReducedCost(entering) < 0
	lb := e.t.bounds.LowerBound(entering)
	ub := e.t.bounds.UpperBound(entering)
	selfRange := numeric.Infinity
	if numeric.IsFinite(lb) && numeric.IsFinite(ub) {
		selfRange = ub - lb
	}

	bestRatio := selfRange
	bestRow := -1
	var bestPivot float64

	for row, v := range e.t.basis {
		coeff := changeColumn[row]
		if numeric.IsZero(coeff, e.epsilon) {
			continue
		}
		value := e.t.Assignment(v)
		vlb := e.t.bounds.LowerBound(v)
		vub := e.t.bounds.UpperBound(v)

		// Direction the basic variable moves as the entering variable
		// increases by one unit is -coeff (A_B^-1 A_entering convention).
		var limit float64
		var reachable bool
		if increasing {
			if coeff > 0 {
				limit = (value - vlb) / coeff
				reachable = numeric.IsFinite(vlb)
			} else {
				limit = (value - vub) / coeff
				reachable = numeric.IsFinite(vub)
			}
		} else {
			if coeff > 0 {
				limit = (value - vub) / coeff
				reachable = numeric.IsFinite(vub)
			} else {
				limit = (value - vlb) / coeff
				reachable = numeric.IsFinite(vlb)
			}
		}
		if !reachable {
			continue
		}
		if limit < 0 {
			limit = 0
		}
		if limit < bestRatio {
			bestRatio = limit
			bestRow = row
			bestPivot = coeff
		}
	}

	if bestRow == -1 {
		return 0, 0, true
	}
	return bestRow, bestPivot, false
}

// applyFakePivot flips the entering non-basic variable from one bound
// to the other without any basic variable leaving.
func (e *Engine) applyFakePivot(entering int) {
	lb := e.t.bounds.LowerBound(entering)
	ub := e.t.bounds.UpperBound(entering)
	current := e.t.Assignment(entering)
	var target float64
	if current <= lb+e.epsilon {
		target = ub
	} else {
		target = lb
	}
	e.t.SetNonBasicAssignment(entering, target)
	e.cost.Invalidate()
}
