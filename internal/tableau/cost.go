package tableau

// CostStatus tracks whether the current cost function is safe to trust,
// per spec.md §4.2 "Cost function management".
type CostStatus int

const (
	// CostJustComputed means every entry was recomputed this iteration.
	CostJustComputed CostStatus = iota
	// CostInvalid means the cost must be fully recomputed before use.
	CostInvalid
	// CostFresh means the cost is valid except for entries explicitly
	// marked inaccurate (e.g. after a bound change on one variable).
	CostFresh
)

// CostFunctionManager owns the simplex objective row: either the
// infeasibility-minimising core cost, or a user-supplied linear
// objective (spec.md §4.2).
type CostFunctionManager struct {
	status    CostStatus
	cost      []float64 // n entries, one per tableau column
	optimizing bool
	inaccurate map[int]bool
}

// NewCostFunctionManager allocates a zeroed cost row over n columns.
func NewCostFunctionManager(n int) *CostFunctionManager {
	return &CostFunctionManager{
		status:     CostInvalid,
		cost:       make([]float64, n),
		inaccurate: make(map[int]bool),
	}
}

// ToggleOptimization switches between feasibility-seeking (false) and
// user-objective minimisation (true) and invalidates the cost. An
// invalid cost is always recomputed as the core infeasibility cost, in
// either mode, unless a caller installs one with
// ComputeGivenCostFunction first.
func (c *CostFunctionManager) ToggleOptimization(optimize bool) {
	c.optimizing = optimize
	c.status = CostInvalid
}

// Optimizing reports the current mode.
func (c *CostFunctionManager) Optimizing() bool { return c.optimizing }

// Invalid reports whether the cost must be fully recomputed.
func (c *CostFunctionManager) Invalid() bool { return c.status == CostInvalid }

// JustComputed reports whether every cost entry is known-fresh.
func (c *CostFunctionManager) JustComputed() bool { return c.status == CostJustComputed }

// Invalidate marks the whole cost function stale, e.g. after a pivot
// whose stability could not be confirmed.
func (c *CostFunctionManager) Invalidate() { c.status = CostInvalid }

// MarkInaccurate flags a single column's reduced cost as no longer
// trustworthy without forcing a full recomputation (spec.md §4.2 step
// 1: "else refresh only inaccurate entries").
func (c *CostFunctionManager) MarkInaccurate(column int) {
	if c.status == CostJustComputed {
		c.status = CostFresh
	}
	c.inaccurate[column] = true
}

// ComputeCoreCostFunction computes the infeasibility-minimising cost:
// for every basic variable currently out of its bounds, the cost row
// gets that variable's tableau row weighted by -1 (below its lower
// bound) or +1 (above its upper bound), regardless of how far out of
// bounds it is (spec.md §4.2 step 1).
func (c *CostFunctionManager) ComputeCoreCostFunction(t *Tableau, epsilon float64) {
	for i := range c.cost {
		c.cost[i] = 0
	}
	for row, v := range t.basis {
		value := t.Assignment(v)
		lb := t.bounds.LowerBound(v)
		ub := t.bounds.UpperBound(v)

		var delta float64
		switch {
		case value < lb-epsilon:
			delta = -1 // pushing the cost down pulls v up toward lb
		case value > ub+epsilon:
			delta = 1
		default:
			continue
		}

		combination := t.PivotRow(row)
		for col, coeff := range combination {
			c.cost[col] += delta * coeff
		}
	}
	c.status = CostJustComputed
	c.inaccurate = make(map[int]bool)
}

// ComputeGivenCostFunction installs a user linear expression as the cost
// (used by the SoI local search and, when LP_SOLVER_TYPE selects the
// native engine, by optimisation queries).
func (c *CostFunctionManager) ComputeGivenCostFunction(addends []Addend) {
	for i := range c.cost {
		c.cost[i] = 0
	}
	for _, a := range addends {
		c.cost[a.Variable] += a.Coefficient
	}
	c.status = CostJustComputed
	c.inaccurate = make(map[int]bool)
}

// ReducedCost returns the current cost entry for a column.
func (c *CostFunctionManager) ReducedCost(column int) float64 { return c.cost[column] }
