package pwl

import "github.com/gitrdm/veriplex/internal/tableau"

// Max relates f to the elementwise maximum of Inputs: f = max(inputs)
// (spec.md §4.4).
type Max struct {
	boundsTracker
	F      int
	Inputs []int
}

func NewMax(f int, inputs []int) *Max {
	vars := append([]int{f}, inputs...)
	return &Max{boundsTracker: newBoundsTracker(vars...), F: f, Inputs: append([]int(nil), inputs...)}
}

func (c *Max) ParticipatingVariables() []int {
	return append([]int{c.F}, c.Inputs...)
}

// argmax returns the input whose lower bound dominates every other
// input's upper bound, or -1 if no such input exists.
func (c *Max) argmax() int {
	for _, i := range c.Inputs {
		dominates := true
		for _, j := range c.Inputs {
			if j == i {
				continue
			}
			if c.lb[i] < c.ub[j] {
				dominates = false
				break
			}
		}
		if dominates {
			return i
		}
	}
	return -1
}

func (c *Max) PhaseFixed() bool { return c.argmax() != -1 }

func (c *Max) splitFor(i int) CaseSplit {
	eq := tableau.NewEquation(tableau.EQ)
	eq.AddAddend(1, c.F)
	eq.AddAddend(-1, i)
	var equations []*tableau.Equation
	equations = append(equations, eq)
	for _, j := range c.Inputs {
		if j == i {
			continue
		}
		ge := tableau.NewEquation(tableau.GE)
		ge.AddAddend(1, i)
		ge.AddAddend(-1, j)
		equations = append(equations, ge)
	}
	return CaseSplit{Equations: equations}
}

func (c *Max) GetValidCaseSplit() CaseSplit {
	i := c.argmax()
	if i == -1 {
		return CaseSplit{}
	}
	return c.splitFor(i)
}

func (c *Max) GetCaseSplits() []CaseSplit {
	splits := make([]CaseSplit, len(c.Inputs))
	for idx, i := range c.Inputs {
		splits[idx] = c.splitFor(i)
	}
	return splits
}

func (c *Max) Satisfied(a Assignment) bool {
	best := a.Value(c.Inputs[0])
	for _, i := range c.Inputs[1:] {
		if v := a.Value(i); v > best {
			best = v
		}
	}
	return floatNear(a.Value(c.F), best)
}

func (c *Max) GetPossibleFixes(a Assignment) []Fix {
	best := a.Value(c.Inputs[0])
	for _, i := range c.Inputs[1:] {
		if v := a.Value(i); v > best {
			best = v
		}
	}
	return []Fix{{Variable: c.F, Value: best}}
}

func (c *Max) GetEntailedTightenings() []tableau.Tightening {
	var maxUB float64 = -1e300
	var maxLB float64 = -1e300
	for _, i := range c.Inputs {
		if c.ub[i] > maxUB {
			maxUB = c.ub[i]
		}
		if c.lb[i] > maxLB {
			maxLB = c.lb[i]
		}
	}
	return []tableau.Tightening{
		{Variable: c.F, Kind: tableau.LB, Value: maxLB},
		{Variable: c.F, Kind: tableau.UB, Value: maxUB},
	}
}
