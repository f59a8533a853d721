package pwl

import "github.com/gitrdm/veriplex/internal/tableau"

// Bilinear relates x, y, and z: z = x*y (spec.md §4.4). The search
// core does not natively branch this constraint — McCormick-style
// symbolic relaxation (§4.5, internal/nlr) and, when finer precision
// is needed, an external input-bisection Disjunction carry the
// branching load. Here the capability set only reports concrete-bound
// interval consequences (a McCormick envelope evaluated at the
// current box) and local fixes.
type Bilinear struct {
	boundsTracker
	X, Y, Z int
}

func NewBilinear(x, y, z int) *Bilinear {
	return &Bilinear{boundsTracker: newBoundsTracker(x, y, z), X: x, Y: y, Z: z}
}

func (c *Bilinear) ParticipatingVariables() []int { return []int{c.X, c.Y, c.Z} }

// PhaseFixed is always false: no finite phase set exists for a
// genuinely bilinear term, only a relaxation.
func (c *Bilinear) PhaseFixed() bool           { return false }
func (c *Bilinear) GetValidCaseSplit() CaseSplit { return CaseSplit{} }
func (c *Bilinear) GetCaseSplits() []CaseSplit   { return nil }

func (c *Bilinear) Satisfied(a Assignment) bool {
	return floatNear(a.Value(c.Z), a.Value(c.X)*a.Value(c.Y))
}

func (c *Bilinear) GetPossibleFixes(a Assignment) []Fix {
	return []Fix{{Variable: c.Z, Value: a.Value(c.X) * a.Value(c.Y)}}
}

// GetEntailedTightenings implements the standard McCormick envelope
// bounds on z given box bounds on x and y:
//
//	z >= xl*y + x*yl - xl*yl   (underestimator 1)
//	z >= xu*y + x*yu - xu*yu   (underestimator 2)
//	z <= xu*y + x*yl - xu*yl   (overestimator 1)
//	z <= x*yu + xl*y - xl*yu   (overestimator 2)
//
// evaluated here at the box corners to produce concrete interval
// tightenings on z (the symbolic, assignment-dependent form lives in
// internal/nlr).
func (c *Bilinear) GetEntailedTightenings() []tableau.Tightening {
	xl, xu := c.lb[c.X], c.ub[c.X]
	yl, yu := c.lb[c.Y], c.ub[c.Y]

	corners := []float64{xl * yl, xl * yu, xu * yl, xu * yu}
	lo, hi := corners[0], corners[0]
	for _, v := range corners[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return []tableau.Tightening{
		{Variable: c.Z, Kind: tableau.LB, Value: lo},
		{Variable: c.Z, Kind: tableau.UB, Value: hi},
	}
}
