package nlr

import (
	"fmt"
	"math"

	"github.com/gitrdm/veriplex/internal/config"
	"github.com/gitrdm/veriplex/internal/numeric"
	"github.com/gitrdm/veriplex/internal/tableau"
)

// SymbolicBound is one affine form over the input layer,
// `sum(coeff_j * x_j) + bias`, representing either a sound lower or
// upper bound for a neuron (spec.md §4.5: "two affine forms per
// neuron... over the input layer"). Grounded on
// DeepPolyElement.h/.cpp's per-neuron _symbolicLb/_symbolicUb arrays,
// expanded here into full affine-over-input vectors (rather than
// coefficients over the immediate predecessor plus a lazy
// backward-substitution pass) since verification-sized networks
// (spec.md §1) make the eager representation affordable and simpler
// to reason about.
type SymbolicBound struct {
	Coeffs []float64
	Bias   float64
}

func constantBound(n int, value float64) SymbolicBound {
	return SymbolicBound{Coeffs: make([]float64, n), Bias: value}
}

// Min evaluates the minimum value this affine form can take as x
// ranges over the box [inputLB, inputUB].
func (b SymbolicBound) Min(inputLB, inputUB []float64) float64 {
	v := b.Bias
	for j, c := range b.Coeffs {
		if c >= 0 {
			v += c * inputLB[j]
		} else {
			v += c * inputUB[j]
		}
	}
	return v
}

// Max evaluates the maximum value this affine form can take over the
// box.
func (b SymbolicBound) Max(inputLB, inputUB []float64) float64 {
	v := b.Bias
	for j, c := range b.Coeffs {
		if c >= 0 {
			v += c * inputUB[j]
		} else {
			v += c * inputLB[j]
		}
	}
	return v
}

// scale returns coeff*b + extraBias, the composition primitive every
// single-input activation envelope below is built from.
func scale(b SymbolicBound, coeff, extraBias float64) SymbolicBound {
	out := SymbolicBound{Coeffs: make([]float64, len(b.Coeffs)), Bias: coeff*b.Bias + extraBias}
	for j, c := range b.Coeffs {
		out.Coeffs[j] = coeff * c
	}
	return out
}

// add returns a+b (used to accumulate a WeightedSum neuron's
// contributions).
func add(a, b SymbolicBound) SymbolicBound {
	out := SymbolicBound{Coeffs: make([]float64, len(a.Coeffs)), Bias: a.Bias + b.Bias}
	for j := range out.Coeffs {
		out.Coeffs[j] = a.Coeffs[j] + b.Coeffs[j]
	}
	return out
}

// NeuronBounds is one neuron's current symbolic and concrete bounds.
type NeuronBounds struct {
	SymbolicLB, SymbolicUB SymbolicBound
	LB, UB                 float64
	Value                  float64
}

// Propagator runs DeepPoly forward propagation over a LayerGraph
// (spec.md §4.5).
type Propagator struct {
	graph          *LayerGraph
	inputLB, inputUB []float64
	bounds         [][]NeuronBounds // per layer, per neuron

	sigmoidTangent     config.DeepPolyTangentPoint
	exponentialTangent config.DeepPolyTangentPoint
}

// NewPropagator allocates a propagator for the given graph, input box,
// and the engine's configured tangent-point heuristic (spec.md §6).
func NewPropagator(graph *LayerGraph, inputLB, inputUB []float64, sigmoidTangent, exponentialTangent config.DeepPolyTangentPoint) *Propagator {
	return &Propagator{
		graph:              graph,
		inputLB:            inputLB,
		inputUB:            inputUB,
		bounds:             make([][]NeuronBounds, graph.NumLayers()),
		sigmoidTangent:     sigmoidTangent,
		exponentialTangent: exponentialTangent,
	}
}

// Bounds returns neuron i of layer l's current symbolic/concrete
// bounds; valid only after PropagateForward.
func (p *Propagator) Bounds(layer, neuron int) NeuronBounds { return p.bounds[layer][neuron] }

// PropagateForward runs one forward sweep, layer by layer (spec.md
// §4.5's "Propagation protocol"), assuming layers are stored in
// topological order (LayerGraph's construction invariant).
func (p *Propagator) PropagateForward() error {
	for _, layer := range p.graph.Layers {
		out := make([]NeuronBounds, layer.Size)
		switch layer.Kind {
		case Input:
			for i := 0; i < layer.Size; i++ {
				id := identity(p.graph.InputSize, i)
				out[i] = NeuronBounds{SymbolicLB: id, SymbolicUB: id, LB: p.inputLB[i], UB: p.inputUB[i]}
			}
		case WeightedSum:
			for i := 0; i < layer.Size; i++ {
				lb := constantBound(p.graph.InputSize, layer.Biases[i])
				ub := constantBound(p.graph.InputSize, layer.Biases[i])
				for _, predIdx := range layer.Predecessors() {
					weights := layer.Weights[predIdx]
					predSize := len(p.bounds[predIdx])
					for j := 0; j < predSize; j++ {
						w := weights[i*predSize+j]
						pred := p.bounds[predIdx][j]
						if w >= 0 {
							lb = add(lb, scale(pred.SymbolicLB, w, 0))
							ub = add(ub, scale(pred.SymbolicUB, w, 0))
						} else {
							lb = add(lb, scale(pred.SymbolicUB, w, 0))
							ub = add(ub, scale(pred.SymbolicLB, w, 0))
						}
					}
				}
				out[i] = NeuronBounds{SymbolicLB: lb, SymbolicUB: ub}
			}
		default:
			for i := 0; i < layer.Size; i++ {
				nb, err := p.propagateActivation(layer, i)
				if err != nil {
					return err
				}
				out[i] = nb
			}
		}
		for i := range out {
			if layer.Kind != Input {
				out[i].LB = out[i].SymbolicLB.Min(p.inputLB, p.inputUB)
				out[i].UB = out[i].SymbolicUB.Max(p.inputLB, p.inputUB)
			}
		}
		p.bounds[layer.Index] = out
	}
	return nil
}

func identity(n, index int) SymbolicBound {
	b := constantBound(n, 0)
	b.Coeffs[index] = 1
	return b
}

func (p *Propagator) source(layer *Layer, neuron, which int) NeuronBounds {
	ref := layer.ActivationSources[neuron][which]
	return p.bounds[ref.Layer][ref.Neuron]
}

// propagateActivation dispatches to the per-kind envelope formula
// (spec.md §4.5), each grounded on its DeepPoly*Element.cpp namesake.
func (p *Propagator) propagateActivation(layer *Layer, neuron int) (NeuronBounds, error) {
	switch layer.Kind {
	case ReLU:
		return p.reluBounds(p.source(layer, neuron, 0)), nil
	case AbsoluteValue:
		return p.absoluteValueBounds(p.source(layer, neuron, 0)), nil
	case Sign:
		return p.signBounds(p.source(layer, neuron, 0)), nil
	case LeakyReLU:
		return p.leakyReLUBounds(p.source(layer, neuron, 0), layer.LeakyAlpha), nil
	case Sigmoid:
		return p.sigmoidBounds(p.source(layer, neuron, 0)), nil
	case Exponential:
		return p.exponentialBounds(p.source(layer, neuron, 0)), nil
	case Round:
		return p.roundBounds(p.source(layer, neuron, 0)), nil
	case Quadratic:
		return p.quadraticBounds(p.source(layer, neuron, 0)), nil
	case Bilinear:
		srcs := layer.ActivationSources[neuron]
		return p.bilinearBounds(p.bounds[srcs[0].Layer][srcs[0].Neuron], p.bounds[srcs[1].Layer][srcs[1].Neuron]), nil
	case Max:
		return p.maxBounds(layer, neuron), nil
	case MaxPool:
		return p.maxBounds(layer, neuron), nil
	default:
		return NeuronBounds{}, fmt.Errorf("nlr: unsupported layer kind %s", layer.Kind)
	}
}

// reluBounds implements spec.md §4.5's ReLU envelope (grounded on
// DeepPolyReLUElement.cpp).
func (p *Propagator) reluBounds(src NeuronBounds) NeuronBounds {
	n := len(src.SymbolicLB.Coeffs)
	l, u := src.LB, src.UB
	switch {
	case l >= 0:
		return NeuronBounds{SymbolicLB: src.SymbolicLB, SymbolicUB: src.SymbolicUB}
	case u <= 0:
		z := constantBound(n, 0)
		return NeuronBounds{SymbolicLB: z, SymbolicUB: z}
	default:
		coeff := u / (u - l)
		ub := scale(src.SymbolicUB, coeff, -l*coeff)
		var lb SymbolicBound
		if u > -l {
			lb = src.SymbolicLB
		} else {
			lb = constantBound(n, 0)
		}
		return NeuronBounds{SymbolicLB: lb, SymbolicUB: ub}
	}
}

// absoluteValueBounds implements spec.md §4.5's AbsoluteValue entry
// (grounded on DeepPolyAbsoluteValueElement.cpp): phase-fixed cases
// copy the source's form (negated on the negative phase); the
// concrete-only case uses a constant envelope.
func (p *Propagator) absoluteValueBounds(src NeuronBounds) NeuronBounds {
	n := len(src.SymbolicLB.Coeffs)
	l, u := src.LB, src.UB
	switch {
	case l >= 0:
		return NeuronBounds{SymbolicLB: src.SymbolicLB, SymbolicUB: src.SymbolicUB}
	case u <= 0:
		return NeuronBounds{SymbolicLB: scale(src.SymbolicUB, -1, 0), SymbolicUB: scale(src.SymbolicLB, -1, 0)}
	default:
		bound := u
		if -l > bound {
			bound = -l
		}
		return NeuronBounds{SymbolicLB: constantBound(n, 0), SymbolicUB: constantBound(n, bound)}
	}
}

// signBounds implements spec.md §4.5's Sign envelope (grounded on
// DeepPolySignElement.cpp).
func (p *Propagator) signBounds(src NeuronBounds) NeuronBounds {
	n := len(src.SymbolicLB.Coeffs)
	l, u := src.LB, src.UB
	switch {
	case l >= 0:
		return NeuronBounds{SymbolicLB: constantBound(n, 1), SymbolicUB: constantBound(n, 1)}
	case u < 0:
		return NeuronBounds{SymbolicLB: constantBound(n, -1), SymbolicUB: constantBound(n, -1)}
	default:
		ub := scale(src.SymbolicUB, -2/l, 1)
		var lb SymbolicBound
		if u > -l {
			lb = scale(src.SymbolicLB, 2/u, -1)
		} else {
			lb = constantBound(n, -1)
		}
		return NeuronBounds{SymbolicLB: lb, SymbolicUB: ub}
	}
}

// leakyReLUBounds implements spec.md §4.5's LeakyReLU entry: the same
// case analysis as ReLU, generalised so the inactive phase has slope
// alpha instead of 0 (grounded on DeepPolyLeakyReLUElement.cpp).
func (p *Propagator) leakyReLUBounds(src NeuronBounds, alpha float64) NeuronBounds {
	l, u := src.LB, src.UB
	switch {
	case l >= 0:
		return NeuronBounds{SymbolicLB: src.SymbolicLB, SymbolicUB: src.SymbolicUB}
	case u <= 0:
		return NeuronBounds{SymbolicLB: scale(src.SymbolicLB, alpha, 0), SymbolicUB: scale(src.SymbolicUB, alpha, 0)}
	default:
		coeff := (u - alpha*l) / (u - l)
		ub := scale(src.SymbolicUB, coeff, -l*coeff+alpha*l)
		var lb SymbolicBound
		if u > -l {
			lb = src.SymbolicLB
		} else {
			lb = scale(src.SymbolicLB, alpha, 0)
		}
		return NeuronBounds{SymbolicLB: lb, SymbolicUB: ub}
	}
}

// exponentialBounds implements spec.md §4.5's convex-monotone chord
// (upper bound) / tangent (lower bound) envelope (grounded on
// DeepPolyExponentialElement.cpp).
func (p *Propagator) exponentialBounds(src NeuronBounds) NeuronBounds {
	l, u := src.LB, src.UB
	if numeric.AreEqual(l, u, 1e-12) {
		v := math.Exp(l)
		n := len(src.SymbolicLB.Coeffs)
		return NeuronBounds{SymbolicLB: constantBound(n, v), SymbolicUB: constantBound(n, v)}
	}
	el, eu := math.Exp(l), math.Exp(u)
	chordSlope := (eu - el) / (u - l)
	ub := scale(src.SymbolicUB, chordSlope, el-chordSlope*l)

	m := tangentPoint(l, u, p.exponentialTangent)
	em := math.Exp(m)
	lb := scale(src.SymbolicLB, em, em-em*m)
	return NeuronBounds{SymbolicLB: lb, SymbolicUB: ub}
}

// sigmoidBounds applies the same chord/tangent construction as
// exponentialBounds over sigmoid's value and derivative (grounded on
// DeepPolySigmoidElement.cpp); the convex/concave split that the
// original performs around x=0 is not modeled, an accepted
// simplification recorded in DESIGN.md.
func (p *Propagator) sigmoidBounds(src NeuronBounds) NeuronBounds {
	l, u := src.LB, src.UB
	if numeric.AreEqual(l, u, 1e-12) {
		v := sigmoid(l)
		n := len(src.SymbolicLB.Coeffs)
		return NeuronBounds{SymbolicLB: constantBound(n, v), SymbolicUB: constantBound(n, v)}
	}
	sl, su := sigmoid(l), sigmoid(u)
	chordSlope := (su - sl) / (u - l)
	ub := scale(src.SymbolicUB, chordSlope, sl-chordSlope*l)

	m := tangentPoint(l, u, p.sigmoidTangent)
	sm := sigmoid(m)
	dm := sm * (1 - sm)
	lb := scale(src.SymbolicLB, dm, sm-dm*m)
	return NeuronBounds{SymbolicLB: lb, SymbolicUB: ub}
}

func sigmoid(x float64) float64 { return 1 / (1 + math.Exp(-x)) }

func tangentPoint(l, u float64, t config.DeepPolyTangentPoint) float64 {
	mid := (l + u) / 2
	if t == config.TangentMidpoint {
		return mid
	}
	// ShiftedMidpoint nudges towards the endpoint with the larger
	// magnitude, tightening the tangent line on the steeper side.
	if math.Abs(u) > math.Abs(l) {
		return mid + (u-mid)*0.25
	}
	return mid - (mid-l)*0.25
}

// roundBounds: round is not affine; bound it by the source's concrete
// interval endpoints rounded to the nearest integer (a constant
// envelope, sound because rounding is monotone), grounded on
// DeepPolyRoundElement.cpp.
func (p *Propagator) roundBounds(src NeuronBounds) NeuronBounds {
	n := len(src.SymbolicLB.Coeffs)
	lo := math.Floor(src.LB + 0.5)
	hi := math.Floor(src.UB + 0.5)
	return NeuronBounds{SymbolicLB: constantBound(n, lo), SymbolicUB: constantBound(n, hi)}
}

// quadraticBounds implements f = b^2 via the McCormick envelope for a
// self-product (grounded on DeepPolyQuadraticElement.cpp): a concrete
// interval-only bound, tightest when the source interval doesn't
// straddle the extremum implied by its own sign.
func (p *Propagator) quadraticBounds(src NeuronBounds) NeuronBounds {
	n := len(src.SymbolicLB.Coeffs)
	l, u := src.LB, src.UB
	hi := math.Max(l*l, u*u)
	lo := 0.0
	if l > 0 || u < 0 {
		lo = math.Min(l*l, u*u)
	}
	return NeuronBounds{SymbolicLB: constantBound(n, lo), SymbolicUB: constantBound(n, hi)}
}

// bilinearBounds implements f = x*y via the four-corner McCormick
// envelope (grounded on DeepPolyBilinearElement.cpp and spec.md §4.5).
func (p *Propagator) bilinearBounds(x, y NeuronBounds) NeuronBounds {
	n := len(x.SymbolicLB.Coeffs)
	corners := []float64{x.LB * y.LB, x.LB * y.UB, x.UB * y.LB, x.UB * y.UB}
	lo, hi := corners[0], corners[0]
	for _, c := range corners[1:] {
		if c < lo {
			lo = c
		}
		if c > hi {
			hi = c
		}
	}
	return NeuronBounds{SymbolicLB: constantBound(n, lo), SymbolicUB: constantBound(n, hi)}
}

// maxBounds implements spec.md §4.5's MaxPool entry, reused for Max:
// if the argmax is determined by bounds, the neuron symbolically
// equals that source; otherwise the symbolic lower bound equals the
// source with the largest lower bound and the symbolic upper bound is
// the constant max of source upper bounds (grounded on
// DeepPolyMaxPoolElement.cpp).
func (p *Propagator) maxBounds(layer *Layer, neuron int) NeuronBounds {
	sources := layer.ActivationSources[neuron]
	n := len(p.bounds[sources[0].Layer][sources[0].Neuron].SymbolicLB.Coeffs)

	var argmax = -1
	for i, s := range sources {
		si := p.bounds[s.Layer][s.Neuron]
		dominates := true
		for j, t := range sources {
			if j == i {
				continue
			}
			tj := p.bounds[t.Layer][t.Neuron]
			if si.LB < tj.UB {
				dominates = false
				break
			}
		}
		if dominates {
			argmax = i
			break
		}
	}
	if argmax != -1 {
		src := p.bounds[sources[argmax].Layer][sources[argmax].Neuron]
		return NeuronBounds{SymbolicLB: src.SymbolicLB, SymbolicUB: src.SymbolicUB}
	}

	var maxUB = math.Inf(-1)
	bestLBIdx := 0
	var bestLB = math.Inf(-1)
	for i, s := range sources {
		si := p.bounds[s.Layer][s.Neuron]
		if si.UB > maxUB {
			maxUB = si.UB
		}
		if si.LB > bestLB {
			bestLB = si.LB
			bestLBIdx = i
		}
	}
	lbSrc := p.bounds[sources[bestLBIdx].Layer][sources[bestLBIdx].Neuron]
	return NeuronBounds{SymbolicLB: lbSrc.SymbolicLB, SymbolicUB: constantBound(n, maxUB)}
}

// TighteningsFor collects tightenings implied by every neuron's
// current concrete bounds whose backing tableau variable is known,
// for handoff to the bound manager (spec.md §4.5: "Extracted
// tightenings are fed to the bound manager").
func (p *Propagator) TighteningsFor(layer *Layer) []tableau.Tightening {
	var out []tableau.Tightening
	for i := 0; i < layer.Size; i++ {
		v := layer.TableauVariable[i]
		if v < 0 {
			continue
		}
		nb := p.bounds[layer.Index][i]
		out = append(out,
			tableau.Tightening{Variable: v, Kind: tableau.LB, Value: nb.LB},
			tableau.Tightening{Variable: v, Kind: tableau.UB, Value: nb.UB},
		)
	}
	return out
}
