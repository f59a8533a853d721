package nlr

import (
	"math"
	"math/rand"
)

// Simulator samples concrete inputs from the input box, evaluates the
// network exactly, and tracks the observed per-neuron min/max as an
// additional (unsound on its own, but cheap and often tight) bound
// hint source (spec.md §4.5: "Input-space simulations: sample inputs
// uniformly from the input box, evaluate the whole network
// concretely, and use the observed min/max per neuron as additional
// bounds hints"). Grounded on
// original_source/src/nlr/CoordinateDescent.h's box-sampling loop,
// deliberately without its gradient-descent/Adam optimizer machinery
// — this system does not train or locally optimize, only samples, per
// spec.md's no-gradient-learning non-goal.
type Simulator struct {
	graph *LayerGraph
	rng   *rand.Rand

	observedLB, observedUB [][]float64
}

// NewSimulator allocates a simulator seeded deterministically (spec.md
// §6 Seed) so repeated runs of the same query reproduce the same
// samples.
func NewSimulator(graph *LayerGraph, seed int64) *Simulator {
	s := &Simulator{
		graph: graph,
		rng:   rand.New(rand.NewSource(seed)),
	}
	s.observedLB = make([][]float64, graph.NumLayers())
	s.observedUB = make([][]float64, graph.NumLayers())
	for i, l := range graph.Layers {
		s.observedLB[i] = make([]float64, l.Size)
		s.observedUB[i] = make([]float64, l.Size)
		for j := range s.observedLB[i] {
			s.observedLB[i][j] = math.Inf(1)
			s.observedUB[i][j] = math.Inf(-1)
		}
	}
	return s
}

// Sample draws `count` inputs uniformly from [inputLB, inputUB],
// evaluates the network concretely for each, and folds the results
// into the running observed min/max.
func (s *Simulator) Sample(inputLB, inputUB []float64, count int) {
	for n := 0; n < count; n++ {
		x := make([]float64, len(inputLB))
		for i := range x {
			x[i] = inputLB[i] + s.rng.Float64()*(inputUB[i]-inputLB[i])
		}
		s.evaluate(x)
	}
}

// evaluate runs one concrete forward pass, folding every neuron's
// value into the observed min/max.
func (s *Simulator) evaluate(x []float64) {
	values := make([][]float64, s.graph.NumLayers())
	for _, layer := range s.graph.Layers {
		out := make([]float64, layer.Size)
		switch layer.Kind {
		case Input:
			copy(out, x)
		case WeightedSum:
			for i := 0; i < layer.Size; i++ {
				sum := layer.Biases[i]
				for _, predIdx := range layer.Predecessors() {
					weights := layer.Weights[predIdx]
					predValues := values[predIdx]
					for j, v := range predValues {
						sum += weights[i*len(predValues)+j] * v
					}
				}
				out[i] = sum
			}
		case Max, MaxPool:
			for i := 0; i < layer.Size; i++ {
				best := math.Inf(-1)
				for _, ref := range layer.ActivationSources[i] {
					if v := values[ref.Layer][ref.Neuron]; v > best {
						best = v
					}
				}
				out[i] = best
			}
		case Bilinear:
			for i := 0; i < layer.Size; i++ {
				srcs := layer.ActivationSources[i]
				out[i] = values[srcs[0].Layer][srcs[0].Neuron] * values[srcs[1].Layer][srcs[1].Neuron]
			}
		default:
			for i := 0; i < layer.Size; i++ {
				ref := layer.ActivationSources[i][0]
				b := values[ref.Layer][ref.Neuron]
				out[i] = applyElementwise(layer.Kind, b, layer.LeakyAlpha)
			}
		}
		values[layer.Index] = out
		for i, v := range out {
			if v < s.observedLB[layer.Index][i] {
				s.observedLB[layer.Index][i] = v
			}
			if v > s.observedUB[layer.Index][i] {
				s.observedUB[layer.Index][i] = v
			}
		}
	}
}

func applyElementwise(kind Kind, b, alpha float64) float64 {
	switch kind {
	case ReLU:
		if b < 0 {
			return 0
		}
		return b
	case AbsoluteValue:
		return math.Abs(b)
	case Sign:
		if b >= 0 {
			return 1
		}
		return -1
	case LeakyReLU:
		if b < 0 {
			return alpha * b
		}
		return b
	case Sigmoid:
		return sigmoid(b)
	case Exponential:
		return math.Exp(b)
	case Round:
		return math.Floor(b + 0.5)
	case Quadratic:
		return b * b
	default:
		return b
	}
}

// ObservedBounds returns the tightest concrete interval observed for
// neuron i of layer l so far.
func (s *Simulator) ObservedBounds(layer, neuron int) (lb, ub float64) {
	return s.observedLB[layer][neuron], s.observedUB[layer][neuron]
}
