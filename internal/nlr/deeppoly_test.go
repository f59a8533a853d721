package nlr

import (
	"testing"

	"github.com/gitrdm/veriplex/internal/config"
	"github.com/stretchr/testify/require"
)

// buildTwoReLUNetwork builds input(2) -> weightedSum(1) -> relu(1): a
// single ReLU neuron applied to the difference of the two inputs.
func buildTwoReLUNetwork() *LayerGraph {
	g := NewLayerGraph(2)
	g.AddLayer(Input, 2)

	ws := g.AddLayer(WeightedSum, 1)
	ws.SetWeights(0, []float64{1, -1}, []float64{0})

	relu := g.AddLayer(ReLU, 1)
	relu.SetActivationSource(0, NeuronRef{Layer: 1, Neuron: 0})

	return g
}

func TestPropagateForwardReLUNotFixed(t *testing.T) {
	g := buildTwoReLUNetwork()
	p := NewPropagator(g, []float64{-1, -1}, []float64{1, 1}, config.TangentMidpoint, config.TangentMidpoint)
	require.NoError(t, p.PropagateForward())

	ws := p.Bounds(1, 0)
	require.InDelta(t, -2, ws.LB, 1e-9)
	require.InDelta(t, 2, ws.UB, 1e-9)

	relu := p.Bounds(2, 0)
	require.InDelta(t, 0, relu.LB, 1e-9)
	require.InDelta(t, 2, relu.UB, 1e-9)
}

func TestPropagateForwardReLUActivePhase(t *testing.T) {
	g := buildTwoReLUNetwork()
	// x0 - x1 is always >= 1 on this box: ReLU phase is fixed active.
	p := NewPropagator(g, []float64{2, 0}, []float64{3, 1}, config.TangentMidpoint, config.TangentMidpoint)
	require.NoError(t, p.PropagateForward())

	relu := p.Bounds(2, 0)
	require.InDelta(t, 1, relu.LB, 1e-9)
	require.InDelta(t, 3, relu.UB, 1e-9)
}

func TestSimulatorObservesConcreteRange(t *testing.T) {
	g := buildTwoReLUNetwork()
	sim := NewSimulator(g, 42)
	sim.Sample([]float64{-1, -1}, []float64{1, 1}, 200)

	lb, ub := sim.ObservedBounds(2, 0)
	require.GreaterOrEqual(t, lb, 0.0)
	require.LessOrEqual(t, ub, 2.0)
}
