// Package nlr implements the network-level reasoner: a directed
// acyclic LayerGraph of Layers plus DeepPoly-style symbolic
// bound-tightening over it (spec.md §4.5), and an input-space
// simulator that feeds concrete-sampling bound hints to the bound
// manager. Grounded on original_source/src/nlr/Layer.{h,cpp} for the
// layer model and DeepPoly*Element.cpp for the per-activation envelope
// formulas.
package nlr

// Kind identifies a Layer's activation or role (spec.md §3
// "LayerGraph (NLR)").
type Kind int

const (
	Input Kind = iota
	WeightedSum
	ReLU
	AbsoluteValue
	Sign
	LeakyReLU
	Sigmoid
	Round
	Exponential
	Quadratic
	Bilinear
	Max
	MaxPool
)

func (k Kind) String() string {
	switch k {
	case Input:
		return "Input"
	case WeightedSum:
		return "WeightedSum"
	case ReLU:
		return "ReLU"
	case AbsoluteValue:
		return "AbsoluteValue"
	case Sign:
		return "Sign"
	case LeakyReLU:
		return "LeakyReLU"
	case Sigmoid:
		return "Sigmoid"
	case Round:
		return "Round"
	case Exponential:
		return "Exponential"
	case Quadratic:
		return "Quadratic"
	case Bilinear:
		return "Bilinear"
	case Max:
		return "Max"
	case MaxPool:
		return "MaxPool"
	default:
		return "Unknown"
	}
}

// NeuronRef names one neuron of one layer, used for activation-source
// references and Max/MaxPool's multi-input wiring.
type NeuronRef struct {
	Layer  int
	Neuron int
}

// Layer is one node of the LayerGraph (spec.md §3). Non-WeightedSum
// layers are elementwise over their activation sources: neuron i reads
// ActivationSources[i] (normally a single NeuronRef, several for
// Max/MaxPool).
type Layer struct {
	Index int
	Kind  Kind
	Size  int

	// ActivationSources[i] names the predecessor neuron(s) feeding
	// neuron i; empty for Input and WeightedSum layers.
	ActivationSources [][]NeuronRef

	// Weights and Biases are only populated for WeightedSum layers.
	// Weights[predLayer] is a dense Size x predecessorSize matrix,
	// row-major (row = this layer's neuron, col = predecessor neuron).
	Weights map[int][]float64
	Biases  []float64

	// LeakyAlpha is the negative-side slope for a LeakyReLU layer.
	LeakyAlpha float64

	// TableauVariable maps neuron index to a tableau variable, or -1
	// if the neuron has no direct LP-level counterpart.
	TableauVariable []int

	predecessors []int
}

// NewLayer allocates a layer of the given kind and size with no
// tableau variables assigned yet (call SetTableauVariable per neuron).
func NewLayer(index int, kind Kind, size int) *Layer {
	tv := make([]int, size)
	for i := range tv {
		tv[i] = -1
	}
	return &Layer{Index: index, Kind: kind, Size: size, TableauVariable: tv}
}

// SetTableauVariable records the tableau variable backing neuron i.
func (l *Layer) SetTableauVariable(neuron, variable int) { l.TableauVariable[neuron] = variable }

// SetActivationSource records a single-input elementwise source (the
// common case: ReLU, AbsoluteValue, Sign, LeakyReLU, Sigmoid, Round,
// Exponential).
func (l *Layer) SetActivationSource(neuron int, source NeuronRef) {
	if l.ActivationSources == nil {
		l.ActivationSources = make([][]NeuronRef, l.Size)
	}
	l.ActivationSources[neuron] = []NeuronRef{source}
	l.addPredecessor(source.Layer)
}

// SetActivationSources records a multi-input source (Max, MaxPool,
// Bilinear's two factors, Quadratic's self-pair).
func (l *Layer) SetActivationSources(neuron int, sources []NeuronRef) {
	if l.ActivationSources == nil {
		l.ActivationSources = make([][]NeuronRef, l.Size)
	}
	l.ActivationSources[neuron] = append([]NeuronRef(nil), sources...)
	for _, s := range sources {
		l.addPredecessor(s.Layer)
	}
}

// SetWeights installs the dense predecessor-layer weight matrix for a
// WeightedSum layer and its biases.
func (l *Layer) SetWeights(predLayer int, weights []float64, biases []float64) {
	if l.Weights == nil {
		l.Weights = make(map[int][]float64)
	}
	l.Weights[predLayer] = weights
	l.Biases = biases
	l.addPredecessor(predLayer)
}

func (l *Layer) addPredecessor(layer int) {
	for _, p := range l.predecessors {
		if p == layer {
			return
		}
	}
	l.predecessors = append(l.predecessors, layer)
}

// Predecessors returns the distinct layer indices this layer reads
// from.
func (l *Layer) Predecessors() []int { return l.predecessors }

// LayerGraph is a DAG of Layers, indexed by construction order (which
// must already be a topological order: spec.md §3's "directed acyclic
// graph of Layers").
type LayerGraph struct {
	Layers    []*Layer
	InputSize int
}

// NewLayerGraph allocates an empty graph whose input layer has
// inputSize neurons.
func NewLayerGraph(inputSize int) *LayerGraph {
	return &LayerGraph{InputSize: inputSize}
}

// AddLayer appends a layer, assigning it the next index.
func (g *LayerGraph) AddLayer(kind Kind, size int) *Layer {
	l := NewLayer(len(g.Layers), kind, size)
	g.Layers = append(g.Layers, l)
	return l
}

// Layer returns layer i.
func (g *LayerGraph) Layer(i int) *Layer { return g.Layers[i] }

// NumLayers reports how many layers the graph holds.
func (g *LayerGraph) NumLayers() int { return len(g.Layers) }
