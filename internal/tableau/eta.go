package tableau

import "github.com/gitrdm/veriplex/internal/numeric"

// EtaMatrix is the identity matrix with a single modified column,
// representing one basis-update step (spec.md GLOSSARY). Composing a
// chain of eta matrices lets the tableau update its factorisation after
// a pivot without a full re-factorisation (Bartels-Golub-style).
type EtaMatrix struct {
	m      int
	column int
	values []float64 // length m, the replacement column
}

// NewEtaMatrix builds an eta matrix replacing column `column` with the
// supplied values (a dense, changed column produced by a pivot).
func NewEtaMatrix(m, column int, values []float64) *EtaMatrix {
	v := append([]float64(nil), values...)
	return &EtaMatrix{m: m, column: column, values: v}
}

// EtaChain accumulates a sequence of eta matrices applied after the last
// full factorisation. Forward/backward transformations compose through
// the chain before (or after) the underlying LUFactors.
type EtaChain struct {
	etas    []*EtaMatrix
	maxLen  int
	epsilon float64
}

// NewEtaChain returns an empty chain that triggers a refactorisation
// once it reaches maxLen entries (spec.md §4.1: "Periodically...
// re-factor from scratch").
func NewEtaChain(maxLen int, epsilon float64) *EtaChain {
	return &EtaChain{maxLen: maxLen, epsilon: epsilon}
}

// Len reports the number of eta updates since the last refactorisation.
func (c *EtaChain) Len() int { return len(c.etas) }

// NeedsRefactor reports whether the chain has reached its configured
// length and a fresh LU factorisation should replace it.
func (c *EtaChain) NeedsRefactor() bool { return len(c.etas) >= c.maxLen }

// Append records one more basis-update step.
func (c *EtaChain) Append(e *EtaMatrix) { c.etas = append(c.etas, e) }

// Reset clears the chain, called immediately after a full
// refactorisation.
func (c *EtaChain) Reset() { c.etas = nil }

// Clone returns a deep copy for split-stack snapshotting.
func (c *EtaChain) Clone() *EtaChain {
	clone := &EtaChain{maxLen: c.maxLen, epsilon: c.epsilon}
	clone.etas = make([]*EtaMatrix, len(c.etas))
	for i, e := range c.etas {
		clone.etas[i] = NewEtaMatrix(e.m, e.column, e.values)
	}
	return clone
}

// ApplyForward applies the chain's eta matrices, in application order,
// to a vector already solved against the base factorisation (x := E_k *
// ... * E_1 * x), implementing the incremental variant of
// forwardTransformation.
func (c *EtaChain) ApplyForward(x []float64) {
	for _, e := range c.etas {
		pivot := e.values[e.column]
		if numeric.IsZero(pivot, c.epsilon) {
			continue
		}
		xc := x[e.column] / pivot
		for i := range x {
			if i == e.column {
				continue
			}
			x[i] -= e.values[i] * xc
		}
		x[e.column] = xc
	}
}

// ApplyBackward applies the chain in reverse for the incremental variant
// of backwardTransformation.
func (c *EtaChain) ApplyBackward(x []float64) {
	for i := len(c.etas) - 1; i >= 0; i-- {
		e := c.etas[i]
		var dot float64
		for j, v := range e.values {
			if j == e.column {
				continue
			}
			dot += v * x[j]
		}
		pivot := e.values[e.column]
		if numeric.IsZero(pivot, c.epsilon) {
			continue
		}
		x[e.column] = (x[e.column] - dot) / pivot
	}
}
