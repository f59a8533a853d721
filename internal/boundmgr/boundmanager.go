// Package boundmgr implements the authoritative per-variable bound
// store (spec.md §4.3), the row bound tightener, and the constraint
// matrix analyser. The BoundManager is the single writer of variable
// bounds (spec.md Design Notes §9, "Cyclic and shared references"):
// the tableau, every piecewise-linear constraint, and the search core
// all hold non-owning references to it.
//
// Grounded on pkg/minikanren/search.go's store.snapshot() / trail
// restore discipline (the teacher's DFS frame records a snapshot index
// and restores it on backtrack); here the discrete domain is replaced
// by a continuous (lb, ub) pair per variable and the trail becomes an
// explicit stack of per-variable overwrite records.
package boundmgr

import (
	"fmt"

	"github.com/gitrdm/veriplex/internal/numeric"
	"github.com/gitrdm/veriplex/internal/tableau"
)

// record captures one bound overwrite so a context pop can restore the
// exact prior value (spec.md §8: "After popSplit, bounds revert exactly
// to the pre-push snapshot").
type record struct {
	variable int
	kind     tableau.TighteningKind
	previous float64
}

// BoundManager stores per-variable (lb, ub), a pending tightening
// queue, and a context stack for split-stack push/pop.
type BoundManager struct {
	lb, ub       []float64
	inconsistent []bool

	epsilon float64

	pending []tableau.Tightening

	contextStack [][]record

	watchers []tableau.Watcher
}

// New allocates a bound manager for n variables, all initially
// unbounded (±numeric.Infinity).
func New(n int, epsilon float64) *BoundManager {
	bm := &BoundManager{
		lb:           make([]float64, n),
		ub:           make([]float64, n),
		inconsistent: make([]bool, n),
		epsilon:      epsilon,
	}
	for i := 0; i < n; i++ {
		bm.lb[i] = numeric.NegativeInfinity
		bm.ub[i] = numeric.Infinity
	}
	return bm
}

// AddWatcher registers a component (typically the tableau, which
// forwards to piecewise-linear constraints) for lower/upper-bound
// change notifications.
func (bm *BoundManager) AddWatcher(w tableau.Watcher) { bm.watchers = append(bm.watchers, w) }

// LowerBound and UpperBound implement tableau.Bounds.
func (bm *BoundManager) LowerBound(v int) float64 { return bm.lb[v] }
func (bm *BoundManager) UpperBound(v int) float64 { return bm.ub[v] }

// SetLowerBound installs an initial/ground lower bound without trail
// bookkeeping (used at construction time, before any split pushes a
// context).
func (bm *BoundManager) SetLowerBound(v int, value float64) { bm.lb[v] = value; bm.checkConsistency(v) }

// SetUpperBound mirrors SetLowerBound.
func (bm *BoundManager) SetUpperBound(v int, value float64) { bm.ub[v] = value; bm.checkConsistency(v) }

func (bm *BoundManager) checkConsistency(v int) {
	bm.inconsistent[v] = bm.lb[v] > bm.ub[v]+bm.epsilon
}

// Inconsistent reports whether variable v currently has lb > ub, the
// condition the search core surfaces as infeasible-query.
func (bm *BoundManager) Inconsistent(v int) bool { return bm.inconsistent[v] }

// AnyInconsistent reports whether any variable is currently
// inconsistent.
func (bm *BoundManager) AnyInconsistent() bool {
	for _, v := range bm.inconsistent {
		if v {
			return true
		}
	}
	return false
}

// PushContext snapshots nothing eagerly; it opens a new trail frame so
// subsequent tightenings can be undone by PopContext. Grounded on the
// teacher's push/pop trail but made lazy (empty frame, entries recorded
// as they happen) to avoid copying the whole bound array on every
// split, mirroring spec.md §5's ordering guarantee that tightenings are
// the unit of work, not whole-array copies.
func (bm *BoundManager) PushContext() {
	bm.contextStack = append(bm.contextStack, nil)
}

// PopContext restores every bound this context frame tightened back to
// its pre-push value, in strict LIFO order (spec.md §5).
func (bm *BoundManager) PopContext() error {
	if len(bm.contextStack) == 0 {
		return fmt.Errorf("boundmgr: popContext: no context pushed")
	}
	frame := bm.contextStack[len(bm.contextStack)-1]
	bm.contextStack = bm.contextStack[:len(bm.contextStack)-1]

	for i := len(frame) - 1; i >= 0; i-- {
		r := frame[i]
		switch r.kind {
		case tableau.LB:
			bm.lb[r.variable] = r.previous
		case tableau.UB:
			bm.ub[r.variable] = r.previous
		}
		bm.checkConsistency(r.variable)
	}
	return nil
}

// Depth reports the number of currently-open context frames, which
// must equal the split-stack depth (spec.md §3 invariants).
func (bm *BoundManager) Depth() int { return len(bm.contextStack) }

// Tighten queues one tightening unconditionally; FlushPending applies
// it only if it strictly improves the current bound (spec.md §4.3: "if
// lb > ub, mark the variable as inconsistent"; §5: "the last tightening
// wins per variable only if it is stronger").
func (bm *BoundManager) Tighten(t tableau.Tightening) {
	bm.pending = append(bm.pending, t)
}

// FlushPending applies every queued tightening in insertion order,
// strongest-wins per variable, in a single pass so no intermediate
// state triggers redundant cost recomputation downstream (spec.md §4.3:
// "flushed into the tableau in one pass to avoid cascading cost
// recomputation"). Returns the tightenings that actually changed a
// bound (for watcher notification and for the NLR / case-split
// bookkeeping that must only re-examine genuinely new information).
func (bm *BoundManager) FlushPending() []tableau.Tightening {
	pending := bm.pending
	bm.pending = nil

	var applied []tableau.Tightening
	for _, t := range pending {
		var changed bool
		if len(bm.contextStack) > 0 {
			frame := &bm.contextStack[len(bm.contextStack)-1]
			switch t.Kind {
			case tableau.LB:
				if t.Value > bm.lb[t.Variable]+bm.epsilon {
					*frame = append(*frame, record{t.Variable, tableau.LB, bm.lb[t.Variable]})
					bm.lb[t.Variable] = t.Value
					changed = true
				}
			case tableau.UB:
				if t.Value < bm.ub[t.Variable]-bm.epsilon {
					*frame = append(*frame, record{t.Variable, tableau.UB, bm.ub[t.Variable]})
					bm.ub[t.Variable] = t.Value
					changed = true
				}
			}
		} else {
			switch t.Kind {
			case tableau.LB:
				if t.Value > bm.lb[t.Variable]+bm.epsilon {
					bm.lb[t.Variable] = t.Value
					changed = true
				}
			case tableau.UB:
				if t.Value < bm.ub[t.Variable]-bm.epsilon {
					bm.ub[t.Variable] = t.Value
					changed = true
				}
			}
		}
		if changed {
			bm.checkConsistency(t.Variable)
			applied = append(applied, t)
			for _, w := range bm.watchers {
				switch t.Kind {
				case tableau.LB:
					w.NotifyLowerBound(t.Variable, bm.lb[t.Variable])
				case tableau.UB:
					w.NotifyUpperBound(t.Variable, bm.ub[t.Variable])
				}
			}
		}
	}
	return applied
}

// NumVariables reports how many variables this manager tracks.
func (bm *BoundManager) NumVariables() int { return len(bm.lb) }
