// Package search implements the split stack, the branching heuristics
// (spec.md §4.6 DivideStrategy), and the Sum-of-Infeasibilities local
// search. Grounded on pkg/minikanren/search.go's explicit-stack DFS
// frame: a trail snapshot, a set of untried choices, and an index into
// them, generalized from discrete-value choices to piecewise-linear
// case splits.
package search

import (
	"fmt"

	"github.com/gitrdm/veriplex/internal/boundmgr"
	"github.com/gitrdm/veriplex/internal/pwl"
	"github.com/gitrdm/veriplex/internal/tableau"
)

// EquationInstaller hands a case split's equations to whatever owns the
// tableau. SplitStack itself only manages bounds and stack bookkeeping;
// it never touches tableau rows directly (internal/boundmgr already
// keeps that layering for the same reason: single-writer discipline,
// spec.md §5).
type EquationInstaller interface {
	InstallEquation(eq *tableau.Equation) error
}

// StackEntry records one decision frame: the full list of alternative
// case splits considered for this decision, which one is currently
// active, and any splits that bound propagation implied while this
// frame was on top (spec.md §4.6 "recordImpliedValidSplit": these do
// not add branching alternatives but must be re-applied after
// restoration).
type StackEntry struct {
	Alternatives []pwl.CaseSplit
	ActiveIndex  int
	Implied      []pwl.CaseSplit
}

// Exhausted reports whether every alternative of this entry has already
// been tried.
func (e *StackEntry) Exhausted() bool { return e.ActiveIndex >= len(e.Alternatives)-1 }

// SplitStack is the search core's split stack (spec.md §3, §4.6):
// strictly LIFO, one context frame per entry in the bound manager.
type SplitStack struct {
	entries []*StackEntry
	bm      *boundmgr.BoundManager
}

// NewSplitStack wires the split stack to the bound manager whose
// context push/pop it drives.
func NewSplitStack(bm *boundmgr.BoundManager) *SplitStack {
	return &SplitStack{bm: bm}
}

// Depth reports the current stack depth, which must equal
// bm.Depth() (spec.md §3 invariant).
func (s *SplitStack) Depth() int { return len(s.entries) }

// Top returns the entry currently on top, or nil if the stack is empty.
func (s *SplitStack) Top() *StackEntry {
	if len(s.entries) == 0 {
		return nil
	}
	return s.entries[len(s.entries)-1]
}

// PerformSplit pushes a new decision frame for the given alternatives
// and applies the first one (spec.md §4.6 "performSplit": pop a
// constraint/case-split choice from the queue and apply it, pushing a
// new stack entry).
func (s *SplitStack) PerformSplit(alternatives []pwl.CaseSplit, installer EquationInstaller) error {
	if len(alternatives) == 0 {
		return fmt.Errorf("search: performSplit: no alternatives given")
	}
	s.bm.PushContext()
	entry := &StackEntry{Alternatives: alternatives}
	if err := s.applyCaseSplit(alternatives[0], installer); err != nil {
		return err
	}
	s.entries = append(s.entries, entry)
	return nil
}

// RecordImpliedValidSplit applies a split implied by bound propagation
// (not a decision) under the current top frame's bound context, so it
// is undone together with that frame; PopSplit clears the recorded
// list when it switches the frame to its next alternative (spec.md
// §4.6).
func (s *SplitStack) RecordImpliedValidSplit(split pwl.CaseSplit, installer EquationInstaller) error {
	top := s.Top()
	if top == nil {
		return fmt.Errorf("search: recordImpliedValidSplit: split stack is empty")
	}
	if err := s.applyCaseSplit(split, installer); err != nil {
		return err
	}
	top.Implied = append(top.Implied, split)
	return nil
}

// PopSplit implements spec.md §4.6 "popSplit": restore state from the
// top entry, swap its active case to the next alternative, clear the
// implied splits recorded under the abandoned one (they are not
// re-applied), apply the new alternative, and continue. If the top
// entry has no more alternatives, pop it entirely and retry the entry
// below. Returns ok=false once the stack empties, signalling UNSAT.
func (s *SplitStack) PopSplit(installer EquationInstaller) (ok bool, err error) {
	for len(s.entries) > 0 {
		top := s.entries[len(s.entries)-1]
		if err := s.bm.PopContext(); err != nil {
			return false, err
		}
		if top.Exhausted() {
			s.entries = s.entries[:len(s.entries)-1]
			continue
		}
		top.ActiveIndex++
		top.Implied = nil
		s.bm.PushContext()
		if err := s.applyCaseSplit(top.Alternatives[top.ActiveIndex], installer); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

func (s *SplitStack) applyCaseSplit(split pwl.CaseSplit, installer EquationInstaller) error {
	for _, t := range split.Tightenings {
		s.bm.Tighten(t)
	}
	s.bm.FlushPending()
	for _, eq := range split.Equations {
		if installer == nil {
			return fmt.Errorf("search: applyCaseSplit: split installs an equation but no EquationInstaller was given")
		}
		if err := installer.InstallEquation(eq); err != nil {
			return err
		}
	}
	return nil
}

// ViolationTracker implements spec.md §4.6's
// "reportViolatedConstraint / chooseViolatedConstraintForFixing": a
// running per-constraint violation count used to pick a
// constraint-fixing target when several are simultaneously violated.
type ViolationTracker struct {
	counts map[pwl.Constraint]int
}

// NewViolationTracker allocates an empty tracker.
func NewViolationTracker() *ViolationTracker {
	return &ViolationTracker{counts: make(map[pwl.Constraint]int)}
}

// ReportViolatedConstraint bumps c's violation count.
func (v *ViolationTracker) ReportViolatedConstraint(c pwl.Constraint) {
	v.counts[c]++
}

// ChooseViolatedConstraintForFixing returns the most-frequently-reported
// constraint among those currently violated, breaking ties by
// candidates' position in the given slice (first wins).
func (v *ViolationTracker) ChooseViolatedConstraintForFixing(violated []pwl.Constraint) pwl.Constraint {
	var best pwl.Constraint
	bestCount := -1
	for _, c := range violated {
		if n := v.counts[c]; n > bestCount {
			bestCount = n
			best = c
		}
	}
	return best
}
