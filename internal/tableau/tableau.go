package tableau

import (
	"fmt"

	"github.com/gitrdm/veriplex/internal/numeric"
)

// Bounds is the subset of BoundManager's contract the tableau needs:
// read-only access to per-variable bounds. The concrete implementation
// (internal/boundmgr.BoundManager) is injected so the tableau never
// imports the bound manager package directly — the bound manager is the
// single writer, the tableau (and everyone else) only reads (spec.md
// Design Notes §9, "Cyclic and shared references").
type Bounds interface {
	LowerBound(variable int) float64
	UpperBound(variable int) float64
}

// sparseRow is one row of the constraint matrix: an ordered list of
// (column, value) entries, reusing Addend for storage.
type sparseRow []Addend

// sparseEntry is one column-wise transpose entry: (row, value).
type sparseEntry struct {
	row   int
	value float64
}

// Tableau owns the sparse constraint matrix, the explicit basis, the LU
// factorisation of the current basis, the current basic/non-basic
// assignment, right-hand sides, and pivot scratch space, per spec.md §3.
type Tableau struct {
	m, n int // m rows, n columns

	A    []sparseRow       // m rows, each an ordered (coeff, var) list
	AT   [][]sparseEntry   // n columns, column-wise transpose of A

	basis    []int // m entries: tableau-column index of each basic variable
	inBasis  []bool // n entries: membership test

	rhs []float64 // m entries, the equations' right-hand sides

	bounds Bounds

	assignment       []float64 // n entries, current value of every variable
	assignmentStatus AssignmentStatus

	lu       *LUFactors
	etaChain *EtaChain

	changeColumn []float64 // scratch: forward-transformed entering column
	pivotRow     []float64 // scratch: the row corresponding to the leaving variable

	epsilon float64

	watchers []Watcher
}

// Watcher receives notifications whenever a variable's bounds or value
// change (spec.md §4.4 registration protocol): a PiecewiseLinearConstraint
// implements this to keep its local lb/ub maps in sync.
type Watcher interface {
	NotifyLowerBound(variable int, value float64)
	NotifyUpperBound(variable int, value float64)
	NotifyVariableValue(variable int, value float64)
}

// NewTableau allocates an m x n tableau. Rows are added with SetEquationRow;
// the initial basis must be set with SetBasis once the constraint matrix
// analyser (internal/boundmgr) has chosen one.
func NewTableau(m, n int, bounds Bounds, epsilon float64) *Tableau {
	return &Tableau{
		m:        m,
		n:        n,
		A:        make([]sparseRow, m),
		AT:       make([][]sparseEntry, n),
		basis:    make([]int, m),
		inBasis:  make([]bool, n),
		rhs:      make([]float64, m),
		bounds:   bounds,
		assignment: make([]float64, n),
		epsilon:  epsilon,
		etaChain: NewEtaChain(60, epsilon),
	}
}

// AddWatcher registers a PiecewiseLinearConstraint (or any component)
// interested in value/bound change notifications.
func (t *Tableau) AddWatcher(w Watcher) { t.watchers = append(t.watchers, w) }

// Dimensions returns (m, n).
func (t *Tableau) Dimensions() (int, int) { return t.m, t.n }

// SetEquationRow installs equation `row`'s addends and right-hand side
// into the sparse constraint matrix and its transpose.
func (t *Tableau) SetEquationRow(row int, eq *Equation) error {
	if row < 0 || row >= t.m {
		return fmt.Errorf("tableau: row %d out of range [0,%d)", row, t.m)
	}
	t.A[row] = append(sparseRow(nil), eq.Addends...)
	t.rhs[row] = eq.Scalar
	for _, a := range eq.Addends {
		if a.Variable < 0 || a.Variable >= t.n {
			return fmt.Errorf("tableau: variable %d out of range [0,%d)", a.Variable, t.n)
		}
		t.AT[a.Variable] = append(t.AT[a.Variable], sparseEntry{row: row, value: a.Coefficient})
	}
	return nil
}

// SetBasis installs the initial basis (one tableau-column index per row,
// typically produced by the constraint matrix analyser) and triggers a
// full factorisation.
func (t *Tableau) SetBasis(basis []int, eliminator *MarkowitzEliminator) error {
	if len(basis) != t.m {
		return fmt.Errorf("tableau: basis has %d entries, want %d", len(basis), t.m)
	}
	for i := range t.inBasis {
		t.inBasis[i] = false
	}
	copy(t.basis, basis)
	for _, v := range basis {
		t.inBasis[v] = true
	}
	return t.refactorize(eliminator)
}

// denseBasis materialises the current basis columns into a dense m x m
// matrix for the eliminator (verification-sized problems are assumed
// dense in their numerical neighbourhood, per spec.md §1).
func (t *Tableau) denseBasis() []float64 {
	dense := make([]float64, t.m*t.m)
	for col, v := range t.basis {
		for _, e := range t.AT[v] {
			dense[e.row*t.m+col] = e.value
		}
	}
	return dense
}

// refactorize rebuilds the LU factorisation from scratch and clears the
// ETA chain (spec.md §3 lifecycles: "rebuilt from scratch on precision
// restoration and whenever the basis is refreshed").
func (t *Tableau) refactorize(eliminator *MarkowitzEliminator) error {
	lu, err := eliminator.Factorize(t.denseBasis(), t.m)
	if err != nil {
		return err
	}
	t.lu = lu
	t.etaChain.Reset()
	t.changeColumn = make([]float64, t.m)
	t.pivotRow = make([]float64, t.n)
	return nil
}

// ComputeAssignment back-solves exactly for the basic variables'
// values: A_B * x_B = rhs - A_N * x_N, implementing Tableau.computeAssignment.
func (t *Tableau) ComputeAssignment() error {
	if t.lu == nil {
		return fmt.Errorf("tableau: computeAssignment: no factorisation present")
	}
	y := append([]float64(nil), t.rhs...)
	for col := 0; col < t.n; col++ {
		if t.inBasis[col] {
			continue
		}
		xc := t.assignment[col]
		if xc == 0 {
			continue
		}
		for _, e := range t.AT[col] {
			y[e.row] -= e.value * xc
		}
	}
	x := t.lu.ForwardTransformation(y)
	t.etaChain.ApplyForward(x)
	for i, v := range t.basis {
		t.assignment[v] = numeric.RoundToZero(x[i], t.epsilon)
		t.notifyValue(v, t.assignment[v])
	}
	t.assignmentStatus = JustComputed
	return nil
}

// Assignment returns the current value of variable v.
func (t *Tableau) Assignment(v int) float64 { return t.assignment[v] }

// SetNonBasicAssignment sets the value of a non-basic variable (e.g. to
// one of its bounds), marking the basic assignment as no longer
// guaranteed exact until ComputeAssignment is called again.
func (t *Tableau) SetNonBasicAssignment(v int, value float64) {
	t.assignment[v] = value
	t.assignmentStatus = Updated
	t.notifyValue(v, value)
}

// IsBasic reports whether variable v is currently in the basis.
func (t *Tableau) IsBasic(v int) bool { return t.inBasis[v] }

// BasicVariables returns the current basis, indexed by tableau row.
func (t *Tableau) BasicVariables() []int { return t.basis }

// Status reports whether the basic assignment is exact.
func (t *Tableau) Status() AssignmentStatus { return t.assignmentStatus }

func (t *Tableau) notifyValue(v int, value float64) {
	for _, w := range t.watchers {
		w.NotifyVariableValue(v, value)
	}
}

// NotifyLowerBound and NotifyUpperBound forward bound-manager
// tightenings to every registered watcher (spec.md §4.4: "the tableau
// calls NotifyLowerBound / NotifyUpperBound... whenever those change").
func (t *Tableau) NotifyLowerBound(v int, value float64) {
	for _, w := range t.watchers {
		w.NotifyLowerBound(v, value)
	}
}

func (t *Tableau) NotifyUpperBound(v int, value float64) {
	for _, w := range t.watchers {
		w.NotifyUpperBound(v, value)
	}
}

// ChangeColumn computes the forward transformation of the entering
// variable's column (A_B^-1 * A_entering), the core of the ratio test.
func (t *Tableau) ChangeColumn(entering int) []float64 {
	y := make([]float64, t.m)
	for _, e := range t.AT[entering] {
		y[e.row] = e.value
	}
	x := t.lu.ForwardTransformation(y)
	t.etaChain.ApplyForward(x)
	copy(t.changeColumn, x)
	return x
}

// PivotRow computes the row of A_B^-1 * A corresponding to the leaving
// variable's basis row, used by the row bound tightener to scan for
// implied tightenings on every accepted pivot (spec.md §4.2 step 5).
func (t *Tableau) PivotRow(basisRow int) []float64 {
	y := make([]float64, t.m)
	y[basisRow] = 1
	rowCombination := t.lu.BackwardTransformation(y)
	t.etaChain.ApplyBackward(rowCombination)

	row := make([]float64, t.n)
	for col := 0; col < t.n; col++ {
		var dot float64
		for _, e := range t.AT[col] {
			dot += rowCombination[e.row] * e.value
		}
		row[col] = dot
	}
	copy(t.pivotRow, row)
	return row
}

// RowRHS computes the right-hand side implied by basis row `basisRow`
// once expressed in terms of the full variable set: rowCombination *
// rhs, where rowCombination is the same A_B^-1 row PivotRow uses. Used
// together with PivotRow by the row bound tightener to read off the
// equation "x_basicVariable + sum coeff_j x_j = RowRHS".
func (t *Tableau) RowRHS(basisRow int) float64 {
	y := make([]float64, t.m)
	y[basisRow] = 1
	rowCombination := t.lu.BackwardTransformation(y)
	t.etaChain.ApplyBackward(rowCombination)
	var rhs float64
	for i, c := range rowCombination {
		rhs += c * t.rhs[i]
	}
	return rhs
}

// PerformPivot exchanges the entering and leaving variables: the
// leaving variable (currently basic at basis row `basisRow`) becomes
// non-basic, keeping its current value, and `entering` takes its place in the
// basis. Updates the ETA chain with the corresponding basis-update
// column and triggers a refactorisation if the chain has grown past its
// configured length.
func (t *Tableau) PerformPivot(basisRow, entering int, changeColumn []float64, eliminator *MarkowitzEliminator) error {
	leaving := t.basis[basisRow]
	t.inBasis[leaving] = false
	t.inBasis[entering] = true
	t.basis[basisRow] = entering

	eta := NewEtaMatrix(t.m, basisRow, changeColumn)
	t.etaChain.Append(eta)

	if t.etaChain.NeedsRefactor() {
		return t.refactorize(eliminator)
	}
	return nil
}

// Residual reports the L1 degradation of the current factorisation
// against the live basis columns, used by precision restoration
// (spec.md Design Notes §9).
func (t *Tableau) Residual() (float64, error) {
	if t.lu == nil {
		return 0, fmt.Errorf("tableau: residual: no factorisation present")
	}
	return t.lu.Residual(t.denseBasis())
}

// LU exposes the current factorisation (read-only use by the row bound
// tightener's "explicit basis inverse" path).
func (t *Tableau) LU() *LUFactors { return t.lu }

// EtaChainLength reports how many incremental updates have accumulated
// since the last refactorisation.
func (t *Tableau) EtaChainLength() int { return t.etaChain.Len() }

// RHS returns the right-hand side of row i.
func (t *Tableau) RHS(i int) float64 { return t.rhs[i] }

// Row returns the sparse addends of row i (read-only).
func (t *Tableau) Row(i int) []Addend { return t.A[i] }

// Column returns the sparse column entries for variable v (read-only).
func (t *Tableau) Column(v int) []struct {
	Row   int
	Value float64
} {
	col := make([]struct {
		Row   int
		Value float64
	}, len(t.AT[v]))
	for i, e := range t.AT[v] {
		col[i] = struct {
			Row   int
			Value float64
		}{Row: e.row, Value: e.value}
	}
	return col
}
