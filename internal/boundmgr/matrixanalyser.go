package boundmgr

import "github.com/gitrdm/veriplex/internal/numeric"

// MatrixAnalyser runs Gaussian elimination with Markowitz-rule pivot
// selection over the full (dense) constraint matrix to find an initial
// basis: a set of m independent columns, plus any redundant rows left
// over once no further pivot exists. Grounded directly on
// original_source/src/engine/ConstraintMatrixAnalyzer.cpp, reworked
// from its sparse row/column in-place mutation into a dense working
// copy — verification queries are small enough (spec.md §1) that the
// simpler dense form is preferable to porting the custom sparse
// container.
type MatrixAnalyser struct {
	m, n int
	work []float64 // m*n dense working copy, row-major

	rowHeaders, colHeaders               []int
	rowHeadersInverse, colHeadersInverse []int

	eliminationStep int

	pivotScaleThreshold float64
	epsilon             float64
}

// NewMatrixAnalyser allocates an analyser for an m x n dense matrix
// (row-major), copying `matrix` so the caller's copy is untouched.
func NewMatrixAnalyser(matrix []float64, m, n int, pivotScaleThreshold, epsilon float64) *MatrixAnalyser {
	a := &MatrixAnalyser{
		m:                   m,
		n:                   n,
		work:                append([]float64(nil), matrix...),
		rowHeaders:          make([]int, m),
		colHeaders:          make([]int, n),
		rowHeadersInverse:   make([]int, m),
		colHeadersInverse:   make([]int, n),
		pivotScaleThreshold: pivotScaleThreshold,
		epsilon:             epsilon,
	}
	for i := 0; i < m; i++ {
		a.rowHeaders[i] = i
		a.rowHeadersInverse[i] = i
	}
	for j := 0; j < n; j++ {
		a.colHeaders[j] = j
		a.colHeadersInverse[j] = j
	}
	return a
}

func (a *MatrixAnalyser) at(row, col int) float64 { return a.work[row*a.n+col] }
func (a *MatrixAnalyser) set(row, col int, v float64) { a.work[row*a.n+col] = v }

// Analyze runs Gaussian elimination: column by column, until m
// independent columns are found or no further pivot exists.
func (a *MatrixAnalyser) Analyze() {
	for a.eliminationStep = 0; a.eliminationStep < a.m; a.eliminationStep++ {
		row, col, pivot, found := a.choosePivot()
		if !found {
			return
		}
		a.permute(row, col)
		a.eliminate(pivot)
	}
}

// choosePivot applies the Markowitz rule over the active submatrix
// (rows/columns >= eliminationStep): prefer a singleton row, then a
// singleton column, then the entry minimising (rowNnz-1)*(colNnz-1)
// among entries within pivotScaleThreshold of their column's largest
// magnitude.
func (a *MatrixAnalyser) choosePivot() (row, col int, pivot float64, found bool) {
	for r := a.eliminationStep; r < a.m; r++ {
		actualRow := a.rowHeaders[r]
		nnz, onlyCol, onlyVal := a.rowSingleton(actualRow, r)
		if nnz == 1 {
			return r, onlyCol, onlyVal, true
		}
	}

	for c := a.eliminationStep; c < a.n; c++ {
		actualCol := a.colHeaders[c]
		nnz, onlyRow, onlyVal := a.colSingleton(actualCol, c)
		if nnz == 1 {
			return onlyRow, c, onlyVal, true
		}
	}

	minimalCost := a.m * a.n
	var bestRow, bestCol int
	var bestVal, bestAbs float64
	found = false

	for c := a.eliminationStep; c < a.n; c++ {
		actualCol := a.colHeaders[c]
		var maxInColumn float64
		for r := a.eliminationStep; r < a.m; r++ {
			v := a.at(a.rowHeaders[r], actualCol)
			if abs64(v) > maxInColumn {
				maxInColumn = abs64(v)
			}
		}
		if numeric.IsZero(maxInColumn, a.epsilon) {
			continue
		}
		for r := a.eliminationStep; r < a.m; r++ {
			actualRow := a.rowHeaders[r]
			v := a.at(actualRow, actualCol)
			absV := abs64(v)
			if absV <= maxInColumn*a.pivotScaleThreshold {
				continue
			}
			cost := (a.rowNnz(actualRow, a.eliminationStep) - 1) * (a.colNnz(actualCol, a.eliminationStep) - 1)
			if cost < minimalCost || (cost == minimalCost && absV > bestAbs) {
				minimalCost = cost
				bestRow, bestCol, bestVal, bestAbs = r, c, v, absV
				found = true
			}
		}
	}
	return bestRow, bestCol, bestVal, found
}

func (a *MatrixAnalyser) rowSingleton(actualRow, r int) (nnz, col int, val float64) {
	for c := a.eliminationStep; c < a.n; c++ {
		v := a.at(actualRow, a.colHeaders[c])
		if !numeric.IsZero(v, a.epsilon) {
			nnz++
			col, val = c, v
		}
	}
	return
}

func (a *MatrixAnalyser) colSingleton(actualCol, c int) (nnz, row int, val float64) {
	for r := a.eliminationStep; r < a.m; r++ {
		v := a.at(a.rowHeaders[r], actualCol)
		if !numeric.IsZero(v, a.epsilon) {
			nnz++
			row, val = r, v
		}
	}
	return
}

func (a *MatrixAnalyser) rowNnz(actualRow, fromStep int) int {
	count := 0
	for c := fromStep; c < a.n; c++ {
		if !numeric.IsZero(a.at(actualRow, a.colHeaders[c]), a.epsilon) {
			count++
		}
	}
	return count
}

func (a *MatrixAnalyser) colNnz(actualCol, fromStep int) int {
	count := 0
	for r := fromStep; r < a.m; r++ {
		if !numeric.IsZero(a.at(a.rowHeaders[r], actualCol), a.epsilon) {
			count++
		}
	}
	return count
}

func (a *MatrixAnalyser) permute(pivotRow, pivotCol int) {
	step := a.eliminationStep

	a.rowHeaders[step], a.rowHeaders[pivotRow] = a.rowHeaders[pivotRow], a.rowHeaders[step]
	a.rowHeadersInverse[a.rowHeaders[step]] = step
	a.rowHeadersInverse[a.rowHeaders[pivotRow]] = pivotRow

	a.colHeaders[step], a.colHeaders[pivotCol] = a.colHeaders[pivotCol], a.colHeaders[step]
	a.colHeadersInverse[a.colHeaders[step]] = step
	a.colHeadersInverse[a.colHeaders[pivotCol]] = pivotCol
}

// eliminate zeroes every entry below the pivot in the active submatrix.
func (a *MatrixAnalyser) eliminate(pivotElement float64) {
	step := a.eliminationStep
	pivotRowActual := a.rowHeaders[step]
	pivotColActual := a.colHeaders[step]

	for r := step + 1; r < a.m; r++ {
		rowActual := a.rowHeaders[r]
		below := a.at(rowActual, pivotColActual)
		if numeric.IsZero(below, a.epsilon) {
			continue
		}
		multiplier := -below / pivotElement
		a.set(rowActual, pivotColActual, 0)
		for c := step + 1; c < a.n; c++ {
			colActual := a.colHeaders[c]
			pivotRowVal := a.at(pivotRowActual, colActual)
			if numeric.IsZero(pivotRowVal, a.epsilon) {
				continue
			}
			newValue := a.at(rowActual, colActual) + multiplier*pivotRowVal
			a.set(rowActual, colActual, numeric.RoundToZero(newValue, a.epsilon))
		}
	}
}

// IndependentColumns returns the columns chosen as pivots, in
// elimination order — a valid initial basis when exactly m were found.
func (a *MatrixAnalyser) IndependentColumns() []int {
	result := make([]int, a.eliminationStep)
	copy(result, a.colHeaders[:a.eliminationStep])
	return result
}

// RedundantRows returns the rows left unpivoted, i.e. linearly
// dependent on the others (spec.md §4.3: "redundant rows... reported,
// not silently dropped").
func (a *MatrixAnalyser) RedundantRows() []int {
	result := make([]int, 0, a.m-a.eliminationStep)
	for i := a.eliminationStep; i < a.m; i++ {
		result = append(result, a.rowHeaders[i])
	}
	return result
}

func abs64(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
