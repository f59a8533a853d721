package engine

import (
	"fmt"

	"github.com/gitrdm/veriplex/internal/boundmgr"
	"github.com/gitrdm/veriplex/internal/numeric"
	"github.com/gitrdm/veriplex/internal/tableau"
)

// equationRow names one row reserved during preprocessing for a given
// equationKey, together with the auxiliary variable that row's last
// column was built around.
type equationRow struct {
	row int
	aux int
}

// rowInstaller implements internal/search.EquationInstaller by
// translating a runtime case-split equation into pure bound changes,
// so internal/search.SplitStack can install and (on backtrack, via
// BoundManager.PopContext) uninstall equations without internal/search,
// internal/tableau, or internal/pwl ever being modified.
//
// Every reserved multi-addend row is written once, during
// preprocessing, as sum(addends) - aux = 0 (tableau.SetEquationRow is
// unsafe to call twice on the same row: it appends to the column
// transpose without removing the row's earlier entries). Because
// aux is then identically equal to sum(addends) for as long as the row
// stands, installing an alternative is reduced to tightening aux's own
// bounds against the alternative's actual Scalar/Type:
//
//	EQ  sum == s  ->  aux in [s, s]
//	LE  sum <= s  ->  aux's upper bound tightened to s
//	GE  sum >= s  ->  aux's lower bound tightened to s
//
// A single-addend equation (only internal/pwl.Round ever produces
// these) never needs a row at all: c*x (cmp) s is equivalent to a
// direct bound on x, so it is applied without reserving anything.
type rowInstaller struct {
	bm      *boundmgr.BoundManager
	epsilon float64
	rows    map[equationKey]equationRow
}

func newRowInstaller(bm *boundmgr.BoundManager, epsilon float64) *rowInstaller {
	return &rowInstaller{bm: bm, epsilon: epsilon, rows: make(map[equationKey]equationRow)}
}

// reserve records that key's row/aux pair already exists in the
// tableau, built once during preprocessing.
func (r *rowInstaller) reserve(key equationKey, row, aux int) {
	r.rows[key] = equationRow{row: row, aux: aux}
}

// InstallEquation implements search.EquationInstaller.
func (r *rowInstaller) InstallEquation(eq *tableau.Equation) error {
	if len(eq.Addends) == 0 {
		return nil
	}
	if len(eq.Addends) == 1 {
		return r.installDirect(eq)
	}

	key := canonicalKey(eq)
	row, ok := r.rows[key]
	if !ok {
		return fmt.Errorf("engine: equation shape %q has no reserved row: %w", key, ErrFeatureNotSupported)
	}
	return r.installViaAux(eq, row)
}

func (r *rowInstaller) installDirect(eq *tableau.Equation) error {
	addend := eq.Addends[0]
	if numeric.IsZero(addend.Coefficient, r.epsilon) {
		return fmt.Errorf("engine: zero-coefficient addend for variable %d", addend.Variable)
	}
	value := eq.Scalar / addend.Coefficient
	flip := addend.Coefficient < 0

	switch eq.Type {
	case tableau.EQ:
		r.bm.Tighten(tableau.Tightening{Variable: addend.Variable, Kind: tableau.LB, Value: value})
		r.bm.Tighten(tableau.Tightening{Variable: addend.Variable, Kind: tableau.UB, Value: value})
	case tableau.LE:
		kind := tableau.UB
		if flip {
			kind = tableau.LB
		}
		r.bm.Tighten(tableau.Tightening{Variable: addend.Variable, Kind: kind, Value: value})
	case tableau.GE:
		kind := tableau.LB
		if flip {
			kind = tableau.UB
		}
		r.bm.Tighten(tableau.Tightening{Variable: addend.Variable, Kind: kind, Value: value})
	}
	r.bm.FlushPending()
	return nil
}

func (r *rowInstaller) installViaAux(eq *tableau.Equation, row equationRow) error {
	switch eq.Type {
	case tableau.EQ:
		r.bm.Tighten(tableau.Tightening{Variable: row.aux, Kind: tableau.LB, Value: eq.Scalar})
		r.bm.Tighten(tableau.Tightening{Variable: row.aux, Kind: tableau.UB, Value: eq.Scalar})
	case tableau.LE:
		r.bm.Tighten(tableau.Tightening{Variable: row.aux, Kind: tableau.UB, Value: eq.Scalar})
	case tableau.GE:
		r.bm.Tighten(tableau.Tightening{Variable: row.aux, Kind: tableau.LB, Value: eq.Scalar})
	}
	r.bm.FlushPending()
	return nil
}
