package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gitrdm/veriplex/internal/tableau"
)

// equationKey canonically identifies a reserved tableau row by the
// structurally-fixed part of an equation: its sorted addend list. Type
// and Scalar vary per installation call and are deliberately excluded.
// Alternatives whose addends differ (e.g. AbsoluteValue's f - b and
// f + b) get distinct keys, and the preprocessor reserves one row for
// each distinct key.
type equationKey string

// canonicalKey serializes eq's addends, sorted by variable, as
// "var:coeff;var:coeff;...". Two equations sharing the same key can
// share one reserved row: installing one alternative is purely a
// bound change on that row's auxiliary variable (see installer.go).
func canonicalKey(eq *tableau.Equation) equationKey {
	addends := append([]tableau.Addend(nil), eq.Addends...)
	sort.Slice(addends, func(i, j int) bool { return addends[i].Variable < addends[j].Variable })

	var b strings.Builder
	for _, a := range addends {
		fmt.Fprintf(&b, "%d:%g;", a.Variable, a.Coefficient)
	}
	return equationKey(b.String())
}
