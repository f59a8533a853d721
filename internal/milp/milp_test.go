package milp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNoopBackendRejectsEveryOperation(t *testing.T) {
	var b Backend = NoopBackend{}

	require.Error(t, b.AddVariable("x0", 0, 1))
	require.Error(t, b.AddConstraint(nil, LE, 0))
	require.Error(t, b.AddIndicatorConstraint(IndicatorConstraint{}))
	require.Error(t, b.SetObjective(nil))
	require.Error(t, b.SetTimeLimit(time.Second))

	status, err := b.Solve()
	require.Error(t, err)
	require.Equal(t, Other, status)

	_, err = b.Solution()
	require.Error(t, err)
	_, err = b.IterationCount()
	require.Error(t, err)
	require.Error(t, b.UpdateBounds("x0", 0, 1))
}

func TestStatusString(t *testing.T) {
	require.Equal(t, "OPTIMAL", Optimal.String())
	require.Equal(t, "INFEASIBLE", Infeasible.String())
	require.Equal(t, "TIMEOUT", Timeout.String())
	require.Equal(t, "OTHER", Other.String())
}
