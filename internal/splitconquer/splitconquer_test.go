package splitconquer

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeInstance struct {
	outcome Outcome
	err     error
	delay   time.Duration
	started *int32
}

func (f *fakeInstance) Solve(ctx context.Context) (Outcome, error) {
	if f.started != nil {
		atomic.AddInt32(f.started, 1)
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return Outcome{}, ctx.Err()
		}
	}
	return f.outcome, f.err
}

func TestRunReturnsUnsatWhenAllInstancesUnsat(t *testing.T) {
	instances := []Instance{
		&fakeInstance{outcome: Outcome{SAT: false}},
		&fakeInstance{outcome: Outcome{SAT: false}},
		&fakeInstance{outcome: Outcome{SAT: false}},
	}

	res := Run(context.Background(), instances, 2)
	require.False(t, res.SAT)
	require.Nil(t, res.Err)
}

func TestRunReturnsSatAsSoonAsOneInstanceSucceeds(t *testing.T) {
	instances := []Instance{
		&fakeInstance{outcome: Outcome{SAT: false}, delay: 20 * time.Millisecond},
		&fakeInstance{outcome: Outcome{SAT: true, Solution: map[int]float64{0: 1.5}}},
		&fakeInstance{outcome: Outcome{SAT: false}, delay: 20 * time.Millisecond},
	}

	res := Run(context.Background(), instances, 3)
	require.True(t, res.SAT)
	require.Equal(t, 1.5, res.Solution[0])
}

func TestRunSurfacesFirstErrorWhenNoneSatisfy(t *testing.T) {
	boom := errors.New("boom")
	instances := []Instance{
		&fakeInstance{err: boom},
		&fakeInstance{outcome: Outcome{SAT: false}},
	}

	res := Run(context.Background(), instances, 2)
	require.False(t, res.SAT)
	require.ErrorIs(t, res.Err, boom)
}

func TestRunHandlesEmptyBatch(t *testing.T) {
	res := Run(context.Background(), nil, 4)
	require.False(t, res.SAT)
	require.Nil(t, res.Err)
}

func TestRunStartsEveryInstanceBeyondWorkerCap(t *testing.T) {
	var started int32
	instances := make([]Instance, 5)
	for i := range instances {
		instances[i] = &fakeInstance{outcome: Outcome{SAT: false}, delay: 10 * time.Millisecond, started: &started}
	}

	res := Run(context.Background(), instances, 2)
	require.False(t, res.SAT)
	require.EqualValues(t, 5, atomic.LoadInt32(&started))
}
