package localsearch_test

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"interventionSched/internal/instance"
	"interventionSched/internal/instance/insttest"
	"interventionSched/internal/localsearch"
	"interventionSched/internal/solution"
)

const tol = 1e-6

func randomComplete(t *testing.T, seed int64, n, T int) *solution.Candidate {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	cfg := instance.DefaultRandomConfig(n, T)
	cfg.ExclusionRate = 2
	inst := instance.RandomInstance(cfg, rng)
	c := solution.New(inst)
	for i := 0; i < inst.N(); i++ {
		c.Schedule(i, 1+rng.Intn(inst.TMax(i)))
	}
	return c
}

func mover(t *testing.T, firstImprove bool, workers int) *localsearch.Mover {
	t.Helper()
	cfg := localsearch.DefaultConfig()
	cfg.FirstImprove = firstImprove
	cfg.Workers = workers
	cfg.OneShiftDepth = 1
	m, err := localsearch.NewMover(cfg)
	require.NoError(t, err)
	return m
}

var modes = []struct {
	name         string
	firstImprove bool
	workers      int
}{
	{"first-improve", true, 0},
	{"best-improve/1", false, 1},
	{"best-improve/4", false, 4},
}

func TestOneShiftSeparatesExclusivePair(t *testing.T) {
	for _, mode := range modes {
		t.Run(mode.name, func(t *testing.T) {
			inst := insttest.ShiftablePair(t)
			c := solution.New(inst)
			c.Schedule(0, 1)
			c.Schedule(1, 1)
			require.Equal(t, 1, c.ExclusionPenalty)

			m := mover(t, mode.firstImprove, mode.workers)
			require.True(t, m.OneShift(c, rand.New(rand.NewSource(1))))
			require.Equal(t, 0, c.ExclusionPenalty)
			require.True(t, c.IsValid())
			require.InDelta(t, 0.75, c.ExtendedObjective, tol)
		})
	}
}

func TestExclTwoShift(t *testing.T) {
	for _, mode := range modes {
		t.Run(mode.name, func(t *testing.T) {
			m := mover(t, mode.firstImprove, mode.workers)
			rng := rand.New(rand.NewSource(3))

			// Единственный общий слот: переносить некуда.
			inst := insttest.ExclusivePair(t)
			c := solution.New(inst)
			c.Schedule(0, 1)
			c.Schedule(1, 1)
			before := c.Objective
			require.False(t, m.ExclTwoShift(c, rng))
			require.Equal(t, before, c.Objective)
			require.Equal(t, []int{1, 1}, c.Starts())

			inst = insttest.ShiftablePair(t)
			c = solution.New(inst)
			c.Schedule(0, 1)
			c.Schedule(1, 1)
			require.True(t, m.ExclTwoShift(c, rng))
			require.Equal(t, 0, c.ExclusionPenalty)
			require.Equal(t, []int{1, 2}, c.Starts())

			// Без штрафа оператор ничего не делает.
			require.False(t, m.ExclTwoShift(c, rng))
		})
	}
}

func TestExclTwoShiftNeverIncreasesObjective(t *testing.T) {
	for _, mode := range modes {
		t.Run(mode.name, func(t *testing.T) {
			m := mover(t, mode.firstImprove, mode.workers)
			for seed := int64(0); seed < 10; seed++ {
				c := randomComplete(t, seed, 12, 8)
				before := c.ExtendedObjective
				starts := c.Starts()
				if m.ExclTwoShift(c, rand.New(rand.NewSource(seed))) {
					require.Less(t, c.ExtendedObjective, before)
				} else {
					require.Equal(t, starts, c.Starts())
					require.Equal(t, before, c.ExtendedObjective)
				}
				require.InDelta(t, c.Recompute().ExtendedObjective, c.ExtendedObjective, tol*solution.Penalty)
			}
		})
	}
}

func TestTwoShiftEstimateIsPure(t *testing.T) {
	c := randomComplete(t, 4, 10, 8)
	before := c.Objective
	starts := c.Starts()

	for i1 := 0; i1 < 3; i1++ {
		for i2 := i1 + 1; i2 < 5; i2++ {
			e := localsearch.TwoShiftEstimate(c, i1, i2, false)
			require.Equal(t, before, c.Objective)
			require.Equal(t, starts, c.Starts())
			if !e.Improved() {
				require.Equal(t, c.ExtendedObjective, e.Score)
				continue
			}
			cp := c.Clone()
			cp.Unschedule(i1)
			cp.Unschedule(i2)
			cp.Schedule(i1, e.T1)
			cp.Schedule(i2, e.T2)
			require.InDelta(t, e.Score, cp.ExtendedObjective, tol)
		}
	}
}

func TestMovesNeverWorsen(t *testing.T) {
	for _, mode := range modes {
		t.Run(mode.name, func(t *testing.T) {
			m := mover(t, mode.firstImprove, mode.workers)
			for _, name := range localsearch.OperatorNames() {
				op, err := m.Operator(name)
				require.NoError(t, err)
				c := randomComplete(t, 21, 10, 8)
				before := c.ExtendedObjective
				improved := op.Apply(c, rand.New(rand.NewSource(5)))
				if improved {
					require.Less(t, c.ExtendedObjective, before, name)
				} else {
					require.Equal(t, before, c.ExtendedObjective, name)
				}
				require.InDelta(t, c.Recompute().ExtendedObjective, c.ExtendedObjective, tol*solution.Penalty, name)
			}
		})
	}
}

// Последовательный режим: при параллельном отсечении порядок просмотра
// влияет на то, какие ветки отброшены.
func TestRVNDIsIdempotent(t *testing.T) {
	for _, mode := range modes[:1] {
		t.Run(mode.name, func(t *testing.T) {
			m := mover(t, mode.firstImprove, mode.workers)
			ops, err := m.Operators([]string{"one_shift", "excl_two_shift", "full_two_shift"})
			require.NoError(t, err)

			c := randomComplete(t, 13, 10, 8)
			before := c.ExtendedObjective
			rng := rand.New(rand.NewSource(7))
			localsearch.RVND(context.Background(), c, ops, rng)
			require.LessOrEqual(t, c.ExtendedObjective, before)

			starts := c.Starts()
			require.Zero(t, localsearch.RVND(context.Background(), c, ops, rng))
			require.Equal(t, starts, c.Starts())
		})
	}
}

func TestVNDReachesLocalOptimum(t *testing.T) {
	m := mover(t, true, 0)
	ops, err := m.Operators([]string{"one_shift", "full_two_shift"})
	require.NoError(t, err)

	c := randomComplete(t, 17, 8, 6)
	rng := rand.New(rand.NewSource(1))
	localsearch.VND(context.Background(), c, ops, rng)
	for _, op := range ops {
		require.False(t, op.Apply(c.Clone(), rng), op.Name)
	}
}

func TestRVNDHonoursCancelledContext(t *testing.T) {
	m := mover(t, false, 2)
	ops, err := m.Operators(localsearch.OperatorNames())
	require.NoError(t, err)

	c := randomComplete(t, 2, 10, 8)
	starts := c.Starts()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Zero(t, localsearch.RVND(ctx, c, ops, rand.New(rand.NewSource(1))))
	require.Zero(t, localsearch.VND(ctx, c, ops, rand.New(rand.NewSource(1))))
	require.Equal(t, starts, c.Starts())
}

func TestOperatorsValidation(t *testing.T) {
	m := mover(t, false, 0)
	_, err := m.Operators(nil)
	require.Error(t, err)
	_, err = m.Operators([]string{"one_shift", "swap"})
	require.Error(t, err)
	_, err = m.Operators([]string{"one_shift", "one_shift"})
	require.Error(t, err)

	cfg := localsearch.DefaultConfig()
	cfg.OneShiftDepth = 0
	_, err = localsearch.NewMover(cfg)
	require.Error(t, err)
}
