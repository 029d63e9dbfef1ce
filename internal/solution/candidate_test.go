package solution_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"interventionSched/internal/instance"
	"interventionSched/internal/instance/insttest"
	"interventionSched/internal/solution"
)

const tol = 1e-6

func requireObjectiveNear(t *testing.T, want, got solution.Objective) {
	t.Helper()
	require.InDelta(t, want.MeanRisk, got.MeanRisk, tol, "mean risk")
	require.InDelta(t, want.ExpectedExcess, got.ExpectedExcess, tol, "expected excess")
	require.InDelta(t, want.TotalResourceUse, got.TotalResourceUse, tol, "resource use")
	require.InDelta(t, want.WorkloadOveruse, got.WorkloadOveruse, tol, "overuse")
	require.InDelta(t, want.WorkloadUnderuse, got.WorkloadUnderuse, tol, "underuse")
	require.Equal(t, want.ExclusionPenalty, got.ExclusionPenalty, "exclusion penalty")
	require.InDelta(t, want.ExtendedObjective, got.ExtendedObjective, tol*solution.Penalty, "extended objective")
}

// Инкрементальный учёт совпадает с полным пересчётом после
// произвольной последовательности Schedule/Unschedule.
func TestIncrementalMatchesRecompute(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	cfg := instance.DefaultRandomConfig(12, 20)
	cfg.ExclusionRate = 3
	inst := instance.RandomInstance(cfg, rng)

	c := solution.New(inst)
	requireObjectiveNear(t, c.Recompute(), c.Objective)

	for step := 0; step < 400; step++ {
		i := rng.Intn(inst.N())
		if c.StartTime(i) == 0 {
			c.Schedule(i, 1+rng.Intn(inst.TMax(i)))
		} else {
			c.Unschedule(i)
		}
		requireObjectiveNear(t, c.Recompute(), c.Objective)
	}
}

// Оценка не меняет кандидата и совпадает с результатом фиксации.
func TestEstimateIsPure(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	inst := instance.RandomInstance(instance.DefaultRandomConfig(8, 15), rng)

	c := solution.New(inst)
	for i := 0; i < inst.N(); i += 2 {
		c.Schedule(i, 1+rng.Intn(inst.TMax(i)))
	}

	for i := 1; i < inst.N(); i += 2 {
		tStart := 1 + rng.Intn(inst.TMax(i))
		before := c.Objective
		est := c.EstimateSchedule(i, tStart)
		require.Equal(t, before, c.Objective, "estimate mutated candidate")
		require.Equal(t, 0, c.StartTime(i))

		c.Schedule(i, tStart)
		require.Equal(t, est, c.Objective)
	}

	for _, i := range c.Scheduled() {
		est := c.EstimateUnschedule(i)
		cp := c.Clone()
		cp.Unschedule(i)
		require.Equal(t, est, cp.Objective)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	inst := instance.RandomInstance(instance.DefaultRandomConfig(5, 10), rng)

	c := solution.New(inst)
	c.Schedule(0, 1)
	cp := c.Clone()
	cp.Schedule(1, 1)
	cp.UnscheduledCnt[0]++

	require.Equal(t, 0, c.StartTime(1))
	require.Equal(t, 0, c.UnscheduledCnt[0])
	requireObjectiveNear(t, c.Recompute(), c.Objective)
	requireObjectiveNear(t, cp.Recompute(), cp.Objective)
}

func TestSetsAndValidity(t *testing.T) {
	inst := insttest.Disjoint(t, 3)
	c := solution.New(inst)

	require.True(t, c.HasUnscheduled())
	require.Equal(t, 0, c.FirstUnscheduled())
	require.False(t, c.IsValid())

	c.Schedule(1, 2)
	require.Equal(t, []int{1}, c.Scheduled())
	require.Equal(t, []int{0, 2}, c.Unscheduled())
	require.Equal(t, 0, c.FirstUnscheduled())

	c.Schedule(0, 1)
	c.Schedule(2, 3)
	require.False(t, c.HasUnscheduled())
	require.Equal(t, -1, c.FirstUnscheduled())
	require.True(t, c.IsValid())
}

func TestSchedulePanicsOnInvalidStart(t *testing.T) {
	inst := insttest.Disjoint(t, 3)
	c := solution.New(inst)

	require.Panics(t, func() { c.Schedule(0, 0) })
	require.Panics(t, func() { c.Schedule(0, inst.TMax(0)+1) })
	c.Schedule(0, 1)
	require.Panics(t, func() { c.Schedule(0, 1) })
	require.Panics(t, func() { c.Unschedule(1) })
}

func TestExclusionPenalty(t *testing.T) {
	inst := &instance.Instance{T: 2, Scenarios: []int{1, 1}, Alpha: 0.5, Quantile: 0.5}
	for _, name := range []string{"a", "b"} {
		iv, err := instance.NewIntervention(name, 1, []int{2}, 0, inst.Scenarios)
		require.NoError(t, err)
		inst.Interventions = append(inst.Interventions, iv)
	}
	inst.Exclusions = []instance.Exclusion{{A: 0, B: 1, Season: "all", Periods: []int{1, 2}}}
	require.NoError(t, inst.Prepare())

	c := solution.New(inst)
	c.Schedule(0, 1)
	require.Equal(t, 2, c.EstimateSchedule(1, 1).ExclusionPenalty)
	c.Schedule(1, 1)
	require.Equal(t, 2, c.ExclusionPenalty)
	require.False(t, c.IsValid())
	require.InDelta(t, c.FinalObjective+2*solution.Penalty, c.ExtendedObjective, tol)
}
