package instance_test

import (
	"bytes"
	"math/rand"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interventionSched/internal/instance"
	"interventionSched/internal/solution"
)

func TestParseExample(t *testing.T) {
	inst, err := instance.Parse("testdata/example.json")
	require.NoError(t, err)
	require.True(t, inst.Prepared())

	assert.Equal(t, "example", inst.Name)
	assert.Equal(t, 3, inst.T)
	assert.Equal(t, []int{2, 2, 3}, inst.Scenarios)
	assert.Equal(t, 3, inst.MaxScenarios())
	assert.Equal(t, 0.5, inst.Alpha)
	assert.Equal(t, 0.95, inst.Quantile)
	require.Equal(t, 2, inst.N())
	require.Len(t, inst.Resources, 1)

	assert.Equal(t, 2, inst.TMax(0))
	assert.Equal(t, 3, inst.TMax(1))
	assert.Equal(t, []int{2, 2}, inst.Interventions[0].Delta)
	assert.Equal(t, 2, inst.Duration(0, 1))

	require.Equal(t, [][2]int{{0, 1}}, inst.ExclusionPairs())
	assert.Equal(t, []int{1, 2}, inst.Exclusions[0].Periods)
	require.Len(t, inst.Excluded(1), 1)
	assert.Equal(t, 0, inst.Excluded(1)[0].ID)

	first, n := inst.Interventions[0].Span(2)
	require.Equal(t, 2, n)
	assert.Equal(t, 4.0, inst.Interventions[0].Workload(first+1, 0))
	assert.Equal(t, []float64{2, 2, 2}, inst.Interventions[0].Risk(first+1))
}

func TestParsedExampleFeasibility(t *testing.T) {
	inst, err := instance.Parse("testdata/example.json")
	require.NoError(t, err)

	c := solution.New(inst)
	c.Schedule(0, 1)
	c.Schedule(1, 3)
	assert.True(t, c.IsValid())

	c = solution.New(inst)
	c.Schedule(0, 1)
	c.Schedule(1, 1)
	assert.False(t, c.IsValid())
	assert.Equal(t, 1, c.ExclusionPenalty)
	assert.InDelta(t, 1.0, c.WorkloadOveruse, 1e-12)
}

func TestParseErrors(t *testing.T) {
	_, err := instance.ParseBytes([]byte(`{"T": 3`))
	require.Error(t, err)

	_, err = instance.ParseBytes([]byte(`{"T": 0}`))
	require.Error(t, err)

	data, err := os.ReadFile("testdata/example.json")
	require.NoError(t, err)
	bad := bytes.Replace(data, []byte(`"I1", "I2", "winter"`), []byte(`"I1", "I9", "winter"`), 1)
	_, err = instance.ParseBytes(bad)
	require.Error(t, err)

	bad = bytes.Replace(data, []byte(`"c1": {"1": {"1": 7}`), []byte(`"c9": {"1": {"1": 7}`), 1)
	_, err = instance.ParseBytes(bad)
	require.Error(t, err)

	bad = bytes.Replace(data, []byte(`[2, 2, 3]`), []byte(`[-2, 2, 3]`), 1)
	require.NotPanics(t, func() {
		_, err = instance.ParseBytes(bad)
	})
	require.Error(t, err)

	_, err = instance.Parse("testdata/missing.json")
	require.Error(t, err)
}

func TestNonPositiveScenarioCountIsAnError(t *testing.T) {
	data := []byte(`{"T": 2, "Scenarios_number": [-3, 1], "Alpha": 0.5, "Quantile": 0.95,
		"Resources": {}, "Seasons": {}, "Exclusions": {},
		"Interventions": {"a": {"tmax": "1", "Delta": [1, 1]}}}`)
	require.NotPanics(t, func() {
		_, err := instance.ParseBytes(data)
		require.Error(t, err)
	})

	data = bytes.Replace(data, []byte("[-3, 1]"), []byte("[0, 1]"), 1)
	_, err := instance.ParseBytes(data)
	require.Error(t, err)

	_, err = instance.NewIntervention("a", 1, []int{1}, 0, []int{-3, 1})
	require.Error(t, err)
}

func TestWriteSolution(t *testing.T) {
	inst, err := instance.Parse("testdata/example.json")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, instance.WriteSolution(&buf, inst, []int{1, 3}))
	assert.Equal(t, "I1 1\nI2 3\n", buf.String())

	buf.Reset()
	require.NoError(t, instance.WriteSolution(&buf, inst, []int{0, 2}))
	assert.Equal(t, "I2 2\n", buf.String())

	require.Error(t, instance.WriteSolution(&buf, inst, []int{1}))
}

func TestRandomInstance(t *testing.T) {
	cfg := instance.DefaultRandomConfig(15, 12)
	a := instance.RandomInstance(cfg, rand.New(rand.NewSource(3)))
	b := instance.RandomInstance(cfg, rand.New(rand.NewSource(3)))

	if !a.Prepared() {
		require.NoError(t, a.Prepare())
	}
	require.NoError(t, a.Validate())
	require.Equal(t, 15, a.N())
	require.Equal(t, 12, a.T)
	for i := 0; i < a.N(); i++ {
		for s := 1; s <= a.TMax(i); s++ {
			require.LessOrEqual(t, s+a.Duration(i, s)-1, a.T)
		}
	}
	assert.Equal(t, len(a.Exclusions), len(b.Exclusions))
	assert.Equal(t, a.Interventions[3].Delta, b.Interventions[3].Delta)
}

func TestValidateRejects(t *testing.T) {
	inst, err := instance.Parse("testdata/example.json")
	require.NoError(t, err)

	inst.Quantile = 0
	require.Error(t, inst.Validate())
	inst.Quantile = 0.95

	inst.Exclusions = append(inst.Exclusions, instance.Exclusion{A: 1, B: 1, Periods: []int{1}})
	require.Error(t, inst.Validate())
	inst.Exclusions = inst.Exclusions[:1]

	inst.Resources[0].Min[2] = 11
	require.Error(t, inst.Validate())
}

func TestAveragesAreRanked(t *testing.T) {
	inst, err := instance.Parse("testdata/example.json")
	require.NoError(t, err)
	for _, ranked := range [][]instance.Ranked{inst.AvgDeltas(), inst.AvgCosts(), inst.AvgDemands()} {
		require.Len(t, ranked, 2)
		assert.LessOrEqual(t, ranked[0].Value, ranked[1].Value)
	}
	// I1 длиннее I2 при любом старте.
	assert.Equal(t, 1, inst.AvgDeltas()[0].ID)
}
