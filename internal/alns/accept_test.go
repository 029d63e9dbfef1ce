package alns

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitTemperature(t *testing.T) {
	require.InDelta(t, 100*0.1/math.Log(0.5), InitTemperature(100, 0.9), 1e-12)
	require.Less(t, InitTemperature(100, 0.9), 0.0)
	require.Zero(t, InitTemperature(0, 0.9))
}

func TestInitCoolingRate(t *testing.T) {
	rho := InitCoolingRate(0.9, 0.999, 100)
	require.Less(t, rho, 1.0)
	require.InDelta(t, 0.01, math.Pow(rho, 100), 1e-9)
}

func TestAnnealingAccept(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PlannedIterations = 10
	a := newAnnealing(100, cfg)
	t0 := a.Temperature()
	require.InDelta(t, math.Abs(InitTemperature(100, cfg.InitialAcceptance)), t0, 1e-12)

	rng := rand.New(rand.NewSource(1))
	require.True(t, a.Accept(10, 5, rng))
	require.True(t, a.Accept(10, 10, rng))
	require.InDelta(t, t0*a.cooling*a.cooling, a.Temperature(), 1e-12)

	// При ничтожной температуре ухудшение не принимается.
	a.temperature = 1e-12
	for k := 0; k < 100; k++ {
		require.False(t, a.Accept(10, 11, rng))
	}

	// При огромной принимается почти всегда.
	a.temperature = 1e12
	a.cooling = 1
	hits := 0
	for k := 0; k < 1000; k++ {
		if a.Accept(10, 11, rng) {
			hits++
		}
	}
	require.Greater(t, hits, 990)
}

func TestAnnealingAcceptFrequency(t *testing.T) {
	a := &annealing{temperature: 1, cooling: 1}
	rng := rand.New(rand.NewSource(2))
	hits := 0
	const n = 20000
	for k := 0; k < n; k++ {
		if a.Accept(0, math.Ln2, rng) {
			hits++
		}
	}
	require.InDelta(t, 0.5, float64(hits)/n, 0.02)
}

func TestAnnealingZeroTemperature(t *testing.T) {
	a := &annealing{temperature: 0, cooling: 0.5}
	rng := rand.New(rand.NewSource(3))
	require.False(t, a.Accept(1, 2, rng))
	require.True(t, a.Accept(2, 1, rng))
}
