package alns

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPoolSelectUniform(t *testing.T) {
	p := newPool(4, 1, 0.9)
	rng := rand.New(rand.NewSource(1))
	counts := make([]int, 4)
	const n = 40000
	for k := 0; k < n; k++ {
		counts[p.Select(rng)]++
	}
	for i, c := range counts {
		require.InDelta(t, n/4, c, 600, "index %d", i)
	}
	require.Equal(t, counts, p.Chosen())
}

func TestPoolSelectProportional(t *testing.T) {
	p := newPool(2, 1, 0.5)
	p.weights[1] = 3
	p.sum = 4
	rng := rand.New(rand.NewSource(2))
	hits := 0
	const n = 20000
	for k := 0; k < n; k++ {
		if p.Select(rng) == 0 {
			hits++
		}
	}
	require.InDelta(t, 0.25, float64(hits)/n, 0.02)
}

func TestPoolSelectLastThresholdIsOne(t *testing.T) {
	// Сумма завышена: пороги не доходят до 1, но последний считается равным 1.
	p := newPool(3, 1, 0.9)
	p.sum = 300
	rng := rand.New(rand.NewSource(3))
	for k := 0; k < 100; k++ {
		require.Contains(t, []int{0, 1, 2}, p.Select(rng))
	}
	require.Greater(t, p.Chosen()[2], 90)
}

func TestPoolReward(t *testing.T) {
	p := newPool(3, 1, 0.9)
	p.Reward(1, 3)
	require.InDelta(t, 0.9+0.3, p.Weights()[1], 1e-12)
	require.Equal(t, 1.0, p.Weights()[0])

	// Повторная награда монотонно тянет вес к psi.
	prev := p.Weights()[1]
	for k := 0; k < 50; k++ {
		p.Reward(1, 3)
		w := p.Weights()[1]
		require.Greater(t, w, prev)
		require.Less(t, w, 3.0)
		prev = w
	}
}

func TestPoolSumIsMaintained(t *testing.T) {
	p := newPool(5, 1, 0.8)
	rng := rand.New(rand.NewSource(4))
	psis := []float64{3, 2, 1, 0.5}
	for k := 0; k < 1000; k++ {
		p.Reward(rng.Intn(5), psis[rng.Intn(len(psis))])
	}
	total := 0.0
	for _, w := range p.Weights() {
		require.Greater(t, w, 0.0)
		total += w
	}
	require.InDelta(t, total, p.Sum(), 1e-9)
}
