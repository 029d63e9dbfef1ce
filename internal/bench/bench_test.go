package bench_test

import (
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interventionSched/internal/alns"
	"interventionSched/internal/bench"
	"interventionSched/internal/opt"
)

func TestStats(t *testing.T) {
	is := bench.Calc([]int{3, 1, 2})
	assert.Equal(t, 1, is.Best)
	assert.Equal(t, 3, is.Worst)
	assert.InDelta(t, 2.0, is.Mean, 1e-12)
	assert.InDelta(t, 1.0, is.Std, 1e-12)

	fs := bench.Calc([]float64{2.5})
	assert.Equal(t, 2.5, fs.Best)
	assert.Equal(t, 2.5, fs.Worst)
	assert.Zero(t, fs.Std)

	assert.Zero(t, bench.Calc[float64](nil).N)
}

func alnsAlgorithm(t *testing.T) bench.Algorithm {
	cfg := alns.DefaultConfig()
	cfg.MaxIterations = 5
	cfg.Moves.FirstImprove = true
	return bench.Algorithm{Name: "ALNS", Factory: func(seed int64) opt.Optimizer {
		s, err := alns.New(cfg, rand.New(rand.NewSource(seed)))
		require.NoError(t, err)
		s.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		return s
	}}
}

func TestRunCaseAndWriteCSV(t *testing.T) {
	r := bench.Runner{Runs: 2, BaseSeed: 10}
	rec, err := r.RunCase(context.Background(), bench.Case{Interventions: 8, T: 6, InstanceSeed: 1}, alnsAlgorithm(t))
	require.NoError(t, err)
	assert.Equal(t, "ALNS", rec.Algo)
	assert.Equal(t, 2, rec.Runs)
	assert.Equal(t, 5.0, rec.IterationsMean)
	assert.LessOrEqual(t, rec.ObjectiveBest, rec.ObjectiveMean)
	assert.LessOrEqual(t, rec.ObjectiveMean, rec.ObjectiveWorst)
	assert.LessOrEqual(t, rec.ValidRuns, 2)

	path := filepath.Join(t.TempDir(), "out", "results.csv")
	require.NoError(t, bench.WriteCSV(path, []bench.Record{rec}))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "algo", rows[0][0])
	assert.Equal(t, "ALNS", rows[1][0])
	assert.Equal(t, "8", rows[1][1])
}
