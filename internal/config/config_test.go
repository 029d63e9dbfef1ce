package config_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"interventionSched/internal/alns"
	"interventionSched/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Server.Port)
	require.Equal(t, 10*time.Second, cfg.ShutdownTimeout())
	require.Equal(t, int64(64<<20), cfg.MaxBodyBytes())
	require.Equal(t, slog.LevelInfo, cfg.Level())

	got := cfg.Solver.ALNS()
	require.Equal(t, alns.DefaultConfig(), got)
	require.NoError(t, got.Validate())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("ALNS_REPAIRS", "cheapest,n1_random")
	t.Setenv("ALNS_DEPTH", "0.3")
	t.Setenv("ALNS_ACCEPTANCE", "annealing")
	t.Setenv("ALNS_FIRST_IMPROVE", "true")
	t.Setenv("ALNS_TIME_LIMIT", "5s")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, slog.LevelDebug, cfg.Level())
	require.Equal(t, "9000", cfg.Server.Port)
	require.Equal(t, 5*time.Second, cfg.Solver.TimeLimit)

	a := cfg.Solver.ALNS()
	require.Equal(t, []string{"cheapest", "n1_random"}, a.Repairs)
	require.Equal(t, 0.3, a.Depth)
	require.Equal(t, alns.AcceptAnnealing, a.Acceptance)
	require.True(t, a.Moves.FirstImprove)
	require.Equal(t, alns.DefaultConfig().Destroys, a.Destroys)
	require.NoError(t, a.Validate())
}

func TestLoadRejectsMalformedValue(t *testing.T) {
	t.Setenv("ALNS_ITERS_MAX", "many")
	_, err := config.Load()
	require.Error(t, err)
}

func TestInvalidNameSurfacesInValidate(t *testing.T) {
	t.Setenv("ALNS_DESTROYS", "random,bogus")
	cfg, err := config.Load()
	require.NoError(t, err)
	require.Error(t, cfg.Solver.ALNS().Validate())
}
