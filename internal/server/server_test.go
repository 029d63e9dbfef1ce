package server_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interventionSched/internal/config"
	"interventionSched/internal/server"
)

const example = `{
  "Resources": {"c1": {"min": [0, 0, 0], "max": [10, 10, 10]}},
  "Seasons": {"winter": [1, 2], "summer": [3], "is": []},
  "Interventions": {
    "I1": {"tmax": "2", "Delta": [2, 2, 1],
      "workload": {"c1": {"1": {"1": 4}, "2": {"1": 4, "2": 4}, "3": {"2": 4}}},
      "risk": {"1": {"1": [1, 2]}, "2": {"1": [2, 3], "2": [1, 1]}, "3": {"2": [2, 2, 2]}}},
    "I2": {"tmax": "3", "Delta": [1, 1, 1],
      "workload": {"c1": {"1": {"1": 7}, "2": {"2": 7}, "3": {"3": 7}}},
      "risk": {"1": {"1": [3, 1]}, "2": {"2": [2, 2]}, "3": {"3": [1, 1, 1]}}}
  },
  "Exclusions": {"E1": ["I1", "I2", "winter"]},
  "T": 3, "Scenarios_number": [2, 2, 3], "Quantile": 0.95, "Alpha": 0.5
}`

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := config.Default()
	cfg.Server.MaxBodyMB = 1
	cfg.Server.MaxTimeLimit = 5
	h, err := server.NewHandler(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	h.RegisterRoutes()
	srv := httptest.NewServer(h.Mux)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, req *http.Request) (int, envelope) {
	t.Helper()
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func TestHealthAndOperators(t *testing.T) {
	srv := newServer(t)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	status, env := do(t, req)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)

	req, _ = http.NewRequest(http.MethodGet, srv.URL+"/operators", nil)
	status, env = do(t, req)
	require.Equal(t, http.StatusOK, status)
	var ops struct {
		Construction []string `json:"construction"`
		Repair       []string `json:"repair"`
		Destroy      []string `json:"destroy"`
		LocalSearch  []string `json:"local_search"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &ops))
	assert.Contains(t, ops.Construction, "dfs")
	assert.Contains(t, ops.Repair, "n3_cheapest")
	assert.Len(t, ops.Destroy, 11)
	assert.Contains(t, ops.LocalSearch, "excl_two_shift")
}

func TestSolve(t *testing.T) {
	srv := newServer(t)

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/solve?time_limit=200ms&seed=3", strings.NewReader(example))
	status, env := do(t, req)
	require.Equal(t, http.StatusOK, status, env.Message)
	require.True(t, env.Success)

	var res server.Result
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.True(t, res.Valid)
	require.Len(t, res.Starts, 2)
	assert.Zero(t, res.Objective.ExclusionPenalty)
	assert.Zero(t, res.Objective.WorkloadOveruse)
	assert.Greater(t, res.Iterations, 0)
}

func TestSolveBadRequests(t *testing.T) {
	srv := newServer(t)

	cases := map[string]struct {
		query string
		body  string
	}{
		"malformed time limit": {"time_limit=soon", example},
		"negative time limit":  {"time_limit=-1s", example},
		"time limit too large": {"time_limit=1h", example},
		"malformed seed":       {"time_limit=100ms&seed=x", example},
		"unknown acceptance":   {"time_limit=100ms&acceptance=tabu", example},
		"broken instance":      {"time_limit=100ms", `{"T": 3`},
		"negative scenarios":   {"time_limit=100ms", strings.Replace(example, "[2, 2, 3]", "[-2, 2, 3]", 1)},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodPost, srv.URL+"/solve?"+tc.query, strings.NewReader(tc.body))
			status, env := do(t, req)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.False(t, env.Success)
			assert.NotEmpty(t, env.Message)
		})
	}
}
