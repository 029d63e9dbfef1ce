package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"interventionSched/internal/alns"
	"interventionSched/internal/heuristics"
	"interventionSched/internal/instance"
	"interventionSched/internal/localsearch"
	"interventionSched/internal/solution"
)

// ErrBadRequest помечает ошибки входных данных.
var ErrBadRequest = errors.New("некорректный запрос")

// Request: параметры одного решения.
type Request struct {
	TimeLimit  time.Duration `validate:"gt=0"`
	Seed       int64
	Acceptance string `validate:"omitempty,oneof=greedy annealing"`
}

type Result struct {
	Instance    string             `json:"instance"`
	Objective   solution.Objective `json:"objective"`
	Valid       bool               `json:"valid"`
	Restarts    int                `json:"restarts"`
	Iterations  int                `json:"iterations"`
	Evaluations int                `json:"evaluations"`
	DurationMs  int64              `json:"duration_ms"`
	Starts      map[string]int     `json:"starts"`
}

// Solve разбирает экземпляр и запускает ALNS на req.TimeLimit. Ошибки
// входа обёрнуты в ErrBadRequest.
func (h *Handler) Solve(ctx context.Context, body []byte, req Request) (Result, error) {
	if err := h.validate.Struct(req); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	if limit := h.config.MaxTimeLimit(); limit > 0 && req.TimeLimit > limit {
		return Result{}, fmt.Errorf("%w: time_limit превышает %s", ErrBadRequest, limit)
	}
	inst, err := instance.ParseBytes(body)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}

	cfg := h.config.Solver.ALNS()
	if req.Acceptance != "" {
		cfg.Acceptance = alns.Acceptance(req.Acceptance)
	}
	solver, err := alns.New(cfg, rand.New(rand.NewSource(req.Seed)))
	if err != nil {
		return Result{}, err
	}
	solver.Logger = h.logger

	ctx, cancel := context.WithTimeout(ctx, req.TimeLimit)
	defer cancel()
	res, err := solver.Solve(ctx, inst)
	if err != nil {
		return Result{}, err
	}

	starts := make(map[string]int, inst.N())
	for i, t := range res.Starts {
		starts[inst.Interventions[i].Name] = t
	}
	return Result{
		Instance:    inst.Name,
		Objective:   res.Objective,
		Valid:       res.Best.IsValid(),
		Restarts:    res.Restarts,
		Iterations:  res.Iterations,
		Evaluations: res.Evaluations,
		DurationMs:  res.Duration.Milliseconds(),
		Starts:      starts,
	}, nil
}

// SolveInstance: POST /solve?time_limit=<dur>&seed=<n>&acceptance=<policy>,
// тело: экземпляр в формате ROADEF.
func (h *Handler) SolveInstance(w http.ResponseWriter, r *http.Request) {
	req := Request{TimeLimit: h.config.Solver.TimeLimit, Seed: h.config.Solver.Seed}
	q := r.URL.Query()
	if v := q.Get("time_limit"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			h.badRequest(w, r, fmt.Errorf("time_limit: %w", err))
			return
		}
		req.TimeLimit = d
	}
	if v := q.Get("seed"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			h.badRequest(w, r, fmt.Errorf("seed: %w", err))
			return
		}
		req.Seed = seed
	}
	req.Acceptance = q.Get("acceptance")

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.config.MaxBodyBytes()))
	if err != nil {
		h.badRequest(w, r, fmt.Errorf("тело запроса: %w", err))
		return
	}

	res, err := h.Solve(r.Context(), body, req)
	switch {
	case errors.Is(err, ErrBadRequest):
		h.badRequest(w, r, err)
	case err != nil:
		h.internalServerError(w, r, err)
	default:
		h.successResponse(w, r, "решение найдено", res)
	}
}

type operatorsResponse struct {
	Construction []string `json:"construction"`
	Repair       []string `json:"repair"`
	Destroy      []string `json:"destroy"`
	LocalSearch  []string `json:"local_search"`
}

func (h *Handler) Operators(w http.ResponseWriter, r *http.Request) {
	reg, err := heuristics.NewRegistry(h.config.Solver.ALNS().Heuristics)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	h.successResponse(w, r, "", operatorsResponse{
		Construction: reg.ConstructionNames(),
		Repair:       reg.RepairNames(),
		Destroy:      reg.DestroyNames(),
		LocalSearch:  localsearch.OperatorNames(),
	})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.successResponse(w, r, "ok", nil)
}
