package opt

import (
	"context"
	"time"

	"interventionSched/internal/instance"
	"interventionSched/internal/solution"
)

type Optimizer interface {
	Solve(ctx context.Context, inst *instance.Instance) (Result, error)
}

type Result struct {
	Best      *solution.Candidate
	Starts    []int
	Objective solution.Objective
	Restarts  int

	Evaluations int
	Iterations  int
	Duration    time.Duration
	Meta        map[string]any
}
