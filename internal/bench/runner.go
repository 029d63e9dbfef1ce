package bench

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"interventionSched/internal/instance"
	"interventionSched/internal/opt"
)

type Algorithm struct {
	Name    string
	Factory func(seed int64) opt.Optimizer
}

type Case struct {
	Interventions int
	T             int
	InstanceSeed  int64
}

type Record struct {
	Algo          string
	Interventions int
	T             int
	Runs          int

	TimeBestMs float64
	TimeMeanMs float64
	TimeStdMs  float64

	ObjectiveBest  float64
	ObjectiveMean  float64
	ObjectiveStd   float64
	ObjectiveWorst float64

	// ValidRuns: запуски без нарушений ограничений.
	ValidRuns      int
	RestartsMean   float64
	IterationsMean float64
}

type Runner struct {
	Runs          int
	BaseSeed      int64
	PerRunTimeout time.Duration // 0 = no timeout
}

func (r Runner) RunCase(ctx context.Context, c Case, algo Algorithm) (Record, error) {
	instRng := randForSeed(c.InstanceSeed)
	inst := instance.RandomInstance(instance.DefaultRandomConfig(c.Interventions, c.T), instRng)

	objectives := make([]float64, 0, r.Runs)
	timesMs := make([]float64, 0, r.Runs)
	restarts := make([]int, 0, r.Runs)
	iterations := make([]int, 0, r.Runs)
	valid := 0

	for i := 0; i < r.Runs; i++ {
		runSeed := r.BaseSeed + int64(i)

		op := algo.Factory(runSeed)
		if op == nil {
			return Record{}, fmt.Errorf("run %d: factory returned nil optimizer", i)
		}

		runCtx := ctx
		cancel := func() {}
		if r.PerRunTimeout > 0 {
			runCtx, cancel = context.WithTimeout(ctx, r.PerRunTimeout)
		}
		start := time.Now()
		res, err := op.Solve(runCtx, inst)
		dur := time.Since(start)
		cancel()

		if err != nil && runCtx.Err() != nil {
			return Record{}, fmt.Errorf("run %d: cancelled/timeout: %w", i, err)
		}
		if err != nil {
			return Record{}, fmt.Errorf("run %d: solve error: %w", i, err)
		}
		if err := checkStarts(inst, res.Starts); err != nil {
			return Record{}, fmt.Errorf("run %d: %w", i, err)
		}

		if res.Best != nil && res.Best.IsValid() {
			valid++
		}
		objectives = append(objectives, res.Objective.ExtendedObjective)
		timesMs = append(timesMs, float64(dur.Microseconds())/1000.0)
		restarts = append(restarts, res.Restarts)
		iterations = append(iterations, res.Iterations)
	}

	objStats := Calc(objectives)
	tStats := Calc(timesMs)

	return Record{
		Algo:          algo.Name,
		Interventions: c.Interventions,
		T:             c.T,
		Runs:          r.Runs,

		TimeBestMs: tStats.Best,
		TimeMeanMs: tStats.Mean,
		TimeStdMs:  tStats.Std,

		ObjectiveBest:  objStats.Best,
		ObjectiveMean:  objStats.Mean,
		ObjectiveStd:   objStats.Std,
		ObjectiveWorst: objStats.Worst,

		ValidRuns:      valid,
		RestartsMean:   Calc(restarts).Mean,
		IterationsMean: Calc(iterations).Mean,
	}, nil
}

func checkStarts(inst *instance.Instance, starts []int) error {
	if len(starts) != inst.N() {
		return fmt.Errorf("invalid starts length %d (want %d)", len(starts), inst.N())
	}
	for i, t := range starts {
		if t < 1 || t > inst.TMax(i) {
			return fmt.Errorf("start of intervention %d = %d out of range [1,%d]", i, t, inst.TMax(i))
		}
	}
	return nil
}

func WriteCSV(path string, records []Record) error {
	if d := dirOf(path); d != "" {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"algo", "interventions", "t", "runs",
		"time_best_ms", "time_mean_ms", "time_std_ms",
		"objective_best", "objective_mean", "objective_std", "objective_worst",
		"valid_runs", "restarts_mean", "iterations_mean",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, r := range records {
		row := []string{
			r.Algo,
			itoa(r.Interventions),
			itoa(r.T),
			itoa(r.Runs),

			ftoa(r.TimeBestMs),
			ftoa(r.TimeMeanMs),
			ftoa(r.TimeStdMs),

			ftoa(r.ObjectiveBest),
			ftoa(r.ObjectiveMean),
			ftoa(r.ObjectiveStd),
			ftoa(r.ObjectiveWorst),

			itoa(r.ValidRuns),
			ftoa(r.RestartsMean),
			ftoa(r.IterationsMean),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
