package alns

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"interventionSched/internal/heuristics"
	"interventionSched/internal/instance"
	"interventionSched/internal/localsearch"
	"interventionSched/internal/opt"
	"interventionSched/internal/solution"
)

// Solver: адаптивный поиск с большой окрестностью: разрушение, вставка,
// локальный поиск, принятие и перевзвешивание операторов, рестарты при
// застое.
type Solver struct {
	Cfg    Config
	Rng    *rand.Rand
	Logger *slog.Logger
}

// New возвращает ALNS-солвер с проверенной конфигурацией. rng —
// управляющий поток; потоки локального поиска и фонового улучшения
// порождаются из него.
func New(cfg Config, rng *rand.Rand) (*Solver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("генератор случайных чисел не инициализирован (nil)")
	}
	return &Solver{Cfg: cfg, Rng: rng, Logger: slog.Default()}, nil
}

// search: состояние одного запуска Solve.
type search struct {
	cfg   Config
	inst  *instance.Instance
	pools heuristics.Pools
	ops   []localsearch.Op
	log   *slog.Logger

	rng   *rand.Rand
	lsRng *rand.Rand

	repairs  *pool
	destroys *pool
	accept   *annealing

	cell    *Cell
	initial *solution.Candidate
	best    *solution.Candidate
	stall   stallCounter

	iterations  int
	evaluations int
	newBest     int
	improved    int
	annealed    int
	rejected    int
}

// Solve ищет расписание до отмены ctx или до MaxIterations итераций.
// Остановка по ctx штатна: возвращается лучшее найденное.
func (s *Solver) Solve(ctx context.Context, inst *instance.Instance) (opt.Result, error) {
	start := time.Now()

	if !inst.Prepared() {
		if err := inst.Prepare(); err != nil {
			return opt.Result{}, err
		}
	}
	if err := s.Cfg.Validate(); err != nil {
		return opt.Result{}, err
	}
	if s.Rng == nil {
		return opt.Result{}, fmt.Errorf("генератор случайных чисел не инициализирован (nil)")
	}
	pools, ops, err := s.Cfg.operators()
	if err != nil {
		return opt.Result{}, err
	}
	log := s.Logger
	if log == nil {
		log = slog.Default()
	}

	se := &search{
		cfg:      s.Cfg,
		inst:     inst,
		pools:    pools,
		ops:      ops,
		log:      log,
		rng:      s.Rng,
		lsRng:    rand.New(rand.NewSource(s.Rng.Int63())),
		repairs:  newPool(len(pools.Repairs), s.Cfg.InitialWeight, s.Cfg.Lambda),
		destroys: newPool(len(pools.Destroys), s.Cfg.InitialWeight, s.Cfg.Lambda),
		stall:    stallCounter{limit: s.Cfg.ItersMax},
	}
	refRng := rand.New(rand.NewSource(s.Rng.Int63()))

	initial := se.construct(ctx)
	se.initial = initial.Clone()
	se.best = initial.Clone()
	se.cell = NewCell(initial)
	if s.Cfg.Acceptance == AcceptAnnealing {
		se.accept = newAnnealing(initial.ExtendedObjective, s.Cfg)
	}
	log.Debug("начальное решение",
		"construction", pools.Construction.Name,
		"objective", initial.Objective,
	)

	var ref *refiner
	var wg sync.WaitGroup
	refCtx, stopRefiner := context.WithCancel(ctx)
	if s.Cfg.BackgroundRefiner {
		ref = &refiner{cell: se.cell, ops: ops, rng: refRng, passes: s.Cfg.RefinePasses, log: log}
		wg.Add(1)
		go func() {
			defer wg.Done()
			ref.run(refCtx)
		}()
	}

	stopped := "context"
	for ctx.Err() == nil {
		if s.Cfg.MaxIterations > 0 && se.iterations >= s.Cfg.MaxIterations {
			stopped = "iterations"
			break
		}
		se.iterate(ctx)
	}
	stopRefiner()
	wg.Wait()

	se.finalize()

	meta := se.meta()
	meta["stopped"] = stopped
	if ref != nil {
		meta["refiner_commits"] = ref.commits
		meta["refiner_stale"] = ref.stale
	}
	res := opt.Result{
		Best:        se.best,
		Starts:      se.best.Starts(),
		Objective:   se.best.Objective,
		Restarts:    int(se.cell.Generation()),
		Evaluations: se.evaluations,
		Iterations:  se.iterations,
		Duration:    time.Since(start),
		Meta:        meta,
	}
	log.Info("поиск завершён",
		"iterations", res.Iterations,
		"restarts", res.Restarts,
		"objective", res.Objective,
		"duration", res.Duration,
	)
	return res, nil
}

// construct строит решение и достраивает его, если построение оставило
// вмешательства без старта.
func (se *search) construct(ctx context.Context) *solution.Candidate {
	c := se.pools.Construction.Build(ctx, se.inst, se.rng)
	if c.HasUnscheduled() {
		heuristics.Complete(c, se.rng)
	}
	se.evaluations++
	return c
}

// iterate: одна итерация: выбор операторов, разрушение, вставка,
// локальный поиск, принятие, награда и проверка застоя.
func (se *search) iterate(ctx context.Context) {
	se.iterations++
	next, _ := se.cell.Snapshot()

	di := se.destroys.Select(se.rng)
	ri := se.repairs.Select(se.rng)
	destroy := se.pools.Destroys[di].Apply
	repair := se.pools.Repairs[ri].Apply

	// Число снятий тянется один раз на итерацию.
	depth := max(1, int(se.cfg.Depth*float64(next.NumScheduled())))
	for k := 1 + se.rng.Intn(depth); k > 0 && next.NumScheduled() > 0; k-- {
		destroy(next, se.rng)
	}
	for next.HasUnscheduled() {
		if ctx.Err() != nil {
			heuristics.Complete(next, se.rng)
			break
		}
		repair(next, se.rng)
	}
	localsearch.RVND(ctx, next, se.ops, se.lsRng)
	se.evaluations++

	psi, improved := se.evaluate(next)
	se.destroys.Reward(di, psi)
	se.repairs.Reward(ri, psi)

	if se.stall.observe(improved) {
		se.restart(ctx)
	}
}

// evaluate начисляет награду: ω1 за новый глобальный рекорд, ω2 за
// улучшение текущего, ω3 за принятие отжигом, ω4 за отказ. psi — максимум
// сработавших.
func (se *search) evaluate(next *solution.Candidate) (psi float64, improved bool) {
	ext := next.ExtendedObjective
	annealed := false
	se.cell.Swap(next, func(cur *solution.Candidate) bool {
		// Фоновое улучшение могло положить в ячейку решение лучше рекорда.
		se.promote(cur)
		if solution.Improves(ext, cur.ExtendedObjective) {
			improved = true
			return true
		}
		if se.accept != nil && se.accept.Accept(cur.ExtendedObjective, ext, se.rng) {
			annealed = true
			return true
		}
		return false
	})

	record := solution.Improves(ext, se.best.ExtendedObjective)
	if record {
		se.best = next.Clone()
		se.newBest++
		psi = max(psi, se.cfg.Omega1)
		se.log.Debug("новый рекорд",
			"iteration", se.iterations,
			"objective", next.Objective,
		)
	}

	switch {
	case improved:
		se.improved++
		psi = max(psi, se.cfg.Omega2)
	case annealed:
		se.annealed++
		psi = max(psi, se.cfg.Omega3)
	}
	if !record && !improved && !annealed {
		se.rejected++
		psi = se.cfg.Omega4
	}
	return psi, improved
}

// restart открывает новое поколение: стохастическое построение
// выполняется заново, детерминированное возвращает первое решение.
func (se *search) restart(ctx context.Context) {
	se.promote(se.cell.Current())

	var next *solution.Candidate
	if se.pools.Construction.Stochastic {
		next = se.construct(ctx)
		se.promote(next)
	} else {
		next = se.initial.Clone()
	}
	gen := se.cell.Reset(next)
	se.log.Debug("рестарт",
		"iteration", se.iterations,
		"generation", gen,
		"best", se.best.ExtendedObjective,
	)
}

// promote делает c глобальным рекордом, если он лучше больше чем на допуск.
func (se *search) promote(c *solution.Candidate) bool {
	if !solution.Improves(c.ExtendedObjective, se.best.ExtendedObjective) {
		return false
	}
	se.best = c.Clone()
	return true
}

// finalize сверяет текущее решение с рекордом. Фоновое улучшение к этому
// моменту остановлено.
func (se *search) finalize() {
	se.promote(se.cell.Current())
}

func (se *search) meta() map[string]any {
	repairW := make(map[string]float64, len(se.pools.Repairs))
	repairN := make(map[string]int, len(se.pools.Repairs))
	chosen := se.repairs.Chosen()
	for k, w := range se.repairs.Weights() {
		repairW[se.pools.Repairs[k].Name] = w
		repairN[se.pools.Repairs[k].Name] = chosen[k]
	}
	destroyW := make(map[string]float64, len(se.pools.Destroys))
	destroyN := make(map[string]int, len(se.pools.Destroys))
	chosen = se.destroys.Chosen()
	for k, w := range se.destroys.Weights() {
		destroyW[se.pools.Destroys[k].Name] = w
		destroyN[se.pools.Destroys[k].Name] = chosen[k]
	}
	m := map[string]any{
		"construction":    se.pools.Construction.Name,
		"acceptance":      string(se.cfg.Acceptance),
		"repair_weights":  repairW,
		"repair_chosen":   repairN,
		"destroy_weights": destroyW,
		"destroy_chosen":  destroyN,
		"new_best":        se.newBest,
		"improved":        se.improved,
		"annealed":        se.annealed,
		"rejected":        se.rejected,
	}
	if se.accept != nil {
		m["temperature"] = se.accept.Temperature()
	}
	return m
}

// stallCounter считает итерации подряд без улучшения текущего решения.
type stallCounter struct {
	limit int
	n     int
}

// observe возвращает true ровно на limit-й неудачной итерации подряд и
// обнуляет счётчик.
func (s *stallCounter) observe(improved bool) bool {
	if improved {
		s.n = 0
		return false
	}
	s.n++
	if s.n < s.limit {
		return false
	}
	s.n = 0
	return true
}
