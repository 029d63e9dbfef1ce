package alns

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"interventionSched/internal/localsearch"
)

const refineIdle = time.Millisecond

// refiner в отдельной горутине доводит локальным поиском копию текущего
// решения и пытается зафиксировать её в ячейке.
type refiner struct {
	cell   *Cell
	ops    []localsearch.Op
	rng    *rand.Rand
	passes int
	log    *slog.Logger

	commits int
	stale   int
}

// step: один снимок, passes проходов RVND вне блокировки и попытка
// фиксации. Без улучшений фиксация не выполняется.
func (r *refiner) step(ctx context.Context) Commit {
	cur, gen := r.cell.Snapshot()
	improved := 0
	for p := 0; p < r.passes && ctx.Err() == nil; p++ {
		improved += localsearch.RVND(ctx, cur, r.ops, r.rng)
	}
	if improved == 0 {
		return NotBetter
	}
	res := r.cell.CommitIfCurrent(gen, cur)
	switch res {
	case Committed:
		r.commits++
		r.log.Debug("фоновое улучшение", "generation", gen, "objective", cur.Objective)
	case Stale:
		r.stale++
	}
	return res
}

// run крутит step до отмены ctx. Счётчики читаются только после выхода.
func (r *refiner) run(ctx context.Context) {
	for ctx.Err() == nil {
		if r.step(ctx) == Committed {
			continue
		}
		select {
		case <-ctx.Done():
		case <-time.After(refineIdle):
		}
	}
}
