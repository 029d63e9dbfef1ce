package heuristics

import (
	"context"
	"math/rand"

	"interventionSched/internal/instance"
	"interventionSched/internal/solution"
)

// Construction строит расписание с нуля.
type Construction func(ctx context.Context, inst *instance.Instance, rng *rand.Rand) *solution.Candidate

// Greedy повторяет вставку, пока есть незапланированные вмешательства.
// После отмены ctx достраивает расписание в фиксированном порядке.
func Greedy(insert Repair) Construction {
	fallback := FixedOrderInsert(0)
	return func(ctx context.Context, inst *instance.Instance, rng *rand.Rand) *solution.Candidate {
		c := solution.New(inst)
		for c.HasUnscheduled() {
			if ctx.Err() != nil {
				fallback(c, rng)
				continue
			}
			insert(c, rng)
		}
		return c
	}
}

// Complete достраивает расписание в фиксированном порядке.
func Complete(c *solution.Candidate, rng *rand.Rand) {
	fallback := FixedOrderInsert(0)
	for c.HasUnscheduled() {
		fallback(c, rng)
	}
}

// DFS: поиск в глубину по допустимым частичным расписаниям в порядке
// вмешательств. Возвращает первое допустимое полное расписание, иначе
// пустое. Пустое возвращается и при отмене ctx.
func DFS(ctx context.Context, inst *instance.Instance, _ *rand.Rand) *solution.Candidate {
	stack := []*solution.Candidate{solution.New(inst)}
	for len(stack) > 0 {
		if ctx.Err() != nil {
			break
		}
		c := stack[len(stack)-1]
		if !c.HasUnscheduled() {
			return c
		}
		stack = stack[:len(stack)-1]

		i := c.FirstUnscheduled()
		// Старты кладутся с конца, поэтому первым раскрывается t = 1.
		for t := inst.TMax(i); t >= 1; t-- {
			next := c.Clone()
			next.Schedule(i, t)
			if validPartial(next) {
				stack = append(stack, next)
			}
		}
	}
	return solution.New(inst)
}

// DFSOptimum перебирает все допустимые расписания и возвращает лучшее по
// целевой функции; при равенстве остаётся найденное раньше. Без
// допустимых расписаний возвращает пустое. После отмены ctx возвращает
// лучшее из найденных к этому моменту.
func DFSOptimum(ctx context.Context, inst *instance.Instance, _ *rand.Rand) *solution.Candidate {
	var best *solution.Candidate
	stack := []*solution.Candidate{solution.New(inst)}
	for len(stack) > 0 && ctx.Err() == nil {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !c.HasUnscheduled() {
			if best == nil || solution.Improves(c.ExtendedObjective, best.ExtendedObjective) {
				best = c
			}
			continue
		}

		i := c.FirstUnscheduled()
		for t := inst.TMax(i); t >= 1; t-- {
			next := c.Clone()
			next.Schedule(i, t)
			if validPartial(next) {
				stack = append(stack, next)
			}
		}
	}
	if best == nil {
		return solution.New(inst)
	}
	return best
}

// validPartial не учитывает недогрузку: у частичного расписания нижние
// границы ресурсов ещё могут добраться позже.
func validPartial(c *solution.Candidate) bool {
	const eps = 1e-9
	if c.HasUnscheduled() {
		return c.WorkloadOveruse <= eps && c.ExclusionPenalty == 0
	}
	return c.IsValid()
}
