package localsearch

import (
	"context"
	"math/rand"

	"interventionSched/internal/solution"
)

// VND перебирает операторы в фиксированном порядке и после каждого
// улучшения начинает проход заново. Возвращает число улучшений.
func VND(ctx context.Context, c *solution.Candidate, ops []Op, rng *rand.Rand) int {
	improvements := 0
	for ctx.Err() == nil {
		improved := false
		for _, op := range ops {
			if op.Apply(c, rng) {
				improved = true
				break
			}
		}
		if !improved {
			break
		}
		improvements++
	}
	return improvements
}

// RVND выбирает оператор равномерно среди доступных. Неудачный оператор
// становится недоступен, улучшение делает доступными все. Завершается,
// когда доступных не осталось или отменён ctx.
func RVND(ctx context.Context, c *solution.Candidate, ops []Op, rng *rand.Rand) int {
	available := make([]bool, len(ops))
	for k := range available {
		available[k] = true
	}
	left := len(ops)
	improvements := 0

	for left > 0 && ctx.Err() == nil {
		k := randomAvailable(available, left, rng)
		if ops[k].Apply(c, rng) {
			improvements++
			for j := range available {
				available[j] = true
			}
			left = len(ops)
			continue
		}
		available[k] = false
		left--
	}
	return improvements
}

func randomAvailable(available []bool, left int, rng *rand.Rand) int {
	r := rng.Intn(left)
	for k, ok := range available {
		if !ok {
			continue
		}
		if r == 0 {
			return k
		}
		r--
	}
	panic("localsearch: availability count out of sync")
}
