package heuristics

import (
	"fmt"
	"math/rand"

	"interventionSched/internal/solution"
)

// Destroy снимает ровно одно запланированное вмешательство и увеличивает
// его счётчик снятий.
type Destroy func(c *solution.Candidate, rng *rand.Rand)

// Extreme: какой край свойства снимается.
type Extreme uint8

const (
	Least Extreme = iota
	Most
)

func unschedule(c *solution.Candidate, i int) {
	c.Unschedule(i)
	c.UnscheduledCnt[i]++
}

func requireScheduled(c *solution.Candidate, op string) {
	if c.NumScheduled() == 0 {
		panic(fmt.Sprintf("heuristics: %s called on an empty schedule", op))
	}
}

// RandomRemove снимает равномерно выбранное вмешательство.
func RandomRemove(c *solution.Candidate, rng *rand.Rand) {
	requireScheduled(c, "random remove")
	s := c.Scheduled()
	unschedule(c, s[rng.Intn(len(s))])
}

// Remove: полный проход по запланированным вмешательствам со снятием
// экстремального по свойству. Значения:
//   - cost: выигрыш расширенной целевой функции от снятия;
//   - rd: снимаемая нагрузка на ресурсы;
//   - length: длительность при текущем старте;
//   - exclusions_cnt, usage: как у вставки.
//
// При равенстве в пределах допуска побеждает первое вмешательство.
func Remove(prop Property, ext Extreme) (Destroy, error) {
	if _, err := ParseProperty(string(prop)); err != nil {
		return nil, err
	}
	if ext != Least && ext != Most {
		return nil, fmt.Errorf("неизвестное направление %d", ext)
	}
	name := fmt.Sprintf("remove(%s)", prop)

	return func(c *solution.Candidate, _ *rand.Rand) {
		requireScheduled(c, name)
		best := -1
		bestVal := 0.0
		for _, i := range c.Scheduled() {
			v := removalValue(c, i, prop)
			if best < 0 ||
				(ext == Most && v-bestVal > solution.Tolerance) ||
				(ext == Least && bestVal-v > solution.Tolerance) {
				best, bestVal = i, v
			}
		}
		unschedule(c, best)
	}, nil
}

func removalValue(c *solution.Candidate, i int, prop Property) float64 {
	switch prop {
	case PropCost:
		return c.ExtendedObjective - c.EstimateUnschedule(i).ExtendedObjective
	case PropRD:
		return c.TotalResourceUse - c.EstimateUnschedule(i).TotalResourceUse
	case PropLength:
		return float64(c.Instance().Duration(i, c.StartTime(i)))
	case PropExclusions:
		return float64(len(c.Instance().Excluded(i)))
	default:
		return float64(c.UnscheduledCnt[i])
	}
}
