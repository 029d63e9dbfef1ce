package heuristics

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"interventionSched/internal/solution"
)

// Repair планирует ровно одно незапланированное вмешательство.
type Repair func(c *solution.Candidate, rng *rand.Rand)

// CheapestTime перебирает все допустимые старты вмешательства i и
// возвращает самый дешёвый. Стоимость равна приращению расширенной
// целевой функции, умноженному на (1 + U[0, nu]). cost зашумлён, o точен.
func CheapestTime(c *solution.Candidate, i int, nu float64, rng *rand.Rand) (t int, cost float64, o solution.Objective) {
	cost = math.MaxFloat64
	t = 1
	base := c.ExtendedObjective
	for s := 1; s <= c.Instance().TMax(i); s++ {
		est := c.EstimateSchedule(i, s)
		d := est.ExtendedObjective - base
		if nu > 0 {
			d *= 1 + rng.Float64()*nu
		}
		if cost-d > solution.Tolerance {
			t, cost, o = s, d, est
		}
	}
	return t, cost, o
}

// UnscheduledSubset возвращает до max(1, batch*n) незапланированных
// вмешательств в порядке среднего значения свойства. При смещении к большим
// значениям таблица просматривается с конца.
func UnscheduledSubset(c *solution.Candidate, prop Property, bias Bias, batch float64) []int {
	inst := c.Instance()
	avg := prop.averages(inst)
	size := max(1, int(batch*float64(inst.N())))

	out := make([]int, 0, size)
	for k := range avg {
		if bias.Descending() {
			k = len(avg) - 1 - k
		}
		i := avg[k].ID
		if c.StartTime(i) != 0 {
			continue
		}
		out = append(out, i)
		if len(out) == size {
			break
		}
	}
	return out
}

type choice struct {
	id    int
	t     int
	value float64
}

func rank(ch []choice) {
	sort.SliceStable(ch, func(a, b int) bool {
		if ch[a].value != ch[b].value {
			return ch[a].value < ch[b].value
		}
		return ch[a].id < ch[b].id
	})
}

func requireUnscheduled(c *solution.Candidate, op string) {
	if !c.HasUnscheduled() {
		panic(fmt.Sprintf("heuristics: %s called on a complete candidate", op))
	}
}

// PropertyAtCheapestTimeInsert: для каждого вмешательства из отбора
// находит самое дешёвое время, ранжирует по значению свойства в этом
// времени и планирует вмешательство выбранного смещением ранга.
func PropertyAtCheapestTimeInsert(nu float64, bias Bias, prop Property, batch float64) (Repair, error) {
	if !prop.AtCheapestTime() {
		return nil, fmt.Errorf("свойство %q не вычисляется в момент старта", prop)
	}
	if err := bias.Validate(); err != nil {
		return nil, err
	}
	if nu < 0 {
		return nil, fmt.Errorf("nu должно быть >= 0 (получено %f)", nu)
	}
	if !(batch > 0 && batch <= 1) {
		return nil, fmt.Errorf("batch должно лежать в интервале (0,1] (получено %f)", batch)
	}

	return func(c *solution.Candidate, rng *rand.Rand) {
		requireUnscheduled(c, "property insert")
		subset := UnscheduledSubset(c, prop, bias, batch)
		ch := make([]choice, len(subset))
		for k, i := range subset {
			t, cost, o := CheapestTime(c, i, nu, rng)
			ch[k] = choice{id: i, t: t}
			switch prop {
			case PropCost:
				ch[k].value = cost
			case PropLength:
				ch[k].value = float64(c.Instance().Duration(i, t))
			case PropRD:
				ch[k].value = o.TotalResourceUse
			}
		}
		rank(ch)
		pick := ch[bias.Pick(len(ch), rng)]
		c.Schedule(pick.id, pick.t)
	}, nil
}

// StaticPropertyInsert ранжирует все незапланированные вмешательства по
// свойству, не зависящему от старта; шум влияет только на выбор времени.
func StaticPropertyInsert(nu float64, bias Bias, prop Property) (Repair, error) {
	if prop != PropExclusions && prop != PropUsage {
		return nil, fmt.Errorf("свойство %q не является статическим", prop)
	}
	if err := bias.Validate(); err != nil {
		return nil, err
	}
	if nu < 0 {
		return nil, fmt.Errorf("nu должно быть >= 0 (получено %f)", nu)
	}

	return func(c *solution.Candidate, rng *rand.Rand) {
		requireUnscheduled(c, "static property insert")
		un := c.Unscheduled()
		ch := make([]choice, len(un))
		for k, i := range un {
			ch[k] = choice{id: i}
			if prop == PropExclusions {
				ch[k].value = float64(len(c.Instance().Excluded(i)))
			} else {
				ch[k].value = float64(c.UnscheduledCnt[i])
			}
		}
		rank(ch)
		i := ch[bias.Pick(len(ch), rng)].id
		t, _, _ := CheapestTime(c, i, nu, rng)
		c.Schedule(i, t)
	}, nil
}

// RandomInsert выбирает вмешательство равномерно.
func RandomInsert(nu float64) Repair {
	return func(c *solution.Candidate, rng *rand.Rand) {
		requireUnscheduled(c, "random insert")
		un := c.Unscheduled()
		i := un[rng.Intn(len(un))]
		t, _, _ := CheapestTime(c, i, nu, rng)
		c.Schedule(i, t)
	}
}

// FixedOrderInsert берёт первое незапланированное вмешательство. Поиска
// по вмешательствам нет, поэтому используется как запасной вариант при
// истёкшем бюджете времени.
func FixedOrderInsert(nu float64) Repair {
	return func(c *solution.Candidate, rng *rand.Rand) {
		i := c.FirstUnscheduled()
		if i < 0 {
			panic("heuristics: fixed order insert called on a complete candidate")
		}
		t, _, _ := CheapestTime(c, i, nu, rng)
		c.Schedule(i, t)
	}
}

// LRD2Insert планирует пару (вмешательство, старт) с наименьшим приростом
// суммарной нагрузки по всему незапланированному множеству.
func LRD2Insert(c *solution.Candidate, _ *rand.Rand) {
	requireUnscheduled(c, "lrd2 insert")
	bestI, bestT := -1, 0
	best := math.MaxFloat64
	for _, i := range c.Unscheduled() {
		for t := 1; t <= c.Instance().TMax(i); t++ {
			inc := c.EstimateSchedule(i, t).TotalResourceUse - c.TotalResourceUse
			if inc+solution.Tolerance < best {
				bestI, bestT, best = i, t, inc
			}
		}
	}
	c.Schedule(bestI, bestT)
}

// Longest2Insert: для каждого вмешательства берётся старт с минимальной
// длительностью, из них планируется самое длинное.
func Longest2Insert(c *solution.Candidate, _ *rand.Rand) {
	requireUnscheduled(c, "longest2 insert")
	bestI, bestT, bestLen := -1, 0, 0
	for _, i := range c.Unscheduled() {
		t, d := shortestStart(c, i)
		if bestI < 0 || d > bestLen {
			bestI, bestT, bestLen = i, t, d
		}
	}
	c.Schedule(bestI, bestT)
}

// Shortest2Insert планирует самую короткую пару (вмешательство, старт).
func Shortest2Insert(c *solution.Candidate, _ *rand.Rand) {
	requireUnscheduled(c, "shortest2 insert")
	bestI, bestT, bestLen := -1, 0, 0
	for _, i := range c.Unscheduled() {
		t, d := shortestStart(c, i)
		if bestI < 0 || d < bestLen {
			bestI, bestT, bestLen = i, t, d
		}
	}
	c.Schedule(bestI, bestT)
}

func shortestStart(c *solution.Candidate, i int) (t, d int) {
	inst := c.Instance()
	t, d = 1, inst.Duration(i, 1)
	for s := 2; s <= inst.TMax(i); s++ {
		if ds := inst.Duration(i, s); ds < d {
			t, d = s, ds
		}
	}
	return t, d
}
