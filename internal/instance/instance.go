package instance

import (
	"errors"
	"fmt"
	"sort"
)

// Resource: ресурс с допустимым коридором загрузки по периодам.
type Resource struct {
	Name string
	// Min и Max имеют длину T, индекс t-1.
	Min []float64
	Max []float64
}

// Exclusion: пара взаимоисключающих вмешательств внутри сезона.
type Exclusion struct {
	A, B    int
	Season  string
	Periods []int
}

// Partner: сосед по исключению с маской сезона (индекс = период, длина T+1).
type Partner struct {
	ID     int
	Season []bool
}

// Ranked: значение усреднённого свойства вмешательства.
type Ranked struct {
	ID    int
	Value float64
}

// Instance: неизменяемая модель задачи. После Prepare только читается,
// поэтому может разделяться всеми кандидатами и горутинами.
type Instance struct {
	Name      string
	T         int
	Scenarios []int
	Alpha     float64
	Quantile  float64

	Resources     []Resource
	Interventions []*Intervention
	Exclusions    []Exclusion

	excluded     [][]Partner
	pairs        [][2]int
	avgDeltas    []Ranked
	avgCosts     []Ranked
	avgDemands   []Ranked
	maxScenarios int
	prepared     bool
}

func (inst *Instance) Validate() error {
	if inst == nil {
		return errors.New("instance is nil")
	}
	if inst.T <= 0 {
		return fmt.Errorf("T must be > 0 (got %d)", inst.T)
	}
	if len(inst.Scenarios) != inst.T {
		return fmt.Errorf("scenarios length must be T=%d (got %d)", inst.T, len(inst.Scenarios))
	}
	for t, s := range inst.Scenarios {
		if s <= 0 {
			return fmt.Errorf("scenarios[%d] must be > 0 (got %d)", t+1, s)
		}
	}
	if inst.Alpha < 0 || inst.Alpha > 1 {
		return fmt.Errorf("alpha must be in [0,1] (got %f)", inst.Alpha)
	}
	if inst.Quantile <= 0 || inst.Quantile > 1 {
		return fmt.Errorf("quantile must be in (0,1] (got %f)", inst.Quantile)
	}
	if len(inst.Interventions) == 0 {
		return errors.New("instance has no interventions")
	}
	for r, res := range inst.Resources {
		if len(res.Min) != inst.T || len(res.Max) != inst.T {
			return fmt.Errorf("resource %q: min/max length must be T=%d", res.Name, inst.T)
		}
		for t := range res.Min {
			if res.Min[t] > res.Max[t] {
				return fmt.Errorf("resource %d (%q): min > max at period %d", r, res.Name, t+1)
			}
		}
	}
	for i, iv := range inst.Interventions {
		if iv == nil {
			return fmt.Errorf("intervention %d is nil", i)
		}
		if err := iv.validate(inst.T, len(inst.Resources), inst.Scenarios); err != nil {
			return fmt.Errorf("intervention %d (%q): %w", i, iv.Name, err)
		}
	}
	n := len(inst.Interventions)
	for k, e := range inst.Exclusions {
		if e.A < 0 || e.A >= n || e.B < 0 || e.B >= n {
			return fmt.Errorf("exclusion %d: intervention out of range [0,%d)", k, n)
		}
		if e.A == e.B {
			return fmt.Errorf("exclusion %d: intervention %d excludes itself", k, e.A)
		}
		for _, t := range e.Periods {
			if t < 1 || t > inst.T {
				return fmt.Errorf("exclusion %d: period %d out of range [1,%d]", k, t, inst.T)
			}
		}
	}
	return nil
}

// Prepare проверяет экземпляр и один раз строит производные таблицы:
// списки исключений и ранжированные средние свойства.
func (inst *Instance) Prepare() error {
	if err := inst.Validate(); err != nil {
		return err
	}
	n := len(inst.Interventions)

	inst.maxScenarios = 0
	for _, s := range inst.Scenarios {
		if s > inst.maxScenarios {
			inst.maxScenarios = s
		}
	}

	inst.excluded = make([][]Partner, n)
	inst.pairs = inst.pairs[:0]
	for _, e := range inst.Exclusions {
		mask := make([]bool, inst.T+1)
		for _, t := range e.Periods {
			mask[t] = true
		}
		inst.excluded[e.A] = append(inst.excluded[e.A], Partner{ID: e.B, Season: mask})
		inst.excluded[e.B] = append(inst.excluded[e.B], Partner{ID: e.A, Season: mask})
		inst.pairs = append(inst.pairs, [2]int{e.A, e.B})
	}

	inst.avgDeltas = make([]Ranked, n)
	inst.avgCosts = make([]Ranked, n)
	inst.avgDemands = make([]Ranked, n)
	for i, iv := range inst.Interventions {
		d, c, w := iv.averages(len(inst.Resources))
		inst.avgDeltas[i] = Ranked{ID: i, Value: d}
		inst.avgCosts[i] = Ranked{ID: i, Value: c}
		inst.avgDemands[i] = Ranked{ID: i, Value: w}
	}
	sortRanked(inst.avgDeltas)
	sortRanked(inst.avgCosts)
	sortRanked(inst.avgDemands)

	inst.prepared = true
	return nil
}

func (inst *Instance) MustPrepare() *Instance {
	if err := inst.Prepare(); err != nil {
		panic(err)
	}
	return inst
}

func (inst *Instance) Prepared() bool { return inst != nil && inst.prepared }

func (inst *Instance) N() int { return len(inst.Interventions) }

func (inst *Instance) TMax(i int) int { return inst.Interventions[i].TMax }

// Duration возвращает длительность вмешательства i при старте в t (t >= 1).
func (inst *Instance) Duration(i, t int) int { return inst.Interventions[i].Delta[t-1] }

func (inst *Instance) Excluded(i int) []Partner { return inst.excluded[i] }

func (inst *Instance) ExclusionPairs() [][2]int {
	out := make([][2]int, len(inst.pairs))
	copy(out, inst.pairs)
	return out
}

func (inst *Instance) MaxScenarios() int { return inst.maxScenarios }

// AvgDeltas, AvgCosts и AvgDemands возвращают копии таблиц по возрастанию.
func (inst *Instance) AvgDeltas() []Ranked  { return cloneRanked(inst.avgDeltas) }
func (inst *Instance) AvgCosts() []Ranked   { return cloneRanked(inst.avgCosts) }
func (inst *Instance) AvgDemands() []Ranked { return cloneRanked(inst.avgDemands) }

// InterventionIDs: упорядоченная последовательность идентификаторов.
func (inst *Instance) InterventionIDs() []int {
	ids := make([]int, len(inst.Interventions))
	for i := range ids {
		ids[i] = i
	}
	return ids
}

func sortRanked(r []Ranked) {
	sort.SliceStable(r, func(a, b int) bool {
		if r[a].Value != r[b].Value {
			return r[a].Value < r[b].Value
		}
		return r[a].ID < r[b].ID
	})
}

func cloneRanked(r []Ranked) []Ranked {
	out := make([]Ranked, len(r))
	copy(out, r)
	return out
}
