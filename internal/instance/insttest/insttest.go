// Package insttest собирает маленькие экземпляры для тестов.
package insttest

import (
	"fmt"
	"testing"

	"interventionSched/internal/instance"
)

// Disjoint: n вмешательств с горизонтом n; у вмешательства k свой ресурс,
// ёмкость которого ненулевая только в периоде k+1. Допустимый старт у
// каждого ровно один, исключений нет.
func Disjoint(t testing.TB, n int) *instance.Instance {
	t.Helper()
	inst := &instance.Instance{Name: "disjoint", T: n, Scenarios: fill(n, 2), Alpha: 0.5, Quantile: 0.95}
	for k := 0; k < n; k++ {
		res := instance.Resource{Name: fmt.Sprintf("c%d", k), Min: make([]float64, n), Max: make([]float64, n)}
		res.Max[k] = 1
		inst.Resources = append(inst.Resources, res)
	}
	for k := 0; k < n; k++ {
		iv, err := instance.NewIntervention(fmt.Sprintf("I%d", k), n, fill(n, 1), n, inst.Scenarios)
		check(t, err)
		for s := 1; s <= n; s++ {
			check(t, iv.SetWorkload(k, s, s, 1))
			check(t, iv.SetRisk(s, s, []float64{float64(k + s), float64(k + 2*s)}))
		}
		inst.Interventions = append(inst.Interventions, iv)
	}
	check(t, inst.Prepare())
	return inst
}

// ExclusivePair: два взаимоисключающих вмешательства, у которых один
// допустимый старт (tmax = 1) и общий период.
func ExclusivePair(t testing.TB) *instance.Instance {
	t.Helper()
	inst := &instance.Instance{Name: "exclusive", T: 1, Scenarios: []int{1}, Alpha: 0.5, Quantile: 0.5}
	for k := 0; k < 2; k++ {
		iv, err := instance.NewIntervention(fmt.Sprintf("I%d", k), 1, []int{1}, 0, inst.Scenarios)
		check(t, err)
		check(t, iv.SetRisk(1, 1, []float64{float64(k + 1)}))
		inst.Interventions = append(inst.Interventions, iv)
	}
	inst.Exclusions = []instance.Exclusion{{A: 0, B: 1, Season: "full", Periods: []int{1}}}
	check(t, inst.Prepare())
	return inst
}

// ShiftablePair: два взаимоисключающих вмешательства на горизонте 2, оба
// могут стартовать в 1 или 2. Разнести их во времени выгодно.
func ShiftablePair(t testing.TB) *instance.Instance {
	t.Helper()
	inst := &instance.Instance{Name: "shiftable", T: 2, Scenarios: []int{1, 1}, Alpha: 0.5, Quantile: 0.5}
	for k := 0; k < 2; k++ {
		iv, err := instance.NewIntervention(fmt.Sprintf("I%d", k), 2, []int{1, 1}, 0, inst.Scenarios)
		check(t, err)
		check(t, iv.SetRisk(1, 1, []float64{1}))
		check(t, iv.SetRisk(2, 2, []float64{2}))
		inst.Interventions = append(inst.Interventions, iv)
	}
	inst.Exclusions = []instance.Exclusion{{A: 0, B: 1, Season: "full", Periods: []int{1, 2}}}
	check(t, inst.Prepare())
	return inst
}

// Ranking: три вмешательства на горизонте 3 с одним сценарием и одним
// ресурсом без ограничений. Альфа 1, поэтому целевое значение равно
// суммарному риску, делённому на 3. Исключения с пустым сезоном дают
// только число соседей: I0 и I1 по одному, I2 два.
//
//	I0: tmax 3, длительность 1, риск по стартам 3, 1, 2, нагрузка 5.
//	I1: tmax 2, длительности 2 и 1, риск 1+1 или 0.5, нагрузка 2 в ячейке.
//	I2: tmax 1, длительность 3, риск 1 в каждом периоде, нагрузка 1.
//
// Самые дешёвые старты: I0 в 2, I1 в 2, I2 в 1.
func Ranking(t testing.TB) *instance.Instance {
	t.Helper()
	inst := &instance.Instance{Name: "ranking", T: 3, Scenarios: []int{1, 1, 1}, Alpha: 1, Quantile: 1}
	inst.Resources = []instance.Resource{{Name: "c", Min: make([]float64, 3), Max: []float64{100, 100, 100}}}

	i0, err := instance.NewIntervention("I0", 3, []int{1, 1, 1}, 1, inst.Scenarios)
	check(t, err)
	for s, r := range []float64{3, 1, 2} {
		check(t, i0.SetWorkload(0, s+1, s+1, 5))
		check(t, i0.SetRisk(s+1, s+1, []float64{r}))
	}

	i1, err := instance.NewIntervention("I1", 2, []int{2, 1}, 1, inst.Scenarios)
	check(t, err)
	for p := 1; p <= 2; p++ {
		check(t, i1.SetWorkload(0, p, 1, 2))
		check(t, i1.SetRisk(p, 1, []float64{1}))
	}
	check(t, i1.SetWorkload(0, 2, 2, 2))
	check(t, i1.SetRisk(2, 2, []float64{0.5}))

	i2, err := instance.NewIntervention("I2", 1, []int{3}, 1, inst.Scenarios)
	check(t, err)
	for p := 1; p <= 3; p++ {
		check(t, i2.SetWorkload(0, p, 1, 1))
		check(t, i2.SetRisk(p, 1, []float64{1}))
	}

	inst.Interventions = []*instance.Intervention{i0, i1, i2}
	inst.Exclusions = []instance.Exclusion{
		{A: 0, B: 2, Season: "none"},
		{A: 1, B: 2, Season: "none"},
	}
	check(t, inst.Prepare())
	return inst
}

func fill(n, v int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func check(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("insttest: %v", err)
	}
}
