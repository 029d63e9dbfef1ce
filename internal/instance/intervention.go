package instance

import "fmt"

// Intervention хранит таблицы по ячейкам (старт, смещение). Ячейки старта t
// идут подряд: первая ячейка — cellOff[t-1], их число — Delta[t-1].
type Intervention struct {
	Name  string
	TMax  int
	Delta []int

	resources int
	cellOff   []int
	work      []float64 // cell*resources + r
	riskOff   []int     // len cells+1
	risk      []float64
}

// NewIntervention выделяет нулевые таблицы нагрузки и риска.
// scenarios: число сценариев по периодам (длина T).
func NewIntervention(name string, tmax int, delta []int, resources int, scenarios []int) (*Intervention, error) {
	if tmax <= 0 {
		return nil, fmt.Errorf("tmax must be > 0 (got %d)", tmax)
	}
	if len(delta) != tmax {
		return nil, fmt.Errorf("delta length must be tmax=%d (got %d)", tmax, len(delta))
	}
	T := len(scenarios)
	for t, n := range scenarios {
		if n <= 0 {
			return nil, fmt.Errorf("scenarios[%d] must be > 0 (got %d)", t+1, n)
		}
	}
	iv := &Intervention{
		Name:      name,
		TMax:      tmax,
		Delta:     append([]int(nil), delta...),
		resources: resources,
		cellOff:   make([]int, tmax+1),
	}
	cells := 0
	for s := 1; s <= tmax; s++ {
		d := delta[s-1]
		if d <= 0 {
			return nil, fmt.Errorf("delta[%d] must be > 0 (got %d)", s, d)
		}
		if s+d-1 > T {
			return nil, fmt.Errorf("start %d with duration %d exceeds horizon T=%d", s, d, T)
		}
		iv.cellOff[s-1] = cells
		cells += d
	}
	iv.cellOff[tmax] = cells

	iv.work = make([]float64, cells*resources)
	iv.riskOff = make([]int, cells+1)
	off := 0
	for s := 1; s <= tmax; s++ {
		for k := 0; k < delta[s-1]; k++ {
			c := iv.cellOff[s-1] + k
			iv.riskOff[c] = off
			off += scenarios[s+k-1]
		}
	}
	iv.riskOff[cells] = off
	iv.risk = make([]float64, off)
	return iv, nil
}

func (iv *Intervention) cell(t, start int) (int, error) {
	if start < 1 || start > iv.TMax {
		return 0, fmt.Errorf("start %d out of range [1,%d]", start, iv.TMax)
	}
	k := t - start
	if k < 0 || k >= iv.Delta[start-1] {
		return 0, fmt.Errorf("period %d is not covered by start %d", t, start)
	}
	return iv.cellOff[start-1] + k, nil
}

func (iv *Intervention) SetWorkload(r, t, start int, v float64) error {
	if r < 0 || r >= iv.resources {
		return fmt.Errorf("resource %d out of range [0,%d)", r, iv.resources)
	}
	c, err := iv.cell(t, start)
	if err != nil {
		return err
	}
	iv.work[c*iv.resources+r] = v
	return nil
}

func (iv *Intervention) SetRisk(t, start int, values []float64) error {
	c, err := iv.cell(t, start)
	if err != nil {
		return err
	}
	dst := iv.risk[iv.riskOff[c]:iv.riskOff[c+1]]
	if len(values) != len(dst) {
		return fmt.Errorf("risk at period %d: want %d scenarios (got %d)", t, len(dst), len(values))
	}
	copy(dst, values)
	return nil
}

// Span возвращает первую ячейку и длительность для старта t.
func (iv *Intervention) Span(start int) (first, n int) {
	return iv.cellOff[start-1], iv.Delta[start-1]
}

func (iv *Intervention) Workload(cell, r int) float64 {
	return iv.work[cell*iv.resources+r]
}

// Risk возвращает срез сценариев ячейки; вызывающий не должен его менять.
func (iv *Intervention) Risk(cell int) []float64 {
	return iv.risk[iv.riskOff[cell]:iv.riskOff[cell+1]]
}

func (iv *Intervention) validate(T, resources int, scenarios []int) error {
	if iv.TMax <= 0 || len(iv.Delta) != iv.TMax || len(iv.cellOff) != iv.TMax+1 {
		return fmt.Errorf("intervention tables are not initialised (use NewIntervention)")
	}
	if iv.resources != resources {
		return fmt.Errorf("built for %d resources, instance has %d", iv.resources, resources)
	}
	for s := 1; s <= iv.TMax; s++ {
		if s+iv.Delta[s-1]-1 > T {
			return fmt.Errorf("start %d with duration %d exceeds horizon T=%d", s, iv.Delta[s-1], T)
		}
		first, n := iv.Span(s)
		for k := 0; k < n; k++ {
			if got := len(iv.Risk(first + k)); got != scenarios[s+k-1] {
				return fmt.Errorf("period %d: %d risk scenarios, instance has %d", s+k, got, scenarios[s+k-1])
			}
		}
	}
	return nil
}

// averages: средние по стартам длительность, стоимость (средний по
// сценариям риск, просуммированный по периодам) и суммарная нагрузка.
func (iv *Intervention) averages(resources int) (delta, cost, demand float64) {
	for s := 1; s <= iv.TMax; s++ {
		first, n := iv.Span(s)
		delta += float64(n)
		for k := 0; k < n; k++ {
			c := first + k
			risk := iv.Risk(c)
			sum := 0.0
			for _, v := range risk {
				sum += v
			}
			cost += sum / float64(len(risk))
			for r := 0; r < resources; r++ {
				demand += iv.Workload(c, r)
			}
		}
	}
	m := float64(iv.TMax)
	return delta / m, cost / m, demand / m
}
