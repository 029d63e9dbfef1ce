package heuristics

import (
	"fmt"
	"math"
	"math/rand"

	"interventionSched/internal/instance"
)

// Property: ранжируемое свойство вмешательства.
type Property string

const (
	// Вычисляются в самом дешёвом времени старта.
	PropCost   Property = "cost"
	PropLength Property = "length"
	PropRD     Property = "rd"

	// Не требуют пробного планирования.
	PropExclusions Property = "exclusions_cnt"
	PropUsage      Property = "usage"
)

// ParseProperty возвращает ошибку на неизвестной строке. Все операторы
// собираются при старте, поэтому в горячем цикле свойства уже проверены.
func ParseProperty(s string) (Property, error) {
	switch p := Property(s); p {
	case PropCost, PropLength, PropRD, PropExclusions, PropUsage:
		return p, nil
	default:
		return "", fmt.Errorf("неизвестное свойство %q", s)
	}
}

// AtCheapestTime сообщает, что значение свойства зависит от времени старта.
func (p Property) AtCheapestTime() bool {
	return p == PropCost || p == PropLength || p == PropRD
}

// averages возвращает таблицу средних для предварительного отбора.
func (p Property) averages(inst *instance.Instance) []instance.Ranked {
	switch p {
	case PropCost:
		return inst.AvgCosts()
	case PropLength:
		return inst.AvgDeltas()
	case PropRD:
		return inst.AvgDemands()
	}
	panic(fmt.Sprintf("heuristics: property %q has no average table", p))
}

type BiasKind uint8

const (
	BiasLowest BiasKind = iota
	BiasHighest
	BiasInterpolated
)

// Bias задаёт распределение выбора по рангу: ранг k (0 — наименьшее
// значение свойства) выбирается с весом mu^k.
type Bias struct {
	Kind BiasKind
	Mu   float64
}

var (
	Lowest  = Bias{Kind: BiasLowest}
	Highest = Bias{Kind: BiasHighest}
)

func Interpolated(mu float64) Bias { return Bias{Kind: BiasInterpolated, Mu: mu} }

func (b Bias) Validate() error {
	switch b.Kind {
	case BiasLowest, BiasHighest:
		return nil
	case BiasInterpolated:
		if !(b.Mu > 0) || math.IsInf(b.Mu, 0) {
			return fmt.Errorf("mu должно быть конечным и > 0 (получено %f)", b.Mu)
		}
		return nil
	default:
		return fmt.Errorf("неизвестный вид смещения %d", b.Kind)
	}
}

// Descending: предпочитаются большие значения свойства.
func (b Bias) Descending() bool {
	return b.Kind == BiasHighest || (b.Kind == BiasInterpolated && b.Mu > 1)
}

func (b Bias) String() string {
	switch b.Kind {
	case BiasLowest:
		return "lowest"
	case BiasHighest:
		return "highest"
	default:
		return fmt.Sprintf("mu=%g", b.Mu)
	}
}

// Pick выбирает ранг из [0, n). Для mu > 1 веса считаются относительно
// старшего ранга, mu^(k-(n-1)), поэтому переполнения нет.
func (b Bias) Pick(n int, rng *rand.Rand) int {
	if n <= 0 {
		panic("heuristics: Pick on empty ranking")
	}
	switch b.Kind {
	case BiasLowest:
		return 0
	case BiasHighest:
		return n - 1
	}
	if n == 1 {
		return 0
	}

	w := make([]float64, n)
	sum := 0.0
	for k := range w {
		if b.Mu > 1 {
			w[k] = math.Pow(b.Mu, float64(k-(n-1)))
		} else {
			w[k] = math.Pow(b.Mu, float64(k))
		}
		sum += w[k]
	}
	r := rng.Float64() * sum
	for k, v := range w {
		r -= v
		if r < 0 {
			return k
		}
	}
	if b.Mu > 1 {
		return n - 1
	}
	return 0
}

// Params: общие параметры семейства операторов.
type Params struct {
	// Noise: верхняя граница мультипликативного шума (уровни n1 и n3).
	Noise float64
	// MuLow и MuHigh: смещения уровней n2 и n3.
	MuLow  float64
	MuHigh float64

	// Доли экземпляра в предварительном отборе по свойству.
	LengthBatch float64
	CostBatch   float64
	RDBatch     float64
}

func DefaultParams() Params {
	return Params{
		Noise:       0.5,
		MuLow:       0.5,
		MuHigh:      2.0,
		LengthBatch: 0.1,
		CostBatch:   0.1,
		RDBatch:     0.1,
	}
}

func (p Params) Validate() error {
	if p.Noise < 0 || math.IsInf(p.Noise, 0) || math.IsNaN(p.Noise) {
		return fmt.Errorf("Noise должно быть конечным и >= 0 (получено %f)", p.Noise)
	}
	if !(p.MuLow > 0 && p.MuLow < 1) {
		return fmt.Errorf("MuLow должно лежать в интервале (0,1) (получено %f)", p.MuLow)
	}
	if !(p.MuHigh > 1) || math.IsInf(p.MuHigh, 0) {
		return fmt.Errorf("MuHigh должно быть конечным и > 1 (получено %f)", p.MuHigh)
	}
	for name, v := range map[string]float64{
		"LengthBatch": p.LengthBatch,
		"CostBatch":   p.CostBatch,
		"RDBatch":     p.RDBatch,
	} {
		if !(v > 0 && v <= 1) {
			return fmt.Errorf("%s должно лежать в интервале (0,1] (получено %f)", name, v)
		}
	}
	return nil
}

// Batch: доля отбора для свойства, вычисляемого в дешёвом времени.
func (p Params) Batch(prop Property) float64 {
	switch prop {
	case PropCost:
		return p.CostBatch
	case PropLength:
		return p.LengthBatch
	default:
		return p.RDBatch
	}
}
