package instance

import (
	"fmt"
	"math/rand"
)

// RandomConfig: параметры генератора синтетических экземпляров.
type RandomConfig struct {
	Interventions int
	T             int
	Resources     int
	Scenarios     int
	MaxDuration   int
	// ExclusionRate: среднее число партнёров по исключению на вмешательство.
	ExclusionRate float64
	Alpha         float64
	Quantile      float64
}

func DefaultRandomConfig(interventions, T int) RandomConfig {
	return RandomConfig{
		Interventions: interventions,
		T:             T,
		Resources:     2,
		Scenarios:     5,
		MaxDuration:   max(1, T/4),
		ExclusionRate: 0.5,
		Alpha:         0.5,
		Quantile:      0.95,
	}
}

func RandomInstance(cfg RandomConfig, rng *rand.Rand) *Instance {
	if rng == nil {
		panic("генератор случайных чисел не инициализирован (nil)")
	}
	if cfg.Interventions <= 0 || cfg.T <= 0 || cfg.Scenarios <= 0 || cfg.MaxDuration <= 0 || cfg.Resources < 0 {
		panic("invalid random instance config")
	}

	scen := make([]int, cfg.T)
	for t := range scen {
		scen[t] = cfg.Scenarios
	}

	inst := &Instance{
		Name:      fmt.Sprintf("random_%dx%d", cfg.Interventions, cfg.T),
		T:         cfg.T,
		Scenarios: scen,
		Alpha:     cfg.Alpha,
		Quantile:  cfg.Quantile,
	}

	// Мощность ресурса масштабируется числом вмешательств, чтобы задача
	// была не тривиально допустимой и не безнадёжно переполненной.
	capacity := 10.0 * float64(cfg.Interventions) * float64(cfg.MaxDuration) / float64(cfg.T)
	for r := 0; r < cfg.Resources; r++ {
		res := Resource{
			Name: fmt.Sprintf("c%d", r+1),
			Min:  make([]float64, cfg.T),
			Max:  make([]float64, cfg.T),
		}
		for t := 0; t < cfg.T; t++ {
			res.Max[t] = capacity * (0.5 + rng.Float64())
			if rng.Intn(4) == 0 {
				res.Min[t] = res.Max[t] * 0.1
			}
		}
		inst.Resources = append(inst.Resources, res)
	}

	for i := 0; i < cfg.Interventions; i++ {
		tmax := 1 + rng.Intn(cfg.T)
		delta := make([]int, tmax)
		for s := 1; s <= tmax; s++ {
			d := 1 + rng.Intn(cfg.MaxDuration)
			if s+d-1 > cfg.T {
				d = cfg.T - s + 1
			}
			delta[s-1] = d
		}
		iv, err := NewIntervention(fmt.Sprintf("Intervention_%d", i+1), tmax, delta, cfg.Resources, scen)
		if err != nil {
			panic(err)
		}
		base := 1 + rng.Float64()*9
		for s := 1; s <= tmax; s++ {
			for k := 0; k < delta[s-1]; k++ {
				t := s + k
				for r := 0; r < cfg.Resources; r++ {
					if rng.Intn(2) == 0 {
						_ = iv.SetWorkload(r, t, s, rng.Float64()*10)
					}
				}
				risk := make([]float64, cfg.Scenarios)
				for j := range risk {
					risk[j] = base * (0.5 + rng.Float64()) * (1 + float64(t)/float64(cfg.T))
				}
				_ = iv.SetRisk(t, s, risk)
			}
		}
		inst.Interventions = append(inst.Interventions, iv)
	}

	pExcl := 0.0
	if cfg.Interventions > 1 {
		pExcl = cfg.ExclusionRate / float64(cfg.Interventions-1)
	}
	for a := 0; a < cfg.Interventions; a++ {
		for b := a + 1; b < cfg.Interventions; b++ {
			if rng.Float64() >= pExcl {
				continue
			}
			from := 1 + rng.Intn(cfg.T)
			to := from + rng.Intn(cfg.T-from+1)
			periods := make([]int, 0, to-from+1)
			for t := from; t <= to; t++ {
				periods = append(periods, t)
			}
			inst.Exclusions = append(inst.Exclusions, Exclusion{A: a, B: b, Season: "full", Periods: periods})
		}
	}

	if err := inst.Prepare(); err != nil {
		panic(err)
	}
	return inst
}
