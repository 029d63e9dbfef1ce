package solution

import (
	"log/slog"
	"math"
	"sort"
)

// Penalty: вес нарушений ограничений в расширенной целевой функции.
const Penalty = 1000.0

// Tolerance: порог строгого улучшения при сравнении целевых значений.
const Tolerance = 1e-6

// Improves сообщает, что a лучше b больше чем на Tolerance.
func Improves(a, b float64) bool { return b-a > Tolerance }

// Objective: значения целевой функции. Возвращается и при фиксации хода,
// и при оценке «что если».
type Objective struct {
	MeanRisk          float64 `json:"mean_risk"`
	ExpectedExcess    float64 `json:"expected_excess"`
	FinalObjective    float64 `json:"final_objective"`
	TotalResourceUse  float64 `json:"total_resource_use"`
	WorkloadUnderuse  float64 `json:"workload_underuse"`
	WorkloadOveruse   float64 `json:"workload_overuse"`
	ExclusionPenalty  int     `json:"exclusion_penalty"`
	ExtendedObjective float64 `json:"extended_objective"`
}

func (o *Objective) finish(alpha float64) {
	o.FinalObjective = alpha*o.MeanRisk + (1-alpha)*o.ExpectedExcess
	o.ExtendedObjective = o.FinalObjective +
		Penalty*(o.WorkloadOveruse+o.WorkloadUnderuse+float64(o.ExclusionPenalty))
}

func (o Objective) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("extended", o.ExtendedObjective),
		slog.Float64("final", o.FinalObjective),
		slog.Float64("mean_risk", o.MeanRisk),
		slog.Float64("expected_excess", o.ExpectedExcess),
		slog.Float64("overuse", o.WorkloadOveruse),
		slog.Float64("underuse", o.WorkloadUnderuse),
		slog.Int("exclusions", o.ExclusionPenalty),
	)
}

// periodStats возвращает среднее по сценариям и превышение квантиля над ним.
// sorted: буфер не короче row.
func periodStats(row []float64, quantile float64, sorted []float64) (mean, excess float64) {
	n := len(row)
	if n == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, v := range row {
		sum += v
	}
	mean = sum / float64(n)

	sorted = sorted[:n]
	copy(sorted, row)
	sort.Float64s(sorted)
	k := int(math.Ceil(quantile*float64(n))) - 1
	if k < 0 {
		k = 0
	}
	if k >= n {
		k = n - 1
	}
	if d := sorted[k] - mean; d > 0 {
		excess = d
	}
	return mean, excess
}

func overuse(w, capacity float64) float64 {
	if w > capacity {
		return w - capacity
	}
	return 0
}

func underuse(w, floor float64) float64 {
	if w < floor {
		return floor - w
	}
	return 0
}

// overlap: число периодов сезона, в которые активны оба вмешательства.
func overlap(s1, d1, s2, d2 int, season []bool) int {
	from := max(s1, s2)
	to := min(s1+d1-1, s2+d2-1)
	cnt := 0
	for t := from; t <= to; t++ {
		if t < len(season) && season[t] {
			cnt++
		}
	}
	return cnt
}
