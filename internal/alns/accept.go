package alns

import (
	"math"
	"math/rand"
)

// InitTemperature: начальная температура по стоимости начального решения
// и целевой вероятности accept0: cost·(1-accept0)/ln(0.5). Для
// положительной стоимости значение отрицательно; annealing берёт модуль.
func InitTemperature(cost, accept0 float64) float64 {
	return cost * (1 - accept0) / math.Log(0.5)
}

// InitCoolingRate: множитель охлаждения, за n шагов переводящий
// (1-accept0) в (1-acceptF).
func InitCoolingRate(accept0, acceptF float64, n int) float64 {
	return math.Pow((1-acceptF)/(1-accept0), 1/float64(n))
}

// annealing: критерий Метрополиса с геометрическим охлаждением.
type annealing struct {
	temperature float64
	cooling     float64
}

func newAnnealing(cost float64, cfg Config) *annealing {
	return &annealing{
		temperature: math.Abs(InitTemperature(cost, cfg.InitialAcceptance)),
		cooling:     InitCoolingRate(cfg.InitialAcceptance, cfg.FinalAcceptance, cfg.PlannedIterations),
	}
}

// Accept принимает next с вероятностью min(exp((cur-next)/T), 1) и
// охлаждает температуру.
func (a *annealing) Accept(cur, next float64, rng *rand.Rand) bool {
	defer func() { a.temperature *= a.cooling }()
	if next <= cur {
		return true
	}
	if a.temperature <= 0 {
		return false
	}
	p := math.Exp((cur - next) / a.temperature)
	return rng.Float64() < p
}

func (a *annealing) Temperature() float64 { return a.temperature }
