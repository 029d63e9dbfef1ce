package alns

import "math/rand"

// pool: веса рулетки одного семейства операторов. Сумма ведётся
// инкрементально.
type pool struct {
	weights []float64
	sum     float64
	lambda  float64
	chosen  []int
}

func newPool(n int, initial, lambda float64) *pool {
	p := &pool{
		weights: make([]float64, n),
		lambda:  lambda,
		chosen:  make([]int, n),
	}
	for i := range p.weights {
		p.weights[i] = initial
	}
	p.sum = initial * float64(n)
	return p
}

// Select: рулетка по накопленным порогам weights[i]/sum. Последний порог
// считается равным 1; если из-за округления ничего не выбрано, берётся 0.
func (p *pool) Select(rng *rand.Rand) int {
	r := rng.Float64()
	idx := 0
	acc := 0.0
	for i, w := range p.weights {
		acc += w / p.sum
		if i == len(p.weights)-1 {
			acc = 1
		}
		if r < acc {
			idx = i
			break
		}
	}
	p.chosen[idx]++
	return idx
}

// Reward сглаживает вес выбранного оператора: w <- λw + (1-λ)psi.
func (p *pool) Reward(idx int, psi float64) {
	old := p.weights[idx]
	w := p.lambda*old + (1-p.lambda)*psi
	p.weights[idx] = w
	p.sum += w - old
}

func (p *pool) Sum() float64 { return p.sum }

func (p *pool) Weights() []float64 {
	return append([]float64(nil), p.weights...)
}

func (p *pool) Chosen() []int {
	return append([]int(nil), p.chosen...)
}
