package localsearch

import (
	"math"
	"sync/atomic"
)

// bound: общий для воркеров лучший найденный счёт. Только отсекает
// заведомо бесполезные ветки; выбор хода делается после Wait.
type bound struct {
	bits atomic.Uint64
}

func newBound(v float64) *bound {
	b := &bound{}
	b.bits.Store(math.Float64bits(v))
	return b
}

func (b *bound) Load() float64 { return math.Float64frombits(b.bits.Load()) }

// Lower понижает границу до v, если v меньше текущей.
func (b *bound) Lower(v float64) {
	for {
		old := b.bits.Load()
		if math.Float64frombits(old) <= v {
			return
		}
		if b.bits.CompareAndSwap(old, math.Float64bits(v)) {
			return
		}
	}
}
