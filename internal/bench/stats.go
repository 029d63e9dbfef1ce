package bench

import "math"

// Stats: сводка по запускам: лучшее (минимум), худшее, среднее и
// выборочное стандартное отклонение.
type Stats[T int | float64] struct {
	N     int
	Best  T
	Worst T
	Mean  float64
	Std   float64
}

func Calc[T int | float64](values []T) Stats[T] {
	s := Stats[T]{N: len(values)}
	if s.N == 0 {
		return s
	}

	s.Best, s.Worst = values[0], values[0]
	sum := 0.0
	for _, v := range values {
		s.Best = min(s.Best, v)
		s.Worst = max(s.Worst, v)
		sum += float64(v)
	}
	s.Mean = sum / float64(s.N)

	if s.N < 2 {
		return s
	}
	sq := 0.0
	for _, v := range values {
		d := float64(v) - s.Mean
		sq += d * d
	}
	s.Std = math.Sqrt(sq / float64(s.N-1))
	return s
}
