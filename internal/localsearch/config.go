package localsearch

import (
	"fmt"
	"runtime"
)

type Config struct {
	// FirstImprove: последовательный поиск до первого улучшения.
	// Иначе окрестность оценивается параллельно и берётся лучший ход.
	FirstImprove bool
	// Workers: предел горутин параллельной оценки; 0 — GOMAXPROCS.
	Workers int

	// OneShiftDepth: доля вмешательств, просматриваемых одиночным сдвигом.
	OneShiftDepth float64
	// TwoShiftLimit: сколько пар просматривает парный сдвиг.
	TwoShiftLimit int
}

func DefaultConfig() Config {
	return Config{
		FirstImprove:  false,
		Workers:       0,
		OneShiftDepth: 0.2,
		TwoShiftLimit: 50,
	}
}

func (c Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("Workers должно быть >= 0 (получено %d)", c.Workers)
	}
	if !(c.OneShiftDepth > 0 && c.OneShiftDepth <= 1) {
		return fmt.Errorf("OneShiftDepth должно лежать в интервале (0,1] (получено %f)", c.OneShiftDepth)
	}
	if c.TwoShiftLimit <= 0 {
		return fmt.Errorf("TwoShiftLimit должно быть > 0 (получено %d)", c.TwoShiftLimit)
	}
	return nil
}

func (c Config) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.GOMAXPROCS(0)
}
