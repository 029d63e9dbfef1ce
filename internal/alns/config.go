package alns

import (
	"fmt"

	"interventionSched/internal/heuristics"
	"interventionSched/internal/localsearch"
	"interventionSched/internal/validation"
)

// Политика принятия ухудшающих решений
type Acceptance string

const (
	AcceptGreedy    Acceptance = "greedy"
	AcceptAnnealing Acceptance = "annealing"
)

type Config struct {
	// Активные операторы по именам реестра.
	Construction string   `validate:"required"`
	Repairs      []string `validate:"required,min=1,dive,required"`
	Destroys     []string `validate:"required,min=1,dive,required"`
	LocalSearch  []string `validate:"required,min=1,dive,required"`

	Heuristics heuristics.Params
	Moves      localsearch.Config

	// Адаптивные веса: начальное значение, затухание и награды ω1..ω4.
	InitialWeight float64 `validate:"gt=0"`
	Lambda        float64 `validate:"gt=0,lt=1"`
	Omega1        float64 `validate:"gte=0"`
	Omega2        float64 `validate:"gte=0"`
	Omega3        float64 `validate:"gte=0"`
	Omega4        float64 `validate:"gte=0"`

	// Depth: доля запланированных вмешательств, снимаемых за итерацию.
	Depth float64 `validate:"gt=0,lte=1"`
	// ItersMax: итераций без улучшения до рестарта.
	ItersMax int `validate:"gt=0"`

	Acceptance Acceptance `validate:"oneof=greedy annealing"`
	// Калибровка отжига: целевые вероятности в начале и в конце
	// запланированного числа итераций.
	InitialAcceptance float64 `validate:"gte=0,lt=1"`
	FinalAcceptance   float64 `validate:"gt=0,lt=1"`
	PlannedIterations int     `validate:"gt=0"`

	// Фоновое улучшение текущего решения локальным поиском.
	BackgroundRefiner bool
	RefinePasses      int `validate:"gt=0"`

	// MaxIterations: 0 означает «до отмены ctx».
	MaxIterations int `validate:"gte=0"`
}

func DefaultConfig() Config {
	return Config{
		Construction: "random",
		Repairs: []string{
			"cheapest", "n1_cheapest", "n2_cheapest", "n3_cheapest",
			"lrd1", "n1_lrd1", "n3_lrd1",
			"shortest1", "n1_shortest1",
			"most_exclusions", "n1_most_exclusions",
			"least_used",
			"random", "n1_random",
			"lrd2", "longest2", "shortest2",
		},
		Destroys: []string{
			"random",
			"cheapest", "most_expensive",
			"lrd", "hrd",
			"shortest", "longest",
			"least_exclusions", "most_exclusions",
			"least_used", "most_used",
		},
		LocalSearch: []string{"one_shift", "excl_two_shift", "rand_two_shift"},

		Heuristics: heuristics.DefaultParams(),
		Moves:      localsearch.DefaultConfig(),

		InitialWeight: 1.0,
		Lambda:        0.9,
		Omega1:        3.0,
		Omega2:        2.0,
		Omega3:        1.0,
		Omega4:        0.5,

		Depth:    0.1,
		ItersMax: 100,

		Acceptance:        AcceptGreedy,
		InitialAcceptance: 0.9,
		FinalAcceptance:   0.999,
		PlannedIterations: 10000,

		BackgroundRefiner: false,
		RefinePasses:      10,

		MaxIterations: 0,
	}
}

func (c Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return err
	}
	if err := c.Heuristics.Validate(); err != nil {
		return fmt.Errorf("параметры операторов: %w", err)
	}
	if err := c.Moves.Validate(); err != nil {
		return fmt.Errorf("локальный поиск: %w", err)
	}
	if c.FinalAcceptance <= c.InitialAcceptance {
		return fmt.Errorf(
			"FinalAcceptance должно быть > InitialAcceptance (получено %f <= %f)",
			c.FinalAcceptance,
			c.InitialAcceptance,
		)
	}
	_, _, err := c.operators()
	return err
}

// operators собирает реестр и пулы; ошибки имён всплывают здесь, а не во
// время поиска.
func (c Config) operators() (heuristics.Pools, []localsearch.Op, error) {
	reg, err := heuristics.NewRegistry(c.Heuristics)
	if err != nil {
		return heuristics.Pools{}, nil, err
	}
	pools, err := reg.Select(c.Construction, c.Repairs, c.Destroys)
	if err != nil {
		return heuristics.Pools{}, nil, err
	}
	m, err := localsearch.NewMover(c.Moves)
	if err != nil {
		return heuristics.Pools{}, nil, err
	}
	ops, err := m.Operators(c.LocalSearch)
	if err != nil {
		return heuristics.Pools{}, nil, err
	}
	return pools, ops, nil
}
