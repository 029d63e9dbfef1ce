package config

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"interventionSched/internal/alns"
)

// Config: настройки процесса из переменных окружения. Параметры поиска
// без заданной переменной сохраняют значения alns.DefaultConfig.
type Config struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	Server struct {
		Port            string `env:"PORT" envDefault:"8080"`
		ReadTimeout     int    `env:"READ_TIMEOUT" envDefault:"10"`
		WriteTimeout    int    `env:"WRITE_TIMEOUT" envDefault:"330"`
		IdleTimeout     int    `env:"IDLE_TIMEOUT" envDefault:"60"`
		ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT" envDefault:"10"`
		MaxBodyMB       int64  `env:"MAX_BODY_MB" envDefault:"64"`
		MaxTimeLimit    int    `env:"MAX_TIME_LIMIT" envDefault:"300"`
	} `envPrefix:"SERVER_"`

	Solver Solver `envPrefix:"ALNS_"`
}

type Solver struct {
	Construction string   `env:"CONSTRUCTION"`
	Repairs      []string `env:"REPAIRS" envSeparator:","`
	Destroys     []string `env:"DESTROYS" envSeparator:","`
	LocalSearch  []string `env:"LOCAL_SEARCH" envSeparator:","`

	Depth    float64 `env:"DEPTH"`
	ItersMax int     `env:"ITERS_MAX"`
	Lambda   float64 `env:"LAMBDA"`

	Acceptance        string `env:"ACCEPTANCE"`
	PlannedIterations int    `env:"PLANNED_ITERATIONS"`

	FirstImprove      bool `env:"FIRST_IMPROVE"`
	Workers           int  `env:"WORKERS"`
	BackgroundRefiner bool `env:"BACKGROUND_REFINER"`
	RefinePasses      int  `env:"REFINE_PASSES"`

	TimeLimit time.Duration `env:"TIME_LIMIT"`
	Seed      int64         `env:"SEED"`
}

// Default: значения без окружения.
func Default() *Config {
	d := alns.DefaultConfig()
	cfg := &Config{LogLevel: "info"}
	cfg.Solver = Solver{
		Construction:      d.Construction,
		Repairs:           d.Repairs,
		Destroys:          d.Destroys,
		LocalSearch:       d.LocalSearch,
		Depth:             d.Depth,
		ItersMax:          d.ItersMax,
		Lambda:            d.Lambda,
		Acceptance:        string(d.Acceptance),
		PlannedIterations: d.PlannedIterations,
		FirstImprove:      d.Moves.FirstImprove,
		Workers:           d.Moves.Workers,
		BackgroundRefiner: d.BackgroundRefiner,
		RefinePasses:      d.RefinePasses,
		TimeLimit:         60 * time.Second,
		Seed:              1,
	}
	return cfg
}

func Load() (*Config, error) {
	cfg := Default()
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok && len(aggErr.Errors) > 0 {
			// Первая ошибка читается лучше списка.
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}
	return cfg, nil
}

// ALNS переносит настройки поверх alns.DefaultConfig. Проверка — в
// alns.Config.Validate.
func (s Solver) ALNS() alns.Config {
	c := alns.DefaultConfig()
	c.Construction = s.Construction
	c.Repairs = append([]string(nil), s.Repairs...)
	c.Destroys = append([]string(nil), s.Destroys...)
	c.LocalSearch = append([]string(nil), s.LocalSearch...)
	c.Depth = s.Depth
	c.ItersMax = s.ItersMax
	c.Lambda = s.Lambda
	c.Acceptance = alns.Acceptance(s.Acceptance)
	c.PlannedIterations = s.PlannedIterations
	c.Moves.FirstImprove = s.FirstImprove
	c.Moves.Workers = s.Workers
	c.BackgroundRefiner = s.BackgroundRefiner
	c.RefinePasses = s.RefinePasses
	return c
}

// Level разбирает LOG_LEVEL; неизвестное значение — info.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c *Config) ReadTimeout() time.Duration {
	return time.Duration(c.Server.ReadTimeout) * time.Second
}

func (c *Config) WriteTimeout() time.Duration {
	return time.Duration(c.Server.WriteTimeout) * time.Second
}

func (c *Config) IdleTimeout() time.Duration {
	return time.Duration(c.Server.IdleTimeout) * time.Second
}

func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownTimeout) * time.Second
}

func (c *Config) MaxTimeLimit() time.Duration {
	return time.Duration(c.Server.MaxTimeLimit) * time.Second
}

func (c *Config) MaxBodyBytes() int64 {
	return c.Server.MaxBodyMB << 20
}
