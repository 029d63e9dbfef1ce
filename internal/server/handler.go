package server

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"interventionSched/internal/config"
	"interventionSched/internal/validation"
)

type Handler struct {
	validate *validation.Validator
	config   *config.Config
	logger   *slog.Logger

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, logger *slog.Logger) (*Handler, error) {
	v, err := validation.New()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	// Ошибка конфигурации поиска должна всплыть при старте, а не на запросе.
	if err := cfg.Solver.ALNS().Validate(); err != nil {
		return nil, err
	}
	return &Handler{
		validate: v,
		config:   cfg,
		logger:   logger,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logRequest)
	h.Mux.Use(h.recoverer)

	h.Mux.Get("/healthz", h.Health)
	h.Mux.Get("/operators", h.Operators)
	h.Mux.Post("/solve", h.SolveInstance)
}
