//go:build lambda

package main

import (
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"interventionSched/internal/config"
	"interventionSched/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("не удалось загрузить конфигурацию", "error", err)
		os.Exit(2)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)

	h, err := server.NewHandler(cfg, logger)
	if err != nil {
		logger.Error("не удалось создать обработчик", "error", err)
		os.Exit(2)
	}
	lambda.Start(h.FunctionURL)
}
