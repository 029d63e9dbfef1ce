package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"interventionSched/internal/alns"
	"interventionSched/internal/config"
	"interventionSched/internal/instance"
)

const teamName = "interventionSched"

func main() {
	// Соглашения командной строки челленджа ROADEF/EURO 2020.
	var (
		limit  = flag.Int("t", 0, "лимит времени в секундах (0 — ALNS_TIME_LIMIT)")
		path   = flag.String("p", "", "путь к экземпляру в формате JSON")
		out    = flag.String("o", "", "путь к файлу решения (пусто — stdout)")
		seed   = flag.Int64("s", 0, "сид (0 — ALNS_SEED)")
		name   = flag.Bool("name", false, "вывести имя команды и выйти")
		accept = flag.String("accept", "", "политика принятия: greedy | annealing (пусто — ALNS_ACCEPTANCE)")
		debug  = flag.Bool("v", false, "подробный журнал поиска")
	)
	flag.Parse()

	if *name {
		fmt.Println(teamName)
		if *path == "" {
			return
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Ошибка конфигурации:", err)
		os.Exit(2)
	}
	level := cfg.Level()
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if *path == "" {
		fmt.Fprintln(os.Stderr, "Конфликт: не задан путь к экземпляру (-p)")
		os.Exit(2)
	}

	timeLimit := cfg.Solver.TimeLimit
	if *limit > 0 {
		timeLimit = time.Duration(*limit) * time.Second
	}
	if *seed != 0 {
		cfg.Solver.Seed = *seed
	}
	if *accept != "" {
		cfg.Solver.Acceptance = *accept
	}

	solverCfg := cfg.Solver.ALNS()
	solver, err := alns.New(solverCfg, rand.New(rand.NewSource(cfg.Solver.Seed)))
	if err != nil {
		fmt.Fprintln(os.Stderr, "Конфликт в конфигурации ALNS:", err)
		os.Exit(2)
	}
	solver.Logger = logger

	inst, err := instance.Parse(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Ошибка чтения экземпляра:", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeLimit)
	defer cancel()
	res, err := solver.Solve(ctx, inst)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Ошибка:", err)
		os.Exit(1)
	}

	w := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Ошибка записи решения:", err)
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}
	if err := instance.WriteSolution(w, inst, res.Starts); err != nil {
		fmt.Fprintln(os.Stderr, "Ошибка записи решения:", err)
		os.Exit(1)
	}

	o := res.Objective
	fmt.Fprintf(os.Stderr, "%s: целевая=%.6f расширенная=%.6f (риск=%.6f превышение=%.6f) перегрузка=%.4f недогрузка=%.4f исключения=%d допустимо=%t | итераций=%d рестартов=%d время=%s\n",
		inst.Name, o.FinalObjective, o.ExtendedObjective, o.MeanRisk, o.ExpectedExcess,
		o.WorkloadOveruse, o.WorkloadUnderuse, o.ExclusionPenalty, res.Best.IsValid(),
		res.Iterations, res.Restarts, res.Duration.Round(time.Millisecond),
	)
}
