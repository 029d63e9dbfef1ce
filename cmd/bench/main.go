package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"interventionSched/internal/alns"
	"interventionSched/internal/bench"
	"interventionSched/internal/opt"
)

// Фабрики

func newALNSFactory(cfg alns.Config, logger *slog.Logger) func(seed int64) opt.Optimizer {
	return func(seed int64) opt.Optimizer {
		solver, _ := alns.New(cfg, rand.New(rand.NewSource(seed)))
		solver.Logger = logger
		return solver
	}
}

func main() {
	// CLI флаги для настройки параметров поиска и политики запуска
	var (
		out          = flag.String("out", "artifacts/results.csv", "путь к выходному CSV-файлу")
		pairs        = flag.String("pairs", "20x10,50x20,100x40", "конфигурации: количество вмешательств Х длина горизонта (через запятую)")
		algos        = flag.String("algos", "ALNS,ALNS-FI,ALNS-SA,ALNS-BG", "список вариантов: ALNS, ALNS-FI, ALNS-SA, ALNS-BG (через запятую)")
		runs         = flag.Int("runs", 10, "количество запусков каждого варианта (с разными сидами)")
		baseSeed     = flag.Int64("seed", 1000, "базовый сид для запусков")
		instanceSeed = flag.Int64("instance_seed", 777, "базовый сид для генерации экземпляров задачи (фиксирован для конфигурации)")
		perRunTO     = flag.Duration("per_run_timeout", 2*time.Second, "время одного запуска; 0 — только по alns_iter")
		verbose      = flag.Bool("v", false, "журнал поиска в stderr")

		// --- ALNS ---
		construction = flag.String("alns_construction", "random", "метод построения начального решения")
		repairs      = flag.String("alns_repairs", "", "операторы вставки (через запятую; пусто — набор по умолчанию)")
		destroys     = flag.String("alns_destroys", "", "операторы удаления (через запятую; пусто — все)")
		ls           = flag.String("alns_ls", "one_shift,excl_two_shift,rand_two_shift", "операторы локального поиска (через запятую)")
		iter         = flag.Int("alns_iter", 0, "предел итераций (0 — до истечения per_run_timeout)")
		itersMax     = flag.Int("alns_iters_max", 100, "итераций без улучшения до рестарта")
		depth        = flag.Float64("alns_depth", 0.1, "доля снимаемых вмешательств")
		lambda       = flag.Float64("alns_lambda", 0.9, "затухание весов операторов")
		workers      = flag.Int("alns_workers", 0, "горутин параллельного локального поиска (0 — GOMAXPROCS)")
		accept0      = flag.Float64("sa_accept0", 0.9, "калибровка отжига: начальная вероятность")
		acceptF      = flag.Float64("sa_acceptf", 0.999, "калибровка отжига: конечная вероятность")
		planned      = flag.Int("sa_planned", 10000, "калибровка отжига: запланированное число итераций")
		passes       = flag.Int("bg_passes", 10, "проходов RVND фонового улучшения за снимок")
	)
	flag.Parse()

	ctx := context.Background()

	cases, err := parsePairs(*pairs, *instanceSeed)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Конфликт:", err)
		os.Exit(2)
	}
	if *iter <= 0 && *perRunTO <= 0 {
		fmt.Fprintln(os.Stderr, "Конфликт: нужен per_run_timeout > 0 или alns_iter > 0")
		os.Exit(2)
	}

	base := alns.DefaultConfig()
	base.Construction = *construction
	if *repairs != "" {
		base.Repairs = splitCSV(*repairs)
	}
	if *destroys != "" {
		base.Destroys = splitCSV(*destroys)
	}
	base.LocalSearch = splitCSV(*ls)
	base.MaxIterations = *iter
	base.ItersMax = *itersMax
	base.Depth = *depth
	base.Lambda = *lambda
	base.Moves.Workers = *workers
	base.InitialAcceptance = *accept0
	base.FinalAcceptance = *acceptF
	base.PlannedIterations = *planned
	base.RefinePasses = *passes

	// Варианты отличаются одним переключателем от базового.
	variants := map[string]func(*alns.Config){
		"ALNS":    func(*alns.Config) {},
		"ALNS-FI": func(c *alns.Config) { c.Moves.FirstImprove = true },
		"ALNS-SA": func(c *alns.Config) { c.Acceptance = alns.AcceptAnnealing },
		"ALNS-BG": func(c *alns.Config) { c.BackgroundRefiner = true },
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if *verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	available := map[string]bench.Algorithm{}
	for name, tweak := range variants {
		cfg := base
		cfg.Repairs = append([]string(nil), base.Repairs...)
		tweak(&cfg)
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Конфликт в конфигурации %s: %v\n", name, err)
			os.Exit(2)
		}
		available[name] = bench.Algorithm{Name: name, Factory: newALNSFactory(cfg, logger)}
	}

	var selected []bench.Algorithm
	for _, a := range splitCSV(*algos) {
		al, ok := available[a]
		if !ok {
			fmt.Fprintf(os.Stderr, "Вариант не предоставлен в программе %q; доступные: %v\n", a, keys(available))
			os.Exit(2)
		}
		selected = append(selected, al)
	}

	runner := bench.Runner{
		Runs:          *runs,
		BaseSeed:      *baseSeed,
		PerRunTimeout: *perRunTO,
	}

	var records []bench.Record
	for _, c := range cases {
		for _, a := range selected {
			fmt.Printf("Запущен вариант %s; %d вмешательств, горизонт %d (общее кол-во запусков=%d)...\n", a.Name, c.Interventions, c.T, runner.Runs)

			rec, err := runner.RunCase(ctx, c, a)
			if err != nil {
				fmt.Fprintln(os.Stderr, "Ошибка:", err)
				os.Exit(1)
			}
			records = append(records, rec)

			fmt.Printf("  Значение целевой функции: лучшее=%.4f среднее=%.4f стандартное отклонение=%.4f | допустимых=%d/%d | рестартов в среднем=%.1f | Время: среднее=%.2fms среднее отклонение=%.2fms\n",
				rec.ObjectiveBest, rec.ObjectiveMean, rec.ObjectiveStd,
				rec.ValidRuns, rec.Runs, rec.RestartsMean,
				rec.TimeMeanMs, rec.TimeStdMs,
			)
		}
	}

	if err := bench.WriteCSV(*out, records); err != nil {
		fmt.Fprintln(os.Stderr, "Ошибка при записи в CSV:", err)
		os.Exit(1)
	}
	fmt.Println("Saved:", *out)
}

// helpers

func parsePairs(s string, baseInstanceSeed int64) ([]bench.Case, error) {
	parts := splitCSV(s)
	cases := make([]bench.Case, 0, len(parts))

	for i, p := range parts {
		nt := strings.Split(p, "x")
		if len(nt) != 2 {
			return nil, fmt.Errorf("пара %q невалидной схемы, пример: 50x20", p)
		}
		n, err := atoiStrict(nt[0])
		if err != nil {
			return nil, fmt.Errorf("пара %q: ошибка парсинга количества вмешательств: %w", p, err)
		}
		horizon, err := atoiStrict(nt[1])
		if err != nil {
			return nil, fmt.Errorf("пара %q: ошибка парсинга длины горизонта: %w", p, err)
		}
		if n <= 0 || horizon <= 0 {
			return nil, fmt.Errorf("пара %q: количество вмешательств и длина горизонта должны быть > 0", p)
		}

		seed := baseInstanceSeed + int64(i)*10_000 + int64(n)*100 + int64(horizon)

		cases = append(cases, bench.Case{
			Interventions: n,
			T:             horizon,
			InstanceSeed:  seed,
		})
	}

	return cases, nil
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func atoiStrict(s string) (int, error) {
	s = strings.TrimSpace(s)
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	return v, nil
}

func keys(m map[string]bench.Algorithm) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
