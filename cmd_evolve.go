package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/wildfunctions/genetic_diagnosis/pkg/diagnosis"
	"github.com/wildfunctions/genetic_diagnosis/pkg/engine"
	"github.com/wildfunctions/genetic_diagnosis/pkg/pool"
	"github.com/wildfunctions/genetic_diagnosis/pkg/store"
	"github.com/wildfunctions/genetic_diagnosis/pkg/strategy"
)

type evolveOptions struct {
	configPath  string
	trainPath   string
	testPath    string
	namesPath   string
	storeKind   string
	dbPath      string
	latexPath   string
	metricsAddr string

	// flags holds values bound to command-line flags; only the ones the user
	// set are applied over the config file.
	flags engine.Config
}

// configOverrides maps flag names to the config field they set.
var configOverrides = map[string]func(dst *engine.Config, src engine.Config){
	"pool":                func(d *engine.Config, s engine.Config) { d.Pool = s.Pool },
	"strategy":            func(d *engine.Config, s engine.Config) { d.Strategy = s.Strategy },
	"population":          func(d *engine.Config, s engine.Config) { d.Population = s.Population },
	"generations":         func(d *engine.Config, s engine.Config) { d.MaxGenerations = s.MaxGenerations },
	"min-error":           func(d *engine.Config, s engine.Config) { d.MinError = s.MinError },
	"const-min":           func(d *engine.Config, s engine.Config) { d.ConstMin = s.ConstMin },
	"const-max":           func(d *engine.Config, s engine.Config) { d.ConstMax = s.ConstMax },
	"seed":                func(d *engine.Config, s engine.Config) { d.Seed = s.Seed },
	"workers":             func(d *engine.Config, s engine.Config) { d.Workers = s.Workers },
	"report-interval":     func(d *engine.Config, s engine.Config) { d.ReportInterval = s.ReportInterval },
	"format":              func(d *engine.Config, s engine.Config) { d.Format = s.Format },
	"verbose":             func(d *engine.Config, s engine.Config) { d.Verbose = s.Verbose },
	"max-init-depth":      func(d *engine.Config, s engine.Config) { d.MaxInitDepth = s.MaxInitDepth },
	"max-crossover-depth": func(d *engine.Config, s engine.Config) { d.MaxCrossoverDepth = s.MaxCrossoverDepth },
	"crossover-prob":      func(d *engine.Config, s engine.Config) { d.CrossoverProb = s.CrossoverProb },
	"mutation-prob":       func(d *engine.Config, s engine.Config) { d.MutationProb = s.MutationProb },
	"reproduction-prob":   func(d *engine.Config, s engine.Config) { d.ReproductionProb = s.ReproductionProb },
	"tournament-size":     func(d *engine.Config, s engine.Config) { d.TournamentSize = s.TournamentSize },
	"elites":              func(d *engine.Config, s engine.Config) { d.EliteCount = s.EliteCount },
	"strict":              func(d *engine.Config, s engine.Config) { d.StrictCreation = s.StrictCreation },
}

func newEvolveCmd() *cobra.Command {
	o := &evolveOptions{flags: engine.DefaultConfig()}
	cmd := &cobra.Command{
		Use:   "evolve",
		Short: "Evolve a classifier on a training set",
		Long: `Evolves a population of expression trees against the training records
and reports the best program with its accuracy on the training set and,
when --test is given, on the held-out set.

Examples:
  genetic_diagnosis evolve --train train.csv --test test.csv --names names.txt
  genetic_diagnosis evolve --config gp.yaml --seed 7 --store sqlite --db runs.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := o.resolveConfig(cmd)
			if err != nil {
				return err
			}
			logger, err := newLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runEvolve(ctx, o, cfg, cmd.OutOrStdout(), logger)
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.configPath, "config", "", "YAML config file; flags override its values")
	f.StringVar(&o.trainPath, "train", "", "training records (CSV)")
	f.StringVar(&o.testPath, "test", "", "held-out test records (CSV)")
	f.StringVar(&o.namesPath, "names", "", "variable names, one per line")
	f.StringVar(&o.storeKind, "store", "sqlite", "run archive backend (sqlite, memory)")
	f.StringVar(&o.dbPath, "db", "runs.db", "sqlite database path")
	f.StringVar(&o.latexPath, "latex", "", "write a LaTeX document with the best program to this file")
	f.StringVar(&o.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address during the run")

	c := &o.flags
	f.StringVar(&c.Pool, "pool", c.Pool, "gene pool ("+strings.Join(pool.Names(), ", ")+")")
	f.StringVar(&c.Strategy, "strategy", c.Strategy, "evolution strategy ("+strings.Join(strategy.Names(), ", ")+")")
	f.IntVar(&c.Population, "population", c.Population, "population size")
	f.IntVar(&c.MaxGenerations, "generations", c.MaxGenerations, "maximum number of generations")
	f.Float64Var(&c.MinError, "min-error", c.MinError, "stop once the best error falls below this")
	f.Float64Var(&c.ConstMin, "const-min", c.ConstMin, "lower bound of random constants")
	f.Float64Var(&c.ConstMax, "const-max", c.ConstMax, "upper bound of random constants")
	f.Int64Var(&c.Seed, "seed", c.Seed, "random seed (0 = random)")
	f.IntVar(&c.Workers, "workers", c.Workers, "number of parallel workers")
	f.IntVar(&c.ReportInterval, "report-interval", c.ReportInterval, "log progress every N generations (0 = never)")
	f.StringVar(&c.Format, "format", c.Format, "output format (text, json)")
	f.BoolVar(&c.Verbose, "verbose", c.Verbose, "include per-generation reports in the output")
	f.IntVar(&c.MaxInitDepth, "max-init-depth", c.MaxInitDepth, "maximum depth of initial trees")
	f.IntVar(&c.MaxCrossoverDepth, "max-crossover-depth", c.MaxCrossoverDepth, "maximum depth of any evolved tree")
	f.Float64Var(&c.CrossoverProb, "crossover-prob", c.CrossoverProb, "crossover probability")
	f.Float64Var(&c.MutationProb, "mutation-prob", c.MutationProb, "mutation probability")
	f.Float64Var(&c.ReproductionProb, "reproduction-prob", c.ReproductionProb, "reproduction probability")
	f.IntVar(&c.TournamentSize, "tournament-size", c.TournamentSize, "tournament size")
	f.IntVar(&c.EliteCount, "elites", c.EliteCount, "programs copied unchanged into each generation")
	f.BoolVar(&c.StrictCreation, "strict", c.StrictCreation, "reject duplicate and variable-free initial programs")

	_ = cmd.MarkFlagRequired("train")
	_ = cmd.MarkFlagRequired("names")
	return cmd
}

// resolveConfig layers the config file over the defaults, then the flags the
// user set, and validates the result.
func (o *evolveOptions) resolveConfig(cmd *cobra.Command) (engine.Config, error) {
	cfg, err := engine.LoadConfig(o.configPath)
	if err != nil {
		return cfg, err
	}
	for name, apply := range configOverrides {
		if cmd.Flags().Changed(name) {
			apply(&cfg, o.flags)
		}
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func runEvolve(ctx context.Context, o *evolveOptions, cfg engine.Config, stdout io.Writer, logger *slog.Logger) error {
	names, err := diagnosis.LoadVariableNames(o.namesPath)
	if err != nil {
		return err
	}
	train, err := diagnosis.LoadPatients(o.trainPath)
	if err != nil {
		return err
	}
	var test diagnosis.Dataset
	if o.testPath != "" {
		if test, err = diagnosis.LoadPatients(o.testPath); err != nil {
			return err
		}
	}
	benign, malignant := train.Counts()
	logger.Info("loaded data", "train", len(train), "benign", benign, "malignant", malignant, "test", len(test))

	e, err := engine.New(cfg, names, train, engine.WithLogger(logger))
	if err != nil {
		return err
	}

	runs, err := store.NewStore(o.storeKind, o.dbPath)
	if err != nil {
		return err
	}
	if err := runs.Init(ctx); err != nil {
		return fmt.Errorf("open run archive: %w", err)
	}
	defer func() { _ = store.CloseIfSupported(runs) }()

	if o.metricsAddr != "" {
		shutdown := serveMetrics(o.metricsAddr, logger)
		defer shutdown()
	}

	record := store.NewRunRecord()
	record.StartedAt = time.Now().UTC()
	res, err := e.Run(ctx)
	if err != nil {
		return err
	}
	record.FinishedAt = time.Now().UTC()

	report, err := engine.NewFinalReport(cfg, res, names, train, test)
	if err != nil {
		return err
	}
	report.RunID = record.ID

	record.Pool = cfg.Pool
	record.Strategy = cfg.Strategy
	record.Population = cfg.Population
	record.MaxGenerations = cfg.MaxGenerations
	record.Seed = res.Seed
	record.State = res.State.String()
	record.Generations = res.Generations
	record.BestFoundAtGen = res.BestFoundAtGen
	record.VarNames = names
	record.BestExpression = report.BestProgram
	record.BestError = res.BestFitness.Error
	record.TrainAccuracy = report.TrainAccuracy
	record.TestAccuracy = report.TestAccuracy
	record.History = res.History
	// Saved with a fresh context so an interrupted run is still archived.
	if err := runs.SaveRun(context.WithoutCancel(ctx), record); err != nil {
		return fmt.Errorf("archive run: %w", err)
	}
	if o.storeKind == "memory" {
		logger.Info("run not archived; the memory store is discarded on exit", "id", record.ID)
	} else {
		logger.Info("archived run", "id", record.ID, "store", o.storeKind, "db", o.dbPath)
	}

	if o.latexPath != "" {
		if err := writeLatexFile(o.latexPath, report); err != nil {
			return err
		}
	}

	switch cfg.Format {
	case "json":
		if err := engine.WriteJSONFinal(stdout, report); err != nil {
			return fmt.Errorf("write JSON: %w", err)
		}
	default:
		engine.WriteTextFinal(stdout, report)
	}
	return nil
}

func writeLatexFile(path string, report engine.FinalReport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create latex file: %w", err)
	}
	engine.WriteLatex(f, report)
	return f.Close()
}

// serveMetrics exposes the default Prometheus registry and returns a function
// that stops the server.
func serveMetrics(addr string, logger *slog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "addr", addr, "error", err)
		}
	}()
	logger.Info("serving metrics", "addr", addr)
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
