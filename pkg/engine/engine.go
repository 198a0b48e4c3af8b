package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wildfunctions/genetic_diagnosis/pkg/diagnosis"
	"github.com/wildfunctions/genetic_diagnosis/pkg/expr"
	"github.com/wildfunctions/genetic_diagnosis/pkg/pool"
	"github.com/wildfunctions/genetic_diagnosis/pkg/strategy"
)

// Engine runs the evolutionary search.
type Engine struct {
	cfg      Config
	names    []string
	pool     pool.Pool
	strategy strategy.Strategy
	train    diagnosis.Dataset
	seed     int64
	rng      *rand.Rand
	logger   *slog.Logger
	seeded   []*diagnosis.Program
	state    State
}

// Option customises an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for progress reporting.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithSeedPrograms places copies of the given programs at the front of the
// initial population.
func WithSeedPrograms(programs ...*diagnosis.Program) Option {
	return func(e *Engine) {
		for _, p := range programs {
			e.seeded = append(e.seeded, p.Clone())
		}
	}
}

// ErrNoTrainingData is returned when the engine is built without records.
var ErrNoTrainingData = errors.New("no training data")

// New creates a new engine. Every configuration problem is reported here,
// before any evolution starts.
func New(cfg Config, names []string, train diagnosis.Dataset, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := diagnosis.ValidateVariableNames(names); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if len(train) == 0 {
		return nil, ErrNoTrainingData
	}
	p, err := pool.Get(cfg.Pool, pool.Spec{VarNames: names, ConstMin: cfg.ConstMin, ConstMax: cfg.ConstMax})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	s, err := strategy.Get(cfg.Strategy, cfg.Params)
	if err != nil {
		return nil, fmt.Errorf("%w: %w (available: %v)", ErrInvalidConfig, err, strategy.Names())
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}

	e := &Engine{
		cfg:      cfg,
		names:    append([]string(nil), names...),
		pool:     p,
		strategy: s,
		train:    train,
		seed:     seed,
		rng:      rand.New(rand.NewSource(seed)),
		logger:   slog.Default(),
		state:    StateInitialized,
	}
	for _, opt := range opts {
		opt(e)
	}

	if len(e.seeded) > cfg.Population {
		return nil, fmt.Errorf("%w: %d seed programs exceed population %d", ErrInvalidConfig, len(e.seeded), cfg.Population)
	}
	for i, prog := range e.seeded {
		if err := expr.Validate(prog.Root, p.NumVars(), cfg.MaxCrossoverDepth); err != nil {
			return nil, fmt.Errorf("seed program %d: %w", i, err)
		}
	}
	return e, nil
}

// Seed returns the random seed the run uses.
func (e *Engine) Seed() int64 { return e.seed }

// Names returns the variable names bound to the tree leaves.
func (e *Engine) Names() []string { return e.names }

// State returns the current lifecycle state.
func (e *Engine) State() State { return e.state }

// Result is the outcome of one run.
type Result struct {
	State State
	// Generation is the index of the last scored generation.
	Generation int
	// Generations is the number of generations scored.
	Generations    int
	Best           *diagnosis.Program
	BestFitness    diagnosis.Fitness
	BestFoundAtGen int
	// History holds the best-ever error after each generation.
	History  []float64
	Reports  []GenerationReport
	Stats    strategy.Stats
	Seed     int64
	Duration time.Duration
}

// Run executes the evolutionary loop until the error threshold is met, the
// generation budget is spent, or ctx is cancelled. Cancellation is checked
// only between generations; a generation that has started is always scored
// in full.
func (e *Engine) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	e.logger.Info("starting run",
		"pool", e.cfg.Pool, "strategy", e.cfg.Strategy, "population", e.cfg.Population,
		"max_generations", e.cfg.MaxGenerations, "min_error", e.cfg.MinError,
		"workers", e.cfg.Workers, "seed", e.seed)

	population := e.initialPopulation()

	res := Result{Seed: e.seed, BestFitness: diagnosis.WorstFitness()}
	e.state = StateEvolving

	for gen := 0; ; gen++ {
		genStart := time.Now()
		fitnesses, err := e.evaluatePopulation(population)
		if err != nil {
			return res, fmt.Errorf("generation %d: %w", gen, err)
		}
		generationDuration.Observe(time.Since(genStart).Seconds())

		bestIdx, avgErr := summarize(fitnesses)
		if res.Best == nil || fitnesses[bestIdx].Better(res.BestFitness) {
			res.Best = population[bestIdx]
			res.BestFitness = fitnesses[bestIdx]
			res.BestFoundAtGen = gen
		}
		res.History = append(res.History, res.BestFitness.Error)
		res.Generation = gen
		res.Generations = gen + 1

		generationGauge.Set(float64(gen))
		bestErrorGauge.Set(res.BestFitness.Error)
		generationBestErrorGauge.Set(fitnesses[bestIdx].Error)

		report := GenerationReport{
			Generation:     gen,
			BestError:      res.BestFitness.Error,
			GenerationBest: fitnesses[bestIdx].Error,
			AvgError:       avgErr,
			BestProgram:    population[bestIdx].Format(e.names),
		}
		if e.cfg.Verbose {
			res.Reports = append(res.Reports, report)
		}
		if e.cfg.ReportInterval > 0 && gen%e.cfg.ReportInterval == 0 {
			e.logger.Info("evolving",
				"generation", gen, "best_error", res.BestFitness.Error,
				"generation_best", report.GenerationBest, "avg_error", avgErr)
		}

		if res.BestFitness.Error < e.cfg.MinError {
			e.state = StateConverged
			break
		}
		if gen+1 >= e.cfg.MaxGenerations {
			e.state = StateExhaustedBudget
			break
		}
		if ctx.Err() != nil {
			e.state = StateStopped
			break
		}

		next, stats, err := e.strategy.Evolve(population, fitnesses, e.pool, e.rng)
		if err != nil {
			return res, fmt.Errorf("generation %d: %w", gen, err)
		}
		recordStats(stats)
		res.Stats.Add(stats)
		population = next
	}

	res.State = e.state
	res.Duration = time.Since(start)
	runsTotal.WithLabelValues(res.State.String()).Inc()
	e.logger.Info("run finished",
		"state", res.State.String(), "generations", res.Generations,
		"best_error", res.BestFitness.Error, "best_found_at", res.BestFoundAtGen,
		"duration", res.Duration)
	return res, nil
}

func (e *Engine) initialPopulation() []*diagnosis.Program {
	population := e.strategy.Initialize(e.pool, e.rng, e.cfg.Population)
	copy(population, e.seeded)
	return population
}

// evaluatePopulation scores all programs in parallel. Each evaluation owns
// its bindings, so the only shared state is the read-only dataset.
func (e *Engine) evaluatePopulation(pop []*diagnosis.Program) ([]diagnosis.Fitness, error) {
	fitnesses := make([]diagnosis.Fitness, len(pop))

	workers := e.cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	var g errgroup.Group
	g.SetLimit(workers)
	for i, p := range pop {
		g.Go(func() error {
			f, err := diagnosis.Evaluate(p, e.train)
			if err != nil {
				return err
			}
			fitnesses[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return fitnesses, nil
}

// summarize returns the index of the lowest error (first on ties) and the
// mean error.
func summarize(fitnesses []diagnosis.Fitness) (int, float64) {
	bestIdx := 0
	var sum float64
	for i, f := range fitnesses {
		sum += f.Error
		if f.Error < fitnesses[bestIdx].Error {
			bestIdx = i
		}
	}
	return bestIdx, sum / float64(len(fitnesses))
}
