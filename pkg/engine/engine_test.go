package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildfunctions/genetic_diagnosis/pkg/diagnosis"
	"github.com/wildfunctions/genetic_diagnosis/pkg/expr"
)

var testNames = []string{
	"Clump Thickness", "Uniformity of Cell Size", "Uniformity of Cell Shape",
	"Marginal Adhesion", "Single Epithelial Cell Size", "Bare Nuclei",
	"Bland Chromatin", "Normal Nucleoli", "Mitoses",
}

// testData labels a record malignant when attribute 0 exceeds 5 and adds
// noise on attribute 1 so a perfect classifier is hard to evolve by chance.
func testData(seed int64, n int) diagnosis.Dataset {
	rng := rand.New(rand.NewSource(seed))
	data := make(diagnosis.Dataset, n)
	for i := range data {
		for j := range data[i].Attributes {
			data[i].Attributes[j] = rng.Intn(10) + 1
		}
		data[i].ID = i
		data[i].Condition = diagnosis.ClassBenign
		if data[i].Attributes[0] > 5 {
			data[i].Condition = diagnosis.ClassMalignant
		}
	}
	return data
}

// perfect classifies testData exactly: x0 - 5.5.
func perfect() *diagnosis.Program {
	return diagnosis.NewProgram(&expr.BinaryNode{
		Op:    expr.OpSub,
		Left:  &expr.VarNode{Index: 0},
		Right: &expr.ConstNode{Val: 5.5},
	})
}

func smallConfig() Config {
	cfg := DefaultConfig()
	cfg.Population = 40
	cfg.MaxGenerations = 10
	cfg.Seed = 42
	cfg.Workers = 4
	return cfg
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEngine_ExhaustsBudget(t *testing.T) {
	cfg := smallConfig()
	cfg.MaxGenerations = 5
	cfg.MinError = -1 // unreachable

	e, err := New(cfg, testNames, testData(1, 100), WithLogger(quietLogger()))
	require.NoError(t, err)
	assert.Equal(t, StateInitialized, e.State())

	res, err := e.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateExhaustedBudget, res.State)
	assert.Equal(t, StateExhaustedBudget, e.State())
	assert.Equal(t, 5, res.Generations)
	assert.Equal(t, 4, res.Generation)
	assert.Len(t, res.History, 5)
	require.NotNil(t, res.Best)
}

func TestEngine_ConvergesOnSeededPerfectProgram(t *testing.T) {
	cfg := smallConfig()
	cfg.MinError = 0.02

	e, err := New(cfg, testNames, testData(1, 100), WithLogger(quietLogger()), WithSeedPrograms(perfect()))
	require.NoError(t, err)

	res, err := e.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateConverged, res.State)
	assert.Equal(t, 0, res.Generation)
	assert.Equal(t, 1, res.Generations)
	assert.Equal(t, 0.0, res.BestFitness.Error)
	assert.Equal(t, perfect().String(), res.Best.String())
}

func TestEngine_BestEverMonotonic(t *testing.T) {
	for _, strategyName := range []string{"generational", "hillclimb"} {
		cfg := smallConfig()
		cfg.Strategy = strategyName
		cfg.MaxGenerations = 20
		cfg.MinError = -1
		cfg.EliteCount = 0 // generation bests may regress; best-ever must not

		e, err := New(cfg, testNames, testData(3, 120), WithLogger(quietLogger()))
		require.NoError(t, err)
		res, err := e.Run(context.Background())
		require.NoError(t, err)

		require.Len(t, res.History, 20)
		for i := 1; i < len(res.History); i++ {
			assert.LessOrEqual(t, res.History[i], res.History[i-1], "%s: history regressed at generation %d", strategyName, i)
		}
		assert.Equal(t, res.History[len(res.History)-1], res.BestFitness.Error)

		// The recorded best really scores what the run claims.
		f, err := diagnosis.Evaluate(res.Best, testData(3, 120))
		require.NoError(t, err)
		assert.Equal(t, res.BestFitness, f)
	}
}

func TestEngine_BestEverSurvivesWorseGenerations(t *testing.T) {
	cfg := smallConfig()
	cfg.MaxGenerations = 20
	cfg.MinError = -1
	cfg.Verbose = true
	// Every offspring is a mutant and nothing is copied forward, so the
	// perfect seed is soon lost from the population.
	cfg.EliteCount = 0
	cfg.CrossoverProb, cfg.MutationProb, cfg.ReproductionProb = 0, 1, 0

	e, err := New(cfg, testNames, testData(1, 100), WithLogger(quietLogger()), WithSeedPrograms(perfect()))
	require.NoError(t, err)
	res, err := e.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, res.Reports, 20)
	regressed := false
	for i, r := range res.Reports {
		assert.Equal(t, 0.0, r.BestError, "generation %d", i)
		if r.GenerationBest > r.BestError {
			regressed = true
		}
	}
	assert.True(t, regressed, "some generation should score worse than the incumbent")
	assert.Equal(t, 0.0, res.BestFitness.Error)
	assert.Equal(t, 0, res.BestFoundAtGen)
	assert.Equal(t, perfect().String(), res.Best.String())
}

func TestEngine_Deterministic(t *testing.T) {
	run := func() Result {
		cfg := smallConfig()
		cfg.MinError = -1
		e, err := New(cfg, testNames, testData(5, 80), WithLogger(quietLogger()))
		require.NoError(t, err)
		res, err := e.Run(context.Background())
		require.NoError(t, err)
		return res
	}
	a, b := run(), run()
	assert.Equal(t, a.History, b.History)
	assert.Equal(t, a.Best.String(), b.Best.String())
	assert.Equal(t, a.Stats, b.Stats)
}

func TestEngine_StopsAtGenerationBoundary(t *testing.T) {
	cfg := smallConfig()
	cfg.MinError = -1
	cfg.MaxGenerations = 1000

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e, err := New(cfg, testNames, testData(1, 50), WithLogger(quietLogger()))
	require.NoError(t, err)
	res, err := e.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, StateStopped, res.State)
	assert.Equal(t, 1, res.Generations, "the started generation is scored in full")
	assert.NotNil(t, res.Best)
}

func TestEngine_ProgressLogging(t *testing.T) {
	cfg := smallConfig()
	cfg.MinError = -1
	cfg.MaxGenerations = 6
	cfg.ReportInterval = 2

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	e, err := New(cfg, testNames, testData(1, 50), WithLogger(logger))
	require.NoError(t, err)
	_, err = e.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, strings.Count(buf.String(), "msg=evolving"))
	assert.Contains(t, buf.String(), "state=exhausted_budget")
}

func TestEngine_ConfigErrors(t *testing.T) {
	data := testData(1, 10)

	cases := map[string]func(*Config){
		"zero population":     func(c *Config) { c.Population = 0 },
		"negative population": func(c *Config) { c.Population = -3 },
		"zero generations":    func(c *Config) { c.MaxGenerations = 0 },
		"unknown pool":        func(c *Config) { c.Pool = "nonexistent" },
		"unknown strategy":    func(c *Config) { c.Strategy = "nonexistent" },
		"inverted depths":     func(c *Config) { c.MaxCrossoverDepth = 2 },
		"no operators": func(c *Config) {
			c.CrossoverProb, c.MutationProb, c.ReproductionProb = 0, 0, 0
		},
		"bad constant range": func(c *Config) { c.ConstMin, c.ConstMax = 5, 1 },
		"bad format":          func(c *Config) { c.Format = "xml" },
	}
	for name, mutate := range cases {
		cfg := smallConfig()
		mutate(&cfg)
		_, err := New(cfg, testNames, data)
		assert.ErrorIs(t, err, ErrInvalidConfig, name)
	}

	_, err := New(smallConfig(), testNames[:3], data)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	repeated := append([]string(nil), testNames...)
	repeated[5] = repeated[2]
	_, err = New(smallConfig(), repeated, data)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.ErrorIs(t, err, diagnosis.ErrBadNames)

	_, err = New(smallConfig(), testNames, nil)
	assert.ErrorIs(t, err, ErrNoTrainingData)

	badVar := diagnosis.NewProgram(&expr.VarNode{Index: 12})
	_, err = New(smallConfig(), testNames, data, WithSeedPrograms(badVar))
	assert.ErrorIs(t, err, expr.ErrInvalidTree)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gp.yaml")
	yaml := "population: 250\nmax_generations: 40\nstrategy: hillclimb\nmax_init_depth: 3\ncrossover_prob: 0.7\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 250, cfg.Population)
	assert.Equal(t, 40, cfg.MaxGenerations)
	assert.Equal(t, "hillclimb", cfg.Strategy)
	assert.Equal(t, 3, cfg.MaxInitDepth)
	assert.Equal(t, 0.7, cfg.CrossoverProb)
	// Untouched fields keep their defaults.
	assert.Equal(t, 6, cfg.MaxCrossoverDepth)
	assert.Equal(t, 0.02, cfg.MinError)
	require.NoError(t, cfg.Validate())

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	typo := filepath.Join(t.TempDir(), "typo.yaml")
	require.NoError(t, os.WriteFile(typo, []byte("populaton: 5\n"), 0o644))
	_, err = LoadConfig(typo)
	assert.ErrorContains(t, err, "populaton")

	empty := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	cfg, err = LoadConfig(empty)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	cfg, err = LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestFinalReport(t *testing.T) {
	cfg := smallConfig()
	train := testData(1, 100)
	test := testData(2, 40)

	e, err := New(cfg, testNames, train, WithLogger(quietLogger()), WithSeedPrograms(perfect()))
	require.NoError(t, err)
	res, err := e.Run(context.Background())
	require.NoError(t, err)

	report, err := NewFinalReport(cfg, res, testNames, train, test)
	require.NoError(t, err)
	assert.Equal(t, 100.0, report.TrainAccuracy)
	require.NotNil(t, report.TestAccuracy)
	assert.Equal(t, 100.0, *report.TestAccuracy)
	assert.Equal(t, "(Clump Thickness - 5.5)", report.BestProgram)

	var text bytes.Buffer
	WriteTextFinal(&text, report)
	assert.Contains(t, text.String(), "Percentage of training instances correctly classified: 100.0000%")
	assert.Contains(t, text.String(), "Percentage of test instances correctly classified: 100.0000%")

	var js bytes.Buffer
	require.NoError(t, WriteJSONFinal(&js, report))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(js.Bytes(), &decoded))
	assert.Equal(t, "converged", decoded["state"])
	assert.Equal(t, report.BestProgram, decoded["best_program"])

	var tex bytes.Buffer
	WriteLatex(&tex, report)
	assert.Contains(t, tex.String(), `\begin{document}`)
	assert.Contains(t, tex.String(), `\mathit{Clump\ Thickness}`)
}

func TestStateText(t *testing.T) {
	for s := StateInitialized; s <= StateStopped; s++ {
		text, err := s.MarshalText()
		require.NoError(t, err)
		var back State
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, s, back)
	}
	assert.True(t, StateConverged.Terminal())
	assert.False(t, StateEvolving.Terminal())
}
