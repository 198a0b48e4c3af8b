package strategy

import (
	"math/rand"

	"github.com/wildfunctions/genetic_diagnosis/pkg/diagnosis"
	"github.com/wildfunctions/genetic_diagnosis/pkg/pool"
)

func init() {
	Register("hillclimb", func(params Params) Strategy { return &HillClimbStrategy{params: params} })
}

// HillClimbStrategy implements directed hill-climbing with a population.
// Each program is replaced by a random mutation of itself, the worst are
// replaced by fresh random programs and the best survives unchanged.
type HillClimbStrategy struct {
	params Params
}

func (s *HillClimbStrategy) Name() string { return "hillclimb" }

func (s *HillClimbStrategy) Initialize(p pool.Pool, rng *rand.Rand, popSize int) []*diagnosis.Program {
	return Initialize(p, rng, s.params, popSize)
}

func (s *HillClimbStrategy) Evolve(
	population []*diagnosis.Program,
	fitnesses []diagnosis.Fitness,
	p pool.Pool,
	rng *rand.Rand,
) ([]*diagnosis.Program, Stats, error) {
	n := len(population)
	if n == 0 {
		return nil, Stats{}, ErrEmptyPopulation
	}
	next := make([]*diagnosis.Program, n)
	var stats Stats

	for i := 0; i < n; i++ {
		next[i] = RandomMutate(population[i], p, s.params, rng)
	}
	stats.Mutations = n

	ranked := rank(fitnesses)

	// Replace worst candidates with random injection
	injectionCount := int(float64(n) * s.params.InjectionRate)
	if injectionCount < 1 && s.params.InjectionRate > 0 {
		injectionCount = 1
	}
	for i := 0; i < injectionCount && i < n-1; i++ {
		idx := ranked[n-1-i]
		next[idx] = diagnosis.NewProgram(pool.Ramped(p, rng, s.params.MinInitDepth, s.params.MaxInitDepth, rng.Intn(n)))
		stats.Injections++
		stats.Mutations--
	}

	// Elitism: keep the best of the old generation in place
	bestIdx := ranked[0]
	next[bestIdx] = population[bestIdx].Clone()
	stats.Elites = 1
	stats.Mutations--

	return next, stats, nil
}
