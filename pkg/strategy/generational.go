package strategy

import (
	"math/rand"

	"github.com/wildfunctions/genetic_diagnosis/pkg/diagnosis"
	"github.com/wildfunctions/genetic_diagnosis/pkg/pool"
)

func init() {
	Register("generational", func(params Params) Strategy { return &GenerationalStrategy{params: params} })
}

// Operator identifies the genetic operator that produced an offspring.
type Operator int

const (
	OpCrossover Operator = iota
	OpMutation
	OpReproduction
)

func (o Operator) String() string {
	switch o {
	case OpCrossover:
		return "crossover"
	case OpMutation:
		return "mutation"
	case OpReproduction:
		return "reproduction"
	default:
		return "unknown"
	}
}

// ChooseOperator draws one operator with probability proportional to its
// configured rate.
func ChooseOperator(params Params, rng *rand.Rand) Operator {
	total := params.CrossoverProb + params.MutationProb + params.ReproductionProb
	r := rng.Float64() * total
	switch {
	case r < params.CrossoverProb:
		return OpCrossover
	case r < params.CrossoverProb+params.MutationProb:
		return OpMutation
	default:
		return OpReproduction
	}
}

// GenerationalStrategy replaces the whole population each generation. After
// copying the elites, every offspring comes from exactly one of crossover,
// subtree mutation or reproduction, with parents picked by tournament.
type GenerationalStrategy struct {
	params Params
}

func (s *GenerationalStrategy) Name() string { return "generational" }

func (s *GenerationalStrategy) Initialize(p pool.Pool, rng *rand.Rand, popSize int) []*diagnosis.Program {
	return Initialize(p, rng, s.params, popSize)
}

func (s *GenerationalStrategy) Evolve(
	population []*diagnosis.Program,
	fitnesses []diagnosis.Fitness,
	p pool.Pool,
	rng *rand.Rand,
) ([]*diagnosis.Program, Stats, error) {
	n := len(population)
	if n == 0 {
		return nil, Stats{}, ErrEmptyPopulation
	}
	next := make([]*diagnosis.Program, 0, n)
	var stats Stats

	ranked := rank(fitnesses)
	for i := 0; i < s.params.EliteCount && i < n; i++ {
		next = append(next, population[ranked[i]].Clone())
		stats.Elites++
	}

	k := s.params.TournamentSize
	for len(next) < n {
		switch ChooseOperator(s.params, rng) {
		case OpCrossover:
			p1 := population[tournament(fitnesses, k, rng)]
			p2 := population[tournament(fitnesses, k, rng)]
			c1, c2, ok := Crossover(p1, p2, s.params, rng)
			stats.Crossovers++
			if !ok {
				stats.CrossoverFallbacks++
			}
			next = append(next, c1)
			if len(next) < n {
				next = append(next, c2)
			}
		case OpMutation:
			parent := population[tournament(fitnesses, k, rng)]
			next = append(next, SubtreeMutate(parent, p, s.params, rng))
			stats.Mutations++
		default:
			parent := population[tournament(fitnesses, k, rng)]
			next = append(next, parent.Clone())
			stats.Reproductions++
		}
	}
	return next, stats, nil
}
