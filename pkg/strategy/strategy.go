package strategy

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"github.com/wildfunctions/genetic_diagnosis/pkg/diagnosis"
	"github.com/wildfunctions/genetic_diagnosis/pkg/pool"
)

// Strategy defines how a population is created and how one generation is
// turned into the next.
type Strategy interface {
	Name() string
	Initialize(p pool.Pool, rng *rand.Rand, popSize int) []*diagnosis.Program
	Evolve(population []*diagnosis.Program, fitnesses []diagnosis.Fitness, p pool.Pool, rng *rand.Rand) ([]*diagnosis.Program, Stats, error)
}

// ErrEmptyPopulation is returned when selection or evolution is asked to work
// on zero programs.
var ErrEmptyPopulation = errors.New("empty population")

// Stats counts how the offspring of one generation were produced.
type Stats struct {
	Elites             int `json:"elites"`
	Crossovers         int `json:"crossovers"`
	CrossoverFallbacks int `json:"crossover_fallbacks"`
	Mutations          int `json:"mutations"`
	Reproductions      int `json:"reproductions"`
	Injections         int `json:"injections"`
}

// Add accumulates other into s.
func (s *Stats) Add(other Stats) {
	s.Elites += other.Elites
	s.Crossovers += other.Crossovers
	s.CrossoverFallbacks += other.CrossoverFallbacks
	s.Mutations += other.Mutations
	s.Reproductions += other.Reproductions
	s.Injections += other.Injections
}

var registry = map[string]func(Params) Strategy{}

// Register adds a strategy constructor to the registry.
func Register(name string, constructor func(Params) Strategy) {
	registry[name] = constructor
}

// Get returns a strategy by name, configured with params.
func Get(name string, params Params) (Strategy, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown strategy: %s", name)
	}
	return ctor(params), nil
}

// Names returns all registered strategy names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for k := range registry {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// rank returns population indexes ordered best first. Equal errors keep
// their population order.
func rank(fitnesses []diagnosis.Fitness) []int {
	indices := make([]int, len(fitnesses))
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(a, b int) bool {
		return fitnesses[indices[a]].Error < fitnesses[indices[b]].Error
	})
	return indices
}
