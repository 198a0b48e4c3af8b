package strategy

import (
	"math/rand"

	"github.com/wildfunctions/genetic_diagnosis/pkg/diagnosis"
)

// Select runs one tournament of size k and returns the index of the winner.
// Lower error wins; on a tie the contestant drawn first is kept.
func Select(fitnesses []diagnosis.Fitness, k int, rng *rand.Rand) (int, error) {
	if len(fitnesses) == 0 {
		return 0, ErrEmptyPopulation
	}
	return tournament(fitnesses, k, rng), nil
}

func tournament(fitnesses []diagnosis.Fitness, k int, rng *rand.Rand) int {
	bestIdx := rng.Intn(len(fitnesses))
	bestErr := fitnesses[bestIdx].Error

	for i := 1; i < k; i++ {
		idx := rng.Intn(len(fitnesses))
		if fitnesses[idx].Error < bestErr {
			bestIdx = idx
			bestErr = fitnesses[idx].Error
		}
	}
	return bestIdx
}
