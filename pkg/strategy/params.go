package strategy

import (
	"errors"
	"fmt"
)

// Params holds the evolutionary parameters shared by initialization,
// selection and the genetic operators.
type Params struct {
	MinInitDepth      int `json:"min_init_depth" yaml:"min_init_depth" validate:"gte=1"`
	MaxInitDepth      int `json:"max_init_depth" yaml:"max_init_depth" validate:"gtefield=MinInitDepth"`
	MaxCrossoverDepth int `json:"max_crossover_depth" yaml:"max_crossover_depth" validate:"gtefield=MaxInitDepth"`

	CrossoverProb    float64 `json:"crossover_prob" yaml:"crossover_prob" validate:"gte=0,lte=1"`
	MutationProb     float64 `json:"mutation_prob" yaml:"mutation_prob" validate:"gte=0,lte=1"`
	ReproductionProb float64 `json:"reproduction_prob" yaml:"reproduction_prob" validate:"gte=0,lte=1"`

	TournamentSize    int     `json:"tournament_size" yaml:"tournament_size" validate:"gte=1"`
	EliteCount        int     `json:"elite_count" yaml:"elite_count" validate:"gte=0"`
	CrossoverAttempts int     `json:"crossover_attempts" yaml:"crossover_attempts" validate:"gte=1"`
	FunctionPointBias float64 `json:"function_point_bias" yaml:"function_point_bias" validate:"gte=0,lte=1"`

	StrictCreation      bool `json:"strict_creation" yaml:"strict_creation"`
	MaxCreationAttempts int  `json:"max_creation_attempts" yaml:"max_creation_attempts" validate:"gte=1"`

	// InjectionRate is the fraction of each hillclimb generation replaced with
	// fresh random programs.
	InjectionRate float64 `json:"injection_rate" yaml:"injection_rate" validate:"gte=0,lte=1"`
}

// DefaultParams returns the reference parameter set.
func DefaultParams() Params {
	return Params{
		MinInitDepth:        2,
		MaxInitDepth:        4,
		MaxCrossoverDepth:   6,
		CrossoverProb:       0.9,
		MutationProb:        0.2,
		ReproductionProb:    0.05,
		TournamentSize:      5,
		EliteCount:          1,
		CrossoverAttempts:   5,
		FunctionPointBias:   0.9,
		StrictCreation:      true,
		MaxCreationAttempts: 20,
		InjectionRate:       0.05,
	}
}

var ErrNoOperators = errors.New("operator probabilities sum to zero")

// Check verifies the constraints that struct tags cannot express.
func (p Params) Check() error {
	if p.CrossoverProb+p.MutationProb+p.ReproductionProb <= 0 {
		return ErrNoOperators
	}
	if p.MinInitDepth < 1 || p.MaxInitDepth < p.MinInitDepth || p.MaxCrossoverDepth < p.MaxInitDepth {
		return fmt.Errorf("depth limits must satisfy 1 <= min (%d) <= max (%d) <= crossover (%d)",
			p.MinInitDepth, p.MaxInitDepth, p.MaxCrossoverDepth)
	}
	return nil
}
