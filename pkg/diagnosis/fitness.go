package diagnosis

import (
	"errors"

	"github.com/wildfunctions/genetic_diagnosis/pkg/expr"
)

// MinCorrect is the correct-count floor below which the count is treated as
// zero.
const MinCorrect = 0.02

// ErrEmptyDataset is returned when asked to score against no records.
var ErrEmptyDataset = errors.New("dataset has no records")

// Fitness is the score of one program over one dataset. Lower Error is
// better.
type Fitness struct {
	Error   float64 `json:"error"`
	Correct int     `json:"correct"`
	Total   int     `json:"total"`
}

// WorstFitness is the score assigned before any evaluation.
func WorstFitness() Fitness {
	return Fitness{Error: 1}
}

// Better reports whether f is strictly better than other.
func (f Fitness) Better(other Fitness) bool {
	return f.Error < other.Error
}

// Classify maps a program output to a class: negative outputs are benign,
// everything else (including zero) is malignant.
func Classify(output float64) int {
	if output < 0 {
		return ClassBenign
	}
	return ClassMalignant
}

// Evaluate runs the program over every record and returns the error rate
// 1 - correct/total. It never modifies the dataset and allocates its own
// bindings, so concurrent calls are safe.
func Evaluate(p *Program, data Dataset) (Fitness, error) {
	if len(data) == 0 {
		return WorstFitness(), ErrEmptyDataset
	}

	b := make(expr.Bindings, NumAttributes)
	correct := 0
	for _, patient := range data {
		patient.Bind(b)
		if Classify(p.Execute(b)) == patient.Condition {
			correct++
		}
	}

	numerator := float64(correct)
	if numerator < MinCorrect {
		numerator = 0
	}
	return Fitness{
		Error:   1 - numerator/float64(len(data)),
		Correct: correct,
		Total:   len(data),
	}, nil
}

// Accuracy returns the percentage of records the program classifies
// correctly, derived from Evaluate.
func Accuracy(p *Program, data Dataset) (float64, error) {
	f, err := Evaluate(p, data)
	if err != nil {
		return 0, err
	}
	return 100 * (1 - f.Error), nil
}
