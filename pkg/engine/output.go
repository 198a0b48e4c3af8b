package engine

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/wildfunctions/genetic_diagnosis/pkg/diagnosis"
	"github.com/wildfunctions/genetic_diagnosis/pkg/strategy"
)

// GenerationReport summarizes one generation.
type GenerationReport struct {
	Generation     int     `json:"generation"`
	BestError      float64 `json:"best_error"`
	GenerationBest float64 `json:"generation_best"`
	AvgError       float64 `json:"avg_error"`
	BestProgram    string  `json:"best_program"`
}

// FinalReport summarizes the entire run, including the classification
// accuracy of the best program.
type FinalReport struct {
	RunID          string             `json:"run_id,omitempty"`
	Config         Config             `json:"config"`
	State          State              `json:"state"`
	Generations    int                `json:"generations"`
	BestFoundAtGen int                `json:"best_found_at_gen"`
	BestProgram    string             `json:"best_program"`
	BestLaTeX      string             `json:"best_latex"`
	BestFitness    diagnosis.Fitness  `json:"best_fitness"`
	Depth          int                `json:"depth"`
	NodeCount      int                `json:"node_count"`
	TrainAccuracy  float64            `json:"train_accuracy"`
	TestAccuracy   *float64           `json:"test_accuracy,omitempty"`
	History        []float64          `json:"history"`
	Stats          strategy.Stats     `json:"stats"`
	Seed           int64              `json:"seed"`
	DurationMillis int64              `json:"duration_ms"`
	Reports        []GenerationReport `json:"generations_detail,omitempty"`
}

// NewFinalReport runs the best program over the training set and, when test
// is non-empty, the held-out set.
func NewFinalReport(cfg Config, res Result, names []string, train, test diagnosis.Dataset) (FinalReport, error) {
	r := FinalReport{
		Config:         cfg,
		State:          res.State,
		Generations:    res.Generations,
		BestFoundAtGen: res.BestFoundAtGen,
		BestFitness:    res.BestFitness,
		History:        res.History,
		Stats:          res.Stats,
		Seed:           res.Seed,
		DurationMillis: res.Duration.Milliseconds(),
		Reports:        res.Reports,
	}
	r.Config.Seed = res.Seed
	if res.Best == nil {
		return r, nil
	}
	r.BestProgram = res.Best.Format(names)
	r.BestLaTeX = res.Best.LaTeX(names)
	r.Depth = res.Best.Depth()
	r.NodeCount = res.Best.NodeCount()

	acc, err := diagnosis.Accuracy(res.Best, train)
	if err != nil {
		return r, fmt.Errorf("training accuracy: %w", err)
	}
	r.TrainAccuracy = acc
	if len(test) > 0 {
		acc, err := diagnosis.Accuracy(res.Best, test)
		if err != nil {
			return r, fmt.Errorf("test accuracy: %w", err)
		}
		r.TestAccuracy = &acc
	}
	return r, nil
}

// WriteTextReport writes a generation report in human-readable format.
func WriteTextReport(w io.Writer, r GenerationReport) {
	fmt.Fprintf(w, "Gen %4d | Best: %.4f | Gen best: %.4f | Avg: %.4f | %s\n",
		r.Generation, r.BestError, r.GenerationBest, r.AvgError, r.BestProgram)
}

// WriteTextFinal writes the final report in human-readable format.
func WriteTextFinal(w io.Writer, r FinalReport) {
	for _, g := range r.Reports {
		WriteTextReport(w, g)
	}
	fmt.Fprintln(w, "\n========== FINAL RESULT ==========")
	if r.RunID != "" {
		fmt.Fprintf(w, "Run:         %s\n", r.RunID)
	}
	fmt.Fprintf(w, "Pool:        %s\n", r.Config.Pool)
	fmt.Fprintf(w, "Strategy:    %s\n", r.Config.Strategy)
	fmt.Fprintf(w, "Seed:        %d\n", r.Seed)
	fmt.Fprintf(w, "State:       %s after %d generations (best at %d)\n", r.State, r.Generations, r.BestFoundAtGen)
	fmt.Fprintf(w, "Best:        %s\n", r.BestProgram)
	fmt.Fprintf(w, "Size:        depth %d, %d nodes\n", r.Depth, r.NodeCount)
	fmt.Fprintf(w, "Error:       %.4f\n", r.BestFitness.Error)
	fmt.Fprintf(w, "\nPercentage of training instances correctly classified: %.4f%%\n", r.TrainAccuracy)
	if r.TestAccuracy != nil {
		fmt.Fprintf(w, "Percentage of test instances correctly classified: %.4f%%\n", *r.TestAccuracy)
	}
	fmt.Fprintln(w, "==================================")
}

// WriteJSONFinal writes the final report as JSON.
func WriteJSONFinal(w io.Writer, r FinalReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// latexEscape escapes underscores and other special chars for LaTeX text mode.
func latexEscape(s string) string {
	return strings.NewReplacer("_", `\_`, "%", `\%`, "&", `\&`, "#", `\#`).Replace(s)
}

// WriteLatex writes a compilable LaTeX document describing the best program.
func WriteLatex(w io.Writer, r FinalReport) {
	fmt.Fprintln(w, `\documentclass{article}`)
	fmt.Fprintln(w, `\usepackage{amsmath}`)
	fmt.Fprintln(w, `\usepackage{geometry}`)
	fmt.Fprintln(w, `\geometry{margin=1in}`)
	fmt.Fprintln(w, `\title{Evolved Diagnostic Classifier}`)
	fmt.Fprintln(w, `\date{\today}`)
	fmt.Fprintln(w, `\begin{document}`)
	fmt.Fprintln(w, `\maketitle`)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "\\noindent Pool: \\texttt{%s}, Strategy: \\texttt{%s}\\\\\n",
		latexEscape(r.Config.Pool), latexEscape(r.Config.Strategy))
	fmt.Fprintf(w, "Population: %d, Generations: %d of %d, State: \\texttt{%s}, Seed: %d\\\\\n",
		r.Config.Population, r.Generations, r.Config.MaxGenerations, latexEscape(r.State.String()), r.Seed)
	fmt.Fprintln(w)
	fmt.Fprintln(w, `\noindent A record is classified benign when the expression is negative, malignant otherwise.`)
	fmt.Fprintln(w, `\[`)
	fmt.Fprintf(w, "  f = %s\n", r.BestLaTeX)
	fmt.Fprintln(w, `\]`)
	fmt.Fprintf(w, "\\noindent Training accuracy: %.4f\\%%\\\\\n", r.TrainAccuracy)
	if r.TestAccuracy != nil {
		fmt.Fprintf(w, "Test accuracy: %.4f\\%%\n", *r.TestAccuracy)
	}
	fmt.Fprintln(w, `\end{document}`)
}
