package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/wildfunctions/genetic_diagnosis/pkg/strategy"
)

var (
	generationGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gp_generation",
		Help: "Index of the most recently scored generation",
	})

	bestErrorGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gp_best_error",
		Help: "Best-ever training error rate of the current run",
	})

	generationBestErrorGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gp_generation_best_error",
		Help: "Best training error rate within the most recent generation",
	})

	operatorTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gp_operator_applications_total",
		Help: "Genetic operator applications, by operator",
	}, []string{"operator"})

	crossoverFallbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gp_crossover_fallbacks_total",
		Help: "Crossovers that exhausted their attempts and copied the parents",
	})

	generationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gp_generation_duration_seconds",
		Help:    "Time to score one generation",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
	})

	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gp_runs_total",
		Help: "Finished runs, by terminal state",
	}, []string{"state"})
)

func recordStats(s strategy.Stats) {
	operatorTotal.WithLabelValues("elite").Add(float64(s.Elites))
	operatorTotal.WithLabelValues("crossover").Add(float64(s.Crossovers))
	operatorTotal.WithLabelValues("mutation").Add(float64(s.Mutations))
	operatorTotal.WithLabelValues("reproduction").Add(float64(s.Reproductions))
	operatorTotal.WithLabelValues("injection").Add(float64(s.Injections))
	crossoverFallbacksTotal.Add(float64(s.CrossoverFallbacks))
}
