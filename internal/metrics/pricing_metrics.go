package metrics

import "github.com/prometheus/client_golang/prometheus"

// Pricing counters
var (
	SimulationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gallop",
		Name:      "simulations_total",
		Help:      "Total number of Monte Carlo race simulations",
	})
	TrainingCacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gallop",
		Name:      "training_cache_lookups_total",
		Help:      "Monte Carlo training cache lookups by result",
	}, []string{"result"})
)

// Pricing histograms and gauges
var (
	TrainingDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "gallop",
		Name:      "training_duration_seconds",
		Help:      "Duration of Monte Carlo training runs in seconds",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
	})
	BookPercentage = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "gallop",
		Name:      "book_percentage",
		Help:      "Sum of implied probabilities of the last priced field, as a percentage",
	})
)

// RecordTraining records a completed training run.
func RecordTraining(simulations int, durationSeconds float64) {
	SimulationsTotal.Add(float64(simulations))
	TrainingDuration.Observe(durationSeconds)
}

// RecordTrainingCache records a training cache hit or miss.
func RecordTrainingCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	TrainingCacheLookups.WithLabelValues(result).Inc()
}

// UpdateBook updates the book percentage gauge.
func UpdateBook(book float64) {
	BookPercentage.Set(book * 100)
}
