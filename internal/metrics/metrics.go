// Package metrics provides the centralized Prometheus registry for the league.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	RacesRunTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gallop",
		Name:      "races_run_total",
		Help:      "Total number of league races run",
	})
	RetirementsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gallop",
		Name:      "retirements_total",
		Help:      "Total number of horses retired",
	})
	HorsesGeneratedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gallop",
		Name:      "horses_generated_total",
		Help:      "Total number of horses generated to refill the pool",
	})
	PublishTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gallop",
		Name:      "publish_total",
		Help:      "Race record publications by sink and status",
	}, []string{"sink", "status"})
	RaceWinsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gallop",
		Name:      "race_wins_total",
		Help:      "Race wins by the class the field was drawn from",
	}, []string{"class"})
)

// Gauge metrics
var (
	ActiveHorses = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "gallop",
		Name:      "active_horses",
		Help:      "Number of horses eligible to race",
	})
	ArchivedRaces = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "gallop",
		Name:      "archived_races",
		Help:      "Number of race records in the archive",
	})
	FeedClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "gallop",
		Name:      "feed_clients",
		Help:      "Number of connected live feed clients",
	})
)

// Histogram metrics
var (
	RaceTicks = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "gallop",
		Name:      "race_ticks",
		Help:      "Ticks taken for the last horse to finish",
		Buckets:   []float64{5, 10, 20, 30, 40, 50, 75, 100},
	})
	RaceCycleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "gallop",
		Name:      "race_cycle_duration_seconds",
		Help:      "Duration of a full price, race and persist cycle in seconds",
		Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(RacesRunTotal)
		registry.MustRegister(RetirementsTotal)
		registry.MustRegister(HorsesGeneratedTotal)
		registry.MustRegister(PublishTotal)
		registry.MustRegister(RaceWinsTotal)

		registry.MustRegister(ActiveHorses)
		registry.MustRegister(ArchivedRaces)
		registry.MustRegister(FeedClients)

		registry.MustRegister(RaceTicks)
		registry.MustRegister(RaceCycleDuration)

		// pricing
		registry.MustRegister(SimulationsTotal)
		registry.MustRegister(TrainingCacheLookups)
		registry.MustRegister(TrainingDuration)
		registry.MustRegister(BookPercentage)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordRace records a finished race.
func RecordRace(class string, ticks int) {
	RacesRunTotal.Inc()
	RaceWinsTotal.WithLabelValues(class).Inc()
	RaceTicks.Observe(float64(ticks))
}

// RecordRetirements records horses leaving the active pool.
func RecordRetirements(count int) {
	RetirementsTotal.Add(float64(count))
}

// RecordHorsesGenerated records new horses added to the pool.
func RecordHorsesGenerated(count int) {
	HorsesGeneratedTotal.Add(float64(count))
}

// RecordPublish records a race record publication attempt.
func RecordPublish(sink string, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	PublishTotal.WithLabelValues(sink, status).Inc()
}

// UpdateLeagueSize updates the pool and archive gauges.
func UpdateLeagueSize(activeHorses, archivedRaces int) {
	ActiveHorses.Set(float64(activeHorses))
	ArchivedRaces.Set(float64(archivedRaces))
}

// UpdateFeedClients updates the connected feed client gauge.
func UpdateFeedClients(count int) {
	FeedClients.Set(float64(count))
}

// RecordRaceCycle records the duration of a race cycle.
func RecordRaceCycle(durationSeconds float64) {
	RaceCycleDuration.Observe(durationSeconds)
}
