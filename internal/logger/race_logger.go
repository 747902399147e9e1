// Package logger provides race-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// RaceLogger provides dedicated logging for race cycles.
type RaceLogger struct {
	*logrus.Entry
}

// NewRaceLogger creates a new race logger.
func NewRaceLogger(baseLogger *logrus.Logger) *RaceLogger {
	return &RaceLogger{
		Entry: baseLogger.WithField("component", "race"),
	}
}

// LogRaceFinished logs a completed race.
func (rl *RaceLogger) LogRaceFinished(raceID, winnerID, winnerName string, fieldSize, ticks int, seed int64) {
	rl.WithFields(logrus.Fields{
		"race_id":     raceID,
		"winner_id":   winnerID,
		"winner_name": winnerName,
		"field_size":  fieldSize,
		"ticks":       ticks,
		"seed":        seed,
	}).Info("Race finished")
}

// LogOddsPriced logs a priced field.
func (rl *RaceLogger) LogOddsPriced(favouriteID string, favouriteOdds, book float64, simulations int, cacheHitRatio float64) {
	rl.WithFields(logrus.Fields{
		"favourite_id":    favouriteID,
		"favourite_odds":  favouriteOdds,
		"book":            book,
		"simulations":     simulations,
		"cache_hit_ratio": cacheHitRatio,
	}).Info("Field priced")
}

// LogRetirements logs horses leaving the active pool.
func (rl *RaceLogger) LogRetirements(horseIDs []string, poolSize int) {
	if len(horseIDs) == 0 {
		return
	}
	rl.WithFields(logrus.Fields{
		"retired":   horseIDs,
		"pool_size": poolSize,
	}).Info("Horses retired")
}

// LogPublishFailure logs a race record that could not be published.
func (rl *RaceLogger) LogPublishFailure(sink, raceID string, err error) {
	rl.WithFields(logrus.Fields{
		"sink":    sink,
		"race_id": raceID,
	}).WithError(err).Warn("Failed to publish race record")
}
