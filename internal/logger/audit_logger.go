// Package logger provides audit logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditLogger provides dedicated audit trail logging.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogBetSettled logs a settled toy bet.
func (al *AuditLogger) LogBetSettled(raceID, horseID, side string, odds, stake, profitLoss float64) {
	al.WithFields(logrus.Fields{
		"race_id":     raceID,
		"horse_id":    horseID,
		"side":        side,
		"odds":        odds,
		"stake":       stake,
		"profit_loss": profitLoss,
	}).Info("Bet settled")
}

// LogStateSaved logs a persisted league state.
func (al *AuditLogger) LogStateSaved(store string, horses, races int, savedAt time.Time) {
	al.WithFields(logrus.Fields{
		"store":     store,
		"horses":    horses,
		"races":     races,
		"timestamp": savedAt.Unix(),
	}).Debug("League state saved")
}
