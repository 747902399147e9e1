package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		return nil
	}
	return logEntry
}

func TestNewLoggerLevels(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewLoggerWithOutput("debug", buf)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	log = NewLoggerWithOutput("nonsense", buf)
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	assert.Contains(t, buf.String(), "Invalid log level")
}

func TestNewLoggerProductionUsesJSON(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")

	log := NewLogger("info")
	_, ok := log.Formatter.(*logrus.JSONFormatter)
	assert.True(t, ok)
}

func TestRaceLoggerFinished(t *testing.T) {
	log, buf := setupTestLogger()
	raceLogger := NewRaceLogger(log)

	raceLogger.LogRaceFinished("r_00007", "h_a1b2c3", "Willow", 6, 42, 1234)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "race", logEntry["component"])
	assert.Equal(t, "r_00007", logEntry["race_id"])
	assert.Equal(t, "Willow", logEntry["winner_name"])
	assert.Equal(t, float64(42), logEntry["ticks"])
}

func TestRaceLoggerOddsPriced(t *testing.T) {
	log, buf := setupTestLogger()
	NewRaceLogger(log).LogOddsPriced("h_a1b2c3", 2.4, 1.1, 800, 0.5)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "h_a1b2c3", logEntry["favourite_id"])
	assert.Equal(t, 1.1, logEntry["book"])
}

func TestRaceLoggerRetirements(t *testing.T) {
	log, buf := setupTestLogger()
	raceLogger := NewRaceLogger(log)

	raceLogger.LogRetirements(nil, 30)
	assert.Empty(t, buf.String())

	raceLogger.LogRetirements([]string{"h_old"}, 30)
	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, []interface{}{"h_old"}, logEntry["retired"])
}

func TestRaceLoggerPublishFailure(t *testing.T) {
	log, buf := setupTestLogger()
	NewRaceLogger(log).LogPublishFailure("webhook", "r_00001", errors.New("connection refused"))

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "warning", logEntry["level"])
	assert.Equal(t, "connection refused", logEntry["error"])
}

func TestAuditLoggerBetSettled(t *testing.T) {
	log, buf := setupTestLogger()
	NewAuditLogger(log).LogBetSettled("r_00001", "h_a", "BACK", 3.5, 10, 25)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "audit", logEntry["component"])
	assert.Equal(t, float64(25), logEntry["profit_loss"])
}

func TestAuditLoggerStateSaved(t *testing.T) {
	log, buf := setupTestLogger()
	at := time.Unix(1700000000, 0)
	NewAuditLogger(log).LogStateSaved("json", 30, 12, at)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, float64(1700000000), logEntry["timestamp"])
}
