package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// value reads the current value of a single counter or gauge.
func value(t *testing.T, c prometheus.Metric) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	if m.Counter != nil {
		return m.Counter.GetValue()
	}
	return m.Gauge.GetValue()
}

func TestMetricsRegistry(t *testing.T) {
	InitRegistry()
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
}

func TestRecordRace(t *testing.T) {
	InitRegistry()
	before := value(t, RacesRunTotal)

	assert.NotPanics(t, func() {
		RecordRace("maiden", 42)
	})
	assert.Equal(t, before+1, value(t, RacesRunTotal))
}

func TestRecordPublish(t *testing.T) {
	InitRegistry()

	tests := []struct {
		name   string
		err    error
		status string
	}{
		{name: "success", err: nil, status: "success"},
		{name: "failure", err: errors.New("connection refused"), status: "failure"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := PublishTotal.WithLabelValues("webhook", tt.status)
			before := value(t, counter)
			RecordPublish("webhook", tt.err)
			assert.Equal(t, before+1, value(t, counter))
		})
	}
}

func TestUpdateLeagueSize(t *testing.T) {
	InitRegistry()

	UpdateLeagueSize(30, 12)
	assert.Equal(t, 30.0, value(t, ActiveHorses))
	assert.Equal(t, 12.0, value(t, ArchivedRaces))
}

func TestPricingMetrics(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordTraining(800, 0.25)
		RecordTrainingCache(true)
		RecordTrainingCache(false)
	})

	UpdateBook(1.1)
	assert.InDelta(t, 110.0, value(t, BookPercentage), 1e-9)
}

func TestMetricsHandler(t *testing.T) {
	InitRegistry()
	RecordRetirements(2)

	handler := Handler()
	assert.Implements(t, (*http.Handler)(nil), handler)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "gallop_retirements_total"))
}

func BenchmarkRecordRace(b *testing.B) {
	InitRegistry()

	for i := 0; i < b.N; i++ {
		RecordRace("open", 30)
	}
}
