package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/gallop/internal/league"
	"github.com/yourusername/gallop/internal/models"
	"github.com/yourusername/gallop/internal/pricing"
	"github.com/yourusername/gallop/internal/service"
)

func newTestAPI(t *testing.T, races int) (http.Handler, *service.RaceDayService) {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	settings := league.Settings{RaceEverySec: 1, FieldSize: 3, MaxHorses: 12, PoolSize: 6, RetireAfter: 10}
	store := league.NewJSONStore(filepath.Join(t.TempDir(), "league.json"), settings)
	svc := service.NewRaceDayService(
		store,
		league.New(nil, rand.New(rand.NewSource(5)), log),
		pricing.NewTrainer(pricing.DefaultParams(), time.Minute, log),
		nil,
		service.Options{Settings: settings, Distance: 80, Simulations: 40},
		log,
	)

	ctx := context.Background()
	_, err := svc.Init(ctx)
	require.NoError(t, err)
	for i := 0; i < races; i++ {
		_, err := svc.Race(ctx, service.RaceOptions{})
		require.NoError(t, err)
	}
	return NewHandler(svc, log).Router(nil), svc
}

func do(t *testing.T, h http.Handler, method, path, body string, out interface{}) int {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, reader))
	if out != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec.Code
}

func TestListHorses(t *testing.T) {
	h, _ := newTestAPI(t, 2)

	var horses []models.Horse
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/horses", "", &horses))
	assert.Len(t, horses, 6)

	var top []models.Horse
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/horses?top=2", "", &top))
	require.Len(t, top, 2)
	assert.GreaterOrEqual(t, top[0].Wins, top[1].Wins)

	var retired []models.Horse
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/horses?retired=true", "", &retired))
	assert.Empty(t, retired)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/horses?top=many", "", nil))
}

func TestGetHorse(t *testing.T) {
	h, svc := newTestAPI(t, 0)
	state, err := svc.State(context.Background())
	require.NoError(t, err)

	var horse models.Horse
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/horses/"+state.Horses[0].ID, "", &horse))
	assert.Equal(t, state.Horses[0].Name, horse.Name)

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/horses/h_missing", "", nil))
}

func TestListAndGetRaces(t *testing.T) {
	h, _ := newTestAPI(t, 3)

	var races []models.RaceRecord
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/races?limit=2", "", &races))
	require.Len(t, races, 2)
	assert.Equal(t, "r_00003", races[0].ID)
	assert.Equal(t, "r_00002", races[1].ID)

	var record models.RaceRecord
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/races/r_00001", "", &record))
	assert.Equal(t, "r_00001", record.ID)

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/races/last", "", &record))
	assert.Equal(t, "r_00003", record.ID)

	var errBody map[string]string
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/races/r_00042", "", &errBody))
	assert.Contains(t, errBody["error"], "r_00042")
}

func TestReplayRace(t *testing.T) {
	h, _ := newTestAPI(t, 1)

	var replay replayResponse
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/races/r_00001/replay", "", &replay))
	assert.True(t, replay.Matches)
	assert.Equal(t, replay.Race.Order, replay.Summary.Order)
}

func TestSettleBet(t *testing.T) {
	h, svc := newTestAPI(t, 1)
	record, err := svc.FindRace(context.Background(), league.LastRace)
	require.NoError(t, err)

	body := `{"horse_id":"` + record.Winner + `","side":"BACK","odds":3.0,"stake":10}`
	var settlement map[string]interface{}
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/races/last/settle", body, &settlement))
	assert.Equal(t, true, settlement["won"])
	assert.Equal(t, "20", settlement["profit_loss"])

	bad := `{"horse_id":"` + record.Winner + `","side":"BACK","odds":0.5,"stake":10}`
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/api/races/last/settle", bad, nil))
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/api/races/last/settle", "{", nil))
}

func TestGetOdds(t *testing.T) {
	h, _ := newTestAPI(t, 0)

	var odds oddsResponse
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/odds?sims=60&distance=90", "", &odds))
	assert.Equal(t, "r_00001", odds.RaceID)
	assert.Equal(t, 60, odds.Simulations)
	assert.Equal(t, 90.0, odds.Distance)
	require.Len(t, odds.Runners, 3)
	for i, runner := range odds.Runners {
		assert.GreaterOrEqual(t, runner.Decimal, 1.05)
		assert.NotEmpty(t, runner.Fractional)
		if i > 0 {
			assert.GreaterOrEqual(t, runner.Decimal, odds.Runners[i-1].Decimal)
		}
	}

	// clamping may pull the book below 1+margin; the fair probabilities always sum to one
	var fair, shares, book float64
	for _, runner := range odds.Runners {
		fair += runner.Fair
		shares += runner.WinShare
		book += 1 / runner.Decimal
	}
	assert.InDelta(t, 1.0, fair, 1e-9)
	assert.InDelta(t, 1.0, shares, 1e-9)
	assert.InDelta(t, book, odds.Book, 1e-9)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/odds?distance=-4", "", nil))
}

func TestGetOddsRejectsExcessiveSimulations(t *testing.T) {
	h, _ := newTestAPI(t, 0)

	var body map[string]string
	path := fmt.Sprintf("/api/odds?sims=%d", pricing.MaxSimulations+1)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, path, "", &body))
	assert.Contains(t, body["error"], "must not exceed")

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/odds?sims=2000000000", "", nil))
}
