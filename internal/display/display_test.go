package display

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/gallop/internal/models"
	"github.com/yourusername/gallop/internal/pricing"
	"github.com/yourusername/gallop/internal/race"
)

func testField() []models.Horse {
	return []models.Horse{
		{ID: "h_a", Name: "Comet", Stats: models.Stats{Energy: 8, Agility: 7, Discipline: 6, Temperament: 5}, RetireAfter: 10},
		{ID: "h_b", Name: "Blitzen", Stats: models.Stats{Energy: 6, Agility: 6, Discipline: 5, Temperament: 4}, RetireAfter: 10, Wins: 2, Losses: 1, AgeRaces: 3, Form: []int{1, 2, 1}},
	}
}

func TestLiveRaceDrawsEveryTick(t *testing.T) {
	var buf bytes.Buffer
	live := NewLiveRace(&buf, false)

	run, err := race.Stream(race.Config{Distance: 50, Seed: race.Seeded(9), Field: testField()})
	require.NoError(t, err)

	live.RaceStarted("r_00007", run, nil)
	for run.Next() {
		live.Tick("r_00007", run.Snapshot())
	}
	summary, err := run.Summary()
	require.NoError(t, err)
	live.RaceFinished(models.RaceRecord{ID: "r_00007", Track: summary.TrackCondition, Moods: summary.Moods})

	out := buf.String()
	assert.Contains(t, out, "r_00007")
	assert.Equal(t, summary.Ticks, strings.Count(out, "tick "))
	assert.Contains(t, out, "finished 2/2")
	assert.Contains(t, out, strings.Repeat("█", defaultBarWidth))
	assert.Contains(t, out, "Track: ")
	assert.Contains(t, out, fmt.Sprintf("2 runners  going %.2f", summary.TrackCondition))
	assert.NotContains(t, out, "\033[")
}

func TestLiveRaceRedrawMovesCursor(t *testing.T) {
	var buf bytes.Buffer
	live := NewLiveRace(&buf, true)
	run, err := race.Stream(race.Config{Distance: 50, Seed: race.Seeded(9), Field: testField()})
	require.NoError(t, err)

	live.RaceStarted("r_00001", run, nil)
	run.Next()
	live.Tick("r_00001", run.Snapshot())
	run.Next()
	live.Tick("r_00001", run.Snapshot())

	assert.Equal(t, 1, strings.Count(buf.String(), "\033[3A"))
}

func TestBar(t *testing.T) {
	assert.Equal(t, "░░░░", bar(0, 4))
	assert.Equal(t, "██░░", bar(0.5, 4))
	assert.Equal(t, "████", bar(1.7, 4))
	assert.Equal(t, "░░░░", bar(-1, 4))
}

func TestFinishTable(t *testing.T) {
	var buf bytes.Buffer
	summary := &race.Summary{
		Winner:    "h_b",
		Order:     []string{"h_b", "h_a"},
		Positions: map[string]float64{"h_b": 104.5, "h_a": 98.0},
		Times:     map[string]int{"h_b": 4, "h_a": 5},
	}
	FinishTable(&buf, testField(), summary)

	lines := strings.Split(buf.String(), "\n")
	var rows []string
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "1 ") || strings.HasPrefix(strings.TrimSpace(line), "2 ") {
			rows = append(rows, line)
		}
	}
	require.Len(t, rows, 2)
	assert.Contains(t, rows[0], "Blitzen")
	assert.Contains(t, rows[0], "0.0")
	assert.Contains(t, rows[1], "Comet")
	assert.Contains(t, rows[1], "6.5")
}

func TestOddsTable(t *testing.T) {
	var buf bytes.Buffer
	OddsTable(&buf, testField(), pricing.Odds{"h_a": 3.0, "h_b": 1.5})

	out := buf.String()
	assert.Less(t, strings.Index(out, "Blitzen"), strings.Index(out, "Comet"))
	assert.Contains(t, out, "2/1")
	assert.Contains(t, out, "1/2")
	assert.Contains(t, out, "66.7%")
	assert.Contains(t, out, "Book: 100.0%")
}

func TestRosterAndArchive(t *testing.T) {
	var buf bytes.Buffer
	Roster(&buf, testField())
	assert.Contains(t, buf.String(), "1-2-1")
	assert.Contains(t, buf.String(), "novice")
	assert.Contains(t, buf.String(), "66.7%")

	buf.Reset()
	field := testField()
	lookup := func(id string) (models.Horse, bool) {
		for _, h := range field {
			if h.ID == id {
				return h, true
			}
		}
		return models.Horse{}, false
	}
	Archive(&buf, []models.RaceRecord{
		{ID: "r_00001", RunAt: time.Now(), Distance: 200, Track: 1.1, Horses: []string{"h_a", "h_b"}, Winner: "h_a"},
		{ID: "r_00002", RunAt: time.Now(), Distance: 200, Track: 0.9, Horses: []string{"h_a", "h_b"}, Winner: "h_gone"},
	}, lookup)
	out := buf.String()
	assert.Less(t, strings.Index(out, "r_00002"), strings.Index(out, "r_00001"))
	assert.Contains(t, out, "Comet")
	assert.Contains(t, out, "h_gone")

	buf.Reset()
	Archive(&buf, nil, lookup)
	assert.Contains(t, buf.String(), "No races recorded yet.")
}

func TestPayout(t *testing.T) {
	var buf bytes.Buffer
	Payout(&buf, models.Settlement{
		Bet:        models.Bet{HorseID: "h_a", Side: models.BetSideBack, Odds: 3.0, Stake: 10},
		Won:        true,
		ProfitLoss: decimal.NewFromInt(20),
		Returned:   decimal.NewFromInt(30),
	}, "Comet")

	out := buf.String()
	assert.Contains(t, out, "BACK Comet @ 3.00 (2/1)")
	assert.Contains(t, out, "WON")
	assert.Contains(t, out, "P/L:      20.00")
	assert.Contains(t, out, "Returned: 30.00")
	assert.Contains(t, out, "ROI:      200.0%")
}

func TestLiveRaceListsPrices(t *testing.T) {
	var buf bytes.Buffer
	run, err := race.Stream(race.Config{Distance: 50, Seed: race.Seeded(1), Field: testField()})
	require.NoError(t, err)

	NewLiveRace(&buf, false).RaceStarted("r_00002", run, map[string]float64{"h_a": 1.8, "h_b": 2.25})
	assert.Contains(t, buf.String(), "Comet      1.80")
	assert.Contains(t, buf.String(), "Blitzen    2.25")
}
