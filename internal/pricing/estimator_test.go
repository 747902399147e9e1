package pricing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/gallop/internal/models"
)

func TestEstimateOddsTwoHorses(t *testing.T) {
	odds, err := EstimateOdds(map[string]int{"A": 700, "B": 300}, 1000, DefaultParams())
	require.NoError(t, err)

	assert.InDelta(t, 1.30, odds["A"], 0.01)
	assert.InDelta(t, 3.03, odds["B"], 0.01)
	assert.Equal(t, []string{"A", "B"}, odds.Favourites())
}

func TestFairProbabilitiesSmoothing(t *testing.T) {
	probs, err := FairProbabilities(map[string]int{"A": 700, "B": 300}, 1000, 1.0)
	require.NoError(t, err)

	assert.InDelta(t, 701.0/1002.0, probs["A"], 1e-12)
	assert.InDelta(t, 301.0/1002.0, probs["B"], 1e-12)
}

func TestZeroWinHorseStaysPriced(t *testing.T) {
	counts := map[string]int{"A": 600, "B": 400, "C": 0}

	probs, err := FairProbabilities(counts, 1000, 1.0)
	require.NoError(t, err)
	assert.Greater(t, probs["C"], 0.0)

	odds, err := EstimateOdds(counts, 1000, DefaultParams())
	require.NoError(t, err)
	assert.LessOrEqual(t, odds["C"], 50.0)

	// with few simulations the smoothed price sits inside the clamp
	small, err := EstimateOdds(map[string]int{"A": 12, "B": 8, "C": 0}, 20, DefaultParams())
	require.NoError(t, err)
	assert.Less(t, small["C"], 50.0)
	assert.Greater(t, small["C"], small["A"])
}

func TestEstimateOddsWithinClamp(t *testing.T) {
	p := DefaultParams()
	cases := []map[string]int{
		{"A": 1000, "B": 0},
		{"A": 1, "B": 1, "C": 1, "D": 997},
		{"A": 0, "B": 0, "C": 0, "D": 0, "E": 0, "F": 1000},
	}

	for _, counts := range cases {
		odds, err := EstimateOdds(counts, 1000, p)
		require.NoError(t, err)
		for id, o := range odds {
			assert.GreaterOrEqual(t, o, p.ClampMin, id)
			assert.LessOrEqual(t, o, p.ClampMax, id)
		}
	}
}

func TestBookCarriesMarginBeforeClamping(t *testing.T) {
	p := DefaultParams()
	// wide clamp so no price is distorted
	p.ClampMin = 1.0
	p.ClampMax = 1e9

	odds, err := EstimateOdds(map[string]int{"A": 350, "B": 250, "C": 200, "D": 200}, 1000, p)
	require.NoError(t, err)
	assert.InDelta(t, 1+p.HouseMargin, Book(odds), 1e-9)
}

func TestZeroMarginIsFairBook(t *testing.T) {
	p := DefaultParams()
	p.HouseMargin = 0
	p.ClampMin = 1.0
	p.ClampMax = 1e9

	odds, err := EstimateOdds(map[string]int{"A": 500, "B": 500}, 1000, p)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, odds["A"], 1e-9)
	assert.InDelta(t, 1.0, Book(odds), 1e-9)
}

func TestEstimateOddsInvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		counts map[string]int
		sims   int
		mutate func(*Params)
	}{
		{name: "empty counts", counts: map[string]int{}, sims: 10},
		{name: "negative sims", counts: map[string]int{"A": 1}, sims: -1},
		{name: "negative count", counts: map[string]int{"A": -1, "B": 2}, sims: 1},
		{name: "zero alpha", counts: map[string]int{"A": 1}, sims: 1, mutate: func(p *Params) { p.Alpha = 0 }},
		{name: "negative margin", counts: map[string]int{"A": 1}, sims: 1, mutate: func(p *Params) { p.HouseMargin = -0.1 }},
		{name: "clamp below one", counts: map[string]int{"A": 1}, sims: 1, mutate: func(p *Params) { p.ClampMin = 0.5 }},
		{name: "clamp inverted", counts: map[string]int{"A": 1}, sims: 1, mutate: func(p *Params) { p.ClampMin = 10; p.ClampMax = 5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			if tt.mutate != nil {
				tt.mutate(&p)
			}
			odds, err := EstimateOdds(tt.counts, tt.sims, p)
			assert.Nil(t, odds)
			assert.True(t, errors.Is(err, models.ErrInvalidConfiguration), "got %v", err)
		})
	}
}

func TestImplied(t *testing.T) {
	assert.InDelta(t, 0.5, Implied(2.0), 1e-12)
	assert.Equal(t, 0.0, Implied(0))
}

func TestToFractional(t *testing.T) {
	tests := []struct {
		decimal float64
		want    string
	}{
		{3.0, "2/1"},
		{1.5, "1/2"},
		{2.0, "1/1"},
		{1.2994, "3/10"},
		{1.01, "1/16"},
		{1.0, "1/16"},
		{51.0, "50/1"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ToFractional(tt.decimal, DefaultMaxDenominator), "decimal %v", tt.decimal)
	}
	assert.Equal(t, "2/1", ToFractional(3.0, 0))
}
