// Package pricing turns simulated race outcomes into decimal odds.
package pricing

import (
	"fmt"
	"math"
	"sort"

	"github.com/yourusername/gallop/internal/models"
)

// Odds maps horse ids to decimal odds
type Odds map[string]float64

// Params controls smoothing, overround and clamping
type Params struct {
	HouseMargin float64 `json:"house_margin"`
	Alpha       float64 `json:"alpha"`
	ClampMin    float64 `json:"clamp_min"`
	ClampMax    float64 `json:"clamp_max"`
}

// DefaultParams returns the standard book parameters
func DefaultParams() Params {
	return Params{
		HouseMargin: 0.10,
		Alpha:       1.0,
		ClampMin:    1.05,
		ClampMax:    50.0,
	}
}

// Validate checks the parameters are usable
func (p Params) Validate() error {
	switch {
	case math.IsNaN(p.Alpha) || p.Alpha <= 0:
		return fmt.Errorf("%w: alpha must be positive, got %v", models.ErrInvalidConfiguration, p.Alpha)
	case math.IsNaN(p.HouseMargin) || p.HouseMargin < 0:
		return fmt.Errorf("%w: house margin must not be negative, got %v", models.ErrInvalidConfiguration, p.HouseMargin)
	case math.IsNaN(p.ClampMin) || p.ClampMin < 1:
		return fmt.Errorf("%w: clamp min must be at least 1, got %v", models.ErrInvalidConfiguration, p.ClampMin)
	case math.IsNaN(p.ClampMax) || p.ClampMin > p.ClampMax:
		return fmt.Errorf("%w: clamp min %v exceeds clamp max %v", models.ErrInvalidConfiguration, p.ClampMin, p.ClampMax)
	}
	return nil
}

// FairProbabilities applies additive smoothing to win counts so that
// every horse, including one that never won, has a positive probability.
func FairProbabilities(winCounts map[string]int, totalSims int, alpha float64) (map[string]float64, error) {
	if len(winCounts) == 0 {
		return nil, fmt.Errorf("%w: no win counts", models.ErrInvalidConfiguration)
	}
	if totalSims < 0 {
		return nil, fmt.Errorf("%w: negative simulation count %d", models.ErrInvalidConfiguration, totalSims)
	}
	if math.IsNaN(alpha) || alpha <= 0 {
		return nil, fmt.Errorf("%w: alpha must be positive, got %v", models.ErrInvalidConfiguration, alpha)
	}

	k := float64(len(winCounts))
	denominator := float64(totalSims) + alpha*k
	probs := make(map[string]float64, len(winCounts))
	for id, wins := range winCounts {
		if wins < 0 {
			return nil, fmt.Errorf("%w: negative win count for %s", models.ErrInvalidConfiguration, id)
		}
		probs[id] = (float64(wins) + alpha) / denominator
	}
	return probs, nil
}

// EstimateOdds converts win counts into clamped decimal odds carrying the house margin
func EstimateOdds(winCounts map[string]int, totalSims int, p Params) (Odds, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	fair, err := FairProbabilities(winCounts, totalSims, p.Alpha)
	if err != nil {
		return nil, err
	}

	z := 0.0
	for _, prob := range fair {
		z += prob
	}

	odds := make(Odds, len(fair))
	for id, prob := range fair {
		market := prob * (1 + p.HouseMargin) / z
		odds[id] = clamp(1/market, p.ClampMin, p.ClampMax)
	}
	return odds, nil
}

// Book returns the sum of implied probabilities; above 1 is the overround
func Book(odds Odds) float64 {
	total := 0.0
	for _, o := range odds {
		if o > 0 {
			total += 1 / o
		}
	}
	return total
}

// Implied returns the implied probability of decimal odds
func Implied(decimalOdds float64) float64 {
	if decimalOdds <= 0 {
		return 0
	}
	return 1 / decimalOdds
}

// Favourites returns horse ids ordered from shortest to longest price, ties by id
func (o Odds) Favourites() []string {
	ids := make([]string, 0, len(o))
	for id := range o {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if o[ids[i]] != o[ids[j]] {
			return o[ids[i]] < o[ids[j]]
		}
		return ids[i] < ids[j]
	})
	return ids
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
