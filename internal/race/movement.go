package race

import (
	"math"
	"math/rand"

	"github.com/yourusername/gallop/internal/models"
)

const (
	// TickLength is the elapsed time covered by one simulation tick
	TickLength = 1.0

	temperamentFloor   = 0.2
	temperamentNeutral = 5.0
	temperamentSlope   = 0.05
	agilityGrowth      = 0.05
	randomSpread       = 0.05
)

// TemperamentEffect maps a temperament to a movement multiplier peaking at 5.
// The floor keeps every horse moving whatever its temperament.
func TemperamentEffect(temperament float64) float64 {
	return math.Max(temperamentFloor, 1-math.Abs(temperament-temperamentNeutral)*temperamentSlope)
}

// DisciplineFactor maps discipline to a movement multiplier
func DisciplineFactor(discipline float64) float64 {
	return 1 + discipline/10
}

// Move returns the distance a horse covers in one tick
func Move(h models.Horse, trackCondition, mood float64, rng *rand.Rand) float64 {
	return MoveElapsed(h, TickLength, trackCondition, mood, rng)
}

// MoveElapsed returns the distance covered over an arbitrary elapsed time.
// With elapsed == TickLength it is the canonical per-tick movement.
func MoveElapsed(h models.Horse, elapsed, trackCondition, mood float64, rng *rand.Rand) float64 {
	return ExpectedMove(h, elapsed, trackCondition, mood) * randomFactor(rng)
}

// ExpectedMove is the movement before the per-tick random factor is applied
func ExpectedMove(h models.Horse, elapsed, trackCondition, mood float64) float64 {
	s := h.Stats
	base := s.Energy * elapsed
	agilityBonus := s.Agility * (1 + agilityGrowth*elapsed)
	return (base + agilityBonus) *
		DisciplineFactor(s.Discipline) *
		TemperamentEffect(s.Temperament) *
		trackCondition *
		mood
}

func randomFactor(rng *rand.Rand) float64 {
	return 1 - randomSpread + 2*randomSpread*rng.Float64()
}
