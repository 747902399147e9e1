package api

import (
	"github.com/yourusername/gallop/internal/models"
	"github.com/yourusername/gallop/internal/pricing"
	"github.com/yourusername/gallop/internal/race"
	"github.com/yourusername/gallop/internal/service"
)

type replayResponse struct {
	Race    models.RaceRecord `json:"race"`
	Summary *race.Summary     `json:"summary"`
	Matches bool              `json:"matches"`
}

type runnerPrice struct {
	HorseID    string  `json:"horse_id"`
	Name       string  `json:"name"`
	Class      string  `json:"class"`
	Decimal    float64 `json:"decimal"`
	Fractional string  `json:"fractional"`
	Implied    float64 `json:"implied"`
	Fair       float64 `json:"fair"`
	WinShare   float64 `json:"win_share"`
}

type oddsResponse struct {
	RaceID      string        `json:"race_id"`
	Runners     []runnerPrice `json:"runners"`
	Book        float64       `json:"book"`
	Simulations int           `json:"simulations"`
	Distance    float64       `json:"distance"`
}

// newOddsResponse lists runners from favourite to outsider
func newOddsResponse(card *service.Card) oddsResponse {
	byID := make(map[string]models.Horse, len(card.Field))
	for _, h := range card.Field {
		byID[h.ID] = h
	}

	runners := make([]runnerPrice, 0, len(card.Field))
	for _, id := range card.Quote.Odds.Favourites() {
		horse := byID[id]
		price := card.Quote.Odds[id]
		runners = append(runners, runnerPrice{
			HorseID:    id,
			Name:       horse.Name,
			Class:      string(horse.Class()),
			Decimal:    price,
			Fractional: pricing.ToFractional(price, pricing.DefaultMaxDenominator),
			Implied:    pricing.Implied(price),
			Fair:       card.Quote.Fair[id],
			WinShare:   card.Quote.Training.WinShare(id),
		})
	}

	return oddsResponse{
		RaceID:      card.RaceID,
		Runners:     runners,
		Book:        card.Quote.Book,
		Simulations: card.Quote.Training.Simulations,
		Distance:    card.Quote.Training.Distance,
	}
}
