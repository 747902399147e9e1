package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/yourusername/gallop/internal/models"
	"github.com/yourusername/gallop/internal/race"
)

// Settle resolves a single win bet against a finished race
func Settle(bet models.Bet, summary *race.Summary) (models.Settlement, error) {
	if summary == nil {
		return models.Settlement{}, fmt.Errorf("%w: no race result", models.ErrMissingResource)
	}
	if summary.Placing(bet.HorseID) == 0 {
		return models.Settlement{}, fmt.Errorf("%w: horse %s did not run", models.ErrMissingResource, bet.HorseID)
	}
	if bet.Odds <= 1 || bet.Stake <= 0 {
		return models.Settlement{}, fmt.Errorf("%w: bet needs odds above 1 and a positive stake", models.ErrInvalidConfiguration)
	}
	if bet.Side != models.BetSideBack && bet.Side != models.BetSideLay {
		return models.Settlement{}, fmt.Errorf("%w: unknown bet side %q", models.ErrInvalidConfiguration, bet.Side)
	}

	horseWon := summary.Winner == bet.HorseID
	stake := decimal.NewFromFloat(bet.Stake)
	pnl := calculatePnL(bet, horseWon)

	returned := decimal.Zero
	if pnl.IsPositive() {
		returned = stake.Add(pnl)
		if bet.Side == models.BetSideLay {
			// the layer gets the liability back as well as the backer's stake
			returned = liability(bet).Add(stake)
		}
	}

	return models.Settlement{
		Bet:        bet,
		Won:        pnl.IsPositive(),
		ProfitLoss: pnl,
		Returned:   returned.Round(2),
	}, nil
}

func calculatePnL(bet models.Bet, horseWon bool) decimal.Decimal {
	stake := decimal.NewFromFloat(bet.Stake)
	if bet.Side == models.BetSideBack {
		if horseWon {
			return liability(bet)
		}
		return stake.Neg().Round(2)
	}

	// Lay bet
	if horseWon {
		return liability(bet).Neg()
	}
	return stake.Round(2)
}

// liability is (odds-1)*stake: the backer's profit and the layer's exposure
func liability(bet models.Bet) decimal.Decimal {
	odds := decimal.NewFromFloat(bet.Odds)
	stake := decimal.NewFromFloat(bet.Stake)
	return odds.Sub(decimal.NewFromInt(1)).Mul(stake).Round(2)
}
