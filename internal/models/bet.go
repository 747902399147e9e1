package models

import "github.com/shopspring/decimal"

// BetSide represents the side of a bet (BACK or LAY)
type BetSide string

const (
	BetSideBack BetSide = "BACK"
	BetSideLay  BetSide = "LAY"
)

// Bet is a single win-market wager on one horse
type Bet struct {
	HorseID string  `json:"horse_id" validate:"required"`
	Side    BetSide `json:"side" validate:"required,oneof=BACK LAY"`
	Odds    float64 `json:"odds" validate:"gt=1"`
	Stake   float64 `json:"stake" validate:"gt=0"`
}

// Settlement is the outcome of a settled bet
type Settlement struct {
	Bet        Bet             `json:"bet"`
	Won        bool            `json:"won"`
	ProfitLoss decimal.Decimal `json:"profit_loss"`
	Returned   decimal.Decimal `json:"returned"`
}

// GetROI returns the return on investment percentage
func (s Settlement) GetROI() float64 {
	if s.Bet.Stake == 0 {
		return 0
	}
	return s.ProfitLoss.InexactFloat64() / s.Bet.Stake * 100
}
