package pricing

import (
	"fmt"
	"math"
)

// DefaultMaxDenominator bounds the denominators tried by ToFractional
const DefaultMaxDenominator = 16

// minProfit keeps odds-on prices from rendering as 0/1
const minProfit = 0.01

// ToFractional renders decimal odds as the closest n/d profit fraction with d ≤ maxDen
func ToFractional(decimalOdds float64, maxDen int) string {
	if maxDen < 1 {
		maxDen = DefaultMaxDenominator
	}
	profit := math.Max(decimalOdds-1, minProfit)

	bestN, bestD := 1, 1
	bestErr := math.Inf(1)
	for d := 1; d <= maxDen; d++ {
		n := int(math.Round(profit * float64(d)))
		if n < 1 {
			n = 1
		}
		err := math.Abs(profit - float64(n)/float64(d))
		if err < bestErr {
			bestN, bestD, bestErr = n, d, err
		}
	}
	return fmt.Sprintf("%d/%d", bestN, bestD)
}
