package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yourusername/gallop/internal/display"
	"github.com/yourusername/gallop/internal/models"
	"github.com/yourusername/gallop/internal/service"
)

var (
	oddsSims     int
	oddsDistance float64

	raceDistance float64
	raceWatch    bool
	raceSeed     int64
	raceBet      string
	raceStake    float64
	raceSide     string
	raceOdds     float64
)

var oddsCmd = &cobra.Command{
	Use:   "odds",
	Short: "Price the next field with Monte Carlo simulation",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		card, err := deps.svc.NextCard(cmd.Context(), oddsDistance, oddsSims)
		if err != nil {
			return err
		}

		training := card.Quote.Training
		fmt.Fprintf(os.Stdout, "Next race: %s  (%d simulations over %.0fm, winner %.1f±%.1f ticks)\n",
			card.RaceID, training.Simulations, training.Distance, training.MeanWinnerTicks, training.StdWinnerTicks)
		display.OddsTable(os.Stdout, card.Field, card.Quote.Odds)
		return nil
	},
}

var raceCmd = &cobra.Command{
	Use:   "race",
	Short: "Run the next race and update the league",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := service.RaceOptions{Distance: raceDistance}
		if cmd.Flags().Changed("seed") {
			opts.Seed = &raceSeed
		}
		if raceBet != "" {
			opts.Bet = &models.Bet{
				HorseID: raceBet,
				Side:    models.BetSide(strings.ToUpper(raceSide)),
				Odds:    raceOdds,
				Stake:   raceStake,
			}
		}
		if raceWatch {
			opts.Watchers = []service.Observer{display.NewLiveRace(os.Stdout, isTerminal(os.Stdout))}
		}

		outcome, err := deps.svc.Race(cmd.Context(), opts)
		if err != nil {
			return err
		}

		if !raceWatch {
			display.OddsTable(os.Stdout, outcome.Card.Field, outcome.Card.Quote.Odds)
		}
		display.FinishTable(os.Stdout, outcome.Card.Field, outcome.Summary)
		if len(outcome.Retired) > 0 {
			names := make([]string, len(outcome.Retired))
			for i, h := range outcome.Retired {
				names[i] = h.Name
			}
			fmt.Fprintf(os.Stdout, "\nRetired: %s\n", strings.Join(names, ", "))
		}
		if outcome.Settlement != nil {
			name := outcome.Settlement.Bet.HorseID
			for _, h := range outcome.Card.Field {
				if h.ID == name {
					name = h.Name
				}
			}
			display.Payout(os.Stdout, *outcome.Settlement, name)
		}
		return nil
	},
}

func init() {
	oddsCmd.Flags().IntVar(&oddsSims, "sims", 0, "Number of simulations (default from config)")
	oddsCmd.Flags().Float64Var(&oddsDistance, "distance", 0, "Race distance in metres (default from config)")

	raceCmd.Flags().Float64Var(&raceDistance, "distance", 0, "Race distance in metres (default from config)")
	raceCmd.Flags().BoolVar(&raceWatch, "watch", false, "Draw the race live")
	raceCmd.Flags().Int64Var(&raceSeed, "seed", 0, "Seed the race for a reproducible result")
	raceCmd.Flags().StringVar(&raceBet, "bet", "", "Horse id or name to bet on")
	raceCmd.Flags().Float64Var(&raceStake, "stake", 10, "Bet stake")
	raceCmd.Flags().StringVar(&raceSide, "side", string(models.BetSideBack), "Bet side: BACK or LAY")
	raceCmd.Flags().Float64Var(&raceOdds, "odds", 0, "Decimal odds taken (default: the quoted price)")
}
