package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yourusername/gallop/internal/display"
	"github.com/yourusername/gallop/internal/models"
)

var (
	initForce     bool
	horsesTop     int
	horsesRetired bool
	archiveReplay bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Seed a fresh league",
	Long:  `Creates a new league with a full pool of generated horses, replacing any stored league.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		existing, err := deps.svc.State(ctx)
		if err != nil {
			return err
		}
		if len(existing.Races) > 0 && !initForce {
			return fmt.Errorf("league already has %d races; pass --force to replace it", len(existing.Races))
		}

		state, err := deps.svc.Init(ctx)
		if err != nil {
			return err
		}
		display.Roster(os.Stdout, state.Horses)
		return nil
	},
}

var horsesCmd = &cobra.Command{
	Use:   "horses",
	Short: "List the horses in the league",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if horsesRetired {
			state, err := deps.svc.State(cmd.Context())
			if err != nil {
				return err
			}
			display.Roster(os.Stdout, state.Retired)
			return nil
		}

		horses, err := deps.svc.Horses(cmd.Context(), horsesTop)
		if err != nil {
			return err
		}
		display.Roster(os.Stdout, horses)
		return nil
	},
}

var archiveCmd = &cobra.Command{
	Use:   "archive [last|race-id]",
	Short: "Show recorded races",
	Long:  `Without arguments lists every recorded race. With a race id (or "last") shows that race; --replay re-runs it from its seed.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		state, err := deps.svc.State(ctx)
		if err != nil {
			return err
		}

		if len(args) == 0 {
			display.Archive(os.Stdout, state.Races, state.Horse)
			return nil
		}

		if archiveReplay {
			replay, err := deps.svc.Replay(ctx, args[0], display.NewLiveRace(os.Stdout, isTerminal(os.Stdout)))
			if err != nil {
				return err
			}
			display.FinishTable(os.Stdout, replay.Field, replay.Summary)
			if !replay.Matches {
				fmt.Fprintln(os.Stdout, "\n⚠️  Replay finished in a different order than recorded")
			}
			return nil
		}

		record, err := deps.svc.FindRace(ctx, args[0])
		if err != nil {
			return err
		}
		field := make([]models.Horse, 0, len(record.Horses))
		for _, id := range record.Horses {
			if h, ok := state.Horse(id); ok {
				field = append(field, h)
			}
		}
		display.RaceDetail(os.Stdout, record, field)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Replace a league that already has races")
	horsesCmd.Flags().IntVar(&horsesTop, "top", 0, "Show only the top N horses by wins")
	horsesCmd.Flags().BoolVar(&horsesRetired, "retired", false, "List retired horses instead")
	archiveCmd.Flags().BoolVar(&archiveReplay, "replay", false, "Re-run the race from its recorded seed")
}

// isTerminal reports whether f is a character device
func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
