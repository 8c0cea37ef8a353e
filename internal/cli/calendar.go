package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mhofmann/dpwt-tracker/internal/calendar"
	"github.com/mhofmann/dpwt-tracker/internal/fetcher"
	"github.com/mhofmann/dpwt-tracker/internal/results"
)

// newCalendarCmd creates the calendar subcommand, which renders a tournament
// from the season's results as an iCalendar entry.
func newCalendarCmd() *cobra.Command {
	var flagEventKey string
	var flagOutput string

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Export a tournament as an iCalendar (.ics) entry",
		Long: `Fetches the season's results and renders one tournament as an iCalendar
entry. Without --event, the tournament closest to today is exported.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := fetcher.NewClient(fetcher.DefaultBaseURL, os.Getenv("RELAY_BASE"))

			payload, err := client.FetchResults(cmd.Context(), flagPlayerID, flagSeason)
			if err != nil {
				return fmt.Errorf("fetching results: %w", err)
			}

			snapshots, err := results.Normalize(payload)
			if err != nil {
				return fmt.Errorf("normalizing results: %w", err)
			}

			snap, err := pickTournament(snapshots, flagEventKey)
			if err != nil {
				return err
			}

			ics := calendar.GenerateICS(snap)
			if flagOutput == "" {
				fmt.Fprint(cmd.OutOrStdout(), ics)
				return nil
			}
			if err := os.WriteFile(flagOutput, []byte(ics), 0644); err != nil {
				return fmt.Errorf("writing %s: %w", flagOutput, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flagEventKey, "event", "", "Event key of the tournament to export")
	cmd.Flags().StringVar(&flagOutput, "output", "", "Write the .ics to a file instead of stdout")

	return cmd
}

func pickTournament(snapshots []*results.TournamentSnapshot, eventKey string) (*results.TournamentSnapshot, error) {
	if eventKey != "" {
		for _, snap := range snapshots {
			if snap.EventKey == eventKey {
				return snap, nil
			}
		}
		return nil, fmt.Errorf("no tournament with event key %s", eventKey)
	}

	snap := results.ChooseCurrent(time.Now().UTC(), snapshots)
	if snap == nil {
		return nil, fmt.Errorf("no tournaments in the season's results")
	}
	return snap, nil
}
