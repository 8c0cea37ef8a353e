package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mhofmann/dpwt-tracker/internal/fetcher"
)

// newDiscoverCmd creates the discover subcommand, which scrapes the player's
// profile page for the tournament they are playing this week.
func newDiscoverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "discover",
		Short: "Find the tournament the player is playing this week",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := fetcher.NewClient(fetcher.DefaultBaseURL, os.Getenv("RELAY_BASE"))

			link, err := client.DiscoverCurrentTournament(cmd.Context(), flagPlayerID)
			if err != nil {
				return fmt.Errorf("discovering current tournament: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), link)
			return nil
		},
	}
}
