package detector

import (
	"time"

	"github.com/mhofmann/dpwt-tracker/internal/results"
)

// Kind identifies the domain event variant.
type Kind string

const (
	KindRoundCompleted      Kind = "round_completed"
	KindTournamentFinished  Kind = "tournament_finished"
	KindNewTournament       Kind = "new_tournament"
	KindUpcomingReminder    Kind = "upcoming_reminder"
	KindBaselineEstablished Kind = "baseline_established"
)

// Event is one detected domain event. Which fields are populated depends on
// Kind; Tournament and URL are set for every per-tournament variant.
type Event struct {
	Kind       Kind   `json:"kind"`
	EventKey   string `json:"event_key,omitempty"`
	Tournament string `json:"tournament,omitempty"`
	URL        string `json:"url,omitempty"`

	// Round completion
	Round      int    `json:"round,omitempty"`
	Strokes    int    `json:"strokes,omitempty"`
	Position   string `json:"position,omitempty"`
	ScoreToPar *int   `json:"score_to_par,omitempty"`

	// Upcoming reminder
	DaysUntilStart int       `json:"days_until_start,omitempty"`
	StartDate      time.Time `json:"start_date,omitempty"`

	// Baseline
	BaselineCount int `json:"baseline_count,omitempty"`

	// Snapshot at detection time, set for finished and new tournaments.
	Snapshot *results.TournamentSnapshot `json:"snapshot,omitempty"`
}
