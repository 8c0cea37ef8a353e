package cli

import (
	"sort"

	"github.com/mhofmann/dpwt-tracker/internal/detector"
)

// kindRank orders notifications so they read chronologically: the baseline
// announcement first, then upcoming starts, new tournaments, round updates,
// and finally finishes.
var kindRank = map[detector.Kind]int{
	detector.KindBaselineEstablished: 0,
	detector.KindUpcomingReminder:    1,
	detector.KindNewTournament:       2,
	detector.KindRoundCompleted:      3,
	detector.KindTournamentFinished:  4,
}

// sortEvents orders events for notification. The sort is stable, so rounds
// of the same tournament stay in ascending round order.
func sortEvents(events []*detector.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return kindRank[events[i].Kind] < kindRank[events[j].Kind]
	})
}
