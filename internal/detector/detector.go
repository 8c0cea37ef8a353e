package detector

import (
	"sort"
	"strconv"
	"time"

	"github.com/mhofmann/dpwt-tracker/internal/results"
)

// Config holds the detection thresholds.
type Config struct {
	// ActiveWindowBefore/After bound the activity window around a
	// tournament's end date.
	ActiveWindowBefore time.Duration
	ActiveWindowAfter  time.Duration

	// InactiveThrottle is the minimum interval between processed polls
	// while no tournament is active.
	InactiveThrottle time.Duration

	// ReminderDays is the calendar-day distance at which the upcoming
	// tournament reminder fires.
	ReminderDays int
}

// DefaultConfig returns the thresholds the tracker runs with in production:
// tournaments are treated as active from three days before their end date
// until twelve hours after it, inactive polls are throttled to one per four
// hours, and the upcoming reminder fires two days before the start.
func DefaultConfig() Config {
	return Config{
		ActiveWindowBefore: 72 * time.Hour,
		ActiveWindowAfter:  12 * time.Hour,
		InactiveThrottle:   4 * time.Hour,
		ReminderDays:       2,
	}
}

// Detect compares the snapshots against the previous state and returns the
// domain events that occurred plus the updated state. The input state is
// never mutated. When the inactive throttle applies, Detect returns no
// events and the previous state unchanged (same pointer), so LastFullCheck
// keeps its original value and the gate stays correctly timed.
func Detect(now time.Time, snapshots []*results.TournamentSnapshot, prev *State, cfg Config) ([]*Event, *State) {
	if prev == nil {
		prev = NewState(0)
	}
	prev.Normalize()

	// First successful run for the season: establish the baseline instead
	// of flooding the channel with historical notifications.
	if prev.Baseline == nil {
		return establishBaseline(now, snapshots, prev)
	}

	current := results.ChooseCurrent(now, snapshots)

	// The throttle keys off the time window alone: a tournament that turned
	// finished inside its window still needs this poll processed so the
	// finish (and any final round scores) go out without a 4h delay.
	inWindow := current != nil && current.InWindow(now, cfg.ActiveWindowBefore, cfg.ActiveWindowAfter)

	if !inWindow && now.Sub(prev.LastFullCheck) < cfg.InactiveThrottle {
		return nil, prev
	}

	next := prev.Clone()
	var events []*Event

	// Round completions for the tournament in window. The check is a
	// value-diff, not a presence-diff: a corrected provisional score
	// re-notifies with the new value.
	if inWindow {
		for rno := 1; rno <= results.ExpectedRounds; rno++ {
			strokes, played := current.Rounds[rno]
			if !played {
				continue
			}
			if posted, seen := next.Progress(current.EventKey, rno); !seen || posted != strokes {
				events = append(events, &Event{
					Kind:       KindRoundCompleted,
					EventKey:   current.EventKey,
					Tournament: current.Name,
					URL:        current.URL,
					Round:      rno,
					Strokes:    strokes,
					Position:   current.Position,
					ScoreToPar: current.ScoreToPar,
				})
				next.SetProgress(current.EventKey, rno, strokes)
			}
		}
	}

	// Finish detection fires independently of round completions: final
	// round data and totals can land in the same update between polls.
	if current != nil && current.Finished() && !next.HasFinished(current.EventKey) {
		events = append(events, &Event{
			Kind:       KindTournamentFinished,
			EventKey:   current.EventKey,
			Tournament: current.Name,
			URL:        current.URL,
			Position:   current.Position,
			ScoreToPar: current.ScoreToPar,
			Snapshot:   current,
		})
		next.MarkFinished(current.EventKey)
	}

	// New-tournament and reminder scan across all snapshots, in key order
	// so the output does not depend on payload ordering.
	scan := append([]*results.TournamentSnapshot(nil), snapshots...)
	sort.Slice(scan, func(i, j int) bool { return scan[i].EventKey < scan[j].EventKey })

	for _, snap := range scan {
		if !next.Seen(snap.EventKey) {
			events = append(events, &Event{
				Kind:       KindNewTournament,
				EventKey:   snap.EventKey,
				Tournament: snap.Name,
				URL:        snap.URL,
				StartDate:  snap.StartDate,
				Snapshot:   snap,
			})
			next.ensureProgress(snap.EventKey)
		}

		if days, ok := snap.DaysUntilStart(now); ok && days == cfg.ReminderDays && !next.HasReminder(snap.EventKey) {
			events = append(events, &Event{
				Kind:           KindUpcomingReminder,
				EventKey:       snap.EventKey,
				Tournament:     snap.Name,
				URL:            snap.URL,
				DaysUntilStart: days,
				StartDate:      snap.StartDate,
			})
			next.MarkReminder(snap.EventKey)
		}
	}

	next.LastFullCheck = now
	return events, next
}

// establishBaseline populates the state as if every currently known
// tournament had already been notified and emits the single
// BaselineEstablished event.
func establishBaseline(now time.Time, snapshots []*results.TournamentSnapshot, prev *State) ([]*Event, *State) {
	next := prev.Clone()

	for _, snap := range snapshots {
		rounds := next.ensureProgress(snap.EventKey)
		for rno, strokes := range snap.Rounds {
			rounds[strconv.Itoa(rno)] = strokes
		}
		if snap.Finished() {
			next.MarkFinished(snap.EventKey)
		}
	}

	next.Baseline = &Baseline{
		CreatedAt: now,
		Count:     len(snapshots),
		Hash:      SnapshotHash(snapshots),
	}
	next.LastFullCheck = now

	return []*Event{{
		Kind:          KindBaselineEstablished,
		BaselineCount: len(snapshots),
	}}, next
}
