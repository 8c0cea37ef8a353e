package results

import (
	"crypto/sha1"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ExpectedRounds is the number of rounds a stroke-play tournament is expected
// to have before it can be considered finished.
const ExpectedRounds = 4

// TournamentSnapshot is one observation of one tournament for the tracked
// player, reconstructed from the results payload on every poll.
type TournamentSnapshot struct {
	EventKey   string      `json:"event_key"`
	EventID    int         `json:"event_id,omitempty"`
	Name       string      `json:"name"`
	URL        string      `json:"url,omitempty"` // site-relative path, e.g. /dpworld-tour/xxx-2025/
	StartDate  time.Time   `json:"start_date,omitempty"`
	EndDate    time.Time   `json:"end_date,omitempty"`
	Rounds     map[int]int `json:"rounds"` // round number (1..4) -> strokes; absent = not yet played
	Position   string      `json:"position,omitempty"`
	ScoreToPar *int        `json:"score_to_par,omitempty"`
	Total      *int        `json:"total,omitempty"`
	Points     *float64    `json:"points,omitempty"`
	Earnings   *float64    `json:"earnings,omitempty"`
}

// EventKeyFor derives the stable identifier for a tournament. A provider
// numeric id wins; without one the key is a hash over name and end date so
// repeated polls of the same tournament still collide to the same key.
func EventKeyFor(eventID int, name string, endDate time.Time) string {
	if eventID > 0 {
		return strconv.Itoa(eventID)
	}

	normalized := strings.ToLower(strings.TrimSpace(name))
	anchor := ""
	if !endDate.IsZero() {
		anchor = endDate.UTC().Format("2006-01-02")
	}

	h := sha1.New()
	h.Write([]byte(normalized + "|" + anchor))
	return fmt.Sprintf("%x", h.Sum(nil))[:12]
}

// Finished reports whether the tournament result is complete: total strokes
// and score-to-par are present and all expected rounds have been played.
func (s *TournamentSnapshot) Finished() bool {
	if s.Total == nil || s.ScoreToPar == nil {
		return false
	}
	for rno := 1; rno <= ExpectedRounds; rno++ {
		if _, ok := s.Rounds[rno]; !ok {
			return false
		}
	}
	return true
}

// InWindow reports whether now falls inside the tournament's observation
// window [end - before, end + after]. Tournaments run Thursday to Sunday
// relative to the published end date, with a grace period afterward for
// final data to settle. An unknown end date degrades to false.
func (s *TournamentSnapshot) InWindow(now time.Time, before, after time.Duration) bool {
	if s.EndDate.IsZero() {
		return false
	}
	start := s.EndDate.Add(-before)
	end := s.EndDate.Add(after)
	return !now.Before(start) && !now.After(end)
}

// Active reports whether the tournament is currently in progress at the given
// time: inside the observation window and not yet finished.
func (s *TournamentSnapshot) Active(now time.Time, before, after time.Duration) bool {
	return s.InWindow(now, before, after) && !s.Finished()
}

// DaysUntilStart returns the whole-day difference between the tournament's
// start date and now, comparing calendar days in UTC. The second return value
// is false when the start date is unknown.
func (s *TournamentSnapshot) DaysUntilStart(now time.Time) (int, bool) {
	if s.StartDate.IsZero() {
		return 0, false
	}
	startDay := truncateToDay(s.StartDate)
	nowDay := truncateToDay(now)
	return int(startDay.Sub(nowDay).Hours() / 24), true
}

func truncateToDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// ChooseCurrent selects the tournament under observation: the one whose end
// date is temporally closest to now, ties broken by the earlier end date.
// Snapshots without an end date are never chosen. Returns nil when no
// snapshot carries an end date.
func ChooseCurrent(now time.Time, snapshots []*TournamentSnapshot) *TournamentSnapshot {
	var best *TournamentSnapshot
	var bestDelta time.Duration

	for _, s := range snapshots {
		if s.EndDate.IsZero() {
			continue
		}
		delta := now.Sub(s.EndDate)
		if delta < 0 {
			delta = -delta
		}
		switch {
		case best == nil:
			best, bestDelta = s, delta
		case delta < bestDelta:
			best, bestDelta = s, delta
		case delta == bestDelta && s.EndDate.Before(best.EndDate):
			best = s
		}
	}

	return best
}
