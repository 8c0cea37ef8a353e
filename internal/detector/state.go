package detector

import (
	"crypto/sha1"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/mhofmann/dpwt-tracker/internal/results"
)

// State is the detector's persisted bookkeeping for one tracked player and
// season. It is loaded before a poll, threaded through Detect, and saved
// afterwards. FinishedNotified and ReminderSent are monotonic: entries are
// only ever added.
type State struct {
	Season        int       `json:"season"`
	LastFullCheck time.Time `json:"last_full_check"`

	// RoundProgress maps event key -> round number (as string) -> the
	// strokes value last posted for that round.
	RoundProgress map[string]map[string]int `json:"round_progress"`

	FinishedNotified []string  `json:"finished_notified"`
	ReminderSent     []string  `json:"reminder_sent"`
	Baseline         *Baseline `json:"baseline,omitempty"`
}

// Baseline records the first-run suppression marker for a season.
type Baseline struct {
	CreatedAt time.Time `json:"created_at"`
	Count     int       `json:"count"`
	Hash      string    `json:"hash"`
}

// NewState creates an empty state for a season.
func NewState(season int) *State {
	return &State{
		Season:           season,
		RoundProgress:    make(map[string]map[string]int),
		FinishedNotified: make([]string, 0),
		ReminderSent:     make([]string, 0),
	}
}

// Normalize ensures all maps and slices are non-nil after JSON decoding.
func (s *State) Normalize() {
	if s.RoundProgress == nil {
		s.RoundProgress = make(map[string]map[string]int)
	}
	if s.FinishedNotified == nil {
		s.FinishedNotified = make([]string, 0)
	}
	if s.ReminderSent == nil {
		s.ReminderSent = make([]string, 0)
	}
}

// Clone returns a deep copy. Detect never mutates its input state.
func (s *State) Clone() *State {
	c := &State{
		Season:           s.Season,
		LastFullCheck:    s.LastFullCheck,
		RoundProgress:    make(map[string]map[string]int, len(s.RoundProgress)),
		FinishedNotified: append([]string(nil), s.FinishedNotified...),
		ReminderSent:     append([]string(nil), s.ReminderSent...),
	}
	for key, rounds := range s.RoundProgress {
		inner := make(map[string]int, len(rounds))
		for rno, strokes := range rounds {
			inner[rno] = strokes
		}
		c.RoundProgress[key] = inner
	}
	if s.Baseline != nil {
		b := *s.Baseline
		c.Baseline = &b
	}
	return c
}

// HasFinished reports whether the finished notification already fired for key.
func (s *State) HasFinished(key string) bool {
	return contains(s.FinishedNotified, key)
}

// MarkFinished records the finished notification for key. Idempotent.
func (s *State) MarkFinished(key string) {
	if !s.HasFinished(key) {
		s.FinishedNotified = append(s.FinishedNotified, key)
	}
}

// HasReminder reports whether the upcoming reminder already fired for key.
func (s *State) HasReminder(key string) bool {
	return contains(s.ReminderSent, key)
}

// MarkReminder records the upcoming reminder for key. Idempotent.
func (s *State) MarkReminder(key string) {
	if !s.HasReminder(key) {
		s.ReminderSent = append(s.ReminderSent, key)
	}
}

// Progress returns the last posted strokes for a round of a tournament.
func (s *State) Progress(key string, round int) (int, bool) {
	rounds, ok := s.RoundProgress[key]
	if !ok {
		return 0, false
	}
	strokes, ok := rounds[strconv.Itoa(round)]
	return strokes, ok
}

// SetProgress records the posted strokes for a round of a tournament.
func (s *State) SetProgress(key string, round, strokes int) {
	s.ensureProgress(key)[strconv.Itoa(round)] = strokes
}

// ensureProgress guarantees a (possibly empty) round map exists for key,
// which also marks the tournament as seen.
func (s *State) ensureProgress(key string) map[string]int {
	rounds, ok := s.RoundProgress[key]
	if !ok {
		rounds = make(map[string]int)
		s.RoundProgress[key] = rounds
	}
	return rounds
}

// Seen reports whether the tournament key has been observed before.
func (s *State) Seen(key string) bool {
	_, ok := s.RoundProgress[key]
	return ok
}

func contains(list []string, key string) bool {
	for _, k := range list {
		if k == key {
			return true
		}
	}
	return false
}

// SnapshotHash computes a deterministic hash over a snapshot set, used as the
// baseline marker so a re-deployed tracker can tell whether the historical
// record it suppressed has since changed.
func SnapshotHash(snapshots []*results.TournamentSnapshot) string {
	lines := make([]string, 0, len(snapshots))
	for _, snap := range snapshots {
		rounds := make([]int, 0, len(snap.Rounds))
		for rno := range snap.Rounds {
			rounds = append(rounds, rno)
		}
		sort.Ints(rounds)

		line := snap.EventKey + "|"
		for _, rno := range rounds {
			line += fmt.Sprintf("%d:%d,", rno, snap.Rounds[rno])
		}
		line += fmt.Sprintf("|%v", snap.Finished())
		lines = append(lines, line)
	}
	sort.Strings(lines)

	h := sha1.New()
	for _, line := range lines {
		h.Write([]byte(line + "\n"))
	}
	return fmt.Sprintf("%x", h.Sum(nil))[:12]
}
