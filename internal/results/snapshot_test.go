package results

import (
	"testing"
	"time"
)

func intPtr(n int) *int { return &n }

func TestEventKeyFor(t *testing.T) {
	end := time.Date(2025, 10, 19, 0, 0, 0, 0, time.UTC)

	t.Run("numeric id wins", func(t *testing.T) {
		if got := EventKeyFor(4361, "Open de España", end); got != "4361" {
			t.Errorf("expected key 4361, got %s", got)
		}
	})

	t.Run("hash fallback is stable", func(t *testing.T) {
		a := EventKeyFor(0, "Open de España", end)
		b := EventKeyFor(0, "  open de españa ", end)
		if a != b {
			t.Errorf("expected identical keys for normalized names, got %s vs %s", a, b)
		}
		if a == "" || len(a) != 12 {
			t.Errorf("expected 12-char hash key, got %q", a)
		}
	})

	t.Run("different tournaments differ", func(t *testing.T) {
		a := EventKeyFor(0, "Open de España", end)
		b := EventKeyFor(0, "BMW International Open", end)
		if a == b {
			t.Error("expected distinct keys for distinct names")
		}
	})

	t.Run("missing end date still keys", func(t *testing.T) {
		a := EventKeyFor(0, "Open de España", time.Time{})
		b := EventKeyFor(0, "Open de España", time.Time{})
		if a != b {
			t.Error("expected stable key without an end date")
		}
	})
}

func TestFinished(t *testing.T) {
	tests := []struct {
		name string
		snap *TournamentSnapshot
		want bool
	}{
		{
			name: "all rounds and totals present",
			snap: &TournamentSnapshot{
				Rounds:     map[int]int{1: 70, 2: 68, 3: 72, 4: 71},
				Total:      intPtr(281),
				ScoreToPar: intPtr(-7),
			},
			want: true,
		},
		{
			name: "missing round 4",
			snap: &TournamentSnapshot{
				Rounds:     map[int]int{1: 70, 2: 68, 3: 72},
				Total:      intPtr(210),
				ScoreToPar: intPtr(-6),
			},
			want: false,
		},
		{
			name: "total absent",
			snap: &TournamentSnapshot{
				Rounds:     map[int]int{1: 70, 2: 68, 3: 72, 4: 71},
				ScoreToPar: intPtr(-7),
			},
			want: false,
		},
		{
			name: "score to par absent",
			snap: &TournamentSnapshot{
				Rounds: map[int]int{1: 70, 2: 68, 3: 72, 4: 71},
				Total:  intPtr(281),
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.snap.Finished(); got != tt.want {
				t.Errorf("Finished() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestActive(t *testing.T) {
	now := time.Date(2025, 10, 18, 12, 0, 0, 0, time.UTC)
	before := 72 * time.Hour
	after := 12 * time.Hour

	t.Run("inside window and unfinished", func(t *testing.T) {
		snap := &TournamentSnapshot{
			EndDate: now.Add(24 * time.Hour),
			Rounds:  map[int]int{1: 70, 2: 68},
		}
		if !snap.Active(now, before, after) {
			t.Error("expected active")
		}
	})

	t.Run("before window opens", func(t *testing.T) {
		snap := &TournamentSnapshot{EndDate: now.Add(5 * 24 * time.Hour)}
		if snap.Active(now, before, after) {
			t.Error("expected inactive before the window")
		}
	})

	t.Run("past grace period", func(t *testing.T) {
		snap := &TournamentSnapshot{EndDate: now.Add(-13 * time.Hour)}
		if snap.Active(now, before, after) {
			t.Error("expected inactive after the grace period")
		}
	})

	t.Run("finished tournament is never active", func(t *testing.T) {
		snap := &TournamentSnapshot{
			EndDate:    now.Add(2 * time.Hour),
			Rounds:     map[int]int{1: 70, 2: 68, 3: 72, 4: 71},
			Total:      intPtr(281),
			ScoreToPar: intPtr(-7),
		}
		if snap.Active(now, before, after) {
			t.Error("expected finished tournament to be inactive")
		}
	})

	t.Run("no end date degrades to inactive", func(t *testing.T) {
		snap := &TournamentSnapshot{Rounds: map[int]int{1: 70}}
		if snap.Active(now, before, after) {
			t.Error("expected inactive without an end date")
		}
	})
}

func TestChooseCurrent(t *testing.T) {
	now := time.Date(2025, 10, 18, 12, 0, 0, 0, time.UTC)

	past := &TournamentSnapshot{EventKey: "past", EndDate: now.Add(-30 * 24 * time.Hour)}
	closest := &TournamentSnapshot{EventKey: "closest", EndDate: now.Add(24 * time.Hour)}
	future := &TournamentSnapshot{EventKey: "future", EndDate: now.Add(20 * 24 * time.Hour)}
	undated := &TournamentSnapshot{EventKey: "undated"}

	t.Run("picks closest end date", func(t *testing.T) {
		got := ChooseCurrent(now, []*TournamentSnapshot{past, future, undated, closest})
		if got == nil || got.EventKey != "closest" {
			t.Errorf("expected closest, got %+v", got)
		}
	})

	t.Run("tie broken by earlier end date", func(t *testing.T) {
		earlier := &TournamentSnapshot{EventKey: "earlier", EndDate: now.Add(-24 * time.Hour)}
		later := &TournamentSnapshot{EventKey: "later", EndDate: now.Add(24 * time.Hour)}
		got := ChooseCurrent(now, []*TournamentSnapshot{later, earlier})
		if got == nil || got.EventKey != "earlier" {
			t.Errorf("expected earlier on tie, got %+v", got)
		}
	})

	t.Run("no dated snapshots", func(t *testing.T) {
		if got := ChooseCurrent(now, []*TournamentSnapshot{undated}); got != nil {
			t.Errorf("expected nil, got %+v", got)
		}
	})
}

func TestDaysUntilStart(t *testing.T) {
	now := time.Date(2025, 10, 13, 23, 30, 0, 0, time.UTC)

	snap := &TournamentSnapshot{StartDate: time.Date(2025, 10, 15, 1, 0, 0, 0, time.UTC)}
	days, ok := snap.DaysUntilStart(now)
	if !ok {
		t.Fatal("expected known start date")
	}
	// Calendar-day difference, not elapsed hours: Oct 13 late evening to
	// Oct 15 early morning is still two days out.
	if days != 2 {
		t.Errorf("days = %d, want 2", days)
	}

	if _, ok := (&TournamentSnapshot{}).DaysUntilStart(now); ok {
		t.Error("expected unknown start date to report false")
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{"2025-10-19T00:00:00Z", time.Date(2025, 10, 19, 0, 0, 0, 0, time.UTC)},
		{"2025-10-19T00:00:00", time.Date(2025, 10, 19, 0, 0, 0, 0, time.UTC)},
		{"2025-10-19", time.Date(2025, 10, 19, 0, 0, 0, 0, time.UTC)},
		{"15/10/2025", time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC)},
		{"", time.Time{}},
		{"next Sunday", time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseDate(tt.input); !got.Equal(tt.want) {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
