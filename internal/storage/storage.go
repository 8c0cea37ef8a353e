package storage

import (
	"errors"
	"time"

	"github.com/mhofmann/dpwt-tracker/internal/detector"
	"github.com/mhofmann/dpwt-tracker/internal/results"
)

// ErrConflict is returned by Save when the persisted state has moved on since
// it was loaded. The caller is expected to retry the whole poll from a fresh
// load rather than merge.
var ErrConflict = errors.New("state version conflict")

// Store is the persistence contract for detector state and the archive.
type Store interface {
	// Load returns the state for a season plus the version token to pass
	// back to Save. A missing state yields zero-valued defaults and
	// version 0, never an error.
	Load(season int) (*detector.State, int64, error)

	// Save persists the state. It fails with ErrConflict when the stored
	// version no longer matches the one obtained from Load.
	Save(season int, state *detector.State, version int64) error

	// AppendArchive appends the finish-time snapshot to the season's
	// archive log, at most once per event key. It reports whether a
	// record was actually written.
	AppendArchive(season int, snap *results.TournamentSnapshot) (bool, error)

	// AppendSummary appends one row to the human-browsable tabular
	// summary, with the same at-most-once guarantee per event key.
	AppendSummary(season int, snap *results.TournamentSnapshot) error
}

// ArchiveRecord is one line of the append-only archive log.
type ArchiveRecord struct {
	ArchivedAt time.Time                   `json:"archived_at"`
	EventKey   string                      `json:"event_key"`
	Snapshot   *results.TournamentSnapshot `json:"snapshot"`
}

// stateDocument is the persisted layout: the version token inline next to
// the detector state's own fields.
type stateDocument struct {
	Version int64 `json:"version"`
	detector.State
}

var summaryHeader = []string{
	"season", "event_key", "event_name", "end_date", "position",
	"total", "score_to_par", "points", "earnings", "url",
}
