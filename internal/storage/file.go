package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mhofmann/dpwt-tracker/internal/detector"
	"github.com/mhofmann/dpwt-tracker/internal/results"
)

// FileStore persists state and archive under a local data directory.
type FileStore struct {
	dataDir string
}

// NewFileStore creates a file-backed store rooted at dataDir, creating the
// directory if needed.
func NewFileStore(dataDir string) (*FileStore, error) {
	// Expand ~ to home directory
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	if err := os.MkdirAll(filepath.Join(dataDir, "archive"), 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &FileStore{dataDir: dataDir}, nil
}

func (s *FileStore) statePath(season int) string {
	return filepath.Join(s.dataDir, fmt.Sprintf("state-%d.json", season))
}

func (s *FileStore) archivePath(season int) string {
	return filepath.Join(s.dataDir, "archive", fmt.Sprintf("%d.jsonl", season))
}

func (s *FileStore) summaryPath() string {
	return filepath.Join(s.dataDir, "archive", "summary.csv")
}

// Load reads the season's state from disk. A missing file yields a fresh
// zero-valued state at version 0.
func (s *FileStore) Load(season int) (*detector.State, int64, error) {
	doc, err := s.readDocument(season)
	if err != nil {
		return nil, 0, err
	}
	if doc == nil {
		return detector.NewState(season), 0, nil
	}

	doc.State.Normalize()
	return &doc.State, doc.Version, nil
}

// Save writes the state atomically: marshal to a temp file in the same
// directory, then rename over the final path. The version check makes the
// save conditional so overlapping invocations fail loudly instead of losing
// updates.
func (s *FileStore) Save(season int, state *detector.State, version int64) error {
	current, err := s.readDocument(season)
	if err != nil {
		return err
	}
	currentVersion := int64(0)
	if current != nil {
		currentVersion = current.Version
	}
	if currentVersion != version {
		return fmt.Errorf("stored version %d, loaded version %d: %w", currentVersion, version, ErrConflict)
	}

	doc := stateDocument{Version: version + 1, State: *state}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}

	tmp, err := os.CreateTemp(s.dataDir, fmt.Sprintf(".state-%d-*.json", season))
	if err != nil {
		return fmt.Errorf("creating temp state file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp state file: %w", err)
	}

	if err := os.Rename(tmpName, s.statePath(season)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing state file: %w", err)
	}
	return nil
}

func (s *FileStore) readDocument(season int) (*stateDocument, error) {
	data, err := os.ReadFile(s.statePath(season))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading state: %w", err)
	}

	var doc stateDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing state: %w", err)
	}
	return &doc, nil
}

// AppendArchive appends the finish-time snapshot to the season's JSONL log,
// unless a record for the event key already exists.
func (s *FileStore) AppendArchive(season int, snap *results.TournamentSnapshot) (bool, error) {
	path := s.archivePath(season)

	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return false, fmt.Errorf("reading archive: %w", err)
	}
	if archiveContains(existing, snap.EventKey) {
		return false, nil
	}

	line, err := archiveLine(snap)
	if err != nil {
		return false, fmt.Errorf("encoding archive record: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return false, fmt.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(line); err != nil {
		return false, fmt.Errorf("appending archive record: %w", err)
	}
	return true, nil
}

// AppendSummary appends the tournament's row to archive/summary.csv,
// creating the file with a header first. Rows are order-appended; the only
// dedup is the per-key at-most-once check.
func (s *FileStore) AppendSummary(season int, snap *results.TournamentSnapshot) error {
	path := s.summaryPath()

	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading summary: %w", err)
	}
	if summaryContains(existing, snap.EventKey) {
		return nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening summary: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if len(existing) == 0 {
		if err := writer.Write(summaryHeader); err != nil {
			return fmt.Errorf("writing summary header: %w", err)
		}
	}
	if err := writer.Write(summaryRow(season, snap)); err != nil {
		return fmt.Errorf("writing summary row: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flushing summary: %w", err)
	}
	return nil
}
