package storage

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/mhofmann/dpwt-tracker/internal/results"
)

// archiveContains reports whether the JSONL archive content already holds a
// record for the event key. Unparseable lines are ignored rather than
// blocking the append.
func archiveContains(content []byte, eventKey string) bool {
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var probe struct {
			EventKey string `json:"event_key"`
		}
		if err := json.Unmarshal([]byte(line), &probe); err != nil {
			continue
		}
		if probe.EventKey == eventKey {
			return true
		}
	}
	return false
}

// archiveLine renders one archive record as a single JSON line.
func archiveLine(snap *results.TournamentSnapshot) ([]byte, error) {
	record := ArchiveRecord{
		ArchivedAt: time.Now().UTC(),
		EventKey:   snap.EventKey,
		Snapshot:   snap,
	}
	line, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}
	return append(line, '\n'), nil
}

// summaryContains reports whether the CSV summary content already has a row
// for the event key.
func summaryContains(content []byte, eventKey string) bool {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return false
	}
	for i, record := range records {
		if i == 0 || len(record) < 2 {
			continue
		}
		if record[1] == eventKey {
			return true
		}
	}
	return false
}

// summaryRow renders the tabular summary row for a finished tournament.
func summaryRow(season int, snap *results.TournamentSnapshot) []string {
	endDate := ""
	if !snap.EndDate.IsZero() {
		endDate = snap.EndDate.UTC().Format("2006-01-02")
	}

	url := snap.URL
	if url != "" && strings.HasPrefix(url, "/") {
		url = "https://www.europeantour.com" + url
	}

	return []string{
		strconv.Itoa(season),
		snap.EventKey,
		strings.ReplaceAll(snap.Name, ",", " "),
		endDate,
		snap.Position,
		formatIntPtr(snap.Total),
		formatIntPtr(snap.ScoreToPar),
		formatFloatPtr(snap.Points),
		formatFloatPtr(snap.Earnings),
		url,
	}
}

func formatIntPtr(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

func formatFloatPtr(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', 2, 64)
}
