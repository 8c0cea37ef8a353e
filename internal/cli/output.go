package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mhofmann/dpwt-tracker/internal/detector"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// OutputResult contains data to be output
type OutputResult struct {
	CheckedAt  time.Time         `json:"checked_at"`
	Season     int               `json:"season"`
	PlayerID   int               `json:"player_id"`
	Skipped    bool              `json:"skipped,omitempty"`
	Events     []*detector.Event `json:"events"`
	Messages   []string          `json:"messages,omitempty"`
	EventCount int               `json:"event_count"`
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result *OutputResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result *OutputResult, verbose bool) error {
	if result.Skipped {
		fmt.Fprintln(w, "Results API unavailable, poll skipped.")
		return nil
	}

	if result.EventCount == 0 {
		fmt.Fprintln(w, "No new events.")
		return nil
	}

	for i, ev := range result.Events {
		fmt.Fprintf(w, "%s", kindLabel(ev.Kind))
		if ev.Tournament != "" {
			fmt.Fprintf(w, ": %s", ev.Tournament)
		}
		if ev.Kind == detector.KindRoundCompleted {
			fmt.Fprintf(w, " (R%d, %d strokes)", ev.Round, ev.Strokes)
		}
		fmt.Fprintln(w)

		if verbose && i < len(result.Messages) {
			fmt.Fprintln(w, indent(result.Messages[i]))
		}
	}
	fmt.Fprintf(w, "\nTotal: %d event", result.EventCount)
	if result.EventCount != 1 {
		fmt.Fprint(w, "s")
	}
	fmt.Fprintln(w)

	return nil
}

func kindLabel(kind detector.Kind) string {
	switch kind {
	case detector.KindRoundCompleted:
		return "ROUND"
	case detector.KindTournamentFinished:
		return "FINISHED"
	case detector.KindNewTournament:
		return "NEW"
	case detector.KindUpcomingReminder:
		return "UPCOMING"
	case detector.KindBaselineEstablished:
		return "BASELINE"
	default:
		return string(kind)
	}
}

func indent(s string) string {
	return "    " + strings.ReplaceAll(s, "\n", "\n    ")
}
