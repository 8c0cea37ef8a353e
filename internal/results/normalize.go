package results

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mhofmann/dpwt-tracker/internal/logger"
)

// Field name candidates observed across the results API's schema drift. The
// season endpoint and the sportdata endpoint disagree on casing and naming,
// and both have renamed fields between seasons.
var (
	idKeys       = []string{"EventId", "CompetitionId", "eventId", "competitionId"}
	nameKeys     = []string{"EventName", "Tournament", "TournamentName", "Name", "name"}
	urlKeys      = []string{"EventUrl", "TournamentUrl", "Link", "Url", "url"}
	startKeys    = []string{"StartDate", "startDate"}
	endKeys      = []string{"EndDate", "endDate"}
	positionKeys = []string{"PositionDesc", "PositionText", "Pos", "position"}
	toParKeys    = []string{"ScoreToPar", "ToPar", "scoreToPar"}
	totalKeys    = []string{"Total", "TotalStrokes", "total"}
	pointsKeys   = []string{"Points", "R2DRPoints", "R2DR", "points"}
	earningsKeys = []string{"Earnings", "PrizeMoney", "earnings"}
	listKeys     = []string{"Results", "results", "Items", "items", "Data", "data"}
)

// Normalize converts a raw results payload into canonical tournament
// snapshots. The payload may be a bare JSON array of result records or an
// object with the record list nested under a varying field name. Records that
// cannot be interpreted at all are skipped and logged; missing optional
// fields degrade to their zero values.
func Normalize(payload []byte) ([]*TournamentSnapshot, error) {
	var raw interface{}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("parsing results payload: %w", err)
	}

	records, err := extractRecords(raw)
	if err != nil {
		return nil, err
	}

	snapshots := make([]*TournamentSnapshot, 0, len(records))
	for i, rec := range records {
		snap, err := normalizeRecord(rec)
		if err != nil {
			logger.Warn("Skipping malformed result record", logger.Fields{
				"index":  i,
				"reason": err.Error(),
			})
			continue
		}
		snapshots = append(snapshots, snap)
	}

	return snapshots, nil
}

// extractRecords locates the list of result records inside the payload.
func extractRecords(raw interface{}) ([]map[string]interface{}, error) {
	toMaps := func(list []interface{}) []map[string]interface{} {
		out := make([]map[string]interface{}, 0, len(list))
		for _, item := range list {
			if m, ok := item.(map[string]interface{}); ok {
				out = append(out, m)
			}
		}
		return out
	}

	switch v := raw.(type) {
	case []interface{}:
		return toMaps(v), nil
	case map[string]interface{}:
		for _, key := range listKeys {
			if list, ok := v[key].([]interface{}); ok {
				return toMaps(list), nil
			}
		}
		return nil, fmt.Errorf("no result list found in payload object")
	default:
		return nil, fmt.Errorf("unexpected payload shape %T", raw)
	}
}

func normalizeRecord(rec map[string]interface{}) (*TournamentSnapshot, error) {
	eventID := firstInt(rec, idKeys)
	name := firstString(rec, nameKeys)
	if eventID == 0 && name == "" {
		return nil, fmt.Errorf("record has neither an event id nor a name")
	}

	endDate := ParseDate(firstString(rec, endKeys))

	snap := &TournamentSnapshot{
		EventKey:   EventKeyFor(eventID, name, endDate),
		EventID:    eventID,
		Name:       name,
		URL:        firstString(rec, urlKeys),
		StartDate:  ParseDate(firstString(rec, startKeys)),
		EndDate:    endDate,
		Rounds:     extractRounds(rec),
		Position:   extractPosition(rec),
		ScoreToPar: firstScore(rec, toParKeys),
		Total:      firstScore(rec, totalKeys),
		Points:     firstFloat(rec, pointsKeys),
		Earnings:   firstFloat(rec, earningsKeys),
	}

	return snap, nil
}

// extractRounds builds the round-number to strokes map. The API serves
// rounds either as a sub-list of {RoundNo, Strokes} objects or as flat
// R1..R4 columns. Rounds with null strokes are omitted, not stored as zero.
func extractRounds(rec map[string]interface{}) map[int]int {
	rounds := make(map[int]int)

	if list, ok := rec["Rounds"].([]interface{}); ok {
		for _, item := range list {
			entry, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			rno, okNo := asInt(entry["RoundNo"])
			strokes, okStrokes := asInt(entry["Strokes"])
			if okNo && okStrokes && rno >= 1 {
				rounds[rno] = strokes
			}
		}
		return rounds
	}

	for rno := 1; rno <= ExpectedRounds; rno++ {
		if strokes, ok := asInt(rec[fmt.Sprintf("R%d", rno)]); ok {
			rounds[rno] = strokes
		}
	}
	return rounds
}

// extractPosition prefers the textual position ("T12") over the numeric one.
func extractPosition(rec map[string]interface{}) string {
	if pos := firstString(rec, positionKeys); pos != "" {
		return pos
	}
	if pos, ok := asInt(rec["Position"]); ok {
		return strconv.Itoa(pos)
	}
	return ""
}

func firstString(rec map[string]interface{}, keys []string) string {
	for _, key := range keys {
		if s, ok := rec[key].(string); ok {
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

func firstInt(rec map[string]interface{}, keys []string) int {
	for _, key := range keys {
		if n, ok := asInt(rec[key]); ok {
			return n
		}
	}
	return 0
}

func firstFloat(rec map[string]interface{}, keys []string) *float64 {
	for _, key := range keys {
		if f, ok := asFloat(rec[key]); ok {
			return &f
		}
	}
	return nil
}

// firstScore parses a golf score that may be numeric or a string like
// "-7", "+3" or "E" (even par).
func firstScore(rec map[string]interface{}, keys []string) *int {
	for _, key := range keys {
		switch v := rec[key].(type) {
		case float64:
			n := int(v)
			return &n
		case string:
			s := strings.TrimSpace(v)
			if s == "" {
				continue
			}
			if strings.EqualFold(s, "E") {
				zero := 0
				return &zero
			}
			if n, err := strconv.Atoi(strings.TrimPrefix(s, "+")); err == nil {
				return &n
			}
		}
	}
	return nil
}

func asInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case float64:
		if math.Trunc(n) != n {
			return 0, false
		}
		return int(n), true
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.Atoi(s)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(n, ",", ""))
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
