package results

import "time"

// ParseDate attempts to parse a tournament date into a time.Time.
// Returns time.Time{} (zero value) if parsing fails.
// Supports ISO-8601 timestamps and the site's European "15/10/2025" format.
func ParseDate(text string) time.Time {
	if text == "" {
		return time.Time{}
	}

	// Try RFC3339 with and without offset
	t, err := time.Parse(time.RFC3339, text)
	if err == nil {
		return t.UTC()
	}

	t, err = time.Parse("2006-01-02T15:04:05", text)
	if err == nil {
		return t.UTC()
	}

	// Try "2025-10-15" date-only format
	t, err = time.Parse("2006-01-02", text)
	if err == nil {
		return t.UTC()
	}

	// Try "15/10/2025" format (day/month/year)
	t, err = time.Parse("02/01/2006", text)
	if err == nil {
		return t.UTC()
	}

	// Could not parse, return zero time
	return time.Time{}
}
