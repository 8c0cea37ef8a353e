package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/mhofmann/dpwt-tracker/internal/results"
)

// GenerateICS generates an iCalendar (.ics) entry for a tournament, spanning
// its start and end dates as an all-day range.
func GenerateICS(snap *results.TournamentSnapshot) string {
	var ics strings.Builder

	ics.WriteString("BEGIN:VCALENDAR\r\n")
	ics.WriteString("VERSION:2.0\r\n")
	ics.WriteString("PRODID:-//DPWT Tracker//dpwt-tracker//EN\r\n")
	ics.WriteString("CALSCALE:GREGORIAN\r\n")
	ics.WriteString("METHOD:PUBLISH\r\n")
	ics.WriteString("BEGIN:VEVENT\r\n")

	ics.WriteString(fmt.Sprintf("UID:%s@dpwt-tracker\r\n", snap.EventKey))
	ics.WriteString(fmt.Sprintf("DTSTAMP:%s\r\n", formatICSTime(time.Now().UTC())))

	start := snap.StartDate
	end := snap.EndDate
	if start.IsZero() && !end.IsZero() {
		// Stroke play runs four days
		start = end.AddDate(0, 0, -3)
	}
	if start.IsZero() {
		start = time.Now().AddDate(0, 0, 7)
	}
	if end.Before(start) {
		end = start
	}

	// All-day range; DTEND is exclusive per RFC 5545
	ics.WriteString(fmt.Sprintf("DTSTART;VALUE=DATE:%s\r\n", formatICSDate(start)))
	ics.WriteString(fmt.Sprintf("DTEND;VALUE=DATE:%s\r\n", formatICSDate(end.AddDate(0, 0, 1))))

	ics.WriteString(fmt.Sprintf("SUMMARY:%s\r\n", escapeICS(fmt.Sprintf("DP World Tour - %s", snap.Name))))

	description := snap.Name
	if snap.URL != "" {
		description = fmt.Sprintf("%s\nLeaderboard: %s", snap.Name, absoluteURL(snap.URL))
	}
	ics.WriteString(fmt.Sprintf("DESCRIPTION:%s\r\n", escapeICS(description)))

	if snap.URL != "" {
		ics.WriteString(fmt.Sprintf("URL:%s\r\n", absoluteURL(snap.URL)))
	}

	ics.WriteString("STATUS:CONFIRMED\r\n")
	ics.WriteString("SEQUENCE:0\r\n")
	ics.WriteString("TRANSP:TRANSPARENT\r\n")

	ics.WriteString("END:VEVENT\r\n")
	ics.WriteString("END:VCALENDAR\r\n")

	return ics.String()
}

func absoluteURL(url string) string {
	if strings.HasPrefix(url, "/") {
		return "https://www.europeantour.com" + url
	}
	return url
}

// formatICSTime formats a time.Time as an iCalendar datetime string
func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// formatICSDate formats a time.Time as an iCalendar all-day date string
func formatICSDate(t time.Time) string {
	return t.UTC().Format("20060102")
}

// escapeICS escapes special characters for iCalendar format
func escapeICS(s string) string {
	// Replace special characters according to RFC 5545
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
