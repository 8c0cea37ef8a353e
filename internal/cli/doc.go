// Package cli implements the command-line interface for dpwt-tracker.
//
// The cli package provides the Cobra-based CLI: the root command runs one
// poll of the results API (fetch, detect, save, notify, archive), the
// discover subcommand scrapes the player's current tournament, and the
// calendar subcommand exports a tournament as an iCalendar entry. Output is
// available as text or JSON, with exit code 2 signalling new events.
package cli
