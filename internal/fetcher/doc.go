// Package fetcher retrieves player result payloads from the DP World Tour
// website's public API.
//
// The API intermittently blocks non-browser clients, so the client rotates
// browser user agents, retries transient failures with exponential backoff,
// and can route blocked requests through an optional relay. A goquery-based
// fallback scrapes the player's profile page for the "Playing this week"
// tournament link when the results API lags behind a live event.
package fetcher
