// Package detector implements the change-detection state machine at the heart
// of the tracker.
//
// Detect is a pure function: it compares freshly normalized tournament
// snapshots against the persisted detector state and returns the domain
// events that occurred plus the updated state. It never touches the network
// or the filesystem; persistence and notification happen at the caller's
// boundary, which is what makes the at-most-once guarantees testable.
package detector
