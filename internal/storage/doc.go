// Package storage provides durable persistence for the detector's state and
// the append-only tournament archive.
//
// Two backends implement the Store contract: a local file store
// (state-SEASON.json plus archive/SEASON.jsonl and archive/summary.csv under
// a data directory, default ~/.local/share/dpwt-tracker) and a GitHub
// Gist-backed store for deployments without a persistent filesystem, such as
// scheduled CI runners. Saves are atomic from the caller's point of view and
// carry a version number so overlapping invocations cannot silently lose
// updates.
package storage
