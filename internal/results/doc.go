// Package results provides the canonical tournament snapshot model and the
// normalizer that converts loosely-structured results payloads into it.
//
// Each snapshot carries a stable event key derived from the provider's
// numeric event id, with a deterministic hash over name and end date as the
// fallback, so the same real-world tournament always maps to the same key
// across polls even when the id field is occasionally absent.
package results
