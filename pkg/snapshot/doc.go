// Package snapshot persists analysis summaries and detects drift between
// runs.
//
// Summaries are stored per (profile, target) key as baseline and pending
// documents in a filesystem-backed store. The comparator diffs the tracked
// scalar counts and component sets of two summaries; persistence is an
// implementation detail behind the [Store].
package snapshot
