// Package report writes the per-run report bundle: one path list per
// category, an install list, a human-readable summary, and the structured
// analysis document.
//
// Bundles are staged in a hidden directory and committed with a single
// rename, so a run either leaves a complete bundle or nothing at all.
// Bundle directory names embed the timestamp, process ID, and a random
// suffix, so history accumulates and concurrent runs never collide.
package report
