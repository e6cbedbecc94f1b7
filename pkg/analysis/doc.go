// Package analysis defines the shared result model of an analysis run:
// per-entry classification results and the run summary that is written to
// the report bundle and persisted for drift comparison.
package analysis
