package snapshot

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aymanbagabas/go-udiff"

	"github.com/aidrax/promptctl/pkg/analysis"
)

// Status is the outcome of a drift comparison.
type Status string

const (
	NoDrift       Status = "NO_DRIFT"
	DriftDetected Status = "DRIFT_DETECTED"
)

// FieldDiff names one tracked key that differs between two snapshots.
type FieldDiff struct {
	Key    string `json:"key"`
	Before string `json:"before"`
	After  string `json:"after"`
}

// Result is the itemized outcome of comparing two snapshots.
type Result struct {
	Status Status      `json:"status"`
	Diffs  []FieldDiff `json:"diffs,omitempty"`
}

// Drifted reports whether the comparison detected drift.
func (r Result) Drifted() bool {
	return r.Status == DriftDetected
}

func (r Result) String() string {
	if !r.Drifted() {
		return string(NoDrift)
	}

	parts := make([]string, 0, len(r.Diffs))
	for _, d := range r.Diffs {
		parts = append(parts, fmt.Sprintf("%s: %s -> %s", d.Key, d.Before, d.After))
	}

	return fmt.Sprintf("%s (%s)", DriftDetected, strings.Join(parts, ", "))
}

// Compare diffs two snapshots for the same (profile, target) key.
// Equality requires all tracked scalar counts to be equal and both
// component sets to be equal, order-independent. Timestamps and include
// flags are not tracked.
func Compare(baseline, current analysis.Summary) Result {
	var diffs []FieldDiff

	scalars := []struct {
		key    string
		before int
		after  int
	}{
		{"total_in_manifest", baseline.TotalInManifest, current.TotalInManifest},
		{"recommended_count", baseline.RecommendedCount, current.RecommendedCount},
		{"system_critical_count", baseline.SystemCriticalCount, current.SystemCriticalCount},
		{"not_needed_count", baseline.NotNeededCount, current.NotNeededCount},
		{"optional_unmatched_count", baseline.OptionalUnmatchedCount, current.OptionalUnmatchedCount},
		{"install_count", baseline.InstallCount, current.InstallCount},
		{"invalid_entry_count", baseline.InvalidEntryCount, current.InvalidEntryCount},
		{"missing_file_count", baseline.MissingFileCount, current.MissingFileCount},
	}

	for _, s := range scalars {
		if s.before != s.after {
			diffs = append(diffs, FieldDiff{
				Key:    s.key,
				Before: fmt.Sprintf("%d", s.before),
				After:  fmt.Sprintf("%d", s.after),
			})
		}
	}

	if diff, ok := compareSets(baseline.DetectedComponents, current.DetectedComponents); !ok {
		diff.Key = "detected_components"
		diffs = append(diffs, diff)
	}

	if diff, ok := compareSets(baseline.MissingComponents, current.MissingComponents); !ok {
		diff.Key = "missing_components"
		diffs = append(diffs, diff)
	}

	if len(diffs) == 0 {
		return Result{Status: NoDrift}
	}

	return Result{Status: DriftDetected, Diffs: diffs}
}

// compareSets compares two component lists order-independently.
func compareSets(before, after []string) (FieldDiff, bool) {
	b := slices.Clone(before)
	a := slices.Clone(after)
	slices.Sort(b)
	slices.Sort(a)

	if slices.Equal(b, a) {
		return FieldDiff{}, true
	}

	return FieldDiff{
		Before: renderSet(b),
		After:  renderSet(a),
	}, false
}

func renderSet(values []string) string {
	if len(values) == 0 {
		return "(none)"
	}

	return strings.Join(values, ", ")
}

// RenderDiff renders a unified text diff of two snapshot summaries for
// operator-facing drift alerts.
func RenderDiff(baseline, current analysis.Summary) string {
	return udiff.Unified("baseline", "current", baseline.Text(), current.Text())
}
