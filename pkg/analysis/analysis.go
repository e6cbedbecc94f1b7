package analysis

import (
	"fmt"
	"strings"
	"time"
)

// Category is the single classification assigned to a manifest entry.
type Category string

const (
	CategoryRecommended       Category = "recommended"
	CategorySystemCritical    Category = "system_critical"
	CategoryNotNeeded         Category = "not_needed"
	CategoryOptionalUnmatched Category = "optional_unmatched"
	CategoryInvalid           Category = "invalid"
	CategoryMissing           Category = "missing"
)

// AllCategories lists every category in summary order.
var AllCategories = []Category{
	CategoryRecommended,
	CategorySystemCritical,
	CategoryNotNeeded,
	CategoryOptionalUnmatched,
	CategoryInvalid,
	CategoryMissing,
}

// Result is the classification outcome for one manifest entry.
// Every entry yields exactly one Result.
type Result struct {
	// Path is the relative path from the manifest.
	Path string
	// Category is the assigned category.
	Category Category
	// Component optionally references the component that claimed the entry.
	Component string
	// Reason carries the validation reason for invalid entries.
	Reason string
}

// Installable reports whether the result enters the install set under the
// given include flags. Invalid, missing, and optional-unmatched entries
// never install.
func (r Result) Installable(includeCritical, includeNotNeeded bool) bool {
	switch r.Category {
	case CategoryRecommended:
		return true
	case CategorySystemCritical:
		return includeCritical
	case CategoryNotNeeded:
		return includeNotNeeded
	case CategoryOptionalUnmatched, CategoryInvalid, CategoryMissing:
		return false
	}

	return false
}

// InstallSet returns the paths planned for install, in manifest order.
func InstallSet(results []Result, includeCritical, includeNotNeeded bool) []string {
	var out []string
	for _, r := range results {
		if r.Installable(includeCritical, includeNotNeeded) {
			out = append(out, r.Path)
		}
	}

	return out
}

// Summary is the structured analysis document for one run. The JSON field
// names are a stable contract shared by the report bundle and the
// persisted baseline snapshots.
type Summary struct {
	Timestamp              time.Time `json:"timestamp"`
	Profile                string    `json:"profile"`
	DetectedComponents     []string  `json:"detected_components"`
	MissingComponents      []string  `json:"missing_components"`
	TotalInManifest        int       `json:"total_in_manifest"`
	RecommendedCount       int       `json:"recommended_count"`
	SystemCriticalCount    int       `json:"system_critical_count"`
	NotNeededCount         int       `json:"not_needed_count"`
	OptionalUnmatchedCount int       `json:"optional_unmatched_count"`
	InstallCount           int       `json:"install_count"`
	InvalidEntryCount      int       `json:"invalid_entry_count"`
	MissingFileCount       int       `json:"missing_file_count"`
	IncludeCritical        bool      `json:"include_critical"`
	IncludeNotNeeded       bool      `json:"include_not_needed"`
}

// Summarize builds a [Summary] from classification results.
func Summarize(
	prof string,
	results []Result,
	detected, missing []string,
	includeCritical, includeNotNeeded bool,
) Summary {
	counts := make(map[Category]int, len(AllCategories))
	for _, r := range results {
		counts[r.Category]++
	}

	return Summary{
		Timestamp:              time.Now().UTC(),
		Profile:                prof,
		DetectedComponents:     detected,
		MissingComponents:      missing,
		TotalInManifest:        len(results),
		RecommendedCount:       counts[CategoryRecommended],
		SystemCriticalCount:    counts[CategorySystemCritical],
		NotNeededCount:         counts[CategoryNotNeeded],
		OptionalUnmatchedCount: counts[CategoryOptionalUnmatched],
		InstallCount:           len(InstallSet(results, includeCritical, includeNotNeeded)),
		InvalidEntryCount:      counts[CategoryInvalid],
		MissingFileCount:       counts[CategoryMissing],
		IncludeCritical:        includeCritical,
		IncludeNotNeeded:       includeNotNeeded,
	}
}

// Failed reports whether the run must be flagged failed, blocking any
// downstream install.
func (s Summary) Failed() bool {
	return s.InvalidEntryCount > 0 || s.MissingFileCount > 0
}

// Text renders the human-readable summary block written to summary.txt.
// The timestamp is deliberately excluded so repeated runs over unchanged
// inputs produce identical text.
func (s Summary) Text() string {
	lines := []string{
		fmt.Sprintf("Profile:              %s", s.Profile),
		fmt.Sprintf("Total in manifest:    %d", s.TotalInManifest),
		fmt.Sprintf("Recommended:          %d", s.RecommendedCount),
		fmt.Sprintf("System-critical:      %d", s.SystemCriticalCount),
		fmt.Sprintf("Not-needed:           %d", s.NotNeededCount),
		fmt.Sprintf("Optional-unmatched:   %d", s.OptionalUnmatchedCount),
		fmt.Sprintf("Planned for install:  %d", s.InstallCount),
		fmt.Sprintf("Invalid entries:      %d", s.InvalidEntryCount),
		fmt.Sprintf("Missing files:        %d", s.MissingFileCount),
		"Detected components:  " + joinOrNone(s.DetectedComponents),
		"Missing components:   " + joinOrNone(s.MissingComponents),
	}

	return strings.Join(lines, "\n") + "\n"
}

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return "(none)"
	}

	return strings.Join(values, ", ")
}
