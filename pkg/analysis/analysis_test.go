package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aidrax/promptctl/pkg/analysis"
)

func testResults() []analysis.Result {
	return []analysis.Result{
		{Path: "prompts/a.md", Category: analysis.CategoryRecommended, Component: "prompt_agent_workspace"},
		{Path: "src/b.ts", Category: analysis.CategorySystemCritical},
		{Path: "src/__tests__/c.spec.ts", Category: analysis.CategoryNotNeeded},
		{Path: "misc/d.bin", Category: analysis.CategoryOptionalUnmatched},
		{Path: "/etc/passwd", Category: analysis.CategoryInvalid, Reason: "absolute path"},
		{Path: "gone.md", Category: analysis.CategoryMissing},
	}
}

func TestInstallSet(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name             string
		includeCritical  bool
		includeNotNeeded bool
		want             []string
	}{
		{
			name: "default flags install recommended only",
			want: []string{"prompts/a.md"},
		},
		{
			name:            "include critical",
			includeCritical: true,
			want:            []string{"prompts/a.md", "src/b.ts"},
		},
		{
			name:             "include not needed",
			includeNotNeeded: true,
			want:             []string{"prompts/a.md", "src/__tests__/c.spec.ts"},
		},
		{
			name:             "include everything installable",
			includeCritical:  true,
			includeNotNeeded: true,
			want:             []string{"prompts/a.md", "src/b.ts", "src/__tests__/c.spec.ts"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := analysis.InstallSet(testResults(), tt.includeCritical, tt.includeNotNeeded)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInstallableNeverIncludesFailures(t *testing.T) {
	t.Parallel()

	for _, category := range []analysis.Category{
		analysis.CategoryOptionalUnmatched,
		analysis.CategoryInvalid,
		analysis.CategoryMissing,
	} {
		r := analysis.Result{Path: "x", Category: category}
		assert.False(t, r.Installable(true, true), "category %s must never install", category)
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	sum := analysis.Summarize("auto", testResults(),
		[]string{"roo_code", "general"}, []string{"enterprise_prompts"},
		false, false,
	)

	assert.Equal(t, "auto", sum.Profile)
	assert.Equal(t, 6, sum.TotalInManifest)
	assert.Equal(t, 1, sum.RecommendedCount)
	assert.Equal(t, 1, sum.SystemCriticalCount)
	assert.Equal(t, 1, sum.NotNeededCount)
	assert.Equal(t, 1, sum.OptionalUnmatchedCount)
	assert.Equal(t, 1, sum.InvalidEntryCount)
	assert.Equal(t, 1, sum.MissingFileCount)
	assert.Equal(t, 1, sum.InstallCount)
	assert.False(t, sum.Timestamp.IsZero())

	// Every entry lands in exactly one category.
	categorized := sum.RecommendedCount + sum.SystemCriticalCount + sum.NotNeededCount +
		sum.OptionalUnmatchedCount + sum.InvalidEntryCount + sum.MissingFileCount
	assert.Equal(t, sum.TotalInManifest, categorized)

	assert.True(t, sum.Failed())
}

func TestSummarizeClean(t *testing.T) {
	t.Parallel()

	results := []analysis.Result{
		{Path: "prompts/a.md", Category: analysis.CategoryRecommended},
	}

	sum := analysis.Summarize("safe", results, nil, nil, false, false)
	assert.False(t, sum.Failed())
}

func TestSummaryText(t *testing.T) {
	t.Parallel()

	sum := analysis.Summarize("auto", testResults(),
		[]string{"roo_code"}, nil, false, false,
	)

	text := sum.Text()
	assert.Contains(t, text, "Profile:              auto")
	assert.Contains(t, text, "Total in manifest:    6")
	assert.Contains(t, text, "Detected components:  roo_code")
	assert.Contains(t, text, "Missing components:   (none)")

	// Repeated runs over unchanged inputs must render identical text.
	later := analysis.Summarize("auto", testResults(),
		[]string{"roo_code"}, nil, false, false,
	)
	assert.Equal(t, text, later.Text())
}
