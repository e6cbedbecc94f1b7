package classify_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidrax/promptctl/pkg/analysis"
	"github.com/aidrax/promptctl/pkg/classify"
	"github.com/aidrax/promptctl/pkg/component"
	"github.com/aidrax/promptctl/pkg/manifest"
	"github.com/aidrax/promptctl/pkg/profile"
)

func testPolicy(t *testing.T) *classify.Policy {
	t.Helper()

	return classify.MustNewPolicy(
		`pathExt(path) in [".ts", ".js", ".py", ".sh"]`,
		`path.contains("/__tests__/") || path.endsWith(".spec.ts") || path.endsWith(".snap")`,
		`path.contains("/prompts/") || pathBase(path).contains("prompt")`,
	)
}

// testScan runs a real scan over a temp tree holding one marker
// directory per detected component.
func testScan(t *testing.T, detected []string, components ...*component.Component) *component.Scan {
	t.Helper()

	root := t.TempDir()

	for _, id := range detected {
		err := os.MkdirAll(filepath.Join(root, "markers", id), 0o750)
		require.NoError(t, err)
	}

	scan, err := component.NewScanner(components).Scan(root)
	require.NoError(t, err)

	return scan
}

func entries(paths ...string) []manifest.Entry {
	out := make([]manifest.Entry, 0, len(paths))
	for _, p := range paths {
		out = append(out, manifest.Entry{Path: p})
	}

	return out
}

func alwaysExists(string) bool { return true }

func TestRuleOrder(t *testing.T) {
	t.Parallel()

	c := classify.New(testScan(t, nil), testPolicy(t), profile.Auto,
		classify.WithExistsFunc(alwaysExists),
	)

	assert.Equal(t, []string{
		"invalid-entry",
		"missing-source",
		"system-critical",
		"recommended-detected",
		"not-needed",
		"full-catch-all",
		"optional-unmatched",
	}, c.Rules())
}

func TestClassifyScenarios(t *testing.T) {
	t.Parallel()

	required := component.MustNew("agent_standards",
		`dirs.exists(d, d == "markers/agent_standards")`,
		`path.startsWith("aidrax-agent/standards/")`,
		component.WithRequired(),
	)
	optional := component.MustNew("prompt_agent_workspace",
		`dirs.exists(d, d == "markers/prompt_agent_workspace")`,
		`path.startsWith("pack/")`,
	)
	general := component.MustNew("general", `true`, `true`)

	scan := testScan(t,
		[]string{"agent_standards", "prompt_agent_workspace"},
		required, optional, general,
	)

	classifier := classify.New(scan, testPolicy(t), profile.Auto,
		classify.WithExistsFunc(alwaysExists),
	)

	results := classifier.Classify(entries(
		"aidrax-agent/standards/rules.md",
		"pack/templates/greeting.tmpl",
		"docs/notes.md",
		"pack/__tests__/fixture.md",
	))

	require.Len(t, results, 4)

	assert.Equal(t, analysis.CategorySystemCritical, results[0].Category)
	assert.Equal(t, "agent_standards", results[0].Component)

	assert.Equal(t, analysis.CategoryRecommended, results[1].Category)
	assert.Equal(t, "prompt_agent_workspace", results[1].Component)

	assert.Equal(t, analysis.CategoryRecommended, results[2].Category)
	assert.Equal(t, "general", results[2].Component)

	assert.Equal(t, analysis.CategoryNotNeeded, results[3].Category)

	sum := analysis.Summarize("auto", results, scan.Detected, scan.Missing, false, false)
	assert.Equal(t, 4, sum.TotalInManifest)
	assert.Equal(t, 2, sum.RecommendedCount)
	assert.Equal(t, 1, sum.SystemCriticalCount)
	assert.Equal(t, 1, sum.NotNeededCount)
	assert.Equal(t, 0, sum.InvalidEntryCount)
	assert.Equal(t, 0, sum.MissingFileCount)
	assert.Equal(t, 2, sum.InstallCount)
}

func TestClassifyInvalidBeforeMissing(t *testing.T) {
	t.Parallel()

	classifier := classify.New(testScan(t, nil), testPolicy(t), profile.Auto,
		classify.WithExistsFunc(func(rel string) bool {
			// Malformed paths must never reach the existence check.
			assert.NotContains(t, rel, "..")

			return false
		}),
	)

	results := classifier.Classify([]manifest.Entry{
		{Path: "../outside.txt", Invalid: true, Reason: "parent directory traversal"},
		{Path: "gone.md"},
	})

	require.Len(t, results, 2)
	assert.Equal(t, analysis.CategoryInvalid, results[0].Category)
	assert.Equal(t, "parent directory traversal", results[0].Reason)
	assert.Equal(t, analysis.CategoryMissing, results[1].Category)

	sum := analysis.Summarize("auto", results, nil, nil, false, false)
	assert.Equal(t, 1, sum.InvalidEntryCount)
	assert.Equal(t, 1, sum.MissingFileCount)
	assert.True(t, sum.Failed())
}

func TestClassifyMissingOverridesPolicy(t *testing.T) {
	t.Parallel()

	classifier := classify.New(testScan(t, nil), testPolicy(t), profile.Auto,
		classify.WithExistsFunc(func(string) bool { return false }),
	)

	// The path matches the system-critical policy, but the absent source
	// file takes precedence.
	results := classifier.Classify(entries("src/deploy.sh"))

	require.Len(t, results, 1)
	assert.Equal(t, analysis.CategoryMissing, results[0].Category)
}

func TestClassifySafeProfile(t *testing.T) {
	t.Parallel()

	workspace := component.MustNew("prompt_agent_workspace",
		`dirs.exists(d, d == "markers/prompt_agent_workspace")`,
		`path.startsWith("pack/")`,
	)

	// Nothing is detected under safe; recommendations must still appear.
	scan := testScan(t, nil, workspace)

	classifier := classify.New(scan, testPolicy(t), profile.Safe,
		classify.WithExistsFunc(alwaysExists),
	)

	results := classifier.Classify(entries(
		"pack/prompts/intro.md",
		"pack/data/table.csv",
	))

	require.Len(t, results, 2)
	assert.Equal(t, analysis.CategoryRecommended, results[0].Category,
		"prompt content is recommended irrespective of detection")
	assert.Equal(t, "prompt_agent_workspace", results[0].Component)
	assert.Equal(t, analysis.CategoryOptionalUnmatched, results[1].Category)
	assert.Equal(t, "prompt_agent_workspace", results[1].Component,
		"unmatched entries keep the owner back-reference")
}

func TestClassifyAutoSkipsUndetected(t *testing.T) {
	t.Parallel()

	enterprise := component.MustNew("enterprise_prompts",
		`dirs.exists(d, d == "markers/enterprise_prompts")`,
		`path.startsWith("aidrax-enterprise/prompts/")`,
	)

	scan := testScan(t, nil, enterprise)

	classifier := classify.New(scan, testPolicy(t), profile.Auto,
		classify.WithExistsFunc(alwaysExists),
	)

	results := classifier.Classify(entries("aidrax-enterprise/prompts/q.md"))

	require.Len(t, results, 1)
	assert.Equal(t, analysis.CategoryOptionalUnmatched, results[0].Category,
		"files of undetected components are not recommended under auto")
}

func TestClassifyFullCatchAll(t *testing.T) {
	t.Parallel()

	classifier := classify.New(testScan(t, nil), testPolicy(t), profile.Full,
		classify.WithExistsFunc(alwaysExists),
	)

	results := classifier.Classify(entries(
		"misc/unclaimed.bin",
		"pack/__tests__/fixture.snap",
	))

	require.Len(t, results, 2)
	assert.Equal(t, analysis.CategoryRecommended, results[0].Category,
		"full recommends unmatched files")
	assert.Equal(t, analysis.CategoryNotNeeded, results[1].Category,
		"the not-needed policy still wins over the catch-all")
}

func TestClassifyEveryEntryGetsOneCategory(t *testing.T) {
	t.Parallel()

	for _, prof := range []profile.Profile{profile.Safe, profile.Auto, profile.Full} {
		classifier := classify.New(testScan(t, nil), testPolicy(t), prof,
			classify.WithExistsFunc(alwaysExists),
		)

		results := classifier.Classify(entries(
			"a.md", "b.ts", "c/__tests__/d.spec.ts", "e.bin",
		))

		assert.Len(t, results, 4, "profile %s", prof)
		for _, r := range results {
			assert.NotEmpty(t, r.Category, "profile %s path %s", prof, r.Path)
		}
	}
}
