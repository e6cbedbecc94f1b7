package component_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidrax/promptctl/pkg/component"
)

// makeTargetTree builds a target root with two detectable components.
func makeTargetTree(t *testing.T) string {
	t.Helper()

	root := t.TempDir()

	for _, dir := range []string{
		"Roo-Code/src",
		"skills/code-agent",
		"unrelated/stuff",
	} {
		err := os.MkdirAll(filepath.Join(root, dir), 0o750)
		require.NoError(t, err)
	}

	for _, file := range []string{
		"Roo-Code/package.json",
		"Roo-Code/src/index.ts",
		"skills/code-agent/SKILL.md",
	} {
		err := os.WriteFile(filepath.Join(root, file), []byte("x"), 0o600)
		require.NoError(t, err)
	}

	return root
}

func testComponents(t *testing.T) []*component.Component {
	t.Helper()

	return []*component.Component{
		component.MustNew("roo_code",
			`dirs.exists(d, pathBase(d) == "Roo-Code")`,
			`path.lowerAscii().startsWith("roo-code/")`,
		),
		component.MustNew("skill_code_agent",
			`dirs.exists(d, d.endsWith("skills/code-agent"))`,
			`path.contains("skills/code-agent/")`,
		),
		component.MustNew("enterprise_prompts",
			`dirs.exists(d, d.endsWith("aidrax-enterprise/prompts"))`,
			`path.contains("aidrax-enterprise/prompts/")`,
		),
	}
}

func TestScannerScan(t *testing.T) {
	t.Parallel()

	root := makeTargetTree(t)

	scanner := component.NewScanner(testComponents(t))

	scan, err := scanner.Scan(root)
	require.NoError(t, err)

	assert.Equal(t, []string{"roo_code", "skill_code_agent"}, scan.Detected)
	assert.Equal(t, []string{"enterprise_prompts"}, scan.Missing)

	assert.True(t, scan.IsDetected("roo_code"))
	assert.False(t, scan.IsDetected("enterprise_prompts"))
	assert.False(t, scan.IsDetected("unknown"))
}

func TestScannerScanIsIdempotent(t *testing.T) {
	t.Parallel()

	root := makeTargetTree(t)
	scanner := component.NewScanner(testComponents(t))

	first, err := scanner.Scan(root)
	require.NoError(t, err)

	second, err := scanner.Scan(root)
	require.NoError(t, err)

	assert.Equal(t, first.Detected, second.Detected)
	assert.Equal(t, first.Missing, second.Missing)
}

func TestScannerMissingRoot(t *testing.T) {
	t.Parallel()

	scanner := component.NewScanner(testComponents(t))

	_, err := scanner.Scan(filepath.Join(t.TempDir(), "does-not-exist"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open target root")
}

func TestScannerUnreadableDir(t *testing.T) {
	t.Parallel()

	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}

	root := makeTargetTree(t)

	locked := filepath.Join(root, "locked")
	require.NoError(t, os.MkdirAll(filepath.Join(locked, "markers"), 0o750))
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() {
		_ = os.Chmod(locked, 0o750)
	})

	components := append(testComponents(t),
		component.MustNew("behind_lock",
			`dirs.exists(d, d.endsWith("locked/markers"))`,
			`true`,
		),
	)

	// An unreadable subdirectory is a non-match, not a scan failure.
	scan, err := component.NewScanner(components).Scan(root)
	require.NoError(t, err)

	assert.Equal(t, []string{"roo_code", "skill_code_agent"}, scan.Detected)
	assert.Contains(t, scan.Missing, "behind_lock")
}

func TestScannerMaxDepth(t *testing.T) {
	t.Parallel()

	root := t.TempDir()

	err := os.MkdirAll(filepath.Join(root, "a/b/c/d"), 0o750)
	require.NoError(t, err)

	deep := component.MustNew("deep",
		`dirs.exists(d, pathBase(d) == "d")`,
		`true`,
	)

	scan, err := component.NewScanner(
		[]*component.Component{deep},
		component.WithMaxDepth(2),
	).Scan(root)
	require.NoError(t, err)
	assert.Empty(t, scan.Detected, "directories below the depth limit are invisible")

	scan, err = component.NewScanner([]*component.Component{deep}).Scan(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"deep"}, scan.Detected)
}

func TestScanOwner(t *testing.T) {
	t.Parallel()

	root := makeTargetTree(t)

	scan, err := component.NewScanner(testComponents(t)).Scan(root)
	require.NoError(t, err)

	owner, ok := scan.Owner("roo-code/src/index.ts")
	require.True(t, ok)
	assert.Equal(t, "roo_code", owner.ID)

	// Ownership follows configuration order, not detection state.
	owner, ok = scan.Owner("aidrax-enterprise/prompts/intro.md")
	require.True(t, ok)
	assert.Equal(t, "enterprise_prompts", owner.ID)

	_, ok = scan.Owner("misc/unclaimed.bin")
	assert.False(t, ok)
}
