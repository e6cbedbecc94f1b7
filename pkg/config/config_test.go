package config_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidrax/promptctl/pkg/config"
)

func TestNewConfig(t *testing.T) {
	t.Parallel()

	c := config.NewConfig()

	assert.Equal(t, "promptctl.aidrax.dev/v1beta1", c.APIVersion)
	assert.Equal(t, "Configuration", c.Kind)
	require.NotNil(t, c.Scan)
	require.NotNil(t, c.Policy)
	require.NotEmpty(t, c.Components)

	require.NoError(t, c.Validate())

	// The catch-all component comes last so specific owners win.
	last := c.Components[len(c.Components)-1]
	assert.Equal(t, "general", last.ID)
	assert.True(t, last.OwnsPath("anything/at/all.bin"))
}

func TestDefaultPolicyBehavior(t *testing.T) {
	t.Parallel()

	c := config.NewConfig()

	assert.True(t, c.Policy.IsSystemCritical("roo-code/src/extension.ts"))
	assert.True(t, c.Policy.IsSystemCritical("scripts/install.sh"))
	assert.False(t, c.Policy.IsSystemCritical("prompts/intro.md"))

	assert.True(t, c.Policy.IsNotNeeded("src/__tests__/app.spec.ts"))
	assert.False(t, c.Policy.IsNotNeeded("src/app.ts"))

	assert.True(t, c.Policy.IsPromptContent("pack/prompts/intro.md"))
	assert.True(t, c.Policy.IsPromptContent("agent/system_prompt.txt"))
	assert.False(t, c.Policy.IsPromptContent("pack/data/rows.csv"))
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(_ *config.Config) {},
		},
		{
			name: "duplicate component id",
			mutate: func(c *config.Config) {
				c.Components = append(c.Components, c.Components[0])
			},
			wantErr: "duplicate component",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := config.NewConfig()
			tt.mutate(c)

			err := c.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestMarshalYAML(t *testing.T) {
	t.Parallel()

	c := config.NewConfig()

	out, err := c.MarshalYAML()
	require.NoError(t, err)

	s := string(out)
	assert.Contains(t, s, "apiVersion: promptctl.aidrax.dev/v1beta1")
	assert.Contains(t, s, "kind: Configuration")
	assert.Contains(t, s, "components:")
	assert.Contains(t, s, "id: general")
}

func TestWriteDefaultConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	require.NoError(t, config.WriteDefaultConfig(path, false))
	assert.FileExists(t, path)
	assert.FileExists(t, filepath.Join(dir, "config.v1beta1.json"))

	// Writing again without force is a no-op, not an error.
	require.NoError(t, config.WriteDefaultConfig(path, false))

	// Force moves the old file aside.
	require.NoError(t, config.WriteDefaultConfig(path, true))

	backups, err := filepath.Glob(filepath.Join(dir, "config.yaml.*.old"))
	require.NoError(t, err)
	assert.Len(t, backups, 1)
}

func TestGetPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")

	assert.Equal(t, filepath.Join("/tmp/xdg", "promptctl", "config.yaml"), config.GetPath())
}
