package cli_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidrax/promptctl/internal/cli"
)

func TestBindEnvVars(t *testing.T) {
	tcs := map[string]struct {
		envVars       map[string]string
		wantLogLevel  string
		wantProfile   string
		args          []string
	}{
		"environment variables are bound when no args provided": {
			envVars: map[string]string{
				"PROMPTCTL_LOG_LEVEL": "debug",
				"PROMPTCTL_PROFILE":   "safe",
			},
			args:         []string{},
			wantLogLevel: "debug",
			wantProfile:  "safe",
		},
		"command line args take precedence over environment variables": {
			envVars: map[string]string{
				"PROMPTCTL_LOG_LEVEL": "debug",
				"PROMPTCTL_PROFILE":   "safe",
			},
			args:         []string{"--log-level", "error", "--profile", "full"},
			wantLogLevel: "error",
			wantProfile:  "full",
		},
		"partial environment variable override": {
			envVars: map[string]string{
				"PROMPTCTL_LOG_LEVEL": "warn",
			},
			args:         []string{"--profile", "full"},
			wantLogLevel: "warn",
			wantProfile:  "full",
		},
		"no environment variables uses defaults": {
			envVars:      map[string]string{},
			args:         []string{},
			wantLogLevel: "info", // Default value.
			wantProfile:  "auto", // Default value.
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			for key, val := range tc.envVars {
				t.Setenv(key, val)
			}

			cmd := cli.NewRootCmd()
			cmd.SetArgs(tc.args)

			// Parse flags (this triggers environment variable binding).
			err := cmd.ParseFlags(tc.args)
			require.NoError(t, err)

			// Check flag values.
			logLevel, err := cmd.Flags().GetString("log-level")
			require.NoError(t, err)
			assert.Equal(t, tc.wantLogLevel, logLevel)

			prof, err := cmd.Flags().GetString("profile")
			require.NoError(t, err)
			assert.Equal(t, tc.wantProfile, prof)
		})
	}
}

// Test that flag usage strings are updated to include environment variable names.
func TestEnvironmentVariableUsageUpdate(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCmd()

	logLevelFlag := cmd.PersistentFlags().Lookup("log-level")
	require.NotNil(t, logLevelFlag)
	assert.Contains(t, logLevelFlag.Usage, "$PROMPTCTL_LOG_LEVEL")

	manifestFlag := cmd.Flags().Lookup("manifest")
	require.NotNil(t, manifestFlag)
	assert.Contains(t, manifestFlag.Usage, "$PROMPTCTL_MANIFEST")
}
