package profile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidrax/promptctl/pkg/profile"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    profile.Profile
		wantErr bool
	}{
		{name: "safe", input: "safe", want: profile.Safe},
		{name: "auto", input: "auto", want: profile.Auto},
		{name: "full", input: "full", want: profile.Full},
		{name: "case insensitive", input: "AUTO", want: profile.Auto},
		{name: "whitespace trimmed", input: " full ", want: profile.Full},
		{name: "unknown", input: "aggressive", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p, err := profile.Parse(tt.input)

			if tt.wantErr {
				require.ErrorIs(t, err, profile.ErrUnknownProfile)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, p)
		})
	}
}

func TestProfileBehavior(t *testing.T) {
	t.Parallel()

	tests := []struct {
		profile           profile.Profile
		recommendsDetect  bool
		promptOnly        bool
		catchAll          bool
	}{
		{profile: profile.Safe, recommendsDetect: false, promptOnly: true, catchAll: false},
		{profile: profile.Auto, recommendsDetect: true, promptOnly: false, catchAll: false},
		{profile: profile.Full, recommendsDetect: true, promptOnly: false, catchAll: true},
	}

	for _, tt := range tests {
		t.Run(tt.profile.String(), func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.recommendsDetect, tt.profile.RecommendsDetected())
			assert.Equal(t, tt.promptOnly, tt.profile.PromptOnly())
			assert.Equal(t, tt.catchAll, tt.profile.CatchAll())
		})
	}
}
