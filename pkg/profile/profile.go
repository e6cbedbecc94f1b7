package profile

import (
	"errors"
	"fmt"
	"strings"
)

// Profile is a named recommendation policy.
type Profile string

const (
	// Safe only recommends a minimal prompt-only subset of the manifest.
	Safe Profile = "safe"
	// Auto recommends files belonging to detected components.
	Auto Profile = "auto"
	// Full recommends every file not claimed by a higher-priority category.
	Full Profile = "full"
)

var (
	ErrUnknownProfile = errors.New("unknown profile")

	All = []string{
		string(Safe),
		string(Auto),
		string(Full),
	}
)

// Parse converts a string into a [Profile].
func Parse(s string) (Profile, error) {
	p := Profile(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case Safe, Auto, Full:
		return p, nil
	}

	return "", fmt.Errorf("%w: %q (must be one of: %s)", ErrUnknownProfile, s, strings.Join(All, ", "))
}

// MustParse converts a string into a [Profile] and panics on error.
func MustParse(s string) Profile {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}

	return p
}

// RecommendsDetected reports whether files owned by detected components are
// eligible for recommendation without further policy checks.
func (p Profile) RecommendsDetected() bool {
	return p == Auto || p == Full
}

// PromptOnly reports whether recommendations are restricted to the
// prompt-content subset, irrespective of component detection.
func (p Profile) PromptOnly() bool {
	return p == Safe
}

// CatchAll reports whether unmatched files should still be recommended.
func (p Profile) CatchAll() bool {
	return p == Full
}

func (p Profile) String() string {
	return string(p)
}
