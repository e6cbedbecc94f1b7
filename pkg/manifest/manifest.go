package manifest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Role describes what kind of file a manifest entry points at,
// inferred from its path.
type Role string

const (
	RolePrompt   Role = "prompt"
	RoleTemplate Role = "template"
	RoleSource   Role = "source"
	RoleSpec     Role = "spec"
)

// Entry is a single manifest line.
type Entry struct {
	// Path is the relative path as written in the manifest.
	Path string
	// Role is the inferred role for valid entries.
	Role Role
	// Reason explains why the entry is invalid, empty otherwise.
	Reason string
	// Invalid marks entries that failed path validation.
	Invalid bool
}

// Manifest is an ordered sequence of entries, valid and invalid alike.
type Manifest struct {
	Entries []Entry
}

// Total returns the number of non-blank, non-comment manifest lines.
func (m *Manifest) Total() int {
	return len(m.Entries)
}

// Invalid returns the invalid entries in manifest order.
func (m *Manifest) Invalid() []Entry {
	var out []Entry
	for _, e := range m.Entries {
		if e.Invalid {
			out = append(out, e)
		}
	}

	return out
}

// Load reads and parses the manifest at path.
// A missing or unreadable manifest is a precondition failure.
func Load(path string) (*Manifest, error) {
	f, err := os.Open(path) //nolint:gosec // G304: Potential file inclusion via variable.
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close() //nolint:errcheck // Ignore errors.

	m, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("manifest %q: %w", path, err)
	}

	return m, nil
}

// maxPathLen bounds a single manifest path. Longer lines become invalid
// entries rather than read failures, so one pathological line cannot take
// down the rest of the manifest.
const maxPathLen = 4096

// Parse reads manifest lines from r. Per-entry validation problems are
// recorded on the entry itself; only a read failure returns an error.
func Parse(r io.Reader) (*Manifest, error) {
	m := &Manifest{}
	seen := make(map[string]struct{})

	br := bufio.NewReader(r)

	for {
		line, readErr := br.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return nil, fmt.Errorf("read manifest: %w", readErr)
		}

		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") {
			entry := Entry{Path: line}

			if reason := validatePath(line); reason != "" {
				entry.Invalid = true
				entry.Reason = reason
			} else if _, dup := seen[line]; dup {
				entry.Invalid = true
				entry.Reason = "duplicate entry"
			} else {
				seen[line] = struct{}{}
				entry.Role = InferRole(line)
			}

			m.Entries = append(m.Entries, entry)
		}

		if readErr != nil {
			return m, nil
		}
	}
}

// validatePath returns a reason string if rel is not a clean relative path.
func validatePath(rel string) string {
	if len(rel) > maxPathLen {
		return "path too long"
	}

	if filepath.IsAbs(rel) || strings.HasPrefix(rel, "/") {
		return "absolute path"
	}

	for part := range strings.SplitSeq(filepath.ToSlash(rel), "/") {
		if part == ".." {
			return "parent directory traversal"
		}
	}

	return ""
}

// InferRole guesses the role of a manifest path.
func InferRole(rel string) Role {
	lower := strings.ToLower(filepath.ToSlash(rel))
	base := filepath.Base(lower)

	switch {
	case strings.Contains(lower, "/__tests__/"),
		strings.Contains(base, ".spec."),
		strings.HasSuffix(base, ".snap"),
		strings.HasSuffix(base, "_test.go"):
		return RoleSpec

	case strings.Contains(lower, "/templates/"),
		strings.Contains(base, "template"):
		return RoleTemplate

	case strings.Contains(lower, "/prompts/"),
		strings.Contains(base, "prompt"),
		strings.HasSuffix(base, ".md"),
		strings.HasSuffix(base, ".txt"):
		return RolePrompt
	}

	return RoleSource
}
