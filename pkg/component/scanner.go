package component

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

const defaultMaxDepth = 10

// Scanner performs read-only detection of components in a target tree.
// It wraps an [os.Root] so the walk can never leave the target root, and it
// treats unreadable or absent subdirectories as a non-match rather than an
// error.
type Scanner struct {
	components []*Component
	maxDepth   uint // Maximum depth to traverse directories. 0 means no limit.
}

// NewScanner creates a [Scanner] over the given components.
func NewScanner(components []*Component, opts ...ScannerOpt) *Scanner {
	s := &Scanner{
		components: components,
		maxDepth:   defaultMaxDepth,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// ScannerOpt is a functional option for configuring a [Scanner].
type ScannerOpt func(*Scanner)

// WithMaxDepth sets the maximum directory depth for the scan.
func WithMaxDepth(depth uint) ScannerOpt {
	return func(s *Scanner) {
		s.maxDepth = depth
	}
}

// Scan walks the target root and evaluates every component's detect
// expression once. Only a failure to open the root itself is an error;
// anything below it degrades to a non-match.
func (s *Scanner) Scan(targetRoot string) (*Scan, error) {
	root, err := os.OpenRoot(targetRoot)
	if err != nil {
		return nil, fmt.Errorf("open target root %q: %w", targetRoot, err)
	}
	defer root.Close() //nolint:errcheck // Ignore errors.

	var files, dirs []string

	s.walk(root, ".", 0, &files, &dirs)

	scan := &Scan{
		Root:       root.Name(),
		components: s.components,
	}

	for _, c := range s.components {
		if c.Detected(root.Name(), files, dirs) {
			scan.Detected = append(scan.Detected, c.ID)
		} else {
			scan.Missing = append(scan.Missing, c.ID)
		}
	}

	slog.Debug("scanned target environment",
		slog.String("root", root.Name()),
		slog.Int("files", len(files)),
		slog.Int("dirs", len(dirs)),
		slog.Any("detected", scan.Detected),
	)

	return scan, nil
}

// walk collects relative file and directory paths up to maxDepth.
// Unreadable directories are skipped.
func (s *Scanner) walk(root *os.Root, dir string, depth uint, files, dirs *[]string) {
	if s.maxDepth > 0 && depth > s.maxDepth {
		return
	}

	f, err := root.Open(dir)
	if err != nil {
		return
	}

	entries, err := f.ReadDir(-1)
	f.Close() //nolint:errcheck,gosec // Read-only handle.
	if err != nil {
		return
	}

	for _, entry := range entries {
		rel := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			*dirs = append(*dirs, rel)
			s.walk(root, rel, depth+1, files, dirs)
		} else {
			*files = append(*files, rel)
		}
	}
}

// Scan is the read-only detection result for one target tree.
// A component appears in exactly one of Detected or Missing.
type Scan struct {
	// Root is the absolute target root that was scanned.
	Root string
	// Detected lists component IDs whose detect expression matched,
	// in configuration order.
	Detected []string
	// Missing lists the components matched by none of their signals,
	// in configuration order.
	Missing []string

	components []*Component
}

// IsDetected reports whether the component with the given id was detected.
func (s *Scan) IsDetected(id string) bool {
	for _, d := range s.Detected {
		if d == id {
			return true
		}
	}

	return false
}

// Owner returns the first configured component whose owns expression
// claims the given manifest path.
func (s *Scan) Owner(path string) (*Component, bool) {
	for _, c := range s.components {
		if c.OwnsPath(path) {
			return c, true
		}
	}

	return nil, false
}
