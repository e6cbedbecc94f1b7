package report

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aidrax/promptctl/pkg/analysis"
)

const bundleTimeFormat = "20060102T150405Z"

// Category list files written into every bundle.
var categoryFiles = map[analysis.Category]string{
	analysis.CategoryRecommended:       "recommended.txt",
	analysis.CategorySystemCritical:    "system_critical.txt",
	analysis.CategoryNotNeeded:         "not_needed.txt",
	analysis.CategoryOptionalUnmatched: "optional_unmatched.txt",
	analysis.CategoryInvalid:           "invalid_entries.txt",
	analysis.CategoryMissing:           "missing_files.txt",
}

// Writer writes report bundles under a single output directory.
type Writer struct {
	now       func() time.Time
	outputDir string
}

// NewWriter creates a [Writer] rooted at outputDir.
// The directory is created on first write.
func NewWriter(outputDir string, opts ...WriterOpt) *Writer {
	w := &Writer{
		outputDir: outputDir,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}

	return w
}

// WriterOpt is a functional option for configuring a [Writer].
type WriterOpt func(*Writer)

// WithClock overrides the bundle timestamp source.
func WithClock(now func() time.Time) WriterOpt {
	return func(w *Writer) {
		w.now = now
	}
}

// Write stages a complete bundle and commits it with one rename.
// It returns the final bundle directory path.
func (w *Writer) Write(results []analysis.Result, sum analysis.Summary) (string, error) {
	err := os.MkdirAll(w.outputDir, 0o700)
	if err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	name, err := w.bundleName()
	if err != nil {
		return "", err
	}

	staging := filepath.Join(w.outputDir, "."+name+".tmp")
	final := filepath.Join(w.outputDir, name)

	err = os.Mkdir(staging, 0o700)
	if err != nil {
		return "", fmt.Errorf("create staging directory: %w", err)
	}

	err = w.writeBundle(staging, results, sum)
	if err != nil {
		// Abort without leaving a partial bundle behind.
		_ = os.RemoveAll(staging)

		return "", err
	}

	err = os.Rename(staging, final)
	if err != nil {
		_ = os.RemoveAll(staging)

		return "", fmt.Errorf("commit bundle: %w", err)
	}

	return final, nil
}

// bundleName builds a collision-free directory name from the UTC
// timestamp, the process ID, and a random suffix.
func (w *Writer) bundleName() (string, error) {
	suffix := make([]byte, 4)

	_, err := rand.Read(suffix)
	if err != nil {
		return "", fmt.Errorf("generate bundle suffix: %w", err)
	}

	return fmt.Sprintf("%s-%d-%s",
		w.now().UTC().Format(bundleTimeFormat),
		os.Getpid(),
		hex.EncodeToString(suffix),
	), nil
}

func (w *Writer) writeBundle(dir string, results []analysis.Result, sum analysis.Summary) error {
	for category, filename := range categoryFiles {
		var paths []string
		for _, r := range results {
			if r.Category == category {
				paths = append(paths, r.Path)
			}
		}

		err := writeList(filepath.Join(dir, filename), paths)
		if err != nil {
			return err
		}
	}

	install := analysis.InstallSet(results, sum.IncludeCritical, sum.IncludeNotNeeded)

	err := writeList(filepath.Join(dir, "install_list.txt"), install)
	if err != nil {
		return err
	}

	err = os.WriteFile(filepath.Join(dir, "summary.txt"), []byte(sum.Text()), 0o600)
	if err != nil {
		return fmt.Errorf("write summary.txt: %w", err)
	}

	doc, err := json.MarshalIndent(sum, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal analysis document: %w", err)
	}

	err = os.WriteFile(filepath.Join(dir, "analysis.json"), append(doc, '\n'), 0o600)
	if err != nil {
		return fmt.Errorf("write analysis.json: %w", err)
	}

	return nil
}

// writeList writes one path per line, preserving manifest order.
// Empty lists produce an empty file.
func writeList(path string, values []string) error {
	var b strings.Builder
	for _, v := range values {
		b.WriteString(v)
		b.WriteByte('\n')
	}

	err := os.WriteFile(path, []byte(b.String()), 0o600)
	if err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}

	return nil
}
