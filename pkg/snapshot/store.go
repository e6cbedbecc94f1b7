package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "embed"

	"github.com/aidrax/promptctl/pkg/analysis"
	"github.com/aidrax/promptctl/pkg/yaml"
)

//go:embed snapshot.v1.json
var schemaJSON []byte

var (
	// ErrNotFound is returned when no snapshot exists for a key.
	ErrNotFound = errors.New("snapshot not found")

	// ErrCorrupt is returned when a stored snapshot cannot be decoded or
	// fails schema validation. It is fatal to the drift check only.
	ErrCorrupt = errors.New("corrupt snapshot")

	defaultValidator = yaml.MustNewValidator("/snapshot.v1.json", schemaJSON)
)

const (
	baselineFile = "baseline.json"
	pendingFile  = "pending.json"
)

// Key identifies one snapshot series: a profile applied to a target root.
type Key struct {
	Profile string
	Target  string
}

// Slug returns a filesystem-safe directory name for the key. The target
// path is sanitized and suffixed with a short hash so distinct targets
// never collide after sanitization.
func (k Key) Slug() string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(k.Target))

	sanitized := strings.Trim(strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '-'
		}
	}, k.Target), "-")

	const maxSanitized = 64
	if len(sanitized) > maxSanitized {
		sanitized = sanitized[len(sanitized)-maxSanitized:]
	}

	return fmt.Sprintf("%s-%s-%08x", k.Profile, sanitized, h.Sum32())
}

// Store is a filesystem-backed snapshot store. Concurrent runs against the
// same key are expected to be serialized by an external scheduler, so no
// locking is performed.
type Store struct {
	root string
}

// NewStore creates a [Store] rooted at dir.
func NewStore(dir string) *Store {
	return &Store{root: dir}
}

// DefaultRoot returns the snapshot directory under the user state
// directory.
func DefaultRoot() string {
	if xdgState, ok := os.LookupEnv("XDG_STATE_HOME"); ok && xdgState != "" {
		return filepath.Join(xdgState, "promptctl")
	}

	usrHome, err := os.UserHomeDir()
	if err == nil && usrHome != "" {
		return filepath.Join(usrHome, ".local", "state", "promptctl")
	}

	tmpRoot := filepath.Join(os.TempDir(), "promptctl", "state")

	slog.Warn("could not determine user state directory, using temp path for snapshots",
		slog.String("path", tmpRoot),
	)

	return tmpRoot
}

// Get returns the baseline snapshot for key, or [ErrNotFound].
func (s *Store) Get(key Key) (*analysis.Summary, error) {
	return s.read(key, baselineFile)
}

// Put writes the baseline snapshot for key.
func (s *Store) Put(key Key, sum analysis.Summary) error {
	return s.write(key, baselineFile, sum)
}

// GetPending returns the pending snapshot for key, or [ErrNotFound].
func (s *Store) GetPending(key Key) (*analysis.Summary, error) {
	return s.read(key, pendingFile)
}

// PutPending writes the pending snapshot for key.
func (s *Store) PutPending(key Key, sum analysis.Summary) error {
	return s.write(key, pendingFile, sum)
}

// ClearPending removes the pending snapshot for key, if any.
func (s *Store) ClearPending(key Key) error {
	err := os.Remove(s.path(key, pendingFile))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove pending snapshot: %w", err)
	}

	return nil
}

// Accept promotes the pending snapshot to the baseline, resolving open
// drift. It returns [ErrNotFound] if no pending snapshot exists.
func (s *Store) Accept(key Key) error {
	pendingPath := s.path(key, pendingFile)

	_, err := os.Stat(pendingPath)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: no pending drift for key %q", ErrNotFound, key.Slug())
	}
	if err != nil {
		return fmt.Errorf("stat pending snapshot: %w", err)
	}

	err = os.Rename(pendingPath, s.path(key, baselineFile))
	if err != nil {
		return fmt.Errorf("promote pending snapshot: %w", err)
	}

	return nil
}

func (s *Store) path(key Key, name string) string {
	return filepath.Join(s.root, key.Slug(), name)
}

func (s *Store) read(key Key, name string) (*analysis.Summary, error) {
	data, err := os.ReadFile(s.path(key, name)) //nolint:gosec // G304: Paths are store-derived.
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: key %q", ErrNotFound, key.Slug())
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	// Validate the raw document before decoding, so a hand-edited or
	// truncated snapshot surfaces as [ErrCorrupt].
	var raw any

	err = json.Unmarshal(data, &raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	err = defaultValidator.Validate(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	sum := &analysis.Summary{}

	err = json.Unmarshal(data, sum)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	return sum, nil
}

func (s *Store) write(key Key, name string, sum analysis.Summary) error {
	dir := filepath.Join(s.root, key.Slug())

	err := os.MkdirAll(dir, 0o700)
	if err != nil {
		return fmt.Errorf("create snapshot directory: %w", err)
	}

	data, err := json.MarshalIndent(sum, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	err = os.WriteFile(filepath.Join(dir, name), append(data, '\n'), 0o600)
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	return nil
}
