package precheck

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aidrax/promptctl/pkg/analysis"
	"github.com/aidrax/promptctl/pkg/classify"
	"github.com/aidrax/promptctl/pkg/component"
	"github.com/aidrax/promptctl/pkg/config"
	"github.com/aidrax/promptctl/pkg/log"
	"github.com/aidrax/promptctl/pkg/manifest"
	"github.com/aidrax/promptctl/pkg/profile"
	"github.com/aidrax/promptctl/pkg/report"
	"github.com/aidrax/promptctl/pkg/snapshot"
)

// Params are the inputs for one pre-check run.
type Params struct {
	// ManifestPath is the manifest file to analyze.
	ManifestPath string
	// SourceDir is the directory manifest paths resolve against.
	SourceDir string
	// TargetRoot is the deployment target tree to scan.
	TargetRoot string
	// OutputDir receives the report bundles.
	OutputDir string
	// Profile selects the recommendation strategy.
	Profile profile.Profile
	// IncludeCritical adds system-critical files to the install set.
	IncludeCritical bool
	// IncludeNotNeeded adds not-needed files to the install set.
	IncludeNotNeeded bool
}

// Outcome carries the distinguishable results of one run. The run itself
// succeeding (a non-nil Outcome) is independent of the analysis verdict:
// a run can complete cleanly and still report validation failures or
// drift.
type Outcome struct {
	// Summary is the structured analysis document.
	Summary analysis.Summary
	// Results holds the per-entry classifications, in manifest order.
	Results []analysis.Result
	// BundlePath is the committed report bundle directory.
	BundlePath string
	// Drift is the baseline comparison result, nil when no baseline
	// existed before this run.
	Drift *snapshot.Result
	// DriftDiff is a unified diff of the baseline and current summaries,
	// empty when there is no drift.
	DriftDiff string
	// DriftErr records a snapshot store failure. It is fatal to the
	// drift check only, never to the analysis itself.
	DriftErr error
}

// Failed reports whether the analysis found invalid or missing entries.
func (o *Outcome) Failed() bool {
	return o.Summary.Failed()
}

// Drifted reports whether the run drifted from its baseline.
func (o *Outcome) Drifted() bool {
	return o.Drift != nil && o.Drift.Drifted()
}

// Runner wires the analysis pipeline together for repeated runs over the
// same configuration.
type Runner struct {
	cfg   *config.Config
	store *snapshot.Store
}

// NewRunner creates a [Runner]. A nil store disables drift tracking.
func NewRunner(cfg *config.Config, store *snapshot.Store) *Runner {
	return &Runner{
		cfg:   cfg,
		store: store,
	}
}

// Run executes one pre-check. It returns an error only for precondition
// failures; validation failures and drift are reported on the [Outcome].
func (r *Runner) Run(ctx context.Context, p Params) (*Outcome, error) {
	err := validateParams(p)
	if err != nil {
		return nil, err
	}

	logger := log.WithContext(ctx)

	m, err := manifest.Load(p.ManifestPath)
	if err != nil {
		return nil, err //nolint:wrapcheck // Return the original error.
	}

	logger.DebugContext(ctx, "loaded manifest",
		slog.String("path", p.ManifestPath),
		slog.Int("entries", m.Total()),
	)

	scanner := component.NewScanner(r.cfg.Components,
		component.WithMaxDepth(r.cfg.Scan.MaxDepth),
	)

	scan, err := scanner.Scan(p.TargetRoot)
	if err != nil {
		return nil, err //nolint:wrapcheck // Return the original error.
	}

	classifier := classify.New(scan, r.cfg.Policy, p.Profile,
		classify.WithSourceDir(p.SourceDir),
	)

	results := classifier.Classify(m.Entries)
	sum := analysis.Summarize(
		string(p.Profile),
		results,
		scan.Detected,
		scan.Missing,
		p.IncludeCritical,
		p.IncludeNotNeeded,
	)

	bundle, err := report.NewWriter(p.OutputDir).Write(results, sum)
	if err != nil {
		return nil, err //nolint:wrapcheck // Return the original error.
	}

	logger.InfoContext(ctx, "wrote report bundle",
		slog.String("bundle", bundle),
		slog.String("profile", sum.Profile),
		slog.Int("recommended", sum.RecommendedCount),
		slog.Int("install", sum.InstallCount),
	)

	outcome := &Outcome{
		Summary:    sum,
		Results:    results,
		BundlePath: bundle,
	}

	if r.store != nil {
		r.checkDrift(ctx, logger, p, sum, outcome)
	}

	return outcome, nil
}

// checkDrift compares the run against the stored baseline. The first run
// for a key bootstraps the baseline; later drifting runs park the new
// summary as pending until an operator accepts it.
func (r *Runner) checkDrift(
	ctx context.Context,
	logger *slog.Logger,
	p Params,
	sum analysis.Summary,
	outcome *Outcome,
) {
	key := snapshot.Key{
		Profile: string(p.Profile),
		Target:  absPath(p.TargetRoot),
	}

	baseline, err := r.store.Get(key)
	if errors.Is(err, snapshot.ErrNotFound) {
		err = r.store.Put(key, sum)
		if err != nil {
			outcome.DriftErr = err

			return
		}

		logger.InfoContext(ctx, "recorded baseline snapshot",
			slog.String("key", key.Slug()),
		)

		return
	}
	if err != nil {
		// A corrupt or unreadable baseline fails the drift check, not
		// the analysis.
		outcome.DriftErr = err

		return
	}

	result := snapshot.Compare(*baseline, sum)
	outcome.Drift = &result

	if result.Drifted() {
		outcome.DriftDiff = snapshot.RenderDiff(*baseline, sum)

		err = r.store.PutPending(key, sum)
		if err != nil {
			outcome.DriftErr = err

			return
		}

		logger.WarnContext(ctx, "drift detected against baseline",
			slog.String("key", key.Slug()),
			slog.Int("diffs", len(result.Diffs)),
		)

		return
	}

	err = r.store.ClearPending(key)
	if err != nil {
		outcome.DriftErr = err
	}
}

// validateParams checks the run preconditions: the manifest must be a
// regular file, and the source and target directories must exist.
func validateParams(p Params) error {
	info, err := os.Stat(p.ManifestPath)
	if err != nil {
		return fmt.Errorf("manifest: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("manifest %q: not a regular file", p.ManifestPath)
	}

	err = requireDir("source directory", p.SourceDir)
	if err != nil {
		return err
	}

	return requireDir("target root", p.TargetRoot)
}

func requireDir(name, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s %q: not a directory", name, path)
	}

	return nil
}

// absPath resolves path for snapshot keying so relative and absolute
// spellings of the same target share one baseline.
func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}

	return abs
}
