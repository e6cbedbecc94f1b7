package cli

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/aidrax/promptctl/pkg/config"
	"github.com/aidrax/promptctl/pkg/precheck"
	"github.com/aidrax/promptctl/pkg/profile"
	"github.com/aidrax/promptctl/pkg/snapshot"
)

const (
	cmdExamples = `  # Analyze a manifest against the current directory:
  promptctl --manifest MANIFEST.txt --source-dir ./pack --target-root .

  # Use the minimal prompt-only profile:
  promptctl --manifest MANIFEST.txt --source-dir ./pack --target-root /srv/agent --profile safe

  # Include system-critical files in the install list:
  promptctl --manifest MANIFEST.txt --source-dir ./pack --target-root . --include-critical

  # Re-run automatically when the manifest or sources change:
  promptctl --manifest MANIFEST.txt --source-dir ./pack --target-root . --watch

  # Accept pending drift for a target:
  promptctl accept --profile auto --target-root /srv/agent`

	// Debounce window for filesystem events in watch mode.
	watchSettle = 300 * time.Millisecond
)

type AnalyzeArgs struct {
	*RootArgs

	ManifestPath     string
	SourceDir        string
	TargetRoot       string
	OutputDir        string
	Profile          string
	ConfigPath       string
	IncludeCritical  bool
	IncludeNotNeeded bool
	Watch            bool
	WriteConfig      bool
	ShowConfig       bool
}

func NewAnalyzeArgs(rootArgs *RootArgs) *AnalyzeArgs {
	return &AnalyzeArgs{
		RootArgs: rootArgs,
	}
}

func (aa *AnalyzeArgs) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&aa.ManifestPath, "manifest", "m", "MANIFEST.txt", "Path to the manifest file")
	cmd.Flags().StringVarP(&aa.SourceDir, "source-dir", "s", ".", "Directory manifest paths resolve against")
	cmd.Flags().StringVarP(&aa.TargetRoot, "target-root", "t", ".", "Deployment target tree to scan")
	cmd.Flags().StringVarP(&aa.OutputDir, "output-dir", "o", "analysis", "Directory receiving report bundles")
	cmd.Flags().StringVarP(&aa.Profile, "profile", "p", "auto",
		fmt.Sprintf("Recommendation profile, one of: %s", profile.All))
	cmd.Flags().StringVar(&aa.ConfigPath, "config", "", "Path to the promptctl configuration file")
	cmd.Flags().BoolVar(&aa.IncludeCritical, "include-critical", false,
		"Add system-critical files to the install list")
	cmd.Flags().BoolVar(&aa.IncludeNotNeeded, "include-not-needed", false,
		"Add not-needed files to the install list")
	cmd.Flags().BoolVarP(&aa.Watch, "watch", "w", false, "Re-run when the manifest or source directory changes")
	cmd.Flags().BoolVar(&aa.WriteConfig, "write-config", false, "Write the default configuration files and exit")
	cmd.Flags().BoolVar(&aa.ShowConfig, "show-config", false, "Print the active configuration and exit")

	err := cmd.MarkFlagFilename("config", "yaml", "yml")
	if err != nil {
		panic(fmt.Errorf("mark config flag: %w", err))
	}

	err = cmd.MarkFlagFilename("manifest", "txt")
	if err != nil {
		panic(fmt.Errorf("mark manifest flag: %w", err))
	}

	err = cmd.RegisterFlagCompletionFunc("profile",
		cobra.FixedCompletions(profile.All, cobra.ShellCompDirectiveNoFileComp),
	)
	if err != nil {
		panic(err)
	}
}

func NewAnalyzeCmd(aa *AnalyzeArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Default command, classifies the manifest and writes a report bundle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return analyze(cmd, aa)
		},
	}
	aa.AddFlags(cmd)

	bindEnvVars(cmd)

	return cmd
}

func analyze(cmd *cobra.Command, aa *AnalyzeArgs) error {
	configPath := aa.ConfigPath
	if configPath == "" {
		configPath = config.GetPath()
	}

	if aa.WriteConfig {
		// Exit early after writing the default config.
		return config.WriteDefaultConfig(configPath, false)
	}

	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return fmt.Errorf("config %q: %w", configPath, err)
	}

	if aa.ShowConfig {
		// Print the active configuration and exit.
		slog.Info("active configuration", slog.String("path", configPath))

		yamlBytes, err := cfg.MarshalYAML()
		if err != nil {
			return fmt.Errorf("marshal config yaml: %w", err)
		}

		mustN(fmt.Fprint(cmd.OutOrStdout(), string(yamlBytes)))

		return nil
	}

	prof, err := profile.Parse(aa.Profile)
	if err != nil {
		return fmt.Errorf("invalid argument: %w", err)
	}

	runner := precheck.NewRunner(cfg, snapshot.NewStore(snapshot.DefaultRoot()))
	params := precheck.Params{
		ManifestPath:     aa.ManifestPath,
		SourceDir:        aa.SourceDir,
		TargetRoot:       aa.TargetRoot,
		OutputDir:        aa.OutputDir,
		Profile:          prof,
		IncludeCritical:  aa.IncludeCritical,
		IncludeNotNeeded: aa.IncludeNotNeeded,
	}

	if aa.Watch {
		return watchAndRun(cmd, runner, params)
	}

	return runOnce(cmd, runner, params)
}

// runOnce executes one analysis and maps its outcome to the error
// contract consumed by [ExitCode].
func runOnce(cmd *cobra.Command, runner *precheck.Runner, params precheck.Params) error {
	outcome, err := runner.Run(cmd.Context(), params)
	if err != nil {
		return err //nolint:wrapcheck // Return the original error.
	}

	mustN(fmt.Fprint(cmd.OutOrStdout(), outcome.Summary.Text()))

	if outcome.DriftErr != nil {
		slog.Warn("drift check unavailable", slog.Any("error", outcome.DriftErr))
	}

	if outcome.Failed() {
		return fmt.Errorf("%w: %d invalid, %d missing (see %s)",
			ErrValidationFailed,
			outcome.Summary.InvalidEntryCount,
			outcome.Summary.MissingFileCount,
			outcome.BundlePath,
		)
	}

	if outcome.Drifted() {
		mustN(fmt.Fprintln(cmd.OutOrStdout()))
		mustN(fmt.Fprint(cmd.OutOrStdout(), outcome.DriftDiff))

		return fmt.Errorf("%w: %s (run `%s accept` to update the baseline)",
			ErrDriftDetected, outcome.Drift, cmdName)
	}

	return nil
}

// watchAndRun re-runs the analysis whenever the manifest or source
// directory changes, until the context is canceled. Per-run failures are
// logged rather than terminating the watch.
func watchAndRun(cmd *cobra.Command, runner *precheck.Runner, params precheck.Params) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close() //nolint:errcheck // Ignore errors.

	// Watch the manifest's directory rather than the file itself, so
	// editors that replace the file do not drop the watch.
	err = watcher.Add(filepath.Dir(params.ManifestPath))
	if err != nil {
		return fmt.Errorf("watch manifest: %w", err)
	}

	err = watcher.Add(params.SourceDir)
	if err != nil {
		return fmt.Errorf("watch source directory: %w", err)
	}

	ctx := cmd.Context()

	runLogged := func() {
		err := runOnce(cmd, runner, params)
		if err != nil {
			slog.Error("analysis run", slog.Any("error", err))
		}
	}

	runLogged()

	var settle *time.Timer

	trigger := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err() //nolint:wrapcheck // Return the original error.

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if event.Op.Has(fsnotify.Chmod) {
				continue
			}

			slog.Debug("filesystem change",
				slog.String("path", event.Name),
				slog.String("op", event.Op.String()),
			)

			// Debounce bursts of events into one re-run.
			if settle != nil {
				settle.Stop()
			}

			settle = time.AfterFunc(watchSettle, func() {
				select {
				case trigger <- struct{}{}:
				default:
				}
			})

		case <-trigger:
			runLogged()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			slog.Warn("watcher error", slog.Any("error", err))
		}
	}
}
