package cli

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aidrax/promptctl/pkg/profile"
	"github.com/aidrax/promptctl/pkg/snapshot"
)

type AcceptArgs struct {
	*RootArgs

	Profile    string
	TargetRoot string
}

func NewAcceptCmd(rootArgs *RootArgs) *cobra.Command {
	aa := &AcceptArgs{
		RootArgs: rootArgs,
	}

	cmd := &cobra.Command{
		Use:   "accept",
		Short: "Promote pending drift to the new baseline snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return accept(cmd, aa)
		},
	}

	cmd.Flags().StringVarP(&aa.Profile, "profile", "p", "auto",
		fmt.Sprintf("Recommendation profile, one of: %s", profile.All))
	cmd.Flags().StringVarP(&aa.TargetRoot, "target-root", "t", ".", "Deployment target tree the drift was reported for")

	err := cmd.RegisterFlagCompletionFunc("profile",
		cobra.FixedCompletions(profile.All, cobra.ShellCompDirectiveNoFileComp),
	)
	if err != nil {
		panic(err)
	}

	bindEnvVars(cmd)

	return cmd
}

func accept(cmd *cobra.Command, aa *AcceptArgs) error {
	prof, err := profile.Parse(aa.Profile)
	if err != nil {
		return fmt.Errorf("invalid argument: %w", err)
	}

	target, err := filepath.Abs(aa.TargetRoot)
	if err != nil {
		return fmt.Errorf("resolve target root: %w", err)
	}

	key := snapshot.Key{
		Profile: string(prof),
		Target:  target,
	}

	store := snapshot.NewStore(snapshot.DefaultRoot())

	err = store.Accept(key)
	if err != nil {
		return err //nolint:wrapcheck // Return the original error.
	}

	slog.Info("accepted pending snapshot as baseline",
		slog.String("key", key.Slug()),
	)

	mustN(fmt.Fprintf(cmd.OutOrStdout(), "Baseline updated for profile %q, target %q.\n", prof, target))

	return nil
}
