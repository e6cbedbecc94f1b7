// Command promptctl analyzes prompt-file manifests against deployment
// targets and tracks drift between runs.
package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"

	"github.com/aidrax/promptctl/internal/cli"
	"github.com/aidrax/promptctl/pkg/version"
)

func main() {
	cmd := cli.NewRootCmd()

	err := fang.Execute(context.Background(), cmd,
		fang.WithVersion(version.GetVersion()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(cli.ErrorHandler),
	)

	os.Exit(cli.ExitCode(err))
}
