package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/lipgloss"
)

var (
	// ErrValidationFailed flags a run with invalid or missing manifest
	// entries. The report bundle is still written.
	ErrValidationFailed = errors.New("manifest validation failed")

	// ErrDriftDetected flags a run that diverged from its baseline
	// snapshot.
	ErrDriftDetected = errors.New("drift detected")
)

// ExitCode maps an error returned by the root command to a process exit
// code, so schedulers can distinguish outcomes without parsing output:
//
//	0: analysis succeeded, no drift
//	1: precondition or runtime failure
//	2: validation failure (invalid or missing entries)
//	3: drift against the baseline snapshot
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrDriftDetected):
		return 3
	case errors.Is(err, ErrValidationFailed):
		return 2
	}

	return 1
}

func ErrorHandler(w io.Writer, styles fang.Styles, err error) {
	mustN(fmt.Fprintln(w, styles.ErrorHeader.String()))
	mustN(fmt.Fprintln(w, lipgloss.NewStyle().MarginLeft(2).Render(err.Error())))
	mustN(fmt.Fprintln(w))
	if isUsageError(err) {
		mustN(fmt.Fprintln(w, lipgloss.JoinHorizontal(
			lipgloss.Left,
			styles.ErrorText.UnsetWidth().Render("Try"),
			styles.Program.Flag.Render("--help"),
			styles.ErrorText.UnsetWidth().UnsetMargins().UnsetTransform().PaddingLeft(1).Render("for usage."),
		)))
		mustN(fmt.Fprintln(w))
	}
}

// XXX: this is a hack to detect usage errors.
// See: https://github.com/spf13/cobra/pull/2266
func isUsageError(err error) bool {
	s := err.Error()
	for _, prefix := range []string{
		"flag needs an argument:",
		"unknown flag:",
		"unknown shorthand flag:",
		"unknown command",
		"invalid argument",
	} {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}

	return false
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

func mustN(_ int, err error) {
	must(err)
}
