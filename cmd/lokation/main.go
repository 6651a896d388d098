package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/lokation/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╦  ┌─┐┬┌─┌─┐┌┬┐┬┌─┐┌┐┌
  ║  │ │├┴┐├─┤ │ ││ ││││
  ╩═╝└─┘┴ ┴┴ ┴ ┴ ┴└─┘┘└┘
`

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var noColor bool

	rootCmd := &cobra.Command{
		Use:   "lokation",
		Short: "Browser location adapter for stack and fragment navigation",
		Long: `lokation keeps a program in sync with a browser tab's location.

It speaks to the tab either through the history stack (pushState and
popstate) or through the URL fragment (#/path and hashchange), and
notifies subscribers after every change.

Commands:
  • serve     run the WebSocket bridge and demo page
  • resolve   show how a URL splits into stack and fragment form
  • simulate  replay navigation steps against an in-memory tab
  • explain   describe an error code`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				errors.DisableColors()
			}
		},
	}

	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		serveCmd(),
		resolveCmd(),
		simulateCmd(),
		explainCmd(),
		versionCmd(),
	)

	return rootCmd
}

// printBanner prints the ASCII art banner.
func printBanner(w io.Writer) {
	fmt.Fprint(w, banner)
}

// info prints an indented info line.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning line.
func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}
