package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Laisky/errors/v2"
	"github.com/spf13/cobra"

	"github.com/gopak/dcs-cli/internal/dcs"
	"github.com/gopak/dcs-cli/internal/flow"
	"github.com/gopak/dcs-cli/internal/logging"
)

const (
	exitOK          = 0
	exitFailure     = 1
	exitInterrupted = 130
)

var cfgFile string
var verbose bool
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "dcs <searchstring>",
	Short: "Search Debian Code Search from the terminal",
	Long: `dcs sends a query to codesearch.debian.net, prints matches while the
search runs and then pages through the remaining results.`,
	Args:          cobra.ExactArgs(1),
	SilenceErrors: true,
	RunE:          runSearch,
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer logging.Close()

	return exitCode(rootCmd.ExecuteContext(ctx))
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, context.Canceled), errors.Is(err, flow.ErrInterrupted):
		return exitInterrupted
	}
	logging.Error(describe(err))
	return exitFailure
}

func describe(err error) string {
	var malformed *dcs.MalformedMessageError
	if errors.As(err, &malformed) {
		return fmt.Sprintf("Unable to parse JSON document: %v", malformed.Err)
	}
	return err.Error()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a YAML config file (default: all *.yaml in ~/.config/dcs)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug events to stderr")
	rootCmd.Version = version
	registerSearchFlags(rootCmd)
}
