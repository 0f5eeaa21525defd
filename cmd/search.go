package cmd

import (
	"os"

	"github.com/Laisky/errors/v2"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gopak/dcs-cli/internal/config"
	"github.com/gopak/dcs-cli/internal/dcs"
	"github.com/gopak/dcs-cli/internal/flow"
	"github.com/gopak/dcs-cli/internal/logging"
	"github.com/gopak/dcs-cli/internal/query"
	"github.com/gopak/dcs-cli/internal/render"
	"github.com/gopak/dcs-cli/internal/ui/console"
)

type searchFlags struct {
	maxPages       int
	quiet          bool
	lineNumbers    bool
	noColor        bool
	printFilenames bool
	dedupe         bool
	exclude        []string
}

var sf searchFlags

func registerSearchFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.IntVar(&sf.maxPages, "max-pages", 20, "maximum number of result pages to fetch")
	f.BoolVarP(&sf.quiet, "quiet", "q", false, "suppress diagnostics on stderr")
	f.BoolVarP(&sf.lineNumbers, "linenumber", "l", false, "show line numbers")
	f.BoolVar(&sf.noColor, "nocolor", false, "do not colorize output")
	f.BoolVarP(&sf.printFilenames, "print-filenames", "n", false, "print only matching filenames, no contents")
	f.BoolVarP(&sf.dedupe, "dedupe", "d", false, "group results with identical content and print them once")
	f.StringArrayVarP(&sf.exclude, "exclude", "x", nil, "skip results whose path contains this string (repeatable)")
}

// settings is the outcome of merging the config files with the flags.
type settings struct {
	maxPages int
	color    bool
	exclude  []string
}

func resolve(cmd *cobra.Command, cfg config.Config, mode flow.OutputMode) settings {
	s := settings{
		maxPages: cfg.Pages(),
		color:    cfg.ColorEnabled() && !sf.noColor && mode == flow.Interactive,
		exclude:  append(append([]string(nil), cfg.Exclude...), sf.exclude...),
	}
	if cmd.Flags().Changed("max-pages") {
		s.maxPages = sf.maxPages
	}
	return s
}

func runSearch(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	cfg, err := loadConfig(cfgFile)
	if err != nil {
		return err
	}
	mode := flow.DetectOutputMode(os.Stdout.Fd())
	s := resolve(cmd, cfg, mode)
	if s.maxPages < 0 {
		return errors.Errorf("--max-pages must not be negative, got %d", s.maxPages)
	}

	if err := logging.Init(logging.Options{
		Quiet:   sf.quiet,
		Verbose: verbose,
		Color:   isatty.IsTerminal(os.Stderr.Fd()) && !sf.noColor,
		File:    cfg.LogFile,
	}); err != nil {
		return err
	}
	logging.Debug("starting search",
		zap.String("mode", mode.String()),
		zap.Int("max_pages", s.maxPages),
		zap.Strings("exclude", s.exclude),
		zap.Bool("dedupe", sf.dedupe))

	timeout, err := cfg.Timeout()
	if err != nil {
		return err
	}
	client := dcs.NewClient(
		dcs.WithStreamURL(cfg.StreamURL),
		dcs.WithResultsURL(cfg.ResultsURL),
		dcs.WithTimeout(timeout),
		dcs.WithUserAgent(cfg.UserAgent+"/"+version),
	)
	fc := flow.New(flow.Options{
		Mode:              mode,
		Dedupe:            sf.dedupe,
		MaxPages:          s.maxPages,
		RequestsPerSecond: cfg.Rate(),
		Prompter:          console.NewPager(),
	})
	formatter := render.Formatter{
		LineNumbers:   sf.lineNumbers,
		FilenamesOnly: sf.printFilenames,
		Color:         s.color,
	}
	runner := query.NewRunner(client, fc, formatter, os.Stdout, query.Options{
		MaxPages: s.maxPages,
		Dedupe:   sf.dedupe,
		Exclude:  s.exclude,
	})

	stats, err := runner.Run(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	logging.Say(console.FilesGrepped(stats))
	if report := console.Discrepancy(stats); report != "" {
		logging.Say(report)
	}
	return nil
}
