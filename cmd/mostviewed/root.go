package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"mostviewed/internal/config"
	"mostviewed/internal/content"
	"mostviewed/internal/logger"
	"mostviewed/internal/pipeline"
	"mostviewed/internal/store"
	"mostviewed/internal/wiki"
)

// app carries what every subcommand needs once flags are resolved.
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	progress *pipeline.ConsoleReporter
	stdout   io.Writer
	stderr   io.Writer
}

type rootFlags struct {
	configPath string
	logLevel   string
	output     string
	topN       int
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	flags := &rootFlags{}
	a := &app{stdout: stdout, stderr: stderr}
	a.progress = pipeline.NewConsoleReporter(stderr, isTerminal(stderr))
	a.log = logger.NewLoggerWithWriter("info", a.progress)

	root := &cobra.Command{
		Use:           "mostviewed",
		Short:         "Chart the most viewed Wikipedia articles",
		Long:          `Fetches the most viewed Wikipedia articles, records their last editor and Markdown content in SQLite, and renders a ranked chart and table.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd, flags)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runReport(cmd)
		},
	}

	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "YAML config file (defaults apply when empty)")
	pf.IntVar(&flags.topN, "top", config.DefaultTopN, "number of articles to chart")
	pf.StringVar(&flags.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	pf.StringVar(&flags.output, "output", "", "HTML report path (overrides report.output)")

	root.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Run the pipeline once and print the chart and table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runReport(cmd)
		},
	})
	root.AddCommand(newServeCommand(a))
	root.AddCommand(newInitConfigCommand(a))

	return root
}

// load reads the config file and applies flags that were set explicitly.
func (a *app) load(cmd *cobra.Command, flags *rootFlags) error {
	cfg, err := config.LoadConfig(flags.configPath)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("top") {
		cfg.Fetch.TopN = flags.topN
	}

	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level = flags.logLevel
	}

	if cmd.Flags().Changed("output") {
		cfg.Report.Output = flags.output
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	a.cfg = cfg
	a.log.SetLevel(cfg.Logging.Level)
	a.log.Debug(fmt.Sprintf("⚙️  Configuration loaded: %s", cfg))

	return nil
}

// newPipeline wires the API client, the content service and the store.
func (a *app) newPipeline() (*pipeline.Pipeline, *store.Store) {
	client := wiki.NewClient(
		a.cfg.Wikipedia.APIURL,
		a.cfg.Wikipedia.UserAgent,
		wiki.WithTimeout(a.cfg.Wikipedia.GetTimeout()),
		wiki.WithLogger(a.log),
	)

	st := store.New(a.cfg.Store.Path)
	p := pipeline.New(a.cfg, client, content.NewServiceFromConfig(a.cfg, a.log), st,
		pipeline.WithReporter(a.progress),
		pipeline.WithLogger(a.log),
	)

	return p, st
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func newInitConfigCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init-config <path>",
		Short: "Write the effective configuration to a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := a.cfg.SaveConfig(args[0]); err != nil {
				return err
			}

			a.log.Info(fmt.Sprintf("📝 Configuration written to %s", args[0]))

			return nil
		},
	}
}
