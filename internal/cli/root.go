package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/hpstore/internal/accessor"
	"github.com/roach88/hpstore/internal/config"
	"github.com/roach88/hpstore/internal/journal"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	ConfigFile string
	Equipment  string
	Timeseries string
	Journal    string

	// LogWriter receives slog output. Defaults to the command's stderr.
	LogWriter io.Writer
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the hpstore CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "hpstore",
		Short: "hpstore - heat pump record store",
		Long: `Read equipment characteristics and time-series inputs, and write
solver outputs back into the time-series file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "YAML file naming the resources")
	cmd.PersistentFlags().StringVar(&opts.Equipment, "equipment", "", "equipment configuration JSON (default "+config.Default().Equipment+")")
	cmd.PersistentFlags().StringVar(&opts.Timeseries, "timeseries", "", "time-series CSV (default "+config.Default().Timeseries+")")
	cmd.PersistentFlags().StringVar(&opts.Journal, "journal", "", "SQLite write journal (disabled when empty)")

	// Add subcommands
	cmd.AddCommand(NewCountCommand(opts))
	cmd.AddCommand(NewPairCommand(opts))
	cmd.AddCommand(NewT2Command(opts))
	cmd.AddCommand(NewF2Command(opts))
	cmd.AddCommand(NewHPCommand(opts))
	cmd.AddCommand(NewPumpCommand(opts))
	cmd.AddCommand(NewWriteCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// Execute runs the command tree with os.Args and returns the process exit code.
// Errors not already reported by a command are printed to stderr.
func Execute() int {
	cmd := NewRootCommand()
	err := cmd.Execute()
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || !exitErr.reported {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
	}
	return GetExitCode(err)
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// resolveConfig merges the config file (if any) with the path flags.
func (o *RootOptions) resolveConfig() (config.Config, error) {
	cfg := config.Default()
	if o.ConfigFile != "" {
		loaded, err := config.Load(o.ConfigFile)
		if err != nil {
			return config.Config{}, WrapExitError(ExitCommandError, "failed to load config", err)
		}
		cfg = loaded
	}
	return cfg.Override(config.Config{
		Equipment:  o.Equipment,
		Timeseries: o.Timeseries,
		Journal:    o.Journal,
	}), nil
}

// logger builds the slog logger for a command: text on stderr, Debug when verbose.
func (o *RootOptions) logger(cmd *cobra.Command) *slog.Logger {
	logLevel := slog.LevelInfo
	if o.Verbose {
		logLevel = slog.LevelDebug
	}
	w := o.LogWriter
	if w == nil {
		w = cmd.ErrOrStderr()
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel}))
}

// openAccessor builds the accessor for a command. The returned close func
// releases the journal, if one was opened.
func (o *RootOptions) openAccessor(cmd *cobra.Command) (*accessor.Accessor, func(), error) {
	cfg, err := o.resolveConfig()
	if err != nil {
		return nil, nil, err
	}

	logger := o.logger(cmd)
	opts := []accessor.Option{accessor.WithLogger(logger)}
	closeFn := func() {}

	if cfg.Journal != "" {
		logger.Debug("opening journal", "path", cfg.Journal)
		j, err := journal.Open(cfg.Journal)
		if err != nil {
			return nil, nil, WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		opts = append(opts, accessor.WithJournal(j))
		closeFn = func() {
			if err := j.Close(); err != nil {
				logger.Warn("failed to close journal", "error", err)
			}
		}
	}

	return accessor.New(cfg, opts...), closeFn, nil
}

// formatter returns the output formatter for a command.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}
