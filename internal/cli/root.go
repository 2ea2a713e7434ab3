package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roach88/pyrs/internal/idiom"
	"github.com/roach88/pyrs/internal/transpile"
)

// RootOptions holds global flags for all commands.
// After the root command's pre-run they hold the merged view of flags,
// PYRS_* environment variables and the config file.
type RootOptions struct {
	Verbose bool
	Format  string // "text" | "json" | "yaml"
	Config  string
	Idioms  []string
	NoColor bool

	// Cache is the transpilation cache path, from --cache or config.
	Cache string

	logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{FormatText, FormatJSON, FormatYAML}

// NewRootCommand creates the root command for the pyrs CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "pyrs",
		Short: "pyrs - Python to Rust transpiler",
		Long: `Transpile a subset of Python to idiomatic Rust.

Calls are mapped to Rust through an idiom table (print becomes println!,
str becomes String::from). Constructs with no Rust mapping are reported
with their source position instead of being guessed at.

Configuration is read from .pyrs.yaml in the working directory (or --config)
and PYRS_* environment variables; flags take precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", FormatText, "output format (text|json|yaml)")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "config file (default .pyrs.yaml)")
	cmd.PersistentFlags().StringSliceVar(&opts.Idioms, "idioms", nil, "idiom overlay file (.cue|.yaml), repeatable")
	cmd.PersistentFlags().BoolVar(&opts.NoColor, "no-color", false, "disable colored output")

	// Add subcommands
	cmd.AddCommand(NewTranspileCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewLowerCommand(opts))
	cmd.AddCommand(NewIdiomsCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewCacheCommand(opts))

	return cmd
}

// load merges flags, environment and config file through viper.
func (o *RootOptions) load(cmd *cobra.Command) error {
	v := viper.New()
	v.SetEnvPrefix("PYRS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if o.Config != "" {
		v.SetConfigFile(o.Config)
	} else {
		v.SetConfigName(".pyrs")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if o.Config != "" || !errors.As(err, &notFound) {
			return WrapExitError(ExitCommandError, "reading config", err)
		}
	}

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return WrapExitError(ExitCommandError, "binding flags", err)
	}

	o.Format = v.GetString("format")
	o.Verbose = v.GetBool("verbose")
	o.Idioms = v.GetStringSlice("idioms")
	o.NoColor = v.GetBool("no-color")
	o.Cache = v.GetString("cache")

	if err := o.expandPaths(); err != nil {
		return WrapExitError(ExitCommandError, "expanding paths", err)
	}

	if !isValidFormat(o.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}
	if o.NoColor {
		color.NoColor = true
	}

	level := slog.LevelWarn
	if o.Verbose {
		level = slog.LevelDebug
	}
	o.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	if path := v.ConfigFileUsed(); path != "" {
		o.logger.Debug("loaded config", "path", path)
	}
	return nil
}

// expandPaths resolves a leading ~ in the cache and overlay paths.
func (o *RootOptions) expandPaths() error {
	var err error
	if o.Cache, err = homedir.Expand(o.Cache); err != nil {
		return err
	}
	for i, p := range o.Idioms {
		if o.Idioms[i], err = homedir.Expand(p); err != nil {
			return err
		}
	}
	return nil
}

// Logger returns the configured logger, or a discarding one when the root
// pre-run has not executed.
func (o *RootOptions) Logger() *slog.Logger {
	if o.logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o.logger
}

// Table returns the built-in idiom table with the configured overlays.
func (o *RootOptions) Table() (*idiom.Table[pr], error) {
	table, err := idiom.Default()
	if err != nil {
		return nil, err
	}
	return idiom.Extend(table, o.Idioms...)
}

// Transpiler builds a transpiler over Table.
func (o *RootOptions) Transpiler() (*transpile.Transpiler, error) {
	table, err := o.Table()
	if err != nil {
		return nil, err
	}
	return transpile.New(transpile.WithTable(table), transpile.WithLogger(o.Logger()))
}

// formatter builds the output formatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting structured output
		Verbose:   o.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
