package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/roach88/sqlitejson/internal/config"
	"github.com/roach88/sqlitejson/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	Database   string
	Table      string
	Column     string
	ConfigPath string
	Seed       uint64

	// IDGenerator overrides load ids (for testing). If nil, store.Open
	// defaults to UUIDv7Generator.
	IDGenerator store.IDGenerator

	// Logger overrides the handler built from --verbose (for testing).
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the sqlitejson CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sqlitejson",
		Short: "sqlitejson - a JSON document store on SQLite",
		Long: `Store JSON documents in a SQLite table and query them with SQL.

Documents live in one table with an autoincrement id and a JSON body column.
Queries can use SQLite's JSON functions plus json_array_contains,
json_array_dropdup and json_array_randelem.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			if opts.Logger == nil {
				opts.Logger = newLogger(cmd.ErrOrStderr(), opts.Verbose)
			}
			return nil
		},
	}

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return WrapExitError(ExitCommandError, "invalid flags", err)
	})

	// Global flags
	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	flags.StringVar(&opts.Database, "db", store.MemoryPath, "path to SQLite database")
	flags.StringVar(&opts.Table, "table", store.DefaultTable, "document table name")
	flags.StringVar(&opts.Column, "column", store.DefaultColumn, "document body column name")
	flags.StringVar(&opts.ConfigPath, "config", "", "path to YAML config file")
	flags.Uint64Var(&opts.Seed, "seed", 0, "seed for json_array_randelem (0 = random)")

	// Add subcommands
	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewLoadCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewDumpCommand(opts))
	cmd.AddCommand(NewCountCommand(opts))

	return cmd
}

// commandArgs turns argument validation failures into command errors.
func commandArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return WrapExitError(ExitCommandError, "invalid arguments", err)
		}
		return nil
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// newLogger builds the CLI log handler: tint on w, colored only when w is
// a terminal.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	noColor := true
	if f, ok := w.(*os.File); ok {
		noColor = !isatty.IsTerminal(f.Fd())
		w = colorable.NewColorable(f)
	}

	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05.000",
		NoColor:    noColor,
	}))
}

// formatter returns the OutputFormatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// resolveConfig layers explicitly set flags over the config file over the
// defaults.
func (o *RootOptions) resolveConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Defaults()
	if o.ConfigPath != "" {
		loaded, err := config.Load(o.ConfigPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.Path = o.Database
	}
	if flags.Changed("table") {
		cfg.Table = o.Table
	}
	if flags.Changed("column") {
		cfg.Column = o.Column
	}
	if flags.Changed("seed") {
		cfg.Seed = o.Seed
	}
	return cfg, nil
}

// storeConfig converts cfg into store options carrying the CLI logger
// and id generator.
func (o *RootOptions) storeConfig(cfg config.Config) store.Config {
	sc := cfg.StoreConfig()
	sc.Logger = o.Logger
	sc.IDGenerator = o.IDGenerator
	return sc
}

// openStore opens the store described by sc.
func (o *RootOptions) openStore(ctx context.Context, sc store.Config) (*store.Store, error) {
	o.Logger.Debug("opening store", "path", sc.Path, "table", sc.Table, "column", sc.Column)
	return store.Open(ctx, sc)
}

// closeStore closes s, logging instead of failing the command.
func (o *RootOptions) closeStore(s *store.Store) {
	if err := s.Close(); err != nil {
		o.Logger.Error("error closing database", "error", err)
	}
}

// contextOf returns the command's context, or Background when run
// without one.
func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
