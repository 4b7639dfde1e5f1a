package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/voightp/esofile-storage/internal/config"
	"github.com/voightp/esofile-storage/internal/ir"
	"github.com/voightp/esofile-storage/internal/store"
)

// RootOptions holds global flags for all commands, and the configuration
// resolved from them before a command runs.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	Database   string
	Driver     string
	Echo       bool

	Config *config.Config
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the esostore CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "esostore",
		Short: "esostore - EnergyPlus result storage",
		Long:  "Store EnergyPlus output variables in SQLite and fetch them back as numeric tables.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return opts.resolve(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default .esostore.yaml in the working or home directory)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (default "+config.DefaultDatabasePath+")")
	cmd.PersistentFlags().StringVar(&opts.Driver, "driver", "", "database/sql driver (sqlite3|sqlite)")
	cmd.PersistentFlags().BoolVar(&opts.Echo, "echo", false, "log every SQL statement")

	// Add subcommands
	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewStoreCommand(opts))
	cmd.AddCommand(NewFetchCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewFileCommand(opts))
	cmd.AddCommand(NewFilesCommand(opts))
	cmd.AddCommand(NewExecCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewDropCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))

	return cmd
}

// resolve loads the config file and environment, then applies the flags
// the user set explicitly on top.
func (o *RootOptions) resolve(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.Database.Path = o.Database
	}
	if flags.Changed("driver") {
		cfg.Database.Driver = o.Driver
	}
	if flags.Changed("echo") {
		cfg.Database.Echo = o.Echo
	}
	if flags.Changed("format") {
		cfg.Output.Format = o.Format
	} else if cfg.Output.Format != "" {
		o.Format = cfg.Output.Format
	}
	if o.Verbose {
		cfg.Log.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return WrapExitError(ExitCommandError, "invalid config", err)
	}

	o.Config = cfg
	o.Logger = newLogger(cmd.ErrOrStderr(), cfg)
	return nil
}

// openStore opens the configured database.
func (o *RootOptions) openStore() (*store.Store, error) {
	st, err := store.Open(o.Config.StoreConfig(o.Logger))
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

// newLogger builds the diagnostics logger. Logs always go to w, never to
// the command output.
func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}

// parseDescriptors parses interval/key/variable/units arguments.
func parseDescriptors(args []string) ([]ir.Descriptor, error) {
	descriptors := make([]ir.Descriptor, 0, len(args))
	for _, arg := range args {
		d, err := ir.ParseDescriptor(arg)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "invalid variable", err)
		}
		descriptors = append(descriptors, d)
	}
	return descriptors, nil
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
