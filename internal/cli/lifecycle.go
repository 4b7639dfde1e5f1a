package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the database and its tables",
		Long: `Create the database file and its tables if they do not exist yet.
Running init on an initialized database changes nothing.

Examples:
  esostore init
  esostore init --db ./results.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := rootOpts.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			return reportDatabase(rootOpts, cmd, "Initialized", st.Path())
		},
	}

	return cmd
}

// NewDropCommand creates the drop command.
func NewDropCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drop",
		Short: "Remove every stored file and recreate empty tables",
		Long: `Drop both tables with every stored record, then create them again
empty. The database file itself is kept.

Examples:
  esostore drop --db ./results.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := rootOpts.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.DropTables(cmd.Context()); err != nil {
				return WrapExitError(ExitCommandError, "failed to drop tables", err)
			}
			if err := st.CreateTables(cmd.Context()); err != nil {
				return WrapExitError(ExitCommandError, "failed to create tables", err)
			}
			return reportDatabase(rootOpts, cmd, "Dropped", st.Path())
		},
	}

	return cmd
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete the database file",
		Long: `Delete the database file along with its WAL and shared-memory files.

Examples:
  esostore delete --db ./results.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := rootOpts.openStore()
			if err != nil {
				return err
			}

			path := st.Path()
			if err := st.DeleteDB(); err != nil {
				return WrapExitError(ExitCommandError, "failed to delete database", err)
			}
			return reportDatabase(rootOpts, cmd, "Deleted", path)
		},
	}

	return cmd
}

// reportDatabase prints the outcome of a database lifecycle command.
func reportDatabase(opts *RootOptions, cmd *cobra.Command, action, path string) error {
	formatter := newFormatter(opts, cmd)
	if opts.Format == "json" {
		return formatter.Success(map[string]string{"action": strings.ToLower(action), "path": path})
	}
	return formatter.Success(fmt.Sprintf("%s database %s", action, path))
}
