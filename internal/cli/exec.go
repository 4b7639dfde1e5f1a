package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/voightp/esofile-storage/internal/store"
)

// NewExecCommand creates the exec command.
func NewExecCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exec <sql>",
		Short: "Run a raw SQL statement",
		Long: `Run one SQL statement against the database and print any rows it
returns. Database errors are reported as they are.

Examples:
  esostore exec "SELECT name, timestamp FROM files"
  esostore exec "SELECT COUNT(*) FROM variables" --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(rootOpts, cmd, args[0])
		},
	}

	return cmd
}

func runExec(opts *RootOptions, cmd *cobra.Command, statement string) error {
	st, err := opts.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	result, err := st.ExecuteStatement(cmd.Context(), statement)
	if err != nil {
		if opts.Format == "json" {
			details := map[string]string{"sql": statement}
			if ferr := newFormatter(opts, cmd).Error(ErrCodeStatement, err.Error(), details); ferr != nil {
				return ferr
			}
		}
		return WrapExitError(ExitCommandError, "statement failed", err)
	}

	if opts.Format == "json" {
		return newFormatter(opts, cmd).Success(result)
	}
	outputExecText(cmd, result)
	return nil
}

func outputExecText(cmd *cobra.Command, result *store.StatementResult) {
	w := cmd.OutOrStdout()

	if len(result.Columns) == 0 {
		fmt.Fprintln(w, "OK")
		return
	}

	fmt.Fprintln(w, strings.Join(result.Columns, "\t"))
	cells := make([]string, len(result.Columns))
	for _, row := range result.Rows {
		for i, v := range row {
			if v == nil {
				cells[i] = "NULL"
				continue
			}
			cells[i] = fmt.Sprint(v)
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
}
