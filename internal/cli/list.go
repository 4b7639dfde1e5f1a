package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/voightp/esofile-storage/internal/ir"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Variables []string
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list <file>",
		Short: "List the variables of a stored file",
		Long: `List the variables of a stored file without decoding their samples.

Takes the same --variable selectors as fetch.

Examples:
  esostore list run1
  esostore list run1 -V "hourly/ZONE1"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd, args[0])
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Variables, "variable", "V", nil, "variable descriptor interval/key/variable/units (repeatable)")

	return cmd
}

func runList(opts *ListOptions, cmd *cobra.Command, fileName string) error {
	descriptors, err := parseDescriptors(opts.Variables)
	if err != nil {
		return err
	}

	st, err := opts.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	records, err := st.FetchVariables(cmd.Context(), fileName, descriptors...)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list variables", err)
	}

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), CLIResponse{Status: "ok", Data: records})
	}
	outputListText(cmd, records)
	return nil
}

func outputListText(cmd *cobra.Command, records []ir.VariableRecord) {
	w := cmd.OutOrStdout()

	if len(records) == 0 {
		fmt.Fprintln(w, "No variables matched.")
		return
	}
	for _, r := range records {
		fmt.Fprintf(w, "%d\t%s\n", r.VarID, r.Descriptor)
	}
}
