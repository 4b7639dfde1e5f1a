package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/voightp/esofile-storage/internal/resultfile"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Output string
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Export a stored file as a YAML document",
		Long: `Export a stored file as a result-file YAML document that the store
command accepts again. Samples are written as floats.

Examples:
  esostore export run1
  esostore export run1 -o run1.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, cmd, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file (default stdout)")

	return cmd
}

func runExport(opts *ExportOptions, cmd *cobra.Command, name string) error {
	st, err := opts.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	rec, err := st.FetchFile(cmd.Context(), name)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to fetch file", err)
	}
	if rec == nil {
		return NewExitError(ExitFailure, fmt.Sprintf("file %q not found", name))
	}

	tables, err := st.FetchByInterval(cmd.Context(), name)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to fetch variables", err)
	}
	doc := resultfile.FromTables(*rec, tables)

	if opts.Output == "" {
		if err := resultfile.Write(cmd.OutOrStdout(), doc); err != nil {
			return WrapExitError(ExitCommandError, "failed to write document", err)
		}
		return nil
	}

	f, err := os.Create(opts.Output)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create output file", err)
	}
	if err := writeAndClose(f, doc); err != nil {
		return err
	}

	newFormatter(opts.RootOptions, cmd).VerboseLog("Exported %s to %s", name, opts.Output)
	return nil
}

// writeAndClose writes doc to wc and closes it. A failed close is reported
// since the document may not have reached disk.
func writeAndClose(wc io.WriteCloser, doc *resultfile.Document) error {
	if err := resultfile.Write(wc, doc); err != nil {
		wc.Close()
		return WrapExitError(ExitCommandError, "failed to write document", err)
	}
	if err := wc.Close(); err != nil {
		return WrapExitError(ExitCommandError, "failed to close output file", err)
	}
	return nil
}
