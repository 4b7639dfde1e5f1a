package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/voightp/esofile-storage/internal/ir"
)

// NewFileCommand creates the file command.
func NewFileCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "file <name>",
		Short: "Show the metadata of a stored file",
		Long: `Show the path, capture timestamp and completeness of a stored file.

Exits with status 1 when no file has the given name.

Examples:
  esostore file run1
  esostore file run1 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFile(rootOpts, cmd, args[0])
		},
	}

	return cmd
}

func runFile(opts *RootOptions, cmd *cobra.Command, name string) error {
	st, err := opts.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	rec, err := st.FetchFile(cmd.Context(), name)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to fetch file", err)
	}

	formatter := newFormatter(opts, cmd)
	if rec == nil {
		msg := fmt.Sprintf("file %q not found", name)
		if opts.Format == "json" {
			if err := formatter.Error(ErrCodeNotFound, msg, nil); err != nil {
				return err
			}
		}
		return NewExitError(ExitFailure, msg)
	}

	if opts.Format == "json" {
		return formatter.Success(rec)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "ID:        %d\n", rec.ID)
	fmt.Fprintf(w, "Name:      %s\n", rec.Name)
	fmt.Fprintf(w, "Path:      %s\n", rec.Path)
	fmt.Fprintf(w, "Timestamp: %s\n", rec.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(w, "Complete:  %t\n", rec.Complete)
	return nil
}

// NewFilesCommand creates the files command.
func NewFilesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files",
		Short: "List stored files",
		Long: `List every stored file in insertion order.

Examples:
  esostore files
  esostore files --db ./results.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFiles(rootOpts, cmd)
		},
	}

	return cmd
}

func runFiles(opts *RootOptions, cmd *cobra.Command) error {
	st, err := opts.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	records, err := st.ListFiles(cmd.Context())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list files", err)
	}

	if opts.Format == "json" {
		return newFormatter(opts, cmd).Success(records)
	}
	outputFilesText(cmd, records)
	return nil
}

func outputFilesText(cmd *cobra.Command, records []ir.FileRecord) {
	w := cmd.OutOrStdout()

	if len(records) == 0 {
		fmt.Fprintln(w, "No files stored.")
		return
	}

	fmt.Fprintln(w, "ID\tNAME\tTIMESTAMP\tCOMPLETE\tPATH")
	for _, r := range records {
		fmt.Fprintf(w, "%d\t%s\t%s\t%t\t%s\n",
			r.ID, r.Name, r.Timestamp.Format(time.RFC3339), r.Complete, r.Path)
	}
}
