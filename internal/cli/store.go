package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/voightp/esofile-storage/internal/ir"
	"github.com/voightp/esofile-storage/internal/resultfile"
	"github.com/voightp/esofile-storage/internal/store"
)

// StoreOptions holds flags for the store command.
type StoreOptions struct {
	*RootOptions
}

// StoreResult is the outcome of one store invocation.
type StoreResult struct {
	BatchID string             `json:"batch_id"`
	Stored  []store.StoredFile `json:"stored"`
	Failed  []FailedFile       `json:"failed"`
}

// FailedFile is a document that was not stored, either because it could
// not be loaded or because the store rejected it.
type FailedFile struct {
	Source string `json:"source"`
	Name   string `json:"name,omitempty"`
	Error  string `json:"error"`
}

// NewStoreCommand creates the store command.
func NewStoreCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StoreOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "store <document>...",
		Short: "Store result-file documents",
		Long: `Load result-file documents and store each one in the database.

Documents are CUE (.cue), YAML (.yaml, .yml) or JSON (.json). Each document
is stored in its own transaction: a document that fails to load, or whose
name is already stored, is reported and skipped while the rest are stored.

Exits with status 1 when any document was not stored.

Examples:
  esostore store run1.yaml run2.yaml
  esostore store --db ./results.db --format json run1.cue`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStore(opts, cmd, args)
		},
	}

	return cmd
}

func runStore(opts *StoreOptions, cmd *cobra.Command, args []string) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	result := StoreResult{
		Stored: []store.StoredFile{},
		Failed: []FailedFile{},
	}

	// Load documents first; load failures are reported like store failures
	files := make([]ir.ResultFile, 0, len(args))
	sources := make(map[string]string, len(args))
	for _, path := range args {
		formatter.VerboseLog("Loading %s", path)
		f, err := resultfile.Load(path)
		if err != nil {
			result.Failed = append(result.Failed, FailedFile{Source: path, Error: err.Error()})
			opts.Logger.Warn("document not loaded", "source", path, "error", err)
			continue
		}
		files = append(files, f)
		sources[f.Name()] = path
	}

	st, err := opts.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	report, err := st.Store(cmd.Context(), files...)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to store documents", err)
	}

	result.BatchID = report.BatchID
	result.Stored = append(result.Stored, report.Stored...)
	for _, failure := range report.Failed {
		result.Failed = append(result.Failed, FailedFile{
			Source: sources[failure.Name],
			Name:   failure.Name,
			Error:  failure.Err.Error(),
		})
	}

	if opts.Format == "json" {
		if err := writeJSON(cmd.OutOrStdout(), CLIResponse{Status: "ok", Data: result}); err != nil {
			return err
		}
	} else {
		outputStoreText(cmd, result)
	}

	if len(result.Failed) > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d documents not stored", len(result.Failed), len(args)))
	}
	return nil
}

func outputStoreText(cmd *cobra.Command, result StoreResult) {
	w := cmd.OutOrStdout()

	for _, f := range result.Stored {
		fmt.Fprintf(w, "Stored %s (%d variables)\n", f.Name, f.Variables)
	}
	for _, f := range result.Failed {
		fmt.Fprintf(w, "Failed %s: %s\n", f.Source, f.Error)
	}
	fmt.Fprintf(w, "%d stored, %d failed\n", len(result.Stored), len(result.Failed))
}
