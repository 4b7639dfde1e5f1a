package cli

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/voightp/esofile-storage/internal/ir"
)

// FetchOptions holds flags for the fetch command.
type FetchOptions struct {
	*RootOptions
	Variables  []string
	ByInterval bool
}

// TableOutput is the JSON form of a decoded table. Samples that JSON cannot
// carry (NaN, infinities) are null.
type TableOutput struct {
	Columns []ir.VariableID `json:"columns"`
	Rows    [][]*float64    `json:"rows"`
}

// NewFetchCommand creates the fetch command.
func NewFetchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FetchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "fetch <file>",
		Short: "Fetch variable samples as a table",
		Long: `Fetch the samples of the variables of a stored file as one table.

Variables are selected with --variable in interval/key/variable/units form.
Empty segments and "*" match anything; without --variable every variable of
the file is returned. Columns follow the order of the --variable flags.

Variables from intervals with different sample counts cannot share a table;
use --by-interval to get one table per interval.

Examples:
  esostore fetch run1 -V "hourly/ZONE1/Zone Mean Air Temperature/C"
  esostore fetch run1 -V "hourly/*/*/C" -V daily
  esostore fetch run1 --by-interval --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(opts, cmd, args[0])
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Variables, "variable", "V", nil, "variable descriptor interval/key/variable/units (repeatable)")
	cmd.Flags().BoolVar(&opts.ByInterval, "by-interval", false, "return one table per interval")

	return cmd
}

func runFetch(opts *FetchOptions, cmd *cobra.Command, fileName string) error {
	descriptors, err := parseDescriptors(opts.Variables)
	if err != nil {
		return err
	}

	st, err := opts.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if opts.ByInterval {
		tables, err := st.FetchByInterval(cmd.Context(), fileName, descriptors...)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to fetch variables", err)
		}
		if opts.Format == "json" {
			out := make(map[string]TableOutput, len(tables))
			for interval, t := range tables {
				out[interval] = tableOutput(t)
			}
			return writeJSON(cmd.OutOrStdout(), CLIResponse{Status: "ok", Data: out})
		}
		outputIntervalsText(cmd.OutOrStdout(), tables)
		return nil
	}

	table, err := st.Fetch(cmd.Context(), fileName, descriptors...)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to fetch variables", err)
	}
	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), CLIResponse{Status: "ok", Data: tableOutput(table)})
	}
	writeTable(cmd.OutOrStdout(), table)
	return nil
}

func tableOutput(t *ir.Table) TableOutput {
	out := TableOutput{
		Columns: append([]ir.VariableID{}, t.Columns...),
		Rows:    make([][]*float64, len(t.Rows)),
	}
	for i, row := range t.Rows {
		vals := make([]*float64, len(row))
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			vals[j] = &v
		}
		out.Rows[i] = vals
	}
	return out
}

// writeTable writes t as tab-separated values under a header of
// descriptors.
func writeTable(w io.Writer, t *ir.Table) {
	if t.Empty() {
		fmt.Fprintln(w, "No variables matched.")
		return
	}

	header := make([]string, len(t.Columns))
	for j, c := range t.Columns {
		header[j] = c.Descriptor.String()
	}
	fmt.Fprintln(w, strings.Join(header, "\t"))

	cells := make([]string, t.NumColumns())
	for _, row := range t.Rows {
		for j, v := range row {
			cells[j] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
}

func outputIntervalsText(w io.Writer, tables map[string]*ir.Table) {
	if len(tables) == 0 {
		fmt.Fprintln(w, "No variables matched.")
		return
	}

	intervals := make([]string, 0, len(tables))
	for interval := range tables {
		intervals = append(intervals, interval)
	}
	sort.Strings(intervals)

	for i, interval := range intervals {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "[%s]\n", interval)
		writeTable(w, tables[interval])
	}
}
