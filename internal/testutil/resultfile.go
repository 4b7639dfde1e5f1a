package testutil

import (
	"fmt"
	"time"

	"github.com/voightp/esofile-storage/internal/ir"
)

// ResultFile is an in-memory ir.ResultFile for tests.
//
// Build one with NewResultFile and the Add* methods:
//
//	f := testutil.NewResultFile("run1").
//		AddVariable("hourly", 1, "ZONE1", "Temperature", "C", 20.1, 20.5, 21.0)
type ResultFile struct {
	path      string
	name      string
	timestamp time.Time
	complete  bool
	intervals []string
	tables    map[string][]ir.Row
	failures  map[string]error
}

var _ ir.ResultFile = (*ResultFile)(nil)

// NewResultFile creates a complete, empty file captured at Epoch.
func NewResultFile(name string) *ResultFile {
	return &ResultFile{
		path:      "/sim/" + name + ".eso",
		name:      name,
		timestamp: Epoch,
		complete:  true,
		tables:    make(map[string][]ir.Row),
		failures:  make(map[string]error),
	}
}

// WithPath overrides the file path.
func (f *ResultFile) WithPath(path string) *ResultFile {
	f.path = path
	return f
}

// WithTimestamp overrides the capture timestamp.
func (f *ResultFile) WithTimestamp(ts time.Time) *ResultFile {
	f.timestamp = ts
	return f
}

// Incomplete marks the simulation as not finished.
func (f *ResultFile) Incomplete() *ResultFile {
	f.complete = false
	return f
}

// AddVariable appends a numeric variable to the interval table.
func (f *ResultFile) AddVariable(interval string, varID int64, key, variable, units string, values ...float64) *ResultFile {
	return f.AddRow(interval, ir.Row{
		Index: ir.VariableID{
			VarID:      varID,
			Descriptor: ir.Descriptor{Interval: interval, Key: key, Variable: variable, Units: units},
		},
		Values: ir.Floats(values...),
	})
}

// AddRow appends a raw row to the interval table, creating the interval
// on first use.
func (f *ResultFile) AddRow(interval string, row ir.Row) *ResultFile {
	if _, ok := f.tables[interval]; !ok {
		f.intervals = append(f.intervals, interval)
	}
	f.tables[interval] = append(f.tables[interval], row)
	return f
}

// FailTable makes Table(interval) return err.
func (f *ResultFile) FailTable(interval string, err error) *ResultFile {
	if _, ok := f.tables[interval]; !ok {
		f.intervals = append(f.intervals, interval)
		f.tables[interval] = nil
	}
	f.failures[interval] = err
	return f
}

func (f *ResultFile) Path() string         { return f.path }
func (f *ResultFile) Name() string         { return f.name }
func (f *ResultFile) Timestamp() time.Time { return f.timestamp }
func (f *ResultFile) Complete() bool       { return f.complete }

func (f *ResultFile) Intervals() []string {
	return append([]string(nil), f.intervals...)
}

func (f *ResultFile) Table(interval string) (ir.IntervalTable, error) {
	if err := f.failures[interval]; err != nil {
		return ir.IntervalTable{}, err
	}
	rows, ok := f.tables[interval]
	if !ok {
		return ir.IntervalTable{}, fmt.Errorf("no %s table in %s", interval, f.name)
	}
	return ir.IntervalTable{Interval: interval, Rows: rows}, nil
}
