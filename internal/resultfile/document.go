package resultfile

import (
	"fmt"
	"slices"
	"time"

	"github.com/voightp/esofile-storage/internal/ir"
)

// Document is the decoded content of one result-file document.
type Document struct {
	Name      string     `yaml:"name"`
	Path      string     `yaml:"path,omitempty"`
	Timestamp time.Time  `yaml:"timestamp"`
	Complete  bool       `yaml:"complete"`
	Intervals []Interval `yaml:"intervals"`
}

// Interval is the table of variables sampled at one interval.
type Interval struct {
	Interval  string     `yaml:"interval"`
	Variables []Variable `yaml:"variables"`
}

// Variable is one time series of an interval table.
type Variable struct {
	ID       int64   `yaml:"id"`
	Key      string  `yaml:"key"`
	Variable string  `yaml:"variable"`
	Units    string  `yaml:"units"`
	Values   Samples `yaml:"values"`
}

// Samples are the successive values of a variable.
type Samples []ir.Value

// File adapts a Document to ir.ResultFile.
type File struct {
	doc    *Document
	source string
}

var _ ir.ResultFile = (*File)(nil)

// NewFile wraps doc. source is the file it came from and stands in for
// the result path when the document has none.
func NewFile(doc *Document, source string) *File {
	return &File{doc: doc, source: source}
}

// Document returns the wrapped document.
func (f *File) Document() *Document { return f.doc }

// Source returns the file the document was loaded from.
func (f *File) Source() string { return f.source }

func (f *File) Path() string {
	if f.doc.Path != "" {
		return f.doc.Path
	}
	return f.source
}

func (f *File) Name() string         { return f.doc.Name }
func (f *File) Timestamp() time.Time { return f.doc.Timestamp }
func (f *File) Complete() bool       { return f.doc.Complete }

// Intervals returns the interval names in document order.
func (f *File) Intervals() []string {
	names := make([]string, len(f.doc.Intervals))
	for i, iv := range f.doc.Intervals {
		names[i] = iv.Interval
	}
	return names
}

// Table builds the reader-side table of interval.
func (f *File) Table(interval string) (ir.IntervalTable, error) {
	i := slices.IndexFunc(f.doc.Intervals, func(iv Interval) bool { return iv.Interval == interval })
	if i < 0 {
		return ir.IntervalTable{}, fmt.Errorf("%s: no %q interval", f.doc.Name, interval)
	}

	iv := f.doc.Intervals[i]
	rows := make([]ir.Row, len(iv.Variables))
	for j, v := range iv.Variables {
		rows[j] = ir.Row{
			Index: ir.VariableID{
				VarID: v.ID,
				Descriptor: ir.Descriptor{
					Interval: interval,
					Key:      v.Key,
					Variable: v.Variable,
					Units:    v.Units,
				},
			},
			Values: []ir.Value(v.Values),
		}
	}
	return ir.IntervalTable{Interval: interval, Rows: rows}, nil
}

// FromTables rebuilds a document from a stored file and its decoded
// per-interval tables. Intervals are sorted by name; samples become floats.
func FromTables(rec ir.FileRecord, tables map[string]*ir.Table) *Document {
	doc := &Document{
		Name:      rec.Name,
		Path:      rec.Path,
		Timestamp: rec.Timestamp,
		Complete:  rec.Complete,
		Intervals: []Interval{},
	}

	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		t := tables[name]
		iv := Interval{Interval: name, Variables: make([]Variable, t.NumColumns())}
		for j, col := range t.Columns {
			samples := make(Samples, t.NumRows())
			for i, x := range t.Column(j) {
				samples[i] = ir.Float(x)
			}
			iv.Variables[j] = Variable{
				ID:       col.VarID,
				Key:      col.Key,
				Variable: col.Variable,
				Units:    col.Units,
				Values:   samples,
			}
		}
		doc.Intervals = append(doc.Intervals, iv)
	}

	return doc
}
