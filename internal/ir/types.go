package ir

import (
	"fmt"
	"strings"
	"time"
)

// Field names one of the four descriptor fields.
// The string value doubles as the column name in the variables table.
type Field string

const (
	FieldInterval Field = "interval"
	FieldKey      Field = "key"
	FieldVariable Field = "variable"
	FieldUnits    Field = "units"
)

// Fields lists descriptor fields in resolution order.
var Fields = []Field{FieldInterval, FieldKey, FieldVariable, FieldUnits}

// Descriptor identifies one variable time series within a file.
//
// When used as a query filter an empty field is a wildcard: it matches every
// value of that field. When describing a stored record all fields are set.
type Descriptor struct {
	Interval string `json:"interval" yaml:"interval"`
	Key      string `json:"key" yaml:"key"`
	Variable string `json:"variable" yaml:"variable"`
	Units    string `json:"units" yaml:"units"`
}

// Wildcard matches every variable of a file.
var Wildcard = Descriptor{}

// NewDescriptor creates a normalised Descriptor.
func NewDescriptor(interval, key, variable, units string) Descriptor {
	return Descriptor{Interval: interval, Key: key, Variable: variable, Units: units}.Normalize()
}

// Get returns the value of field f.
func (d Descriptor) Get(f Field) string {
	switch f {
	case FieldInterval:
		return d.Interval
	case FieldKey:
		return d.Key
	case FieldVariable:
		return d.Variable
	case FieldUnits:
		return d.Units
	default:
		return ""
	}
}

// IsWildcard reports whether field f is unset.
func (d Descriptor) IsWildcard(f Field) bool {
	return d.Get(f) == ""
}

// Constraint is a single field equality produced from a descriptor.
type Constraint struct {
	Field Field
	Value string
}

// Constraints returns one equality per non-wildcard field, in Fields order.
// Wildcard fields are omitted, not compared.
func (d Descriptor) Constraints() []Constraint {
	n := d.Normalize()
	var out []Constraint
	for _, f := range Fields {
		if v := n.Get(f); v != "" {
			out = append(out, Constraint{Field: f, Value: v})
		}
	}
	return out
}

// String renders d as interval/key/variable/units with "*" for wildcards.
func (d Descriptor) String() string {
	parts := make([]string, len(Fields))
	for i, f := range Fields {
		v := d.Get(f)
		if v == "" {
			v = "*"
		}
		parts[i] = v
	}
	return strings.Join(parts, "/")
}

// ParseDescriptor parses the interval/key/variable/units form.
// Empty segments and "*" are wildcards. Fewer than four segments leaves the
// trailing fields unset; more than four is an error.
func ParseDescriptor(s string) (Descriptor, error) {
	if s == "" {
		return Wildcard, nil
	}
	parts := strings.Split(s, "/")
	if len(parts) > len(Fields) {
		return Descriptor{}, fmt.Errorf("descriptor %q: expected at most %d segments, got %d", s, len(Fields), len(parts))
	}
	vals := make([]string, len(Fields))
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "*" {
			p = ""
		}
		vals[i] = p
	}
	return NewDescriptor(vals[0], vals[1], vals[2], vals[3]), nil
}

// VariableID is the full row index of a variable: the reader-assigned var id
// plus its descriptor. var_id is unique within an interval table only.
type VariableID struct {
	VarID int64 `json:"var_id"`
	Descriptor
}

// Row is one reader-side variable: its index and successive samples.
type Row struct {
	Index  VariableID
	Values []Value
}

// IntervalTable holds every variable sampled at one interval.
type IntervalTable struct {
	Interval string
	Rows     []Row
}

// FileRecord is a snapshot of a stored result file.
type FileRecord struct {
	ID        int64     `json:"id"`
	Path      string    `json:"path"`
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp"`
	Complete  bool      `json:"complete"`
}

// VariableRecord is a snapshot of a stored variable row.
type VariableRecord struct {
	ID     int64 `json:"id"`
	VarID  int64 `json:"var_id"`
	FileID int64 `json:"file_id"`
	Descriptor
	Blob string `json:"-"`
}

// Ident returns the record's VariableID.
func (r VariableRecord) Ident() VariableID {
	return VariableID{VarID: r.VarID, Descriptor: r.Descriptor}
}

// ResultFile is the contract the result-file reader satisfies.
// Table is called once per interval returned by Intervals.
type ResultFile interface {
	Path() string
	Name() string
	Timestamp() time.Time
	Complete() bool
	Intervals() []string
	Table(interval string) (IntervalTable, error)
}
