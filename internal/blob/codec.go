package blob

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/voightp/esofile-storage/internal/ir"
)

// DefaultSeparator joins samples inside a blob.
const DefaultSeparator = "\t"

type config struct {
	sep string
}

// Option customises encoding and decoding.
type Option func(*config)

// WithSeparator sets the sample separator. Default: tab.
func WithSeparator(sep string) Option { return func(c *config) { c.sep = sep } }

func newConfig(opts []Option) (config, error) {
	cfg := config{sep: DefaultSeparator}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.sep == "" {
		return cfg, ErrEmptySeparator
	}
	return cfg, nil
}

// Entry pairs a variable with its blob.
type Entry struct {
	ID   ir.VariableID
	Blob string
}

// EncodeRow joins the canonical text of every value with sep. Empty text is
// rejected so that every sample survives Split.
func EncodeRow(values []ir.Value, sep string) (string, error) {
	if sep == "" {
		return "", ErrEmptySeparator
	}
	parts := make([]string, len(values))
	for i, v := range values {
		s := v.String()
		if s == "" {
			return "", fmt.Errorf("sample %d: %w", i, ErrEmptyValue)
		}
		if strings.Contains(s, sep) {
			return "", fmt.Errorf("sample %d %q: %w", i, s, ErrSeparatorInValue)
		}
		parts[i] = s
	}
	return strings.Join(parts, sep), nil
}

// EncodeEntries encodes every row, keeping row order.
func EncodeEntries(rows []ir.Row, opts ...Option) ([]Entry, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}

	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		s, err := EncodeRow(row.Values, cfg.sep)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", row.Index.Descriptor, err)
		}
		entries = append(entries, Entry{ID: row.Index, Blob: s})
	}
	return entries, nil
}

// Encode returns one blob per row, keyed by the row index.
func Encode(rows []ir.Row, opts ...Option) (map[ir.VariableID]string, error) {
	entries, err := EncodeEntries(rows, opts...)
	if err != nil {
		return nil, err
	}
	out := make(map[ir.VariableID]string, len(entries))
	for _, e := range entries {
		out[e.ID] = e.Blob
	}
	return out, nil
}

// Split returns the tokens of a blob. An empty blob has zero samples.
func Split(blob, sep string) []string {
	if blob == "" {
		return []string{}
	}
	return strings.Split(blob, sep)
}

// Decode rebuilds a numeric table whose columns follow entry order.
//
// Every entry must carry the same number of samples; callers only decode
// together variables sharing a time axis. Returns an empty table for no
// entries.
func Decode(entries []Entry, opts ...Option) (*ir.Table, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if len(entries) == 0 {
		return ir.NewTable(), nil
	}

	tokens := make([][]string, len(entries))
	for j, e := range entries {
		tokens[j] = Split(e.Blob, cfg.sep)
		if want := len(tokens[0]); len(tokens[j]) != want {
			return nil, &MismatchError{ID: e.ID, Got: len(tokens[j]), Want: want}
		}
	}

	nRows := len(tokens[0])
	table := &ir.Table{
		Columns: make([]ir.VariableID, len(entries)),
		Rows:    make([][]float64, nRows),
	}
	for i := range table.Rows {
		table.Rows[i] = make([]float64, len(entries))
	}

	for j, e := range entries {
		table.Columns[j] = e.ID
		for i, tok := range tokens[j] {
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return nil, &ParseError{ID: e.ID, Sample: i, Token: tok, Err: err}
			}
			table.Rows[i][j] = v
		}
	}

	return table, nil
}

// DecodeMap decodes a descriptor-keyed blob mapping.
// Columns are ordered by interval, key, variable, units, then var id.
func DecodeMap(blobs map[ir.VariableID]string, opts ...Option) (*ir.Table, error) {
	entries := make([]Entry, 0, len(blobs))
	for id, b := range blobs {
		entries = append(entries, Entry{ID: id, Blob: b})
	}
	slices.SortFunc(entries, func(a, b Entry) int {
		return compareIDs(a.ID, b.ID)
	})
	return Decode(entries, opts...)
}

// Combine concatenates tables column-wise.
// Empty tables are skipped; the rest must agree on sample count.
func Combine(tables ...*ir.Table) (*ir.Table, error) {
	out := ir.NewTable()
	first := true
	for _, t := range tables {
		if t.Empty() {
			continue
		}
		if first {
			out.Rows = make([][]float64, t.NumRows())
			for i := range out.Rows {
				out.Rows[i] = make([]float64, 0, t.NumColumns())
			}
			first = false
		} else if t.NumRows() != out.NumRows() {
			return nil, &MismatchError{ID: t.Columns[0], Got: t.NumRows(), Want: out.NumRows()}
		}
		out.Columns = append(out.Columns, t.Columns...)
		for i, row := range t.Rows {
			out.Rows[i] = append(out.Rows[i], row...)
		}
	}
	return out, nil
}

func compareIDs(a, b ir.VariableID) int {
	for _, f := range ir.Fields {
		if c := cmp.Compare(a.Get(f), b.Get(f)); c != 0 {
			return c
		}
	}
	return cmp.Compare(a.VarID, b.VarID)
}
