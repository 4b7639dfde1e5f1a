package resultfile

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueyaml "cuelang.org/go/encoding/yaml"

	"github.com/voightp/esofile-storage/internal/ir"
)

//go:embed schema.cue
var schemaSource string

// timestampLayouts are tried in order. Times without a zone are UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Load reads and validates the document at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	return Parse(path, data)
}

// Parse validates and decodes a document. The format follows the file
// extension: .cue for CUE, .yaml, .yml or .json for YAML.
func Parse(filename string, data []byte) (*File, error) {
	ctx := cuecontext.New()

	var v cue.Value
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".cue":
		v = ctx.CompileBytes(data, cue.Filename(filename))
	case ".yaml", ".yml", ".json":
		f, err := cueyaml.Extract(filename, data)
		if err != nil {
			return nil, documentError(filename, err)
		}
		v = ctx.BuildFile(f)
	default:
		return nil, fmt.Errorf("%s: unsupported document format %q", filename, ext)
	}
	if err := v.Err(); err != nil {
		return nil, documentError(filename, err)
	}

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile document schema: %w", err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Document")).Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, documentError(filename, err)
	}

	doc, err := decodeDocument(filename, unified)
	if err != nil {
		return nil, err
	}
	return NewFile(doc, filename), nil
}

// decodeDocument copies a validated CUE value into a Document.
func decodeDocument(file string, v cue.Value) (*Document, error) {
	doc := &Document{Intervals: []Interval{}}

	var err error
	if doc.Name, err = v.LookupPath(cue.ParsePath("name")).String(); err != nil {
		return nil, documentError(file, err)
	}
	if p := v.LookupPath(cue.ParsePath("path")); p.Exists() {
		if doc.Path, err = p.String(); err != nil {
			return nil, documentError(file, err)
		}
	}

	ts, err := v.LookupPath(cue.ParsePath("timestamp")).String()
	if err != nil {
		return nil, documentError(file, err)
	}
	if doc.Timestamp, err = parseTimestamp(ts); err != nil {
		return nil, invalidf(file, "timestamp %q: %v", ts, err)
	}

	complete, _ := v.LookupPath(cue.ParsePath("complete")).Default()
	if doc.Complete, err = complete.Bool(); err != nil {
		return nil, documentError(file, err)
	}

	intervals, err := v.LookupPath(cue.ParsePath("intervals")).List()
	if err != nil {
		return nil, documentError(file, err)
	}
	seen := make(map[string]bool)
	for intervals.Next() {
		iv, err := decodeInterval(file, intervals.Value())
		if err != nil {
			return nil, err
		}
		if seen[iv.Interval] {
			return nil, invalidf(file, "interval %q appears more than once", iv.Interval)
		}
		seen[iv.Interval] = true
		doc.Intervals = append(doc.Intervals, iv)
	}

	return doc, nil
}

func decodeInterval(file string, v cue.Value) (Interval, error) {
	name, err := v.LookupPath(cue.ParsePath("interval")).String()
	if err != nil {
		return Interval{}, documentError(file, err)
	}
	iv := Interval{Interval: name, Variables: []Variable{}}

	vars, err := v.LookupPath(cue.ParsePath("variables")).List()
	if err != nil {
		return Interval{}, documentError(file, err)
	}
	for vars.Next() {
		variable, err := decodeVariable(file, vars.Value())
		if err != nil {
			return Interval{}, err
		}
		iv.Variables = append(iv.Variables, variable)
	}
	return iv, nil
}

func decodeVariable(file string, v cue.Value) (Variable, error) {
	var (
		out Variable
		err error
	)
	if out.ID, err = v.LookupPath(cue.ParsePath("id")).Int64(); err != nil {
		return Variable{}, documentError(file, err)
	}
	for _, field := range []struct {
		name string
		dst  *string
	}{
		{"key", &out.Key},
		{"variable", &out.Variable},
		{"units", &out.Units},
	} {
		if *field.dst, err = v.LookupPath(cue.ParsePath(field.name)).String(); err != nil {
			return Variable{}, documentError(file, err)
		}
	}

	samples, err := v.LookupPath(cue.ParsePath("values")).List()
	if err != nil {
		return Variable{}, documentError(file, err)
	}
	out.Values = Samples{}
	for samples.Next() {
		s, err := decodeSample(samples.Value())
		if err != nil {
			return Variable{}, documentError(file, err)
		}
		out.Values = append(out.Values, s)
	}
	return out, nil
}

// decodeSample keeps the literal kind of a sample.
func decodeSample(v cue.Value) (ir.Value, error) {
	switch v.Kind() {
	case cue.IntKind:
		n, err := v.Int64()
		return ir.Int(n), err
	case cue.FloatKind:
		f, err := v.Float64()
		return ir.Float(f), err
	case cue.StringKind:
		s, err := v.String()
		return ir.Text(s), err
	default:
		return nil, fmt.Errorf("unsupported sample kind %s", v.Kind())
	}
}

func parseTimestamp(s string) (time.Time, error) {
	var firstErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}
