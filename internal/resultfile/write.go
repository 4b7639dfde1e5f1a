package resultfile

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/voightp/esofile-storage/internal/ir"
)

// Write encodes doc as YAML.
func Write(w io.Writer, doc *Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	return enc.Close()
}

// MarshalYAML writes samples as a flow sequence. Each sample keeps its
// kind: floats always carry a fraction or exponent and text is quoted when
// it would otherwise read back as a number.
func (s Samples) MarshalYAML() (any, error) {
	seq := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for i, v := range s {
		node, err := sampleNode(v)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		seq.Content = append(seq.Content, node)
	}
	return seq, nil
}

func sampleNode(v ir.Value) (*yaml.Node, error) {
	switch x := v.(type) {
	case ir.Float:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: yamlFloat(float64(x))}, nil
	case ir.Int:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: x.String()}, nil
	case ir.Text:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: x.String()}, nil
	default:
		return nil, fmt.Errorf("unsupported sample type %T", v)
	}
}

func yamlFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}
