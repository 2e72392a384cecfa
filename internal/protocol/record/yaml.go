package record

import (
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrNotMapping = errors.New("record: document is not a mapping")

// LoadFile reads a YAML or JSON record document from path.
func LoadFile(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("record load failed (%s): %w", path, err)
	}
	r, err := ParseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("record parse failed (%s): %w", path, err)
	}
	return r, nil
}

// ParseYAML decodes a YAML (or JSON) mapping into a record, keeping the
// document's key order.
//
// Scalars keep their YAML type: strings, int64, float64, bool and nil.
// Integers above the int64 range decode as uint64.
// !!binary scalars and sequences of integers in 0..255 become []byte. Other
// sequences become []any and nested mappings become *Record; the codec
// rejects both at encode time.
func ParseYAML(data []byte) (*Record, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 {
		return New(), nil
	}
	node := &doc
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return New(), nil
		}
		node = node.Content[0]
	}
	return fromMapping(node)
}

func fromMapping(node *yaml.Node) (*Record, error) {
	node = resolveAlias(node)
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return New(), nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, ErrNotMapping
	}
	r := New()
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i]
		if key.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("record: line %d: field name must be a scalar", key.Line)
		}
		if r.Has(key.Value) {
			return nil, fmt.Errorf("record: line %d: duplicate field %q", key.Line, key.Value)
		}
		v, err := fromNode(node.Content[i+1])
		if err != nil {
			return nil, fmt.Errorf("record: field %q: %w", key.Value, err)
		}
		r.Set(key.Value, v)
	}
	return r, nil
}

func fromNode(node *yaml.Node) (any, error) {
	node = resolveAlias(node)
	switch node.Kind {
	case yaml.ScalarNode:
		return fromScalar(node)
	case yaml.SequenceNode:
		return fromSequence(node)
	case yaml.MappingNode:
		return fromMapping(node)
	default:
		return nil, fmt.Errorf("line %d: unsupported yaml node kind %d", node.Line, node.Kind)
	}
}

func fromScalar(node *yaml.Node) (any, error) {
	switch node.ShortTag() {
	case "!!str":
		return node.Value, nil
	case "!!int":
		var v int64
		if err := node.Decode(&v); err == nil {
			return v, nil
		}
		var u uint64
		if err := node.Decode(&u); err != nil {
			return nil, fmt.Errorf("line %d: %w", node.Line, err)
		}
		return u, nil
	case "!!float":
		var v float64
		if err := node.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", node.Line, err)
		}
		return v, nil
	case "!!bool":
		var v bool
		if err := node.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", node.Line, err)
		}
		return v, nil
	case "!!null":
		return nil, nil
	case "!!binary":
		clean := strings.Join(strings.Fields(node.Value), "")
		b, err := base64.StdEncoding.DecodeString(clean)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid !!binary: %w", node.Line, err)
		}
		return b, nil
	default:
		return node.Value, nil
	}
}

func fromSequence(node *yaml.Node) (any, error) {
	if b, ok := byteSequence(node); ok {
		return b, nil
	}
	out := make([]any, 0, len(node.Content))
	for _, item := range node.Content {
		v, err := fromNode(item)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func byteSequence(node *yaml.Node) ([]byte, bool) {
	out := make([]byte, 0, len(node.Content))
	for _, item := range node.Content {
		item = resolveAlias(item)
		if item.Kind != yaml.ScalarNode || item.ShortTag() != "!!int" {
			return nil, false
		}
		var v int64
		if err := item.Decode(&v); err != nil || v < 0 || v > math.MaxUint8 {
			return nil, false
		}
		out = append(out, byte(v))
	}
	return out, true
}

func resolveAlias(node *yaml.Node) *yaml.Node {
	for node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}

// MarshalYAML renders the record as an ordered mapping. Byte slices are
// emitted as !!binary scalars.
func (r *Record) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	var err error
	r.Range(func(name string, v any) bool {
		var vn *yaml.Node
		if vn, err = toNode(v); err != nil {
			err = fmt.Errorf("record: field %q: %w", name, err)
			return false
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name},
			vn,
		)
		return true
	})
	if err != nil {
		return nil, err
	}
	return node, nil
}

func toNode(v any) (*yaml.Node, error) {
	switch t := v.(type) {
	case string:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: t}, nil
	case int32:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(int64(t), 10)}, nil
	case []byte:
		return &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!!binary",
			Value: base64.StdEncoding.EncodeToString(t),
		}, nil
	default:
		n := &yaml.Node{}
		if err := n.Encode(v); err != nil {
			return nil, err
		}
		return n, nil
	}
}
