package scheme

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a scheme document from path.
func LoadFile(path string) (*Scheme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scheme load failed (%s): %w", path, err)
	}
	s, err := ParseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("scheme parse failed (%s): %w", path, err)
	}
	return s, nil
}

// ParseYAML reads a mapping of field name to type name, in document order:
//
//	name: string
//	age: int32
//	numbers: "[]byte"
//
// JSON objects are accepted as well.
func ParseYAML(data []byte) (*Scheme, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	node := &doc
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	if node.Kind == 0 || (node.Kind == yaml.DocumentNode && len(node.Content) == 0) {
		return New()
	}
	if node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null" {
		return New()
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("scheme: line %d: document must be a mapping of field to type", node.Line)
	}
	fields := make([]Field, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		if key.Kind != yaml.ScalarNode || val.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("scheme: line %d: field and type must be scalars", key.Line)
		}
		tag, err := ParseTypeTag(val.Value)
		if err != nil {
			return nil, fmt.Errorf("scheme: line %d: field %q: %w", val.Line, key.Value, err)
		}
		fields = append(fields, Field{Name: key.Value, Type: tag})
	}
	return New(fields...)
}

// MarshalYAML renders the scheme as an ordered mapping of field to type.
func (s *Scheme) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, f := range s.Fields() {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Name},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Type.String()},
		)
	}
	return node, nil
}

// MarshalJSON writes the scheme as an object of field to type name in scheme
// order, the same document ParseYAML accepts.
func (s *Scheme) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range s.Fields() {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.WriteString(strconv.Quote(f.Type.String()))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
