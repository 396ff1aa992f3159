package format

import (
	"bytes"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/roach88/factorydata/internal/tlv"
)

// ParseYAML parses a flat YAML mapping into pairs, keeping key order.
// Scalars are kept as their source text; an empty document has no pairs.
func ParseYAML(data []byte) ([]Pair, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: top level must be a mapping", root.Line)
	}

	pairs := make([]Pair, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		if key.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: mapping keys must be scalars", key.Line)
		}
		pairs = append(pairs, Pair{Name: key.Value, Value: yamlValue(val)})
	}
	return pairs, nil
}

// yamlValue converts a value node to the loose form the codec accepts.
// Nested mappings and nulls come back as values the codec rejects.
func yamlValue(n *yaml.Node) any {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return nil
		}
		return n.Value
	case yaml.SequenceNode:
		items := make([]any, len(n.Content))
		for i, item := range n.Content {
			items[i] = yamlValue(item)
		}
		return items
	case yaml.AliasNode:
		return yamlValue(n.Alias)
	default:
		return map[string]any{}
	}
}

// ReadYAML parses a YAML document from r and applies it to the store.
func ReadYAML(r io.Reader, store *tlv.Store, actor string) ([]tlv.Event, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	pairs, err := ParseYAML(data)
	if err != nil {
		return nil, &FormatError{Source: actor, Err: err}
	}
	return Apply(store, pairs, actor), nil
}

// LoadYAMLFile reads a YAML document from path and applies it to the store.
func LoadYAMLFile(path string, store *tlv.Store, actor string) ([]tlv.Event, error) {
	data, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	pairs, err := ParseYAML(data)
	if err != nil {
		return nil, &FormatError{Source: path, Err: err}
	}
	return Apply(store, pairs, actor), nil
}

// MarshalYAML renders a snapshot as an ordered YAML mapping. Integer values
// are quoted so they read back as the same decimal strings.
func MarshalYAML(entries []tlv.Entry) ([]byte, error) {
	values, err := documentValues(entries)
	if err != nil {
		return nil, err
	}

	root := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for i, v := range values {
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.Name}
		var val *yaml.Node
		switch x := v.Value.(type) {
		case []string:
			val = &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
			for _, tok := range x {
				val.Content = append(val.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: tok})
			}
		case string:
			val = &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: x}
			if entries[i].Kind.IsInteger() {
				val.Style = yaml.DoubleQuotedStyle
			}
		default:
			return nil, fmt.Errorf("%s: unexpected value type %T", v.Name, v.Value)
		}
		root.Content = append(root.Content, key, val)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}}); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteYAML writes the snapshot to w as a YAML document.
func WriteYAML(w io.Writer, entries []tlv.Entry) error {
	data, err := MarshalYAML(entries)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// SaveYAMLFile writes the snapshot to path atomically.
func SaveYAMLFile(path string, entries []tlv.Entry) error {
	data, err := MarshalYAML(entries)
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return WriteFileAtomic(path, data)
}
