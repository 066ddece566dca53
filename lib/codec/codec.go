// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"
)

// Format names as stored in the record head.
const (
	YAML = "yaml"
	CBOR = "cbor"
)

// Document is an ordered mapping from item keys to metadata trees.
type Document struct {
	Keys   []string
	Values map[string]map[string]any
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{Values: make(map[string]map[string]any)}
}

// Set adds or replaces the tree for key. New keys are appended to the
// key order.
func (d *Document) Set(key string, value map[string]any) {
	if _, exists := d.Values[key]; !exists {
		d.Keys = append(d.Keys, key)
	}
	d.Values[key] = value
}

// Supported reports whether format names a known encoding.
func Supported(format string) bool {
	return format == YAML || format == CBOR
}

// Encode serializes doc in the named format.
func Encode(format string, doc *Document) ([]byte, error) {
	switch format {
	case YAML:
		return encodeYAML(doc)
	case CBOR:
		return encodeCBOR(doc)
	default:
		return nil, fmt.Errorf("unsupported metadata format %q", format)
	}
}

// Decode parses data written by Encode in the same format.
func Decode(format string, data []byte) (*Document, error) {
	switch format {
	case YAML:
		return decodeYAML(data)
	case CBOR:
		return decodeCBOR(data)
	default:
		return nil, fmt.Errorf("unsupported metadata format %q", format)
	}
}

func encodeYAML(doc *Document) ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, key := range doc.Keys {
		var value yaml.Node
		if err := value.Encode(doc.Values[key]); err != nil {
			return nil, fmt.Errorf("encoding metadata for %q: %w", key, err)
		}
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
			&value,
		)
	}
	data, err := yaml.Marshal(root)
	if err != nil {
		return nil, fmt.Errorf("encoding metadata document: %w", err)
	}
	return data, nil
}

func decodeYAML(data []byte) (*Document, error) {
	doc := NewDocument()

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing yaml metadata: %w", err)
	}
	if root.Kind == 0 {
		return doc, nil
	}
	mapping := &root
	if root.Kind == yaml.DocumentNode && len(root.Content) == 1 {
		mapping = root.Content[0]
	}
	if mapping.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("yaml metadata is not a mapping (line %d)", mapping.Line)
	}

	for i := 0; i+1 < len(mapping.Content); i += 2 {
		keyNode, valueNode := mapping.Content[i], mapping.Content[i+1]
		key := keyNode.Value
		if _, duplicate := doc.Values[key]; duplicate {
			return nil, fmt.Errorf("duplicate key %q in yaml metadata (line %d)", key, keyNode.Line)
		}
		var value map[string]any
		if err := valueNode.Decode(&value); err != nil {
			return nil, fmt.Errorf("parsing metadata for %q: %w", key, err)
		}
		if value == nil {
			value = map[string]any{}
		}
		doc.Set(key, value)
	}
	return doc, nil
}

// encMode uses Core Deterministic Encoding (RFC 8949 §4.2): sorted map
// keys, smallest integer encoding, no indefinite-length items.
var encMode cbor.EncMode

// decMode decodes nested maps as map[string]any rather than CBOR's
// default map[interface{}]interface{}.
var decMode cbor.DecMode

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// cborDocument carries key order explicitly since deterministic
// encoding sorts map keys.
type cborDocument struct {
	Keys  []string                  `cbor:"keys"`
	Items map[string]map[string]any `cbor:"items"`
}

func encodeCBOR(doc *Document) ([]byte, error) {
	items := doc.Values
	if items == nil {
		items = map[string]map[string]any{}
	}
	keys := doc.Keys
	if keys == nil {
		keys = []string{}
	}
	data, err := encMode.Marshal(cborDocument{Keys: keys, Items: items})
	if err != nil {
		return nil, fmt.Errorf("encoding cbor metadata: %w", err)
	}
	return data, nil
}

func decodeCBOR(data []byte) (*Document, error) {
	var raw cborDocument
	if err := decMode.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing cbor metadata: %w", err)
	}
	if len(raw.Keys) != len(raw.Items) {
		return nil, fmt.Errorf("cbor metadata lists %d keys for %d items", len(raw.Keys), len(raw.Items))
	}

	doc := NewDocument()
	for _, key := range raw.Keys {
		value, ok := raw.Items[key]
		if !ok {
			return nil, fmt.Errorf("cbor metadata key %q has no item", key)
		}
		if _, duplicate := doc.Values[key]; duplicate {
			return nil, fmt.Errorf("duplicate key %q in cbor metadata", key)
		}
		if value == nil {
			value = map[string]any{}
		}
		doc.Set(key, value)
	}
	return doc, nil
}
