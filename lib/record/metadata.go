// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package record

import (
	"math"
	"strings"

	"github.com/bureau-foundation/atlasio/lib/compression"
)

// Metadata is the hierarchical key/value description of one item.
// Keys may be dotted paths: Set("data.section", 1) creates the nested
// map "data" if needed. Nested maps are always map[string]any, which
// is what both metadata formats decode to.
type Metadata map[string]any

// Set stores value at a dotted path, creating intermediate maps.
// An intermediate value that is not a map is replaced.
func (m Metadata) Set(path string, value any) {
	if nested, ok := value.(Metadata); ok {
		value = map[string]any(nested)
	}
	parts := strings.Split(path, ".")
	current := map[string]any(m)
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}

// Get returns the value at a dotted path.
func (m Metadata) Get(path string) (any, bool) {
	parts := strings.Split(path, ".")
	current := map[string]any(m)
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			return nil, false
		}
		current = next
	}
	value, ok := current[parts[len(parts)-1]]
	return value, ok
}

// Has reports whether a value exists at a dotted path.
func (m Metadata) Has(path string) bool {
	_, ok := m.Get(path)
	return ok
}

// Delete removes the value at a dotted path, if present.
func (m Metadata) Delete(path string) {
	parts := strings.Split(path, ".")
	current := map[string]any(m)
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			return
		}
		current = next
	}
	delete(current, parts[len(parts)-1])
}

// GetString returns the string at path.
func (m Metadata) GetString(path string) (string, bool) {
	value, ok := m.Get(path)
	if !ok {
		return "", false
	}
	s, ok := value.(string)
	return s, ok
}

// GetInt returns the integer at path. YAML decodes integers as int,
// CBOR as int64 or uint64, and hand-built metadata may hold any Go
// integer type; all of them are accepted, as are integral floats.
func (m Metadata) GetInt(path string) (int64, bool) {
	value, ok := m.Get(path)
	if !ok {
		return 0, false
	}
	return toInt64(value)
}

// GetInts returns the integer list at path.
func (m Metadata) GetInts(path string) ([]int64, bool) {
	value, ok := m.Get(path)
	if !ok {
		return nil, false
	}
	var list []any
	switch typed := value.(type) {
	case []any:
		list = typed
	case []int:
		result := make([]int64, len(typed))
		for i, v := range typed {
			result[i] = int64(v)
		}
		return result, true
	case []int64:
		return append([]int64(nil), typed...), true
	default:
		return nil, false
	}
	result := make([]int64, len(list))
	for i, element := range list {
		n, ok := toInt64(element)
		if !ok {
			return nil, false
		}
		result[i] = n
	}
	return result, true
}

func toInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return int64(v), true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		if v > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int64(v), true
	default:
		return 0, false
	}
}

// Type returns the "type" entry, e.g. "scalar", "string" or "array".
func (m Metadata) Type() string {
	s, _ := m.GetString("type")
	return s
}

// DataType returns the "datatype" entry, e.g. "int32" or "real64".
func (m Metadata) DataType() string {
	s, _ := m.GetString("datatype")
	return s
}

// Link returns the item URI this item refers to, or "" when the item
// is not a link.
func (m Metadata) Link() string {
	s, _ := m.GetString("link")
	return s
}

// IsLink reports whether the item refers to an item in another record.
func (m Metadata) IsLink() bool {
	return m.Link() != ""
}

// DataSection returns the 1-based index of the item's data section,
// or 0 when the item carries no data.
func (m Metadata) DataSection() int {
	n, _ := m.GetInt("data.section")
	return int(n)
}

// DataSize returns the uncompressed size of the item's data.
func (m Metadata) DataSize() int {
	n, _ := m.GetInt("data.size")
	return int(n)
}

// Compression returns the algorithm the item's data section is stored
// with. Absent means compression.None.
func (m Metadata) Compression() string {
	s, ok := m.GetString("data.compression.type")
	if !ok || s == "" {
		return compression.None
	}
	return s
}

// Compressed reports whether the data section is stored compressed.
func (m Metadata) Compressed() bool {
	return m.Compression() != compression.None
}

// Shape returns the array shape, or nil when absent.
func (m Metadata) Shape() []int {
	values, ok := m.GetInts("shape")
	if !ok {
		return nil
	}
	shape := make([]int, len(values))
	for i, v := range values {
		shape[i] = int(v)
	}
	return shape
}

// Clone returns a deep copy. Nested maps and slices are copied; leaf
// values are shared.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	return Metadata(cloneMap(m))
}

func cloneMap(source map[string]any) map[string]any {
	result := make(map[string]any, len(source))
	for key, value := range source {
		result[key] = cloneValue(value)
	}
	return result
}

func cloneValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return cloneMap(v)
	case Metadata:
		return cloneMap(v)
	case []any:
		result := make([]any, len(v))
		for i, element := range v {
			result[i] = cloneValue(element)
		}
		return result
	default:
		return value
	}
}

// mergeLinked returns the metadata of a followed link: the linked
// item's metadata, with "link" recording the URI that was followed.
func (m Metadata) mergeLinked(linked Metadata) Metadata {
	result := linked.Clone()
	if result == nil {
		result = make(Metadata)
	}
	result["link"] = m.Link()
	return result
}
