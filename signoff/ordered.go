// ABOUTME: OrderedMap keeps string-keyed entries in first-insertion order for grouping results.
// ABOUTME: Marshals to JSON objects and YAML mappings in that order so exports are reproducible.
package signoff

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// OrderedMap is a string-keyed map that remembers the order keys were first
// set in. Updating an existing key keeps its position.
type OrderedMap[V any] struct {
	data map[string]V
	keys []string
}

// NewOrderedMap creates an empty OrderedMap.
func NewOrderedMap[V any]() *OrderedMap[V] {
	return &OrderedMap[V]{data: make(map[string]V)}
}

// Set inserts or updates a value.
func (m *OrderedMap[V]) Set(key string, val V) {
	if _, exists := m.data[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.data[key] = val
}

// Get retrieves a value by key.
func (m *OrderedMap[V]) Get(key string) (V, bool) {
	v, ok := m.data[key]
	return v, ok
}

// Len returns the number of entries.
func (m *OrderedMap[V]) Len() int {
	return len(m.keys)
}

// Keys returns the keys in insertion order.
func (m *OrderedMap[V]) Keys() []string {
	result := make([]string, len(m.keys))
	copy(result, m.keys)
	return result
}

// Range iterates in insertion order. Return false to stop.
func (m *OrderedMap[V]) Range(fn func(string, V) bool) {
	for _, k := range m.keys {
		if !fn(k, m.data[k]) {
			break
		}
	}
}

// MarshalJSON encodes the map as a JSON object in insertion order.
func (m *OrderedMap[V]) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, k := range m.keys {
		if i > 0 {
			buf = append(buf, ',')
		}
		keyJSON, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		valJSON, err := json.Marshal(m.data[k])
		if err != nil {
			return nil, err
		}
		buf = append(buf, keyJSON...)
		buf = append(buf, ':')
		buf = append(buf, valJSON...)
	}
	buf = append(buf, '}')
	return buf, nil
}

// MarshalYAML encodes the map as a YAML mapping in insertion order.
func (m *OrderedMap[V]) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range m.keys {
		var val yaml.Node
		if err := val.Encode(m.data[k]); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			&val,
		)
	}
	return node, nil
}
