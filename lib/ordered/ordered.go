// Package ordered decodes JSON objects without losing member order.
//
// Catalog documents and hypervisor network state are JSON objects whose
// member order is meaningful to kc2's callers, which Go maps cannot keep.
package ordered

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Member is one key/value pair of a JSON object.
type Member[V any] struct {
	Key   string
	Value V
}

// Map is a JSON object decoded into its members in document order.
// A JSON null decodes to a nil Map.
type Map[V any] []Member[V]

// UnmarshalJSON walks the object token by token so members keep the order
// they were written in.
func (m *Map[V]) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*m = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected a JSON object, got %v", tok)
	}

	out := Map[V]{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected an object key, got %v", tok)
		}
		var v V
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("member %q: %w", key, err)
		}
		out = append(out, Member[V]{Key: key, Value: v})
	}

	// Closing brace.
	if _, err := dec.Token(); err != nil {
		return err
	}
	*m = out
	return nil
}

// MarshalJSON writes the members back as an object in the same order.
func (m Map[V]) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, member := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(member.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(member.Value)
		if err != nil {
			return nil, fmt.Errorf("member %q: %w", member.Key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
