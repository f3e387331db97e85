package document

import (
	"bytes"
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Object is a JSON object that remembers the order its keys appeared in.
// Nested objects are *Object, arrays are []any and scalars are whatever
// encoding/json produces for them (string, float64, bool, nil). A number too
// large for float64 is kept as json.Number.
type Object = orderedmap.OrderedMap[string, any]

// New returns an empty document.
func New() *Object {
	return orderedmap.New[string, any]()
}

// Decode parses data into an ordered document. The top-level value must be
// a JSON object.
func Decode(data []byte) (*Object, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("document must be a JSON object")
	}
	if !json.Valid(trimmed) {
		return nil, fmt.Errorf("document is not valid JSON")
	}

	v, err := decodeValue(trimmed)
	if err != nil {
		return nil, err
	}
	return v.(*Object), nil
}

func decodeValue(raw []byte) (any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty JSON value")
	}

	switch raw[0] {
	case '{':
		fields := orderedmap.New[string, json.RawMessage]()
		if err := fields.UnmarshalJSON(raw); err != nil {
			return nil, fmt.Errorf("failed to decode object: %w", err)
		}
		obj := New()
		for pair := fields.Oldest(); pair != nil; pair = pair.Next() {
			v, err := decodeValue(pair.Value)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", pair.Key, err)
			}
			obj.Set(pair.Key, v)
		}
		return obj, nil

	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("failed to decode array: %w", err)
		}
		out := make([]any, 0, len(items))
		for i, item := range items {
			v, err := decodeValue(item)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			out = append(out, v)
		}
		return out, nil

	default:
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("failed to decode value: %w", err)
		}
		if n, ok := v.(json.Number); ok {
			return number(n), nil
		}
		return v, nil
	}
}

// number returns n as a float64 when it fits. Numbers outside float64 range
// stay json.Number so only the rule holding them is rejected.
func number(n json.Number) any {
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n
}

// FromMap converts a plain map into a document with keys in the order given
// by keys. It is mostly useful in tests and for in-memory sources.
func FromMap(m map[string]any, keys ...string) *Object {
	obj := New()
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if v, ok := m[k]; ok {
			obj.Set(k, normalize(v))
			seen[k] = true
		}
	}
	for k, v := range m {
		if !seen[k] {
			obj.Set(k, normalize(v))
		}
	}
	return obj
}

func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return FromMap(t)
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = normalize(t[i])
		}
		return out
	default:
		return v
	}
}

// Keys returns the keys of obj in document order.
func Keys(obj *Object) []string {
	if obj == nil {
		return nil
	}
	keys := make([]string, 0, obj.Len())
	for pair := obj.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// IsEmpty reports whether obj has no keys.
func IsEmpty(obj *Object) bool {
	return obj == nil || obj.Len() == 0
}
