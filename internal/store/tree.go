package store

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Normalize converts an arbitrary Go value into the tree representation by
// round-tripping it through JSON. The result never aliases the input.
func Normalize(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	b, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode value: %w", err)
	}
	return DecodeJSON(b)
}

func DecodeJSON(b []byte) (any, error) {
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode value: %w", err)
	}
	return prune(out), nil
}

func getAt(node any, parts []string) (any, bool) {
	cur := node
	for _, p := range parts {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[p]
		if !ok {
			return nil, false
		}
	}
	return cur, cur != nil
}

// SetAt returns node with the value at parts replaced. A nil value removes
// the entry. Intermediate objects are created as needed.
func SetAt(node any, parts []string, value any) any {
	if len(parts) == 0 {
		return value
	}
	m, ok := node.(map[string]any)
	if !ok {
		if value == nil {
			return node
		}
		m = map[string]any{}
	}
	head := parts[0]
	if len(parts) == 1 {
		if value == nil {
			delete(m, head)
		} else {
			m[head] = value
		}
		return m
	}
	child := SetAt(m[head], parts[1:], value)
	if child == nil {
		delete(m, head)
	} else {
		m[head] = child
	}
	return m
}

// GetAt exposes the tree walk for backends that store documents.
func GetAt(node any, parts []string) (any, bool) {
	return getAt(node, parts)
}

// prune drops explicit nulls, which the tree treats as absence.
func prune(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, c := range t {
			if c == nil {
				delete(t, k)
				continue
			}
			t[k] = prune(c)
		}
		return t
	case []any:
		for i := range t {
			t[i] = prune(t[i])
		}
		return t
	default:
		return v
	}
}

// Clone deep-copies a tree value so callers cannot mutate stored state.
func Clone(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, c := range t {
			out[k] = Clone(c)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, c := range t {
			out[i] = Clone(c)
		}
		return out
	default:
		return v
	}
}
