package store

import (
	"sort"
)

// Snapshot is an immutable view of the value at a path. Value holds
// map[string]any for objects and json.Number for numbers.
type Snapshot struct {
	Key   string
	Value any
}

func (s Snapshot) Exists() bool {
	return s.Value != nil
}

func (s Snapshot) Map() (map[string]any, bool) {
	m, ok := s.Value.(map[string]any)
	return m, ok
}

func (s Snapshot) Child(path string) Snapshot {
	parts, err := Split(path)
	if err != nil || len(parts) == 0 {
		return Snapshot{Key: s.Key, Value: s.Value}
	}
	v, _ := getAt(s.Value, parts)
	return Snapshot{Key: parts[len(parts)-1], Value: v}
}

// Children returns the direct children ordered by key.
func (s Snapshot) Children() []Snapshot {
	m, ok := s.Map()
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Snapshot, 0, len(keys))
	for _, k := range keys {
		out = append(out, Snapshot{Key: k, Value: m[k]})
	}
	return out
}

func (s Snapshot) String() string {
	v, _ := s.Value.(string)
	return v
}
