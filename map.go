package typebind

import (
	"fmt"
	"reflect"
	"sort"

	j "github.com/goccy/go-json"
)

// Map is the runtime value of Map<K,V>. Keys are compared by their JSON
// fingerprint, so structured keys such as *Object work as well as scalars.
// Iteration order is insertion order of the first occurrence of each key.
type Map struct {
	entries []MapEntry
	index   map[string]int
}

// NewMap builds a map from alternating key, value arguments.
func NewMap(kv ...any) *Map {
	m := &Map{index: map[string]int{}}
	for i := 0; i+1 < len(kv); i += 2 {
		m.Put(kv[i], kv[i+1])
	}
	return m
}

// Fingerprint is the identity Map uses for a key. Structured keys are
// compared through their JSON form; nested maps render through MarshalJSON.
func Fingerprint(key any) string {
	switch k := key.(type) {
	case nil:
		return "null"
	case string, bool, int8, int16, int32, int64, int, float32, float64:
		return fmt.Sprintf("%T:%v", k, k)
	}
	b, err := j.Marshal(key)
	if err != nil {
		return fmt.Sprintf("%T:%#v", key, key)
	}
	return fmt.Sprintf("%T:%s", key, b)
}

// Put stores value under key; an existing key keeps its position and takes the new value.
func (m *Map) Put(key, value any) {
	fp := Fingerprint(key)
	if m.index == nil {
		m.index = map[string]int{}
	}
	if i, ok := m.index[fp]; ok {
		m.entries[i] = MapEntry{Key: key, Value: value}
		return
	}
	m.index[fp] = len(m.entries)
	m.entries = append(m.entries, MapEntry{Key: key, Value: value})
}

// Get looks a key up.
func (m *Map) Get(key any) (any, bool) {
	if m == nil {
		return nil, false
	}
	i, ok := m.index[Fingerprint(key)]
	if !ok {
		return nil, false
	}
	return m.entries[i].Value, true
}

// Len is the number of distinct keys.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Entries returns a copy of the entries in iteration order.
func (m *Map) Entries() []MapEntry {
	if m == nil {
		return nil
	}
	return append([]MapEntry(nil), m.entries...)
}

// Equal reports whether both maps hold the same key/value pairs, ignoring order.
func (m *Map) Equal(o *Map) bool {
	if m.Len() != o.Len() {
		return false
	}
	if m.Len() == 0 {
		return true
	}
	for fp, i := range m.index {
		k, ok := o.index[fp]
		if !ok {
			return false
		}
		if !valueEqual(m.entries[i].Value, o.entries[k].Value) {
			return false
		}
	}
	return true
}

// MarshalJSON renders the entries ordered by key fingerprint, so two maps
// holding the same pairs render the same regardless of insertion order.
func (m *Map) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	fps := make([]string, 0, len(m.index))
	for fp := range m.index {
		fps = append(fps, fp)
	}
	sort.Strings(fps)
	out := make([]MapEntry, len(fps))
	for i, fp := range fps {
		out[i] = m.entries[m.index[fp]]
	}
	return j.Marshal(out)
}

func valueEqual(a, b any) bool {
	if am, ok := a.(*Map); ok {
		bm, ok := b.(*Map)
		return ok && am.Equal(bm)
	}
	return reflect.DeepEqual(a, b)
}
