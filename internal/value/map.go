package value

import (
	"iter"
	"slices"

	"github.com/speakeasy-api/openapi/sequencedmap"
)

// Map is an insertion-ordered string-keyed mapping of values. The zero Map is
// ready to use.
type Map struct {
	entries *sequencedmap.Map[string, *Value]
}

func NewMap() *Map {
	return &Map{entries: sequencedmap.New[string, *Value]()}
}

func (m *Map) init() {
	if m.entries == nil {
		m.entries = sequencedmap.New[string, *Value]()
	}
}

// Len is nil safe.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return m.entries.Len()
}

func (m *Map) Get(key string) (*Value, bool) {
	if m == nil {
		return nil, false
	}
	return m.entries.Get(key)
}

func (m *Map) Has(key string) bool {
	if m == nil {
		return false
	}
	return m.entries.Has(key)
}

// Set stores v under key. Overwriting an existing key keeps its position.
func (m *Map) Set(key string, v *Value) {
	m.init()
	if !m.entries.Has(key) {
		m.entries.Set(key, v)
		return
	}
	replaced := sequencedmap.NewWithCapacity[string, *Value](m.entries.Len())
	for k, old := range m.entries.All() {
		if k == key {
			old = v
		}
		replaced.Set(k, old)
	}
	m.entries = replaced
}

func (m *Map) Delete(key string) {
	if m == nil || m.entries == nil {
		return
	}
	m.entries.Delete(key)
}

// Keys returns a snapshot of the keys in order; the map may be mutated while
// ranging over the result.
func (m *Map) Keys() []string {
	if m == nil || m.entries == nil {
		return nil
	}
	return slices.Collect(m.entries.Keys())
}

// All iterates entries in insertion order.
func (m *Map) All() iter.Seq2[string, *Value] {
	return func(yield func(string, *Value) bool) {
		if m == nil || m.entries == nil {
			return
		}
		for k, v := range m.entries.All() {
			if !yield(k, v) {
				return
			}
		}
	}
}

// GetString returns the string stored under key, or "".
func (m *Map) GetString(key string) string {
	v, _ := m.Get(key)
	s, _ := v.AsString()
	return s
}

// GetMap returns the mapping stored under key, or nil.
func (m *Map) GetMap(key string) *Map {
	v, _ := m.Get(key)
	return v.Map()
}

// EnsureMap returns the mapping stored under key, creating it (and replacing
// any non-mapping value) when needed.
func (m *Map) EnsureMap(key string) *Map {
	if existing := m.GetMap(key); existing != nil {
		return existing
	}
	child := NewMap()
	m.Set(key, Mapping(child))
	return child
}

// OrderByKeys moves the given keys, when present, to the front in the order
// given. Other entries keep their relative order.
func (m *Map) OrderByKeys(keys ...string) {
	if m.Len() == 0 {
		return
	}
	ordered := sequencedmap.NewWithCapacity[string, *Value](m.entries.Len())
	for _, k := range keys {
		if v, ok := m.entries.Get(k); ok && !ordered.Has(k) {
			ordered.Set(k, v)
		}
	}
	for k, v := range m.entries.All() {
		if !ordered.Has(k) {
			ordered.Set(k, v)
		}
	}
	m.entries = ordered
}

// Clone returns a deep copy of m.
func (m *Map) Clone() *Map {
	out := NewMap()
	for k, v := range m.All() {
		out.entries.Set(k, v.Clone())
	}
	return out
}
