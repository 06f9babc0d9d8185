// Package value implements the JSON-like document tree used on both sides of
// the RAML exporter: schema text is parsed into it, and the assembled RAML
// document is built from it before serialization.
//
// Mappings keep insertion order so the rendered document follows the order in
// which the exporter wrote its fields.
package value

import (
	"math"
	"strings"
)

// Kind identifies which variant of the sum type a Value holds.
type Kind int

const (
	NullKind Kind = iota
	BoolKind
	NumberKind
	StringKind
	SequenceKind
	MappingKind
)

func (k Kind) String() string {
	switch k {
	case NullKind:
		return "null"
	case BoolKind:
		return "bool"
	case NumberKind:
		return "number"
	case StringKind:
		return "string"
	case SequenceKind:
		return "sequence"
	case MappingKind:
		return "mapping"
	default:
		return "unknown"
	}
}

// IncludePrefix marks a string value as an external-file inclusion. The
// renderer turns such strings into YAML nodes tagged !include.
const IncludePrefix = "!include "

// Value is a tagged JSON-like value. A nil *Value reads as null.
type Value struct {
	kind  Kind
	b     bool
	n     float64
	s     string
	items []*Value
	m     *Map
}

func Null() *Value { return &Value{kind: NullKind} }

func Bool(b bool) *Value { return &Value{kind: BoolKind, b: b} }

func Number(n float64) *Value { return &Value{kind: NumberKind, n: n} }

func String(s string) *Value { return &Value{kind: StringKind, s: s} }

// Sequence returns a sequence holding items.
func Sequence(items ...*Value) *Value {
	if items == nil {
		items = []*Value{}
	}
	return &Value{kind: SequenceKind, items: items}
}

// Strings returns a sequence of string values.
func Strings(ss ...string) *Value {
	items := make([]*Value, 0, len(ss))
	for _, s := range ss {
		items = append(items, String(s))
	}
	return Sequence(items...)
}

// Mapping wraps m as a value. A nil m yields an empty mapping.
func Mapping(m *Map) *Value {
	if m == nil {
		m = NewMap()
	}
	return &Value{kind: MappingKind, m: m}
}

// Object returns a new empty mapping value.
func Object() *Value { return Mapping(NewMap()) }

func (v *Value) Kind() Kind {
	if v == nil {
		return NullKind
	}
	return v.kind
}

func (v *Value) IsNull() bool { return v.Kind() == NullKind }

func (v *Value) IsMapping() bool { return v.Kind() == MappingKind }

func (v *Value) IsSequence() bool { return v.Kind() == SequenceKind }

// AsString returns the string held by v, if v is a string.
func (v *Value) AsString() (string, bool) {
	if v.Kind() != StringKind {
		return "", false
	}
	return v.s, true
}

// AsNumber returns the number held by v, if v is a number.
func (v *Value) AsNumber() (float64, bool) {
	if v.Kind() != NumberKind {
		return 0, false
	}
	return v.n, true
}

// AsBool returns the boolean held by v, if v is a boolean.
func (v *Value) AsBool() (bool, bool) {
	if v.Kind() != BoolKind {
		return false, false
	}
	return v.b, true
}

// Map returns the mapping held by v, or nil when v is not a mapping.
func (v *Value) Map() *Map {
	if v.Kind() != MappingKind {
		return nil
	}
	return v.m
}

// Items returns the elements of a sequence, or nil for any other kind.
func (v *Value) Items() []*Value {
	if v.Kind() != SequenceKind {
		return nil
	}
	return v.items
}

// Append adds items to the end of a sequence. It is a no-op for other kinds.
func (v *Value) Append(items ...*Value) {
	if v.Kind() != SequenceKind {
		return
	}
	v.items = append(v.items, items...)
}

// Len reports the number of elements of a sequence or entries of a mapping.
func (v *Value) Len() int {
	switch v.Kind() {
	case SequenceKind:
		return len(v.items)
	case MappingKind:
		return v.m.Len()
	default:
		return 0
	}
}

// Truthy follows JavaScript truthiness: null, false, 0, NaN and "" are falsy;
// every sequence and mapping, even an empty one, is truthy.
func (v *Value) Truthy() bool {
	switch v.Kind() {
	case BoolKind:
		return v.b
	case NumberKind:
		return v.n != 0 && !math.IsNaN(v.n)
	case StringKind:
		return v.s != ""
	case SequenceKind, MappingKind:
		return true
	default:
		return false
	}
}

// IsEmpty reports whether v is null, an empty string, or an empty collection.
func (v *Value) IsEmpty() bool {
	switch v.Kind() {
	case NullKind:
		return true
	case StringKind:
		return v.s == ""
	case SequenceKind, MappingKind:
		return v.Len() == 0
	default:
		return false
	}
}

// IsInclude reports whether v is an external-inclusion marker string.
func (v *Value) IsInclude() bool {
	s, ok := v.AsString()
	return ok && strings.HasPrefix(s, IncludePrefix)
}

// Clone returns a deep copy of v.
func (v *Value) Clone() *Value {
	if v == nil {
		return nil
	}
	out := *v
	switch v.kind {
	case SequenceKind:
		out.items = make([]*Value, len(v.items))
		for i, item := range v.items {
			out.items[i] = item.Clone()
		}
	case MappingKind:
		out.m = v.m.Clone()
	}
	return &out
}

// Equal reports whether a and b hold the same data. Mapping comparison ignores
// key order.
func Equal(a, b *Value) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch a.Kind() {
	case NullKind:
		return true
	case BoolKind:
		return a.b == b.b
	case NumberKind:
		return a.n == b.n
	case StringKind:
		return a.s == b.s
	case SequenceKind:
		if len(a.items) != len(b.items) {
			return false
		}
		for i := range a.items {
			if !Equal(a.items[i], b.items[i]) {
				return false
			}
		}
		return true
	case MappingKind:
		if a.m.Len() != b.m.Len() {
			return false
		}
		for k, av := range a.m.All() {
			bv, ok := b.m.Get(k)
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	}
	return false
}

func (v *Value) String() string {
	data, err := v.MarshalJSON()
	if err != nil {
		return "<invalid>"
	}
	return string(data)
}
