package raml

import (
	"strings"

	"github.com/hashicorp/go-set/v3"

	"github.com/dyaskur/api-spec-converter/internal/value"
)

// Formats kept on string types; any other format is removed.
var validFormats = set.From([]string{"int", "int8", "int16", "int32", "int64", "long", "float", "double"})

var localRefPrefixes = []string{"#/definitions/", "#/components/schemas/"}

// ConvertRefs rewrites a schema in place for RAML and returns it:
//
//   - {"$ref": "#/definitions/Pet"} becomes {type: Pet}; a $ref outside the
//     document becomes {type: "!include <ref>"}
//   - {ref: Pet} becomes {type: Pet}, {include: p} becomes {type: "!include p"}
//   - nested string types with format byte, binary or password collapse to
//     {type: string}; date becomes {type: date-only} and date-time
//     {type: datetime, format: rfc3339}; other formats outside validFormats
//     are removed
//   - exclusiveMinimum and exclusiveMaximum are removed
//
// The walk uses an explicit stack, so deep schemas cannot exhaust the Go
// stack. Collapsed nodes are not descended into. Running ConvertRefs on its
// own output changes nothing.
func ConvertRefs(schema *value.Value) *value.Value {
	stack := []*value.Value{schema}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch cur.Kind() {
		case value.MappingKind:
			m := cur.Map()
			for _, key := range m.Keys() {
				child, ok := m.Get(key)
				if !ok || rewriteKey(m, key, child) {
					continue
				}
				repl, descend := narrowFormat(child)
				if repl != child {
					m.Set(key, repl)
				}
				if descend {
					stack = append(stack, repl)
				}
			}
		case value.SequenceKind:
			items := cur.Items()
			for i, item := range items {
				repl, descend := narrowFormat(item)
				items[i] = repl
				if descend {
					stack = append(stack, repl)
				}
			}
		}
	}
	return schema
}

// rewriteKey applies the reference and unsupported-keyword rules to one key
// of m. It reports whether the key was consumed.
func rewriteKey(m *value.Map, key string, child *value.Value) bool {
	switch key {
	case "exclusiveMinimum", "exclusiveMaximum":
		m.Delete(key)
		return true
	case "$ref", "ref", "include":
	default:
		return false
	}
	s, ok := child.AsString()
	if !ok {
		return false
	}
	switch {
	case key == "ref":
		m.Set("type", value.String(s))
	case key == "include" || !strings.HasPrefix(s, "#/"):
		m.Set("type", value.String(value.IncludePrefix+s))
	default:
		m.Set("type", value.String(localRefName(s)))
	}
	m.Delete(key)
	return true
}

// localRefName returns the definition name an in-document pointer refers to.
func localRefName(ref string) string {
	for _, prefix := range localRefPrefixes {
		if strings.HasPrefix(ref, prefix) {
			return unescapePointer(strings.TrimPrefix(ref, prefix))
		}
	}
	return unescapePointer(ref[strings.LastIndex(ref, "/")+1:])
}

func unescapePointer(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "~1", "/"), "~0", "~")
}

// narrowFormat applies the string format rules to a child node. It returns the
// node to store in place of child and whether the walk should descend into it.
func narrowFormat(child *value.Value) (*value.Value, bool) {
	switch child.Kind() {
	case value.SequenceKind:
		return child, true
	case value.MappingKind:
	default:
		return child, false
	}

	// The child's own references are rewritten before the format rules run.
	m := child.Map()
	for _, key := range m.Keys() {
		if v, ok := m.Get(key); ok {
			rewriteKey(m, key, v)
		}
	}
	if m.GetString("type") != "string" {
		return child, true
	}
	format, hasFormat := m.Get("format")
	if !hasFormat {
		return child, true
	}
	f, _ := format.AsString()
	switch f {
	case "byte", "binary", "password":
		return typeOnly("string"), false
	case "date":
		return typeOnly("date-only"), false
	case "date-time":
		out := value.NewMap()
		out.Set("type", value.String("datetime"))
		out.Set("format", value.String("rfc3339"))
		return value.Mapping(out), false
	}
	if !validFormats.Contains(f) {
		m.Delete("format")
	}
	return child, true
}

func typeOnly(typ string) *value.Value {
	m := value.NewMap()
	m.Set("type", value.String(typ))
	return value.Mapping(m)
}
