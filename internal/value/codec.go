package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Parse decodes JSON or YAML text into a Value, keeping mapping key order.
// Empty or whitespace-only input yields null.
func Parse(data []byte) (*Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 {
		return Null(), nil
	}
	return FromNode(&doc)
}

// FromNode converts a decoded yaml.Node tree into a Value.
func FromNode(n *yaml.Node) (*Value, error) {
	if n == nil {
		return Null(), nil
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Null(), nil
		}
		return FromNode(n.Content[0])
	case yaml.AliasNode:
		return FromNode(n.Alias)
	case yaml.SequenceNode:
		items := make([]*Value, 0, len(n.Content))
		for _, c := range n.Content {
			item, err := FromNode(c)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return Sequence(items...), nil
	case yaml.MappingNode:
		m := NewMap()
		for i := 0; i+1 < len(n.Content); i += 2 {
			val, err := FromNode(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			m.Set(n.Content[i].Value, val)
		}
		return Mapping(m), nil
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!null":
			return Null(), nil
		case "!!bool":
			var b bool
			if err := n.Decode(&b); err != nil {
				return nil, fmt.Errorf("line %d: %w", n.Line, err)
			}
			return Bool(b), nil
		case "!!int", "!!float":
			var f float64
			if err := n.Decode(&f); err != nil {
				return nil, fmt.Errorf("line %d: %w", n.Line, err)
			}
			return Number(f), nil
		default:
			return String(n.Value), nil
		}
	}
	return nil, fmt.Errorf("line %d: unsupported YAML node kind %d", n.Line, n.Kind)
}

// FromAny converts plain Go data (as produced by encoding/json or yaml.v3
// decoding into any) into a Value. Keys of Go maps are sorted.
func FromAny(x any) *Value {
	switch t := x.(type) {
	case nil:
		return Null()
	case *Value:
		return t
	case *Map:
		return Mapping(t)
	case bool:
		return Bool(t)
	case string:
		return String(t)
	case int:
		return Number(float64(t))
	case int64:
		return Number(float64(t))
	case uint64:
		return Number(float64(t))
	case float32:
		return Number(float64(t))
	case float64:
		return Number(t)
	case []string:
		return Strings(t...)
	case []any:
		items := make([]*Value, 0, len(t))
		for _, item := range t {
			items = append(items, FromAny(item))
		}
		return Sequence(items...)
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		m := NewMap()
		for _, k := range keys {
			m.Set(k, FromAny(t[k]))
		}
		return Mapping(m)
	default:
		return String(fmt.Sprint(t))
	}
}

// ToAny converts v back into plain Go data. Mapping order is lost.
func (v *Value) ToAny() any {
	switch v.Kind() {
	case BoolKind:
		return v.b
	case NumberKind:
		return v.n
	case StringKind:
		return v.s
	case SequenceKind:
		out := make([]any, 0, len(v.items))
		for _, item := range v.items {
			out = append(out, item.ToAny())
		}
		return out
	case MappingKind:
		out := make(map[string]any, v.m.Len())
		for k, item := range v.m.All() {
			out[k] = item.ToAny()
		}
		return out
	default:
		return nil
	}
}

// ToNode builds the yaml.Node tree for v. Strings carrying IncludePrefix are
// emitted as scalars tagged !include.
func (v *Value) ToNode() *yaml.Node {
	switch v.Kind() {
	case BoolKind:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v.b)}
	case NumberKind:
		tag, text := formatNumber(v.n)
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: text}
	case StringKind:
		if strings.HasPrefix(v.s, IncludePrefix) {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!include", Value: strings.TrimPrefix(v.s, IncludePrefix)}
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.s}
	case SequenceKind:
		n := &yaml.Node{Kind: yaml.SequenceNode}
		for _, item := range v.items {
			n.Content = append(n.Content, item.ToNode())
		}
		return n
	case MappingKind:
		n := &yaml.Node{Kind: yaml.MappingNode}
		for k, item := range v.m.All() {
			n.Content = append(n.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
				item.ToNode(),
			)
		}
		return n
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}

// MarshalYAML implements yaml.Marshaler.
func (v *Value) MarshalYAML() (any, error) {
	return v.ToNode(), nil
}

// MarshalJSON implements json.Marshaler, keeping mapping order.
func (v *Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// IndentJSON renders v as indented JSON text.
func (v *Value) IndentJSON(indent string) (string, error) {
	data, err := json.MarshalIndent(v, "", indent)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func writeJSON(buf *bytes.Buffer, v *Value) error {
	switch v.Kind() {
	case BoolKind:
		buf.WriteString(strconv.FormatBool(v.b))
	case NumberKind:
		if math.IsNaN(v.n) || math.IsInf(v.n, 0) {
			return fmt.Errorf("value: cannot encode %v as JSON", v.n)
		}
		_, text := formatNumber(v.n)
		buf.WriteString(text)
	case StringKind:
		data, err := json.Marshal(v.s)
		if err != nil {
			return err
		}
		buf.Write(data)
	case SequenceKind:
		buf.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case MappingKind:
		buf.WriteByte('{')
		i := 0
		for k, item := range v.m.All() {
			if i > 0 {
				buf.WriteByte(',')
			}
			i++
			key, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := writeJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		buf.WriteString("null")
	}
	return nil
}

func formatNumber(n float64) (tag, text string) {
	if n == math.Trunc(n) && math.Abs(n) < 1e15 {
		return "!!int", strconv.FormatInt(int64(n), 10)
	}
	return "!!float", strconv.FormatFloat(n, 'g', -1, 64)
}
