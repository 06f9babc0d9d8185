package value

import (
	"strings"
	"testing"

	"github.com/shoenig/test/must"
	"gopkg.in/yaml.v3"
)

func mustParse(t *testing.T, text string) *Value {
	t.Helper()
	v, err := Parse([]byte(text))
	must.NoError(t, err)
	return v
}

func TestParse_KeepsKeyOrder(t *testing.T) {
	t.Parallel()

	v := mustParse(t, `{"zeta": 1, "alpha": {"b": true, "a": null}, "mid": ["x", 2.5]}`)
	must.True(t, v.IsMapping())
	must.Eq(t, []string{"zeta", "alpha", "mid"}, v.Map().Keys())
	must.Eq(t, []string{"b", "a"}, v.Map().GetMap("alpha").Keys())

	mid, ok := v.Map().Get("mid")
	must.True(t, ok)
	must.Len(t, 2, mid.Items())
	n, ok := mid.Items()[1].AsNumber()
	must.True(t, ok)
	must.Eq(t, 2.5, n)
}

func TestParse_YAMLScalars(t *testing.T) {
	t.Parallel()

	v := mustParse(t, "count: 3\nflag: false\nnothing: ~\nwhen: 2021-01-01\nname: pets\n")
	m := v.Map()

	c, _ := m.Get("count")
	n, ok := c.AsNumber()
	must.True(t, ok)
	must.Eq(t, 3.0, n)

	f, _ := m.Get("flag")
	b, ok := f.AsBool()
	must.True(t, ok)
	must.False(t, b)

	z, _ := m.Get("nothing")
	must.True(t, z.IsNull())

	must.Eq(t, "2021-01-01", m.GetString("when"))
	must.Eq(t, "pets", m.GetString("name"))
}

func TestParse_Empty(t *testing.T) {
	t.Parallel()

	v := mustParse(t, "  \n")
	must.True(t, v.IsNull())
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte(`{"a": [1, 2`))
	must.Error(t, err)
}

func TestMap_SetOverwriteKeepsPosition(t *testing.T) {
	t.Parallel()

	m := NewMap()
	m.Set("a", String("1"))
	m.Set("b", String("2"))
	m.Set("c", String("3"))
	m.Set("b", String("two"))

	must.Eq(t, []string{"a", "b", "c"}, m.Keys())
	must.Eq(t, 3, m.Len())
	must.Eq(t, "two", m.GetString("b"))
}

func TestMap_DeleteAndZeroValue(t *testing.T) {
	t.Parallel()

	var m Map
	must.Eq(t, 0, m.Len())
	must.False(t, m.Has("x"))
	m.Delete("x")

	m.Set("x", Bool(true))
	m.Set("y", Null())
	m.Delete("x")
	must.Eq(t, []string{"y"}, m.Keys())
}

func TestMap_OrderByKeys(t *testing.T) {
	t.Parallel()

	m := mustParse(t, `{"example": 1, "description": "d", "required": true, "type": "string"}`).Map()
	m.OrderByKeys("type", "description", "missing")
	must.Eq(t, []string{"type", "description", "example", "required"}, m.Keys())
}

func TestMap_MutateWhileRangingKeys(t *testing.T) {
	t.Parallel()

	m := mustParse(t, `{"a": 1, "b": 2, "c": 3}`).Map()
	for _, k := range m.Keys() {
		if k != "b" {
			m.Delete(k)
		}
	}
	must.Eq(t, []string{"b"}, m.Keys())
}

func TestTruthy(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		v    *Value
		want bool
	}{
		{"nil", nil, false},
		{"null", Null(), false},
		{"false", Bool(false), false},
		{"true", Bool(true), true},
		{"zero", Number(0), false},
		{"one", Number(1), true},
		{"empty string", String(""), false},
		{"string", String("x"), true},
		{"empty mapping", Object(), true},
		{"empty sequence", Sequence(), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			must.Eq(t, tc.want, tc.v.Truthy())
		})
	}
}

func TestEqualAndClone(t *testing.T) {
	t.Parallel()

	a := mustParse(t, `{"a": {"b": [1, "x", null]}, "c": true}`)
	b := mustParse(t, `{"c": true, "a": {"b": [1, "x", null]}}`)
	must.True(t, Equal(a, b))

	c := a.Clone()
	c.Map().GetMap("a").Set("b", String("changed"))
	must.False(t, Equal(a, c))
	must.True(t, Equal(a, b))
}

func TestFromAny_SortsGoMapKeys(t *testing.T) {
	t.Parallel()

	v := FromAny(map[string]any{"b": 1, "a": []any{"x", true}, "c": nil})
	must.Eq(t, []string{"a", "b", "c"}, v.Map().Keys())
	must.Eq(t, `{"a":["x",true],"b":1,"c":null}`, v.String())
}

func TestMarshalJSON_Ordered(t *testing.T) {
	t.Parallel()

	v := mustParse(t, `{"type": "object", "properties": {"id": {"type": "integer"}}, "ratio": 0.5}`)
	out, err := v.IndentJSON("  ")
	must.NoError(t, err)
	want := strings.Join([]string{
		`{`,
		`  "type": "object",`,
		`  "properties": {`,
		`    "id": {`,
		`      "type": "integer"`,
		`    }`,
		`  },`,
		`  "ratio": 0.5`,
		`}`,
	}, "\n")
	must.Eq(t, want, out)
}

func TestToNode_IncludeTagAndQuoting(t *testing.T) {
	t.Parallel()

	m := NewMap()
	m.Set("type", String(IncludePrefix+"schemas/pet.json"))
	m.Set("code", String("200"))
	m.Set("flag", String("true"))
	m.Set("count", Number(3))

	out, err := yaml.Marshal(Mapping(m))
	must.NoError(t, err)
	want := "type: !include schemas/pet.json\ncode: \"200\"\nflag: \"true\"\ncount: 3\n"
	must.Eq(t, want, string(out))
}
