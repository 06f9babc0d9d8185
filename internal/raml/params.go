package raml

import (
	"strings"

	"github.com/hashicorp/go-set/v3"

	"github.com/dyaskur/api-spec-converter/internal/value"
)

// AcceptedParamTypes are the parameter types RAML named parameters support.
var AcceptedParamTypes = set.From([]string{"string", "number", "integer", "date", "boolean", "file", "array"})

// attrRule says which parameter types an attribute is valid for. A nil
// types set accepts every type.
type attrRule struct {
	types *set.Set[string]
	fold  bool
}

func (r attrRule) allows(typ string) bool {
	if r.types == nil {
		return true
	}
	if r.fold {
		typ = strings.ToLower(typ)
	}
	return r.types.Contains(typ)
}

var (
	stringOnly  = set.From([]string{"string"})
	numericOnly = set.From([]string{"integer", "number"})
)

// paramAttributes is the closed attribute vocabulary of a named parameter.
// Attributes missing from the table are always removed.
var paramAttributes = map[string]attrRule{
	"enum":        {types: stringOnly},
	"pattern":     {types: stringOnly},
	"minLength":   {types: stringOnly},
	"maxLength":   {types: stringOnly},
	"minimum":     {types: numericOnly, fold: true},
	"maximum":     {types: numericOnly, fold: true},
	"required":    {},
	"displayName": {},
	"description": {},
	"example":     {},
	"repeat":      {},
	"default":     {},
	"items":       {},
}

// ValidateParams filters a name→parameter mapping in place and returns it.
// Parameters whose type is not an accepted type are removed whole, as are
// null or non-mapping entries. Remaining parameters lose every attribute the
// table does not allow for their type. A parameter without a type is kept.
func ValidateParams(params *value.Map) *value.Map {
	for _, name := range params.Keys() {
		p, _ := params.Get(name)
		pm := p.Map()
		if pm == nil {
			params.Delete(name)
			continue
		}
		typ := ""
		if t, ok := pm.Get("type"); ok {
			s, isString := t.AsString()
			if !isString || !AcceptedParamTypes.Contains(s) {
				params.Delete(name)
				continue
			}
			typ = s
		}
		for _, attr := range pm.Keys() {
			if attr == "type" {
				continue
			}
			rule, known := paramAttributes[attr]
			if !known || !rule.allows(typ) {
				pm.Delete(attr)
			}
		}
	}
	return params
}

// parameterFieldKeys are copied from a schema property into a parameter.
var parameterFieldKeys = []string{
	"type", "description", "default", "example", "enum", "pattern",
	"minLength", "maxLength", "minimum", "maximum", "items",
}

// ParameterFields builds a parameter descriptor from a JSON schema property.
// String properties with a date or date-time format become date parameters.
func ParameterFields(prop *value.Map) *value.Map {
	out := value.NewMap()
	for _, key := range parameterFieldKeys {
		if v, ok := prop.Get(key); ok && !v.IsNull() {
			out.Set(key, v.Clone())
		}
	}
	if prop.GetString("type") == "string" {
		switch prop.GetString("format") {
		case "date", "date-time":
			out.Set("type", value.String("date"))
		}
	}
	return out
}

// hasProperties reports whether schema is an object schema with at least one
// property.
func hasProperties(schema *value.Value) bool {
	return schema.Map().GetMap("properties").Len() > 0
}

// requiredNames returns the schema's required list as a set.
func requiredNames(schema *value.Map) *set.Set[string] {
	names := set.New[string](0)
	req, _ := schema.Get("required")
	for _, item := range req.Items() {
		if s, ok := item.AsString(); ok {
			names.Insert(s)
		}
	}
	return names
}

// mapNamedParams converts an object schema into named parameters: fields from
// ParameterFields, required from the schema's required list, and type and
// description first. It returns nil when the schema has no properties.
func mapNamedParams(schema *value.Value) *value.Map {
	if !hasProperties(schema) {
		return nil
	}
	required := requiredNames(schema.Map())
	out := value.NewMap()
	for name, prop := range schema.Map().GetMap("properties").All() {
		param := ParameterFields(prop.Map())
		if required.Contains(name) {
			param.Set("required", value.Bool(true))
		}
		param.OrderByKeys("type", "description")
		out.Set(name, value.Mapping(param))
	}
	return ValidateParams(out)
}

// mapURIParams converts an object schema into query or URI parameters. The
// description doubles as the display name, and type defaults to string.
func mapURIParams(schema *value.Value) *value.Map {
	if !hasProperties(schema) {
		return nil
	}
	out := value.NewMap()
	for name, prop := range schema.Map().GetMap("properties").All() {
		pm := prop.Map()
		param := ParameterFields(pm)
		if desc := pm.GetString("description"); desc != "" {
			param.Set("displayName", value.String(stripParamDelims(desc)))
		}
		if items, ok := pm.Get("items"); ok {
			param.Set("items", items.Clone())
		}
		if t, ok := param.Get("type"); !ok || !t.Truthy() {
			param.Set("type", value.String("string"))
		}
		out.Set(name, value.Mapping(param))
	}
	return ValidateParams(out)
}
