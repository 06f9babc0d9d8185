// Package raml08 writes RAML 0.8. Bodies and schemas are carried as JSON
// Schema text, and named collections are lists of single-key mappings.
package raml08

import (
	"strings"

	"github.com/dyaskur/api-spec-converter/internal/raml"
	"github.com/dyaskur/api-spec-converter/internal/spec"
	"github.com/dyaskur/api-spec-converter/internal/value"
)

// Format is the RAML 0.8 raml.Format.
type Format struct{}

var _ raml.Format = Format{}

// New returns the RAML 0.8 format.
func New() Format { return Format{} }

func (Format) Version() string { return "0.8" }

// Describe puts the description in the first documentation entry, since 0.8
// has no root description.
func (Format) Describe(root *value.Map, p *spec.Project) {
	if p.Description == "" {
		return
	}
	title := p.Name
	if title == "" {
		title = "Description"
	}
	doc := value.NewMap()
	doc.Set("title", value.String(title))
	doc.Set("content", value.String(p.Description))
	root.Set("documentation", value.Sequence(value.Mapping(doc)))
}

// MediaType is the first produced type, else the first consumed one.
func (Format) MediaType(consumes, produces []string) *value.Value {
	for _, list := range [][]string{produces, consumes} {
		if len(list) > 0 && list[0] != "" {
			return value.String(list[0])
		}
	}
	return value.Null()
}

var grants = map[string]string{
	"implicit":    "token",
	"password":    "credentials",
	"application": "owner",
	"accessCode":  "code",
}

func (Format) AuthorizationGrants(flow string) *value.Value {
	if g, ok := grants[flow]; ok {
		return value.Strings(g)
	}
	return value.Sequence()
}

// MapBody names the schema for a bare reference to a document schema and
// inlines the JSON Schema text otherwise.
func (Format) MapBody(schema *value.Value) *value.Value {
	out := value.NewMap()
	out.Set("schema", value.String(schemaText(schema)))
	return value.Mapping(out)
}

// MapRequestBodyForm declares form fields as sanitized formParameters.
func (Format) MapRequestBodyForm(schema *value.Value) *value.Value {
	m := schema.Map()
	required := map[string]bool{}
	req, _ := m.Get("required")
	for _, item := range req.Items() {
		if s, ok := item.AsString(); ok {
			required[s] = true
		}
	}

	params := value.NewMap()
	for name, prop := range m.GetMap("properties").All() {
		param := raml.ParameterFields(prop.Map())
		if required[name] {
			param.Set("required", value.Bool(true))
		}
		param.OrderByKeys("type", "description")
		params.Set(name, value.Mapping(param))
	}
	out := value.NewMap()
	out.Set("formParameters", value.Mapping(raml.ValidateParams(params)))
	return value.Mapping(out)
}

// MapSchemas lists each schema as a single-key mapping of name to JSON text.
// Definitions that fail to parse are left out.
func (Format) MapSchemas(schemas []spec.SchemaDef) *value.Value {
	out := value.Sequence()
	for _, s := range schemas {
		def, err := s.Definition.Parse()
		if err != nil || s.Name == "" || def.IsNull() {
			continue
		}
		entry := value.NewMap()
		entry.Set(s.Name, value.String(jsonText(def)))
		out.Append(value.Mapping(entry))
	}
	return out
}

func (Format) AddSchemas(root *value.Map, schemas *value.Value) {
	if schemas.Len() > 0 {
		root.Set("schemas", schemas)
	}
}

func (Format) APIKeyType() string { return "x-api-key" }

func (Format) MapSecuritySchemes(schemes *value.Map) *value.Value {
	return singleKeyList(schemes)
}

// SetMethodDisplayName does nothing: 0.8 methods have no display name.
func (Format) SetMethodDisplayName(*value.Map, string) {}

func (Format) InitTraits() *value.Value { return value.Sequence() }

func (Format) AddTrait(name string, trait *value.Map, traits *value.Value) {
	entry := value.NewMap()
	entry.Set(raml.CamelCase(name), value.Mapping(trait))
	traits.Append(value.Mapping(entry))
}

func singleKeyList(m *value.Map) *value.Value {
	out := value.Sequence()
	for k, v := range m.All() {
		entry := value.NewMap()
		entry.Set(k, v)
		out.Append(value.Mapping(entry))
	}
	return out
}

// schemaText returns the schema name for {"$ref": "#/definitions/Name"} and
// indented JSON otherwise.
func schemaText(schema *value.Value) string {
	if s, ok := schema.AsString(); ok {
		return s
	}
	if m := schema.Map(); m.Len() == 1 {
		if ref := m.GetString("$ref"); strings.HasPrefix(ref, "#/") {
			return ref[strings.LastIndex(ref, "/")+1:]
		}
	}
	return jsonText(schema)
}

func jsonText(v *value.Value) string {
	text, err := v.IndentJSON("  ")
	if err != nil {
		return v.String()
	}
	return text
}
