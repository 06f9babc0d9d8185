// Package raml10 writes RAML 1.0: schemas become a types section and request
// bodies carry inline type declarations.
package raml10

import (
	"github.com/dyaskur/api-spec-converter/internal/raml"
	"github.com/dyaskur/api-spec-converter/internal/spec"
	"github.com/dyaskur/api-spec-converter/internal/value"
)

// Format is the RAML 1.0 raml.Format.
type Format struct{}

var _ raml.Format = Format{}

// New returns the RAML 1.0 format.
func New() Format { return Format{} }

func (Format) Version() string { return "1.0" }

func (Format) Describe(root *value.Map, p *spec.Project) {
	if p.Description != "" {
		root.Set("description", value.String(p.Description))
	}
}

// MediaType is the union of consumes and produces, in order: a single string
// when there is one type, a list otherwise.
func (Format) MediaType(consumes, produces []string) *value.Value {
	var types []string
	seen := map[string]bool{}
	for _, list := range [][]string{consumes, produces} {
		for _, mt := range list {
			if mt != "" && !seen[mt] {
				seen[mt] = true
				types = append(types, mt)
			}
		}
	}
	switch len(types) {
	case 0:
		return value.Null()
	case 1:
		return value.String(types[0])
	}
	return value.Strings(types...)
}

var grants = map[string]string{
	"implicit":    "implicit",
	"password":    "password",
	"application": "client_credentials",
	"accessCode":  "authorization_code",
}

func (Format) AuthorizationGrants(flow string) *value.Value {
	if g, ok := grants[flow]; ok {
		return value.Strings(g)
	}
	return value.Sequence()
}

// MapBody returns the normalized schema as an inline type declaration.
func (Format) MapBody(schema *value.Value) *value.Value {
	return typeDeclaration(schema)
}

// MapRequestBodyForm declares one property per form field; optional fields
// get a "?" suffix.
func (Format) MapRequestBodyForm(schema *value.Value) *value.Value {
	schema = raml.ConvertRefs(schema)
	m := schema.Map()
	required := map[string]bool{}
	req, _ := m.Get("required")
	for _, item := range req.Items() {
		if s, ok := item.AsString(); ok {
			required[s] = true
		}
	}

	props := value.NewMap()
	for name, prop := range m.GetMap("properties").All() {
		key := name
		if !required[name] {
			key += "?"
		}
		props.Set(key, prop)
	}
	out := value.NewMap()
	out.Set("properties", value.Mapping(props))
	return value.Mapping(out)
}

// MapSchemas builds the types section. Definitions that fail to parse are
// left out.
func (Format) MapSchemas(schemas []spec.SchemaDef) *value.Value {
	types := value.NewMap()
	for _, s := range schemas {
		def, err := s.Definition.Parse()
		if err != nil || s.Name == "" {
			continue
		}
		decl := typeDeclaration(def)
		if m := decl.Map(); s.Description != "" && !m.Has("description") {
			m.Set("description", value.String(s.Description))
		}
		types.Set(s.Name, decl)
	}
	return value.Mapping(types)
}

func (Format) AddSchemas(root *value.Map, schemas *value.Value) {
	if schemas.Len() > 0 {
		root.Set("types", schemas)
	}
}

func (Format) APIKeyType() string { return "Pass Through" }

func (Format) MapSecuritySchemes(schemes *value.Map) *value.Value {
	return value.Mapping(schemes)
}

func (Format) SetMethodDisplayName(method *value.Map, name string) {
	if name != "" {
		method.Set("displayName", value.String(name))
	}
}

func (Format) InitTraits() *value.Value { return value.Object() }

func (Format) AddTrait(name string, trait *value.Map, traits *value.Value) {
	traits.Map().Set(raml.CamelCase(name), value.Mapping(trait))
}

// typeDeclaration normalizes a JSON schema into a RAML type declaration.
// JSON Schema bookkeeping keys are dropped; a bare string names a type.
func typeDeclaration(schema *value.Value) *value.Value {
	if s, ok := schema.AsString(); ok {
		m := value.NewMap()
		m.Set("type", value.String(s))
		return value.Mapping(m)
	}
	if !schema.IsMapping() {
		return value.Object()
	}
	raml.ConvertRefs(schema)
	schema.Map().Delete("$schema")
	schema.Map().Delete("id")
	return schema
}
