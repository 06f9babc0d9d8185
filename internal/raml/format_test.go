package raml

import (
	"github.com/dyaskur/api-spec-converter/internal/spec"
	"github.com/dyaskur/api-spec-converter/internal/value"
)

// stubFormat is a minimal Format for exercising the assembler without a
// version adapter.
type stubFormat struct{}

var _ Format = stubFormat{}

func (stubFormat) Version() string { return "test" }

func (stubFormat) Describe(root *value.Map, p *spec.Project) {
	if p.Description != "" {
		root.Set("description", value.String(p.Description))
	}
}

func (stubFormat) MediaType(consumes, produces []string) *value.Value {
	if len(produces) > 0 {
		return value.String(produces[0])
	}
	return value.Null()
}

func (stubFormat) AuthorizationGrants(flow string) *value.Value { return value.Strings(flow) }

func (stubFormat) MapBody(schema *value.Value) *value.Value {
	m := value.NewMap()
	m.Set("schema", ConvertRefs(schema))
	return value.Mapping(m)
}

func (stubFormat) MapRequestBodyForm(schema *value.Value) *value.Value {
	m := value.NewMap()
	m.Set("form", schema)
	return value.Mapping(m)
}

func (stubFormat) MapSchemas(schemas []spec.SchemaDef) *value.Value {
	out := value.NewMap()
	for _, s := range schemas {
		out.Set(s.Name, value.String(string(s.Definition)))
	}
	return value.Mapping(out)
}

func (stubFormat) AddSchemas(root *value.Map, schemas *value.Value) {
	root.Set("schemas", schemas)
}

func (stubFormat) APIKeyType() string { return "api-key" }

func (stubFormat) MapSecuritySchemes(schemes *value.Map) *value.Value {
	return value.Mapping(schemes)
}

func (stubFormat) SetMethodDisplayName(method *value.Map, name string) {
	method.Set("displayName", value.String(name))
}

func (stubFormat) InitTraits() *value.Value { return value.Object() }

func (stubFormat) AddTrait(name string, trait *value.Map, traits *value.Value) {
	traits.Map().Set(CamelCase(name), value.Mapping(trait))
}
