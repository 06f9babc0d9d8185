// Package raml assembles RAML documents from a flat spec.Project: it folds
// endpoints into a resource tree, rewrites schema references, sanitizes
// parameters and maps security schemes, traits and responses.
//
// Everything that differs between RAML versions is delegated to a Format.
package raml

import (
	"github.com/dyaskur/api-spec-converter/internal/spec"
	"github.com/dyaskur/api-spec-converter/internal/value"
)

// Format supplies the version-specific parts of a RAML document. Adapters
// implement every hook.
type Format interface {
	// Version is written after "#%RAML " in the rendered header.
	Version() string

	// Describe attaches the project description to the document root.
	Describe(root *value.Map, p *spec.Project)

	// MediaType returns the root mediaType for the document-wide consumes
	// and produces lists, or null when there is none.
	MediaType(consumes, produces []string) *value.Value

	// AuthorizationGrants maps an OAuth2 flow name (implicit, password,
	// application, accessCode) to the grant list.
	AuthorizationGrants(flow string) *value.Value

	// MapBody turns a parsed body schema into the value stored under a media
	// type in a body or response.
	MapBody(schema *value.Value) *value.Value

	// MapRequestBodyForm turns a parsed form body schema into the value
	// stored under a form media type.
	MapRequestBodyForm(schema *value.Value) *value.Value

	// MapSchemas converts the schema registry; AddSchemas attaches the result
	// to the root.
	MapSchemas(schemas []spec.SchemaDef) *value.Value
	AddSchemas(root *value.Map, schemas *value.Value)

	// APIKeyType names the security scheme type used for API keys.
	APIKeyType() string

	// MapSecuritySchemes shapes the scheme mapping (name to definition) for
	// the root securitySchemes section.
	MapSecuritySchemes(schemes *value.Map) *value.Value

	SetMethodDisplayName(method *value.Map, name string)

	// InitTraits returns the empty trait container; AddTrait inserts one
	// trait into it.
	InitTraits() *value.Value
	AddTrait(name string, trait *value.Map, traits *value.Value)
}
