package raml10

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shoenig/test/must"

	"github.com/dyaskur/api-spec-converter/internal/raml"
	"github.com/dyaskur/api-spec-converter/internal/spec"
	"github.com/dyaskur/api-spec-converter/internal/value"
)

func parse(t *testing.T, text string) *value.Value {
	t.Helper()
	v, err := value.Parse([]byte(text))
	must.NoError(t, err)
	return v
}

func TestMediaType(t *testing.T) {
	t.Parallel()

	f := New()
	must.True(t, f.MediaType(nil, nil).IsNull())

	one := f.MediaType([]string{"application/json"}, []string{"application/json"})
	s, ok := one.AsString()
	must.True(t, ok)
	must.Eq(t, "application/json", s)

	many := f.MediaType([]string{"application/json"}, []string{"application/xml", "application/json"})
	must.True(t, value.Equal(value.Strings("application/json", "application/xml"), many))
}

func TestAuthorizationGrants(t *testing.T) {
	t.Parallel()

	f := New()
	for flow, grant := range map[string]string{
		"implicit":    "implicit",
		"password":    "password",
		"application": "client_credentials",
		"accessCode":  "authorization_code",
	} {
		must.True(t, value.Equal(value.Strings(grant), f.AuthorizationGrants(flow)))
	}
	must.Eq(t, 0, f.AuthorizationGrants("device").Len())
}

func TestMapBody(t *testing.T) {
	t.Parallel()

	f := New()
	got := f.MapBody(parse(t, `{"$schema": "http://json-schema.org/draft-04/schema#", "id": "x", "type": "array", "items": {"$ref": "#/definitions/Pet"}}`))
	want := parse(t, `{"type": "array", "items": {"type": "Pet"}}`)
	must.True(t, value.Equal(want, got), must.Sprintf("got %s", got))

	named := f.MapBody(value.String("Pet"))
	must.Eq(t, "Pet", named.Map().GetString("type"))

	must.Eq(t, 0, f.MapBody(value.Number(1)).Len())
}

func TestMapRequestBodyForm(t *testing.T) {
	t.Parallel()

	got := New().MapRequestBodyForm(parse(t, `{
		"type": "object",
		"required": ["name"],
		"properties": {"name": {"type": "string"}, "photo": {"type": "string", "format": "binary"}}
	}`))
	want := parse(t, `{"properties": {"name": {"type": "string"}, "photo?": {"type": "string"}}}`)
	must.True(t, value.Equal(want, got), must.Sprintf("got %s", got))
	must.Eq(t, []string{"name", "photo?"}, got.Map().GetMap("properties").Keys())
}

func TestMapSchemas(t *testing.T) {
	t.Parallel()

	got := New().MapSchemas([]spec.SchemaDef{
		{Name: "Pet", Description: "A pet", Definition: `{"type": "object", "properties": {"owner": {"$ref": "#/definitions/Owner"}}}`},
		{Name: "Broken", Definition: `{"type": `},
		{Name: "", Definition: `{"type": "object"}`},
		{Name: "Owner", Description: "ignored", Definition: `{"type": "object", "description": "kept"}`},
	})
	want := parse(t, `{
		"Pet": {"type": "object", "properties": {"owner": {"type": "Owner"}}, "description": "A pet"},
		"Owner": {"type": "object", "description": "kept"}
	}`)
	must.True(t, value.Equal(want, got), must.Sprintf("got %s", got))
}

func TestTraits(t *testing.T) {
	t.Parallel()

	f := New()
	traits := f.InitTraits()
	f.AddTrait("Paged Results", value.NewMap(), traits)
	must.Eq(t, []string{"pagedResults"}, traits.Map().Keys())
}

func TestExport(t *testing.T) {
	t.Parallel()

	p := &spec.Project{
		Name:        "Pets",
		Description: "Pet API",
		Environment: spec.Environment{
			Version:  "1",
			Host:     "https://api.example.com",
			Consumes: []string{"application/json"},
			Produces: []string{"application/json"},
			SecuritySchemes: spec.SecuritySchemes{
				OAuth2: &spec.OAuth2Scheme{Flow: "application", TokenURL: "https://auth.example.com/token"},
			},
		},
		Endpoints: []spec.Endpoint{
			{
				ID:          "e1",
				OperationID: "addPet",
				Method:      "POST",
				Path:        "/pets",
				Consumes:    []string{"application/x-www-form-urlencoded"},
				Body:        &spec.Body{Body: `{"type": "object", "properties": {"name": {"type": "string"}}}`},
				Responses:   []spec.Response{{Codes: []string{"201"}, Body: `{"$ref": "#/definitions/Pet"}`}},
				SecuredBy:   &spec.SecuredBy{OAuth2: &spec.OAuth2Requirement{Scopes: []string{"write"}}},
			},
		},
		Schemas: []spec.SchemaDef{{Name: "Pet", Definition: `{"type": "object"}`}},
	}

	e, err := raml.New(New())
	must.NoError(t, err)
	doc, err := e.Export(p)
	must.NoError(t, err)
	out, err := doc.Render("yaml")
	must.NoError(t, err)

	want := `#%RAML 1.0
title: Pets
version: "1"
baseUri: https://api.example.com
mediaType: application/json
description: Pet API
securitySchemes:
  oauth2:
    type: OAuth 2.0
    settings:
      accessTokenUri: https://auth.example.com/token
      authorizationGrants:
        - client_credentials
/pets:
  displayName: pets
  post:
    displayName: addPet
    body:
      application/x-www-form-urlencoded:
        properties:
          name?:
            type: string
    responses:
      "201":
        body:
          application/json:
            type: Pet
    securedBy:
      - oauth2:
          scopes:
            - write
types:
  Pet:
    type: object
`
	if diff := cmp.Diff(want, string(out)); diff != "" {
		t.Fatalf("rendered document mismatch (-want +got):\n%s", diff)
	}
}
