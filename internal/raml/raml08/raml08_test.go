package raml08

import (
	"strings"
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

func TestDescribe(t *testing.T) {
	t.Parallel()

	root := value.NewMap()
	New().Describe(root, &spec.Project{Description: "About"})
	docs, _ := root.Get("documentation")
	must.Len(t, 1, docs.Items())
	must.Eq(t, "Description", docs.Items()[0].Map().GetString("title"))
	must.Eq(t, "About", docs.Items()[0].Map().GetString("content"))

	empty := value.NewMap()
	New().Describe(empty, &spec.Project{Name: "x"})
	must.Eq(t, 0, empty.Len())
}

func TestMediaType(t *testing.T) {
	t.Parallel()

	f := New()
	got, _ := f.MediaType([]string{"application/xml"}, []string{"application/json", "text/plain"}).AsString()
	must.Eq(t, "application/json", got)
	got, _ = f.MediaType([]string{"application/xml"}, nil).AsString()
	must.Eq(t, "application/xml", got)
	must.True(t, f.MediaType(nil, nil).IsNull())
}

func TestAuthorizationGrants(t *testing.T) {
	t.Parallel()

	f := New()
	for flow, grant := range map[string]string{
		"implicit":    "token",
		"password":    "credentials",
		"application": "owner",
		"accessCode":  "code",
	} {
		must.True(t, value.Equal(value.Strings(grant), f.AuthorizationGrants(flow)))
	}
	must.Eq(t, 0, f.AuthorizationGrants("").Len())
}

func TestMapBody(t *testing.T) {
	t.Parallel()

	f := New()
	named := f.MapBody(parse(t, `{"$ref": "#/definitions/Pet"}`))
	must.Eq(t, "Pet", named.Map().GetString("schema"))

	inline := f.MapBody(parse(t, `{"type": "object", "properties": {"id": {"type": "integer"}}}`))
	text := inline.Map().GetString("schema")
	must.StrContains(t, text, "\n  \"properties\": {")
	must.True(t, value.Equal(parse(t, text), parse(t, `{"type": "object", "properties": {"id": {"type": "integer"}}}`)))
}

func TestMapRequestBodyForm(t *testing.T) {
	t.Parallel()

	got := New().MapRequestBodyForm(parse(t, `{
		"type": "object",
		"required": ["file"],
		"properties": {
			"file": {"type": "file", "description": "upload", "pattern": "x"},
			"meta": {"type": "object"}
		}
	}`))
	want := parse(t, `{"formParameters": {"file": {"type": "file", "description": "upload", "required": true}}}`)
	must.True(t, value.Equal(want, got), must.Sprintf("got %s", got))
}

func TestMapSchemas(t *testing.T) {
	t.Parallel()

	f := New()
	got := f.MapSchemas([]spec.SchemaDef{
		{Name: "Pet", Definition: `{"type": "object"}`},
		{Name: "Bad", Definition: `[`},
		{Name: "Blank"},
	})
	must.Len(t, 1, got.Items())
	must.Eq(t, "{\n  \"type\": \"object\"\n}", got.Items()[0].Map().GetString("Pet"))

	root := value.NewMap()
	f.AddSchemas(root, value.Sequence())
	must.False(t, root.Has("schemas"))
	f.AddSchemas(root, got)
	must.True(t, root.Has("schemas"))
}

func TestTraitsAndSchemes(t *testing.T) {
	t.Parallel()

	f := New()
	traits := f.InitTraits()
	f.AddTrait("Paged", value.NewMap(), traits)
	f.AddTrait("rate limited", value.NewMap(), traits)
	must.Len(t, 2, traits.Items())
	must.Eq(t, []string{"rateLimited"}, traits.Items()[1].Map().Keys())

	schemes := value.NewMap()
	schemes.Set("a", value.Object())
	schemes.Set("b", value.Object())
	list := f.MapSecuritySchemes(schemes)
	must.Len(t, 2, list.Items())
	must.Eq(t, []string{"b"}, list.Items()[1].Map().Keys())

	method := value.NewMap()
	f.SetMethodDisplayName(method, "ignored")
	must.Eq(t, 0, method.Len())
}

func TestExport(t *testing.T) {
	t.Parallel()

	p := &spec.Project{
		Name:        "Pets",
		Description: "Pet API",
		Environment: spec.Environment{
			Version:   "1",
			Host:      "https://api.example.com",
			Produces:  []string{"application/json"},
			Protocols: []string{"https"},
			SecuritySchemes: spec.SecuritySchemes{
				APIKey: &spec.APIKeyScheme{QueryString: []spec.APIKey{{Name: "key", ExternalName: "ApiKey"}}},
			},
		},
		Endpoints: []spec.Endpoint{
			{
				ID:          "e1",
				OperationID: "getPet",
				Method:      "GET",
				Path:        "/pets/{id}",
				PathParams:  `{"type": "object", "properties": {"id": {"type": "integer"}}}`,
				Responses:   []spec.Response{{Codes: []string{"200"}, Body: `{"$ref": "#/definitions/Pet"}`}},
				SecuredBy:   &spec.SecuredBy{APIKey: true},
				Traits:      []string{"t"},
			},
		},
		Schemas: []spec.SchemaDef{{Name: "Pet", Definition: `{"type": "object"}`}},
		Traits:  []spec.Trait{{ID: "t", Name: "Paged", Request: spec.TraitRequest{QueryString: `{"properties": {"page": {"type": "integer"}}}`}}},
		Texts:   []spec.Text{{Name: "Guide", Content: "Read me"}},
	}

	e, err := raml.New(New())
	must.NoError(t, err)
	doc, err := e.Export(p)
	must.NoError(t, err)
	out, err := doc.Render("yaml")
	must.NoError(t, err)

	want := strings.Join([]string{
		"#%RAML 0.8",
		"title: Pets",
		`version: "1"`,
		"baseUri: https://api.example.com",
		"mediaType: application/json",
		"protocols:",
		"  - HTTPS",
		"documentation:",
		"  - title: Pets",
		"    content: Pet API",
		"  - title: Guide",
		"    content: Read me",
		"securitySchemes:",
		"  - ApiKey:",
		"      type: x-api-key",
		"      describedBy:",
		"        queryParameters:",
		"          key:",
		"            type: string",
		"/pets:",
		"  displayName: pets",
		"  /{id}:",
		"    displayName: id",
		"    uriParameters:",
		"      id:",
		"        type: integer",
		"    get:",
		"      is:",
		"        - paged",
		"      responses:",
		"        \"200\":",
		"          body:",
		"            application/json:",
		"              schema: Pet",
		"      securedBy:",
		"        - ApiKey",
		"schemas:",
		"  - Pet: |-",
		"      {",
		"        \"type\": \"object\"",
		"      }",
		"traits:",
		"  - paged:",
		"      queryParameters:",
		"        page:",
		"          type: integer",
		"",
	}, "\n")
	if diff := cmp.Diff(want, string(out)); diff != "" {
		t.Fatalf("rendered document mismatch (-want +got):\n%s", diff)
	}
}
