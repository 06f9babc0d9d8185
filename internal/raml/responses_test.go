package raml

import (
	"testing"

	"github.com/shoenig/test/must"

	"github.com/dyaskur/api-spec-converter/internal/spec"
	"github.com/dyaskur/api-spec-converter/internal/value"
)

func TestMapResponses_SkipsNonIntegerCodes(t *testing.T) {
	t.Parallel()

	responses := []spec.Response{
		{Codes: []string{"200"}, Description: "ok"},
		{Codes: []string{"default"}},
		{Codes: []string{"4XX"}},
		{Codes: []string{"+200"}},
		{Codes: []string{"-1"}},
		{Codes: []string{"0200"}},
		{Codes: []string{" 200"}},
		{},
	}
	got := newStubExporter(t).mapResponses(responses, "")
	must.Eq(t, []string{"200"}, got.Keys())
	must.Eq(t, "ok", got.GetMap("200").GetString("description"))
	must.False(t, got.GetMap("200").Has("body"))
}

func TestMapResponses_BodyAndHeaders(t *testing.T) {
	t.Parallel()

	responses := []spec.Response{
		{
			Codes:       []string{"201", "202"},
			Description: "created",
			Body:        `{"$ref": "#/definitions/Pet"}`,
			Headers:     `{"type": "object", "properties": {"Location": {"type": "string"}}}`,
		},
		{Codes: []string{"404"}, Body: `{not json`},
	}
	got := newStubExporter(t).mapResponses(responses, "application/xml")
	must.Eq(t, []string{"201", "404"}, got.Keys())

	created := got.GetMap("201")
	must.Eq(t, []string{"body", "description", "headers"}, created.Keys())
	schema := created.GetMap("body").GetMap("application/xml").GetMap("schema")
	must.Eq(t, "Pet", schema.GetString("type"))
	must.Eq(t, "string", created.GetMap("headers").GetMap("Location").GetString("type"))

	must.Eq(t, 0, got.GetMap("404").Len())
}

func TestMapResponses_LaterCodeWins(t *testing.T) {
	t.Parallel()

	responses := []spec.Response{
		{Codes: []string{"200"}, Description: "first"},
		{Codes: []string{"500"}, Description: "error"},
		{Codes: []string{"200"}, Description: "second"},
	}
	got := newStubExporter(t).mapResponses(responses, jsonMediaType)
	must.Eq(t, []string{"200", "500"}, got.Keys())
	must.Eq(t, "second", got.GetMap("200").GetString("description"))
}

func TestMapRequestBody(t *testing.T) {
	t.Parallel()

	e := newStubExporter(t)
	body := &spec.Body{Body: `{"type": "object", "properties": {"a": {"type": "string"}}}`, Description: "payload"}

	t.Run("form", func(t *testing.T) {
		got := e.mapRequestBody(body, formMediaType)
		must.Eq(t, []string{formMediaType}, got.Keys())
		must.Eq(t, "payload", got.GetMap(formMediaType).GetString("description"))
		must.True(t, got.GetMap(formMediaType).Has("form"))
	})

	t.Run("other types are keyed as json", func(t *testing.T) {
		got := e.mapRequestBody(body, "text/plain")
		must.Eq(t, []string{jsonMediaType}, got.Keys())
		must.True(t, got.GetMap(jsonMediaType).Has("schema"))
	})

	t.Run("empty", func(t *testing.T) {
		must.Eq(t, 0, e.mapRequestBody(nil, jsonMediaType).Len())
		must.Eq(t, 0, e.mapRequestBody(&spec.Body{Body: "  "}, jsonMediaType).Len())
		must.Eq(t, 0, e.mapRequestBody(&spec.Body{Body: "{}"}, jsonMediaType).Len())
	})
}

func TestDefaultMimeType(t *testing.T) {
	t.Parallel()

	must.Eq(t, "text/csv", defaultMimeType([]string{"text/csv"}, value.String("application/json")))
	must.Eq(t, "application/json", defaultMimeType(nil, value.String("application/json")))
	must.Eq(t, "application/xml", defaultMimeType([]string{""}, value.Strings("application/xml", "text/plain")))
	must.Eq(t, "", defaultMimeType(nil, value.Null()))
}
