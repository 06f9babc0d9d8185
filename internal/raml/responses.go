package raml

import (
	"strconv"

	"github.com/dyaskur/api-spec-converter/internal/spec"
	"github.com/dyaskur/api-spec-converter/internal/value"
)

const (
	jsonMediaType      = "application/json"
	multipartMediaType = "multipart/form-data"
	formMediaType      = "application/x-www-form-urlencoded"
)

// mapResponses builds the status code → response mapping. Only the first code
// of each entry is used and it must be a plain unsigned decimal ("default",
// "4XX" and "+200" are skipped). A later entry for a code replaces an earlier
// one.
func (e *Exporter) mapResponses(responses []spec.Response, mimeType string) *value.Map {
	if mimeType == "" {
		mimeType = jsonMediaType
	}
	out := value.NewMap()
	for _, r := range responses {
		if len(r.Codes) == 0 {
			continue
		}
		code := r.Codes[0]
		if n, err := strconv.Atoi(code); err != nil || n < 0 || strconv.Itoa(n) != code {
			e.logger.Debug("skipping response", "code", code)
			continue
		}

		resp := value.NewMap()
		if schema := e.parseSchema(r.Body, "response body", "code", code); !schema.IsEmpty() {
			body := value.NewMap()
			body.Set(mimeType, e.format.MapBody(schema))
			resp.Set("body", value.Mapping(body))
		}
		if r.Description != "" {
			resp.Set("description", value.String(r.Description))
		}
		if headers := mapNamedParams(e.parseSchema(r.Headers, "response headers", "code", code)); headers.Len() > 0 {
			resp.Set("headers", value.Mapping(headers))
		}
		out.Set(code, value.Mapping(resp))
	}
	return out
}

// mapRequestBody maps a request body under mimeType. Form media types go
// through the format's form mapping; any other non-JSON type is stored as
// application/json.
func (e *Exporter) mapRequestBody(b *spec.Body, mimeType string) *value.Map {
	out := value.NewMap()
	if b == nil {
		return out
	}
	schema := e.parseSchema(b.Body, "request body")
	if schema.IsEmpty() {
		return out
	}

	var key string
	var mapped *value.Value
	switch mimeType {
	case multipartMediaType, formMediaType:
		key, mapped = mimeType, e.format.MapRequestBodyForm(schema)
	default:
		key, mapped = jsonMediaType, e.format.MapBody(schema)
	}
	if b.Description != "" {
		if m := mapped.Map(); m != nil {
			m.Set("description", value.String(b.Description))
		}
	}
	out.Set(key, mapped)
	return out
}

// parseSchema parses schema text, logging and returning null when it is not
// valid JSON or YAML.
func (e *Exporter) parseSchema(text spec.JSONText, what string, args ...any) *value.Value {
	v, err := text.Parse()
	if err != nil {
		e.logger.Debug("dropping unparsable schema", append([]any{"field", what, "error", err}, args...)...)
		return value.Null()
	}
	return v
}

// defaultMimeType picks the first endpoint media type, falling back to the
// document media type (a string or the first of a list).
func defaultMimeType(mimeTypes []string, def *value.Value) string {
	if len(mimeTypes) > 0 && mimeTypes[0] != "" {
		return mimeTypes[0]
	}
	if s, ok := def.AsString(); ok {
		return s
	}
	if items := def.Items(); len(items) > 0 {
		s, _ := items[0].AsString()
		return s
	}
	return ""
}
