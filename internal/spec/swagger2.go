package spec

import (
	"strings"

	"gopkg.in/yaml.v3"
)

const multipartForm = "multipart/form-data"

var swagger2Methods = map[string]bool{
	"get": true, "post": true, "put": true, "delete": true,
	"patch": true, "options": true, "head": true,
}

// swagger2Hints holds root-level Swagger 2 media types. They have no OpenAPI 3
// counterpart and are lost by the conversion.
type swagger2Hints struct {
	Consumes []string
	Produces []string
}

func (h swagger2Hints) apply(env *Environment) {
	if len(h.Consumes) > 0 {
		env.Consumes = h.Consumes
	}
	if len(h.Produces) > 0 {
		env.Produces = h.Produces
	}
}

// prepareSwagger2 repairs operations the converter rejects and collects the
// root media types. Operations with several body parameters get one merged
// object body; operations mixing body and formData parameters get their body
// parameters turned into form fields. The original bytes come back unchanged
// when nothing needed repair.
func prepareSwagger2(data []byte) ([]byte, swagger2Hints, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return data, swagger2Hints{}, err
	}
	hints := swagger2Hints{
		Consumes: stringList(doc["consumes"]),
		Produces: stringList(doc["produces"]),
	}

	paths, _ := doc["paths"].(map[string]any)
	repaired := false
	for _, item := range paths {
		ops, _ := item.(map[string]any)
		for method, raw := range ops {
			if !swagger2Methods[strings.ToLower(method)] {
				continue
			}
			if op, _ := raw.(map[string]any); op != nil && repairOperation(op) {
				repaired = true
			}
		}
	}
	if !repaired {
		return data, hints, nil
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return data, hints, err
	}
	return out, hints, nil
}

func repairOperation(op map[string]any) bool {
	params, _ := op["parameters"].([]any)
	var bodies, rest []map[string]any
	hasForm := false
	for _, raw := range params {
		p, _ := raw.(map[string]any)
		if p == nil {
			continue
		}
		switch in, _ := p["in"].(string); {
		case strings.EqualFold(in, "body"):
			bodies = append(bodies, p)
		case strings.EqualFold(in, "formData"):
			hasForm = true
			rest = append(rest, p)
		default:
			rest = append(rest, p)
		}
	}

	switch {
	case len(bodies) > 0 && hasForm:
		out := make([]any, 0, len(params))
		for _, raw := range params {
			p, _ := raw.(map[string]any)
			if p == nil {
				continue
			}
			if in, _ := p["in"].(string); strings.EqualFold(in, "body") {
				out = append(out, bodyToFormField(p))
				continue
			}
			out = append(out, p)
		}
		op["parameters"] = out
		consumes, _ := op["consumes"].([]any)
		if !containsString(consumes, multipartForm) {
			op["consumes"] = append(consumes, multipartForm)
		}
		return true

	case len(bodies) > 1:
		props := map[string]any{}
		var required []any
		for _, p := range bodies {
			name := paramName(p)
			props[name] = paramSchemaOf(p)
			if req, _ := p["required"].(bool); req {
				required = append(required, name)
			}
		}
		schema := map[string]any{"type": "object", "properties": props}
		if len(required) > 0 {
			schema["required"] = required
		}
		out := []any{map[string]any{"in": "body", "name": "body", "schema": schema}}
		for _, p := range rest {
			out = append(out, p)
		}
		op["parameters"] = out
		return true
	}
	return false
}

func paramName(p map[string]any) string {
	if name, _ := p["name"].(string); name != "" {
		return name
	}
	return "field"
}

// paramSchemaOf returns the parameter's schema, synthesizing one from the
// primitive type fields when absent.
func paramSchemaOf(p map[string]any) map[string]any {
	if s, ok := p["schema"].(map[string]any); ok {
		return s
	}
	typ, _ := p["type"].(string)
	if typ == "" {
		return map[string]any{"type": "string"}
	}
	s := map[string]any{"type": typ}
	if items, ok := p["items"].(map[string]any); ok {
		s["items"] = items
	}
	if f, _ := p["format"].(string); f != "" {
		s["format"] = f
	}
	return s
}

// bodyToFormField degrades a body parameter into a formData field. Referenced
// object schemas cannot be form fields and become strings.
func bodyToFormField(p map[string]any) map[string]any {
	field := map[string]any{"in": "formData", "name": paramName(p)}
	if d, _ := p["description"].(string); d != "" {
		field["description"] = d
	}
	if req, ok := p["required"].(bool); ok {
		field["required"] = req
	}
	s := paramSchemaOf(p)
	typ, _ := s["type"].(string)
	if typ == "" || typ == "object" {
		typ = "string"
	}
	field["type"] = typ
	if items, ok := s["items"]; ok && typ == "array" {
		field["items"] = items
	}
	if f, _ := s["format"].(string); f != "" {
		field["format"] = f
	}
	return field
}

func stringList(v any) []string {
	list, _ := v.([]any)
	var out []string
	for _, item := range list {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}

func containsString(list []any, want string) bool {
	for _, v := range list {
		if s, ok := v.(string); ok && s == want {
			return true
		}
	}
	return false
}
