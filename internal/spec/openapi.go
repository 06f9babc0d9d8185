package spec

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/dyaskur/api-spec-converter/internal/value"
)

const jsonMediaType = "application/json"

// FromOpenAPI converts an OpenAPI v3 document into a Project. Paths and
// methods are visited in a stable order so the endpoint list is deterministic.
func FromOpenAPI(doc *openapi3.T) (*Project, error) {
	if doc == nil {
		return nil, fmt.Errorf("nil document")
	}

	p := &Project{}
	if doc.Info != nil {
		p.Name = safeStr(doc.Info.Title)
		p.Description = safeStr(doc.Info.Description)
		p.Environment.Version = safeStr(doc.Info.Version)
		p.Environment.TermsOfService = safeStr(doc.Info.TermsOfService)
		if c := doc.Info.Contact; c != nil {
			p.Environment.ContactInfo = &Contact{Name: safeStr(c.Name), URL: safeStr(c.URL), Email: safeStr(c.Email)}
		}
		if l := doc.Info.License; l != nil {
			p.Environment.License = &License{Name: safeStr(l.Name), URL: safeStr(l.URL)}
		}
	}
	if doc.ExternalDocs != nil {
		p.Environment.ExternalDocs = &ExternalDocs{Description: safeStr(doc.ExternalDocs.Description), URL: safeStr(doc.ExternalDocs.URL)}
	}
	applyServers(&p.Environment, doc.Servers)

	kinds := map[string]string{}
	if doc.Components != nil {
		p.Schemas = schemaDefs(doc.Components.Schemas)
		p.Environment.SecuritySchemes, kinds = securitySchemes(doc.Components.SecuritySchemes)
	}

	consumes := map[string]struct{}{}
	produces := map[string]struct{}{}

	pathKeys := make([]string, 0, len(doc.Paths))
	for path := range doc.Paths {
		pathKeys = append(pathKeys, path)
	}
	sort.Strings(pathKeys)

	for _, path := range pathKeys {
		item := doc.Paths[path]
		if item == nil {
			continue
		}
		// Path-level parameters first, overridden by operation-level ones.
		baseParams := make(map[string]*openapi3.Parameter)
		var baseOrder []string
		for _, pref := range item.Parameters {
			if pref == nil || pref.Value == nil {
				continue
			}
			k := paramKey(pref.Value.In, pref.Value.Name)
			if _, seen := baseParams[k]; !seen {
				baseOrder = append(baseOrder, k)
			}
			baseParams[k] = pref.Value
		}

		ops := []struct {
			m HttpMethod
			o *openapi3.Operation
		}{
			{GET, item.Get},
			{POST, item.Post},
			{PUT, item.Put},
			{DELETE, item.Delete},
			{PATCH, item.Patch},
			{HEAD, item.Head},
			{OPTIONS, item.Options},
			{TRACE, item.Trace},
		}
		for _, pair := range ops {
			if pair.o == nil {
				continue
			}
			op := pair.o

			merged := make(map[string]*openapi3.Parameter, len(baseParams))
			order := append([]string(nil), baseOrder...)
			for k, v := range baseParams {
				merged[k] = v
			}
			for _, pref := range op.Parameters {
				if pref == nil || pref.Value == nil {
					continue
				}
				k := paramKey(pref.Value.In, pref.Value.Name)
				if _, seen := merged[k]; !seen {
					order = append(order, k)
				}
				merged[k] = pref.Value
			}
			params := make([]*openapi3.Parameter, 0, len(order))
			for _, k := range order {
				params = append(params, merged[k])
			}

			ep := Endpoint{
				ID:          string(pair.m) + " " + path,
				Name:        firstNonEmpty(safeStr(op.Summary), safeStr(op.OperationID), strings.ToUpper(string(pair.m))+" "+path),
				OperationID: safeStr(op.OperationID),
				Summary:     safeStr(op.Summary),
				Description: safeStr(op.Description),
				Method:      string(pair.m),
				Path:        path,
				Headers:     paramSchema(params, openapi3.ParameterInHeader),
				QueryString: paramSchema(params, openapi3.ParameterInQuery),
				PathParams:  paramSchema(params, openapi3.ParameterInPath),
				Deprecated:  op.Deprecated,
			}
			for _, t := range op.Tags {
				if t = strings.TrimSpace(t); t != "" {
					ep.Tags = append(ep.Tags, t)
				}
			}
			if op.ExternalDocs != nil {
				ep.ExternalDocs = &ExternalDocs{Description: safeStr(op.ExternalDocs.Description), URL: safeStr(op.ExternalDocs.URL)}
			}

			if rb := op.RequestBody; rb != nil && rb.Value != nil {
				ep.Consumes = mediaTypes(rb.Value.Content)
				body := &Body{Description: safeStr(rb.Value.Description)}
				if len(ep.Consumes) > 0 {
					body.Body = schemaText(rb.Value.Content[ep.Consumes[0]].Schema)
				}
				ep.Body = body
				for _, mt := range ep.Consumes {
					consumes[mt] = struct{}{}
				}
			}

			ep.Responses, ep.Produces = responses(op.Responses)
			for _, mt := range ep.Produces {
				produces[mt] = struct{}{}
			}

			security := doc.Security
			if op.Security != nil {
				security = *op.Security
			}
			ep.SecuredBy = securedBy(security, kinds)

			p.Endpoints = append(p.Endpoints, ep)
		}
	}

	p.Environment.Consumes = sortedKeys(consumes)
	p.Environment.Produces = sortedKeys(produces)
	return p, nil
}

func paramKey(in, name string) string { return in + ":" + name }

func safeStr(s string) string { return strings.TrimSpace(s) }

func firstNonEmpty(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}
	return ""
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// applyServers derives host, base path and protocols from the server list.
// The first server with a URL decides host (scheme included) and base path.
func applyServers(env *Environment, servers openapi3.Servers) {
	seen := map[string]bool{}
	for _, s := range servers {
		if s == nil || strings.TrimSpace(s.URL) == "" {
			continue
		}
		u, err := url.Parse(strings.TrimSpace(s.URL))
		if err != nil {
			continue
		}
		if env.Host == "" && env.BasePath == "" {
			env.Host = u.Host
			if u.Scheme != "" && u.Host != "" {
				env.Host = u.Scheme + "://" + u.Host
			}
			env.BasePath = strings.TrimSuffix(u.Path, "/")
		}
		if scheme := strings.ToLower(u.Scheme); scheme != "" && !seen[scheme] {
			seen[scheme] = true
			env.Protocols = append(env.Protocols, scheme)
		}
	}
}

func schemaDefs(schemas openapi3.Schemas) []SchemaDef {
	names := make([]string, 0, len(schemas))
	for name := range schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	var out []SchemaDef
	for _, name := range names {
		ref := schemas[name]
		if ref == nil {
			continue
		}
		def := SchemaDef{Name: name, Definition: schemaText(ref)}
		if ref.Value != nil {
			def.Description = safeStr(ref.Value.Description)
		}
		out = append(out, def)
	}
	return out
}

// securitySchemes maps component security schemes onto the three supported
// kinds. The returned map records the kind of every scheme name so operation
// requirements can be resolved.
func securitySchemes(refs openapi3.SecuritySchemes) (SecuritySchemes, map[string]string) {
	var out SecuritySchemes
	kinds := map[string]string{}

	names := make([]string, 0, len(refs))
	for name := range refs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		ref := refs[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		s := ref.Value
		switch strings.ToLower(s.Type) {
		case "oauth2":
			kinds[name] = "oauth2"
			if out.OAuth2 == nil {
				out.OAuth2 = oauth2Scheme(name, s)
			}
		case "http":
			if strings.EqualFold(s.Scheme, "basic") {
				kinds[name] = "basic"
				if out.Basic == nil {
					out.Basic = &BasicScheme{Name: name, Description: safeStr(s.Description)}
				}
			}
		case "apikey":
			key := APIKey{Name: s.Name, ExternalName: name, Description: safeStr(s.Description)}
			switch s.In {
			case "header":
				kinds[name] = "apiKey"
				if out.APIKey == nil {
					out.APIKey = &APIKeyScheme{}
				}
				out.APIKey.Headers = append(out.APIKey.Headers, key)
			case "query":
				kinds[name] = "apiKey"
				if out.APIKey == nil {
					out.APIKey = &APIKeyScheme{}
				}
				out.APIKey.QueryString = append(out.APIKey.QueryString, key)
			}
		}
	}
	return out, kinds
}

func oauth2Scheme(name string, s *openapi3.SecurityScheme) *OAuth2Scheme {
	o := &OAuth2Scheme{Name: name, Description: safeStr(s.Description)}
	if s.Flows == nil {
		return o
	}
	var flow *openapi3.OAuthFlow
	switch {
	case s.Flows.AuthorizationCode != nil:
		o.Flow, flow = "accessCode", s.Flows.AuthorizationCode
	case s.Flows.Implicit != nil:
		o.Flow, flow = "implicit", s.Flows.Implicit
	case s.Flows.Password != nil:
		o.Flow, flow = "password", s.Flows.Password
	case s.Flows.ClientCredentials != nil:
		o.Flow, flow = "application", s.Flows.ClientCredentials
	default:
		return o
	}
	o.AuthorizationURL = flow.AuthorizationURL
	o.TokenURL = flow.TokenURL
	scopes := make([]string, 0, len(flow.Scopes))
	for scope := range flow.Scopes {
		scopes = append(scopes, scope)
	}
	sort.Strings(scopes)
	for _, scope := range scopes {
		o.Scopes = append(o.Scopes, Scope{Name: scope, Value: flow.Scopes[scope]})
	}
	return o
}

func securedBy(reqs openapi3.SecurityRequirements, kinds map[string]string) *SecuredBy {
	if len(reqs) == 0 {
		return nil
	}
	var sb SecuredBy
	found := false
	for _, req := range reqs {
		for name, scopes := range req {
			switch kinds[name] {
			case "oauth2":
				if sb.OAuth2 == nil {
					sb.OAuth2 = &OAuth2Requirement{}
				}
				sb.OAuth2.Scopes = append(sb.OAuth2.Scopes, scopes...)
				found = true
			case "basic":
				sb.Basic, found = true, true
			case "apiKey":
				sb.APIKey, found = true, true
			}
		}
	}
	if !found {
		return nil
	}
	if sb.OAuth2 != nil {
		sort.Strings(sb.OAuth2.Scopes)
		sb.OAuth2.Scopes = compactStrings(sb.OAuth2.Scopes)
	}
	return &sb
}

func compactStrings(sorted []string) []string {
	out := sorted[:0]
	for i, s := range sorted {
		if i == 0 || s != sorted[i-1] {
			out = append(out, s)
		}
	}
	return out
}

func responses(rs openapi3.Responses) ([]Response, []string) {
	codes := make([]string, 0, len(rs))
	for code := range rs {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	var out []Response
	produces := map[string]struct{}{}
	for _, code := range codes {
		ref := rs[code]
		if ref == nil || ref.Value == nil {
			continue
		}
		r := Response{Codes: []string{code}}
		if ref.Value.Description != nil {
			r.Description = safeStr(*ref.Value.Description)
		}
		if mts := mediaTypes(ref.Value.Content); len(mts) > 0 {
			r.Body = schemaText(ref.Value.Content[mts[0]].Schema)
			for _, mt := range mts {
				produces[mt] = struct{}{}
			}
		}
		r.Headers = headerSchema(ref.Value.Headers)
		out = append(out, r)
	}
	return out, preferJSON(sortedKeys(produces))
}

// mediaTypes lists the content types in stable order, JSON first.
func mediaTypes(content openapi3.Content) []string {
	keys := make([]string, 0, len(content))
	for k, mt := range content {
		if mt != nil {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return preferJSON(keys)
}

func preferJSON(keys []string) []string {
	for i, k := range keys {
		if k == jsonMediaType && i > 0 {
			out := append([]string{k}, keys[:i]...)
			return append(out, keys[i+1:]...)
		}
	}
	return keys
}

// paramSchema folds the parameters located in `in` into one object schema,
// the shape used for headers, query strings and path parameters.
func paramSchema(params []*openapi3.Parameter, in string) JSONText {
	props := value.NewMap()
	var required []string
	for _, p := range params {
		if p.In != in {
			continue
		}
		prop := schemaValue(p.Schema)
		if !prop.IsMapping() {
			prop = value.Object()
		}
		if d := safeStr(p.Description); d != "" && !prop.Map().Has("description") {
			prop.Map().Set("description", value.String(d))
		}
		if p.Example != nil && !prop.Map().Has("example") {
			prop.Map().Set("example", value.FromAny(p.Example))
		}
		props.Set(p.Name, prop)
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return objectSchema(props, required)
}

func headerSchema(headers openapi3.Headers) JSONText {
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)
	params := make([]*openapi3.Parameter, 0, len(names))
	for _, name := range names {
		ref := headers[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		p := ref.Value.Parameter
		p.Name, p.In = name, openapi3.ParameterInHeader
		params = append(params, &p)
	}
	return paramSchema(params, openapi3.ParameterInHeader)
}

func objectSchema(props *value.Map, required []string) JSONText {
	if props.Len() == 0 {
		return ""
	}
	m := value.NewMap()
	m.Set("type", value.String("object"))
	m.Set("properties", value.Mapping(props))
	if len(required) > 0 {
		m.Set("required", value.Strings(required...))
	}
	return JSONText(value.Mapping(m).String())
}

// schemaValue renders a schema reference the way it appears in the document:
// a {"$ref": ...} object for references, the inline schema otherwise.
func schemaValue(ref *openapi3.SchemaRef) *value.Value {
	if ref == nil {
		return value.Null()
	}
	data, err := json.Marshal(ref)
	if err != nil {
		return value.Null()
	}
	v, err := value.Parse(data)
	if err != nil {
		return value.Null()
	}
	return v
}

func schemaText(ref *openapi3.SchemaRef) JSONText {
	v := schemaValue(ref)
	if v.IsNull() {
		return ""
	}
	return JSONText(v.String())
}
