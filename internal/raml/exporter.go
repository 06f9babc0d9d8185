package raml

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/copystructure"

	"github.com/dyaskur/api-spec-converter/internal/spec"
	"github.com/dyaskur/api-spec-converter/internal/value"
)

// Exporter converts projects into RAML documents of one Format. An Exporter
// holds no per-conversion state and may be reused.
type Exporter struct {
	format Format
	logger hclog.Logger
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithLogger sets the logger used to report dropped input.
func WithLogger(l hclog.Logger) Option {
	return func(e *Exporter) {
		if l != nil {
			e.logger = l
		}
	}
}

// New returns an Exporter for format.
func New(format Format, opts ...Option) (*Exporter, error) {
	if format == nil {
		return nil, ErrNilFormat
	}
	e := &Exporter{format: format, logger: hclog.NewNullLogger()}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// annotationFlags records which annotation types the document uses.
type annotationFlags struct {
	tags, deprecated, externalDocs, info bool
}

// Export assembles the RAML document for p. p is not modified.
func (e *Exporter) Export(p *spec.Project) (*Document, error) {
	if p == nil {
		return nil, errors.New("raml: nil project")
	}
	env := p.Environment
	var flags annotationFlags

	root := value.NewMap()
	root.Set("title", value.String(p.Name))
	root.Set("version", value.String(env.Version))
	if baseURI := env.Host + env.BasePath; baseURI != "" {
		root.Set("baseUri", value.String(baseURI))
	}
	mediaType := e.format.MediaType(env.Consumes, env.Produces)
	if mediaType.IsEmpty() && env.DefaultResponseType != "" {
		mediaType = value.String(env.DefaultResponseType)
	}
	root.Set("mediaType", mediaType)
	if protocols := mapProtocols(env.Protocols); protocols.Len() > 0 {
		root.Set("protocols", protocols)
	}
	e.format.Describe(root, p)

	if env.ExternalDocs != nil {
		flags.externalDocs = true
		root.Set("(externalDocs)", externalDocs(env.ExternalDocs))
	}
	if info := infoAnnotation(env); info != nil {
		flags.info = true
		root.Set("(info)", value.Mapping(info))
	}

	if docs := mapTextSections(p.Texts); len(docs) > 0 {
		existing, _ := root.Get("documentation")
		if !existing.IsSequence() {
			existing = value.Sequence()
		}
		existing.Append(docs...)
		root.Set("documentation", existing)
	}

	if schemes := e.mapSecuritySchemes(env.SecuritySchemes); !schemes.IsEmpty() {
		root.Set("securitySchemes", schemes)
	}

	endpoints, err := e.orderedEndpoints(p.Endpoints, env.ResourcesOrder.EndpointOrder())
	if err != nil {
		return nil, err
	}
	for _, ep := range endpoints {
		method := e.mapMethod(p, ep, mediaType)
		AddMethod(root, strings.Split(ep.Path, "/"), strings.ToLower(ep.Method), method)

		if len(ep.Tags) > 0 {
			flags.tags = true
			method.Set("(tags)", value.Strings(ep.Tags...))
		}
		if ep.Deprecated {
			flags.deprecated = true
			method.Set("(deprecated)", value.Bool(true))
		}
		if ep.ExternalDocs != nil {
			flags.externalDocs = true
			method.Set("(externalDocs)", externalDocs(ep.ExternalDocs))
		}
	}

	if types := annotationTypes(flags); types.Len() > 0 {
		root.Set("annotationTypes", value.Mapping(types))
	}

	if len(p.Schemas) > 0 {
		e.format.AddSchemas(root, e.format.MapSchemas(p.Schemas))
	}

	if len(p.Traits) > 0 {
		root.Set("traits", e.mapTraits(p.Traits))
	}

	for _, key := range root.Keys() {
		if v, _ := root.Get(key); !v.Truthy() {
			root.Delete(key)
		}
	}

	return &Document{Root: root, Version: e.format.Version()}, nil
}

// orderedEndpoints returns a deep copy of endpoints sorted by the resources
// order. Endpoints missing from the order keep their relative order after the
// listed ones.
func (e *Exporter) orderedEndpoints(endpoints []spec.Endpoint, order []string) ([]spec.Endpoint, error) {
	copied, err := copystructure.Copy(endpoints)
	if err != nil {
		return nil, fmt.Errorf("raml: copy endpoints: %w", err)
	}
	out, _ := copied.([]spec.Endpoint)

	rank := make(map[string]int, len(order))
	for i, id := range order {
		if _, seen := rank[id]; !seen {
			rank[id] = i
		}
	}
	position := func(ep spec.Endpoint) int {
		if r, ok := rank[ep.ID]; ok {
			return r
		}
		return len(order)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return position(out[i]) < position(out[j])
	})
	return out, nil
}

// mapMethod builds the method node for one endpoint, including the
// uriParameters AddMethod later moves onto the resource.
func (e *Exporter) mapMethod(p *spec.Project, ep spec.Endpoint, mediaType *value.Value) *value.Map {
	method := value.NewMap()
	name := ep.OperationID
	if name == "" {
		name = ep.Name
	}
	e.format.SetMethodDisplayName(method, name)

	description := ep.Description
	if ep.Summary != "" {
		if description != "" {
			description = ep.Summary + ". " + description
		} else {
			description = ep.Summary
		}
	}
	if description != "" {
		method.Set("description", value.String(description))
	}

	if is := e.endpointTraits(p.Traits, ep); len(is) > 0 {
		method.Set("is", value.Strings(is...))
	}

	// POST, PUT and PATCH without a declared body get no body key: an empty
	// body mapping declares nothing a RAML consumer can use.
	if ep.HasBodyMethod() {
		mime := defaultMimeType(ep.Consumes, mediaType)
		if body := e.mapRequestBody(ep.Body, mime); body.Len() > 0 {
			method.Set("body", value.Mapping(body))
		}
	}

	if headers := mapNamedParams(e.parseSchema(ep.Headers, "headers", "endpoint", ep.ID)); headers.Len() > 0 {
		method.Set("headers", value.Mapping(headers))
	}

	mime := defaultMimeType(ep.Produces, mediaType)
	if responses := e.mapResponses(ep.Responses, mime); responses.Len() > 0 {
		method.Set("responses", value.Mapping(responses))
	}

	if query := mapURIParams(e.parseSchema(ep.QueryString, "queryString", "endpoint", ep.ID)); query.Len() > 0 {
		method.Set("queryParameters", value.Mapping(query))
	}
	if uri := mapURIParams(e.parseSchema(ep.PathParams, "pathParams", "endpoint", ep.ID)); uri.Len() > 0 {
		method.Set("uriParameters", value.Mapping(uri))
	}

	if secured := e.securedBy(ep.SecuredBy, p.Environment.SecuritySchemes); secured != nil {
		method.Set("securedBy", secured)
	}
	return method
}

// mapProtocols keeps HTTP and HTTPS, upper-cased.
func mapProtocols(protocols []string) *value.Value {
	out := value.Sequence()
	for _, p := range protocols {
		switch strings.ToLower(p) {
		case "http", "https":
			out.Append(value.String(strings.ToUpper(p)))
		}
	}
	return out
}

func externalDocs(d *spec.ExternalDocs) *value.Value {
	m := value.NewMap()
	if d.Description != "" {
		m.Set("description", value.String(d.Description))
	}
	m.Set("url", value.String(d.URL))
	return value.Mapping(m)
}

// infoAnnotation returns the (info) annotation value, or nil when the
// environment has no contact, terms or license.
func infoAnnotation(env spec.Environment) *value.Map {
	if env.ContactInfo == nil && env.TermsOfService == "" && env.License == nil {
		return nil
	}
	info := value.NewMap()
	if c := env.ContactInfo; c != nil {
		contact := value.NewMap()
		setNonEmpty(contact, "name", c.Name)
		setNonEmpty(contact, "url", c.URL)
		setNonEmpty(contact, "email", c.Email)
		info.Set("contact", value.Mapping(contact))
	}
	setNonEmpty(info, "termsOfService", env.TermsOfService)
	if l := env.License; l != nil {
		license := value.NewMap()
		setNonEmpty(license, "name", l.Name)
		setNonEmpty(license, "url", l.URL)
		info.Set("license", value.Mapping(license))
	}
	return info
}

func setNonEmpty(m *value.Map, key, s string) {
	if s != "" {
		m.Set(key, value.String(s))
	}
}

// mapTextSections turns project texts into documentation entries. Dividers
// and texts without a name or content are skipped.
func mapTextSections(texts []spec.Text) []*value.Value {
	var docs []*value.Value
	for _, t := range texts {
		if t.Divider || t.Name == "" || t.Content == "" {
			continue
		}
		doc := value.NewMap()
		doc.Set("title", value.String(t.Name))
		doc.Set("content", value.String(t.Content))
		docs = append(docs, value.Mapping(doc))
	}
	return docs
}

func annotationTypes(flags annotationFlags) *value.Map {
	types := value.NewMap()
	if flags.tags {
		types.Set("tags", value.String("string[]"))
	}
	if flags.deprecated {
		types.Set("deprecated", value.String("boolean"))
	}
	if flags.externalDocs {
		types.Set("externalDocs", objectType(
			"description?", value.String("string"),
			"url", value.String("string"),
		))
	}
	if flags.info {
		types.Set("info", objectType(
			"termsOfService?", value.String("string"),
			"contact?", objectType(
				"name?", value.String("string"),
				"url?", value.String("string"),
				"email?", value.String("string"),
			),
			"license?", objectType(
				"name?", value.String("string"),
				"url?", value.String("string"),
			),
		))
	}
	return types
}

// objectType builds {properties: {k1: v1, ...}} from alternating keys and
// values.
func objectType(kv ...any) *value.Value {
	props := value.NewMap()
	for i := 0; i+1 < len(kv); i += 2 {
		props.Set(kv[i].(string), kv[i+1].(*value.Value))
	}
	m := value.NewMap()
	m.Set("properties", value.Mapping(props))
	return value.Mapping(m)
}
