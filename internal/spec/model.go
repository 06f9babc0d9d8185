package spec

import (
	"strings"

	"github.com/dyaskur/api-spec-converter/internal/value"
)

// Flat, endpoint-centric project model consumed by the exporters. Field tags
// follow the project-file layout read by DecodeProject.

type HttpMethod string

const (
	GET     HttpMethod = "get"
	POST    HttpMethod = "post"
	PUT     HttpMethod = "put"
	DELETE  HttpMethod = "delete"
	PATCH   HttpMethod = "patch"
	HEAD    HttpMethod = "head"
	OPTIONS HttpMethod = "options"
	TRACE   HttpMethod = "trace"
)

type Project struct {
	Name        string      `mapstructure:"name"`
	Description string      `mapstructure:"description"`
	Environment Environment `mapstructure:"environment"`
	Endpoints   []Endpoint  `mapstructure:"endpoints"`
	Schemas     []SchemaDef `mapstructure:"schemas"`
	Traits      []Trait     `mapstructure:"traits"`
	Texts       []Text      `mapstructure:"texts"`
}

type Environment struct {
	Version             string          `mapstructure:"version"`
	Host                string          `mapstructure:"host"`
	BasePath            string          `mapstructure:"basePath"`
	Protocols           []string        `mapstructure:"protocols"`
	DefaultResponseType string          `mapstructure:"defaultResponseType"`
	Consumes            []string        `mapstructure:"consumes"`
	Produces            []string        `mapstructure:"produces"`
	ExternalDocs        *ExternalDocs   `mapstructure:"externalDocs"`
	ContactInfo         *Contact        `mapstructure:"contactInfo"`
	TermsOfService      string          `mapstructure:"termsOfService"`
	License             *License        `mapstructure:"license"`
	SecuritySchemes     SecuritySchemes `mapstructure:"securitySchemes"`
	ResourcesOrder      ResourcesOrder  `mapstructure:"resourcesOrder"`
}

type ExternalDocs struct {
	Description string `mapstructure:"description"`
	URL         string `mapstructure:"url"`
}

type Contact struct {
	Name  string `mapstructure:"name"`
	URL   string `mapstructure:"url"`
	Email string `mapstructure:"email"`
}

type License struct {
	Name string `mapstructure:"name"`
	URL  string `mapstructure:"url"`
}

// SecuritySchemes holds at most one scheme of each supported kind.
type SecuritySchemes struct {
	OAuth2 *OAuth2Scheme `mapstructure:"oauth2"`
	Basic  *BasicScheme  `mapstructure:"basic"`
	APIKey *APIKeyScheme `mapstructure:"apiKey"`
}

type OAuth2Scheme struct {
	Name             string  `mapstructure:"name"`
	Description      string  `mapstructure:"description"`
	Flow             string  `mapstructure:"flow"` // implicit|password|application|accessCode
	AuthorizationURL string  `mapstructure:"authorizationUrl"`
	TokenURL         string  `mapstructure:"tokenUrl"`
	Scopes           []Scope `mapstructure:"scopes"`
}

type Scope struct {
	Name  string `mapstructure:"name"`
	Value string `mapstructure:"value"`
}

type BasicScheme struct {
	Name        string `mapstructure:"name"`
	Description string `mapstructure:"description"`
}

type APIKeyScheme struct {
	Headers     []APIKey `mapstructure:"headers"`
	QueryString []APIKey `mapstructure:"queryString"`
}

// APIKey is one key delivery: Name is the header or query parameter name,
// ExternalName the scheme name endpoints refer to.
type APIKey struct {
	Name         string `mapstructure:"name"`
	ExternalName string `mapstructure:"externalName"`
	Description  string `mapstructure:"description"`
}

// ResourcesOrder is the document-ordering hint: groups of typed item references.
type ResourcesOrder struct {
	Docs []OrderGroup `mapstructure:"docs"`
}

type OrderGroup struct {
	Name  string      `mapstructure:"name"`
	Items []OrderItem `mapstructure:"items"`
}

type OrderItem struct {
	Type string `mapstructure:"type"` // endpoints|schemas|texts|traits
	ID   string `mapstructure:"_id"`
}

// EndpointOrder flattens the resources order into the ordered list of
// endpoint ids.
func (o ResourcesOrder) EndpointOrder() []string {
	var ids []string
	for _, group := range o.Docs {
		for _, item := range group.Items {
			if item.Type == "endpoints" && item.ID != "" {
				ids = append(ids, item.ID)
			}
		}
	}
	return ids
}

type Endpoint struct {
	ID           string        `mapstructure:"_id"`
	Name         string        `mapstructure:"name"`
	OperationID  string        `mapstructure:"operationId"`
	Summary      string        `mapstructure:"summary"`
	Description  string        `mapstructure:"description"`
	Method       string        `mapstructure:"method"`
	Path         string        `mapstructure:"path"`
	Consumes     []string      `mapstructure:"consumes"`
	Produces     []string      `mapstructure:"produces"`
	Body         *Body         `mapstructure:"body"`
	Responses    []Response    `mapstructure:"responses"`
	Headers      JSONText      `mapstructure:"headers"`
	QueryString  JSONText      `mapstructure:"queryString"`
	PathParams   JSONText      `mapstructure:"pathParams"`
	Traits       []string      `mapstructure:"traits"`
	SecuredBy    *SecuredBy    `mapstructure:"securedBy"`
	Tags         []string      `mapstructure:"tags"`
	Deprecated   bool          `mapstructure:"deprecated"`
	ExternalDocs *ExternalDocs `mapstructure:"externalDocs"`
}

// HasBodyMethod reports whether the endpoint's method carries a request body.
func (e Endpoint) HasBodyMethod() bool {
	switch HttpMethod(strings.ToLower(e.Method)) {
	case POST, PUT, PATCH:
		return true
	}
	return false
}

type Body struct {
	Body        JSONText `mapstructure:"body"`
	Description string   `mapstructure:"description"`
}

type Response struct {
	Codes       []string `mapstructure:"codes"`
	Body        JSONText `mapstructure:"body"`
	Description string   `mapstructure:"description"`
	Headers     JSONText `mapstructure:"headers"`
}

// SecuredBy lists the schemes an endpoint requires. A non-nil OAuth2 with no
// scopes still requires the OAuth2 scheme.
type SecuredBy struct {
	OAuth2 *OAuth2Requirement `mapstructure:"oauth2"`
	Basic  bool               `mapstructure:"basic"`
	APIKey bool               `mapstructure:"apiKey"`
}

type OAuth2Requirement struct {
	Scopes []string `mapstructure:"scopes"`
}

type SchemaDef struct {
	Name        string   `mapstructure:"name"`
	Description string   `mapstructure:"description"`
	Definition  JSONText `mapstructure:"definition"`
}

type Trait struct {
	ID        string       `mapstructure:"_id"`
	Name      string       `mapstructure:"name"`
	Request   TraitRequest `mapstructure:"request"`
	Responses []Response   `mapstructure:"responses"`
}

type TraitRequest struct {
	QueryString JSONText `mapstructure:"queryString"`
	Headers     JSONText `mapstructure:"headers"`
}

type Text struct {
	Name    string `mapstructure:"name"`
	Content string `mapstructure:"content"`
	Divider bool   `mapstructure:"divider"`
}

// JSONText is schema-bearing text, JSON or YAML.
type JSONText string

// Parse decodes the text. Blank text yields null.
func (t JSONText) Parse() (*value.Value, error) {
	if t.IsBlank() {
		return value.Null(), nil
	}
	return value.Parse([]byte(t))
}

func (t JSONText) IsBlank() bool { return strings.TrimSpace(string(t)) == "" }
