package raml

import (
	"github.com/dyaskur/api-spec-converter/internal/spec"
	"github.com/dyaskur/api-spec-converter/internal/value"
)

const (
	defaultOAuth2Name = "oauth2"
	defaultAPIKeyName = "apiKey"
)

func oauth2Name(s *spec.OAuth2Scheme) string {
	if s.Name != "" {
		return s.Name
	}
	return defaultOAuth2Name
}

// apiKeyName resolves the scheme name of an API key scheme. The first header
// key wins over the first query key.
func apiKeyName(s *spec.APIKeyScheme) string {
	var name string
	switch {
	case len(s.Headers) > 0:
		name = s.Headers[0].ExternalName
	case len(s.QueryString) > 0:
		name = s.QueryString[0].ExternalName
	}
	if name == "" {
		return defaultAPIKeyName
	}
	return name
}

func apiKeyDescription(s *spec.APIKeyScheme) string {
	switch {
	case len(s.Headers) > 0:
		return s.Headers[0].Description
	case len(s.QueryString) > 0:
		return s.QueryString[0].Description
	}
	return ""
}

// mapSecuritySchemes builds the scheme definitions keyed by scheme name and
// hands them to the format for shaping.
func (e *Exporter) mapSecuritySchemes(s spec.SecuritySchemes) *value.Value {
	schemes := value.NewMap()

	if o := s.OAuth2; o != nil {
		settings := value.NewMap()
		if o.AuthorizationURL != "" {
			settings.Set("authorizationUri", value.String(o.AuthorizationURL))
		}
		settings.Set("accessTokenUri", value.String(o.TokenURL))
		settings.Set("authorizationGrants", e.format.AuthorizationGrants(o.Flow))
		if len(o.Scopes) > 0 {
			scopes := value.Sequence()
			for _, scope := range o.Scopes {
				scopes.Append(value.String(scope.Name))
			}
			settings.Set("scopes", scopes)
		}

		scheme := value.NewMap()
		scheme.Set("type", value.String("OAuth 2.0"))
		if o.Description != "" {
			scheme.Set("description", value.String(o.Description))
		}
		scheme.Set("settings", value.Mapping(settings))
		schemes.Set(oauth2Name(o), value.Mapping(scheme))
	}

	if b := s.Basic; b != nil {
		if b.Name == "" {
			e.logger.Debug("skipping basic security scheme without a name")
		} else {
			scheme := value.NewMap()
			scheme.Set("type", value.String("Basic Authentication"))
			if b.Description != "" {
				scheme.Set("description", value.String(b.Description))
			}
			schemes.Set(b.Name, value.Mapping(scheme))
		}
	}

	if k := s.APIKey; k != nil {
		describedBy := value.NewMap()
		if len(k.Headers) > 0 {
			describedBy.Set("headers", value.Mapping(apiKeyFields(k.Headers)))
		}
		if len(k.QueryString) > 0 {
			describedBy.Set("queryParameters", value.Mapping(apiKeyFields(k.QueryString)))
		}
		if describedBy.Len() > 0 {
			scheme := value.NewMap()
			scheme.Set("type", value.String(e.format.APIKeyType()))
			scheme.Set("describedBy", value.Mapping(describedBy))
			if d := apiKeyDescription(k); d != "" {
				scheme.Set("description", value.String(d))
			}
			schemes.Set(apiKeyName(k), value.Mapping(scheme))
		}
	}

	return e.format.MapSecuritySchemes(schemes)
}

func apiKeyFields(keys []spec.APIKey) *value.Map {
	fields := value.NewMap()
	for _, key := range keys {
		fields.Set(key.Name, typeOnly("string"))
	}
	return fields
}

// securedBy lists the schemes an endpoint requires. Requirements whose scheme
// is not declared in the environment are dropped.
func (e *Exporter) securedBy(req *spec.SecuredBy, s spec.SecuritySchemes) *value.Value {
	if req == nil {
		return nil
	}
	out := value.Sequence()

	if req.OAuth2 != nil {
		if s.OAuth2 == nil {
			e.logger.Debug("endpoint requires oauth2 but no scheme is declared")
		} else {
			name := oauth2Name(s.OAuth2)
			if len(req.OAuth2.Scopes) > 0 {
				scopes := value.NewMap()
				scopes.Set("scopes", value.Strings(req.OAuth2.Scopes...))
				entry := value.NewMap()
				entry.Set(name, value.Mapping(scopes))
				out.Append(value.Mapping(entry))
			} else {
				out.Append(value.String(name))
			}
		}
	}

	if req.Basic {
		if s.Basic == nil || s.Basic.Name == "" {
			e.logger.Debug("endpoint requires basic auth but no named scheme is declared")
		} else {
			out.Append(value.String(s.Basic.Name))
		}
	}

	if req.APIKey {
		if s.APIKey == nil || len(s.APIKey.Headers)+len(s.APIKey.QueryString) == 0 {
			e.logger.Debug("endpoint requires an api key but no scheme is declared")
		} else {
			out.Append(value.String(apiKeyName(s.APIKey)))
		}
	}

	if out.Len() == 0 {
		return nil
	}
	return out
}
