package spec

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"
)

var (
	jsonTextType          = reflect.TypeOf(JSONText(""))
	oauth2RequirementType = reflect.TypeOf(OAuth2Requirement{})
)

// DecodeProject decodes a project file (YAML or JSON). Field names match
// case-insensitively, so both "endpoints" and "Endpoints" are accepted.
func DecodeProject(data []byte) (*Project, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse project: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("parse project: document is empty")
	}
	return decodeProjectMap(raw)
}

func decodeProjectMap(raw map[string]any) (*Project, error) {
	var p Project
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &p,
		WeaklyTypedInput: true,
		// oauth2RequirementHook may return nil, so it runs last.
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			jsonTextHook,
			mapstructure.StringToSliceHookFunc(","),
			oauth2RequirementHook,
		),
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("decode project: %w", err)
	}
	return &p, nil
}

// isProjectDocument reports whether a decoded root looks like a project file
// rather than an OpenAPI or Swagger document.
func isProjectDocument(root map[string]any) bool {
	for k := range root {
		if strings.EqualFold(k, "endpoints") {
			return true
		}
	}
	return false
}

// jsonTextHook lets schema-bearing fields be written inline as mappings or
// sequences. Inline content is re-encoded as JSON; Go map decoding loses the
// original key order, so keys come out sorted.
func jsonTextHook(from, to reflect.Type, data any) (any, error) {
	if to != jsonTextType {
		return data, nil
	}
	switch data.(type) {
	case map[string]any, []any:
		encoded, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		return string(encoded), nil
	}
	return data, nil
}

// oauth2RequirementHook accepts securedBy.oauth2 as a boolean or as a bare
// list of scope names.
func oauth2RequirementHook(from, to reflect.Type, data any) (any, error) {
	if to != oauth2RequirementType && to != reflect.PointerTo(oauth2RequirementType) {
		return data, nil
	}
	switch v := data.(type) {
	case bool:
		if !v {
			return nil, nil
		}
		return map[string]any{"scopes": []any{}}, nil
	case []any:
		return map[string]any{"scopes": v}, nil
	case string:
		return map[string]any{"scopes": v}, nil
	}
	return data, nil
}
