package raml

import (
	"strings"

	"github.com/dyaskur/api-spec-converter/internal/value"
)

var paramDelims = strings.NewReplacer("<", "", ">", "", "{", "", "}", "")

// stripParamDelims removes the <, >, { and } characters.
func stripParamDelims(s string) string { return paramDelims.Replace(s) }

// AddMethod attaches method under methodKey at the resource reached by
// following segments from resource, creating "/segment" children on the way.
// Empty segments are skipped, so "/" and "//a" behave like "" and "/a".
//
// At the leaf, each entry of the method's uriParameters moves to the
// resource's uriParameters when the resource display name contains the
// parameter name; the method never keeps its uriParameters. A method already
// present at methodKey is replaced.
func AddMethod(resource *value.Map, segments []string, methodKey string, method *value.Map) {
	node := resource
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		key := "/" + seg
		child := node.GetMap(key)
		if child == nil {
			child = value.NewMap()
			child.Set("displayName", value.String(stripParamDelims(seg)))
			node.Set(key, value.Mapping(child))
		}
		node = child
	}

	displayName := node.GetString("displayName")
	uriParams := node.EnsureMap("uriParameters")
	for name, param := range method.GetMap("uriParameters").All() {
		if displayName != "" && strings.Contains(displayName, name) {
			uriParams.Set(name, param)
		}
	}
	method.Delete("uriParameters")
	if uriParams.Len() == 0 {
		node.Delete("uriParameters")
	}

	node.Set(methodKey, value.Mapping(method))
}
