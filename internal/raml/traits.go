package raml

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dyaskur/api-spec-converter/internal/spec"
	"github.com/dyaskur/api-spec-converter/internal/value"
)

// mapTraits converts the trait registry. Query string, headers and responses
// are mapped independently: a field that fails to parse is left out of its
// trait and logged. Trait response bodies are keyed as application/json
// whatever the document media type is.
func (e *Exporter) mapTraits(traits []spec.Trait) *value.Value {
	out := e.format.InitTraits()
	for _, t := range traits {
		trait := value.NewMap()
		var errs *multierror.Error

		if q, err := t.Request.QueryString.Parse(); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("queryString: %w", err))
		} else if params := mapNamedParams(q); params.Len() > 0 {
			trait.Set("queryParameters", value.Mapping(params))
		}

		if h, err := t.Request.Headers.Parse(); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("headers: %w", err))
		} else if params := mapNamedParams(h); params.Len() > 0 {
			trait.Set("headers", value.Mapping(params))
		}

		if len(t.Responses) > 0 {
			if responses := e.mapResponses(t.Responses, jsonMediaType); responses.Len() > 0 {
				trait.Set("responses", value.Mapping(responses))
			}
		}

		if err := errs.ErrorOrNil(); err != nil {
			e.logger.Debug("trait fields skipped", "trait", t.Name, "error", err)
		}
		e.format.AddTrait(t.Name, trait, out)
	}
	return out
}

// endpointTraits resolves an endpoint's trait ids to camel-cased trait names.
// Unknown ids are skipped.
func (e *Exporter) endpointTraits(traits []spec.Trait, ep spec.Endpoint) []string {
	var names []string
	for _, id := range ep.Traits {
		found := false
		for _, t := range traits {
			if t.ID == id {
				names = append(names, CamelCase(t.Name))
				found = true
				break
			}
		}
		if !found {
			e.logger.Debug("endpoint references unknown trait", "endpoint", ep.ID, "trait", id)
		}
	}
	return names
}

// CamelCase joins the words of s in lower camel case: "Paginated Results"
// becomes "paginatedResults", "HTTPRequest" becomes "httpRequest".
func CamelCase(s string) string {
	// Casers keep state and cannot be shared between goroutines.
	lowerCaser, titleCaser := cases.Lower(language.Und), cases.Title(language.Und)
	var b strings.Builder
	for i, w := range splitWords(s) {
		if i == 0 {
			b.WriteString(lowerCaser.String(w))
			continue
		}
		b.WriteString(titleCaser.String(w))
	}
	return b.String()
}

// splitWords splits on anything that is not a letter or digit, on
// lower-to-upper changes, before the last capital of an acronym followed by
// a lower-case letter, and between letters and digits.
func splitWords(s string) []string {
	rs := []rune(s)
	var words []string
	start := -1
	flush := func(end int) {
		if start >= 0 && end > start {
			words = append(words, string(rs[start:end]))
		}
		start = -1
	}
	for i, r := range rs {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush(i)
			continue
		}
		if start < 0 {
			start = i
			continue
		}
		prev := rs[i-1]
		switch {
		case unicode.IsDigit(r) != unicode.IsDigit(prev),
			unicode.IsLower(prev) && unicode.IsUpper(r),
			unicode.IsUpper(prev) && unicode.IsUpper(r) && i+1 < len(rs) && unicode.IsLower(rs[i+1]):
			flush(i)
			start = i
		}
	}
	flush(len(rs))
	return words
}
