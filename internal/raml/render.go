package raml

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/dyaskur/api-spec-converter/internal/value"
)

var (
	// ErrNilFormat is returned by New when no Format is given.
	ErrNilFormat = errors.New("raml: format is nil")

	// ErrUnsupportedFormat matches every *UnsupportedFormatError.
	ErrUnsupportedFormat = errors.New("raml: unsupported output format")
)

// UnsupportedFormatError reports a render request for a syntax RAML cannot be
// written in.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("raml: RAML does not support %q format", e.Format)
}

func (e *UnsupportedFormatError) Is(target error) bool { return target == ErrUnsupportedFormat }

// Document is an assembled RAML document.
type Document struct {
	Root    *value.Map
	Version string
}

// Render serializes the document. The only supported syntax is "yaml".
func (d *Document) Render(syntax string) ([]byte, error) {
	switch syntax {
	case "yaml":
	default:
		return nil, &UnsupportedFormatError{Format: syntax}
	}

	var buf bytes.Buffer
	buf.WriteString("#%RAML " + d.Version + "\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(value.Mapping(d.Root).ToNode()); err != nil {
		return nil, fmt.Errorf("raml: encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("raml: encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}
