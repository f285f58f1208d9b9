package registry

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-funcform/pkg/schema"
)

// Document wraps a raw registry payload and its origin.
type Document struct {
	source Source
	format schema.Format
	raw    []byte
}

// NewDocument copies raw and records its origin. The format is taken from the
// source location, falling back to content sniffing.
func NewDocument(src Source, raw []byte) (Document, error) {
	if src == nil {
		return Document{}, errors.New("registry: source is required")
	}
	if len(raw) == 0 {
		return Document{}, fmt.Errorf("registry: %s is empty", src.Location())
	}

	format := FormatOf(src)
	if format == "" {
		format = schema.DetectFormat(raw)
	}
	clone := append([]byte(nil), raw...)
	return Document{source: src, format: format, raw: clone}, nil
}

// Source returns the origin metadata.
func (d Document) Source() Source {
	return d.source
}

// Location returns the origin identifier.
func (d Document) Location() string {
	if d.source == nil {
		return ""
	}
	return d.source.Location()
}

// Format reports the encoding the document will be decoded with.
func (d Document) Format() schema.Format {
	return d.format
}

// Raw returns a copy of the payload.
func (d Document) Raw() []byte {
	return append([]byte(nil), d.raw...)
}

// Registry decodes and validates the payload.
func (d Document) Registry() (*schema.Registry, error) {
	reg, err := schema.ParseRegistry(d.raw, d.format)
	if err != nil {
		return nil, fmt.Errorf("registry: %s: %w", d.Location(), err)
	}
	if err := reg.Validate(); err != nil {
		return nil, fmt.Errorf("registry: %s: %w", d.Location(), err)
	}
	return reg, nil
}
