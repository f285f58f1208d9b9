package validation

import (
	"fmt"

	"github.com/goliatone/go-funcform/pkg/form"
	"github.com/goliatone/go-funcform/pkg/schema"
)

// Draft is the JSON Schema dialect emitted by Generate.
const Draft = "https://json-schema.org/draft/2020-12/schema"

// Patterns accepted for numeric inputs. Extracted values are strings, and an
// empty string is what an untouched input yields.
const (
	NumberPattern = `^(-?[0-9]+)?$`
	FloatPattern  = `^(-?([0-9]+\.?[0-9]*|\.[0-9]+)([eE][-+]?[0-9]+)?)?$`
)

// Generate describes the payload pkg/extract produces for fn as a JSON
// Schema document. Lookup entries become $defs and named references point at
// them, so recursive types stay finite.
func Generate(fn schema.Function) (map[string]any, error) {
	root, err := objectSchema(fn.Params)
	if err != nil {
		return nil, fmt.Errorf("validation: %s: %w", fn.Name, err)
	}
	root["$schema"] = Draft
	root["title"] = fn.Name

	if fn.Lookup.Len() > 0 {
		defs := make(map[string]any, fn.Lookup.Len())
		for _, name := range fn.Lookup.Names() {
			node, _ := fn.Lookup.Get(name)
			def, err := nodeSchema(node)
			if err != nil {
				return nil, fmt.Errorf("validation: %s#%s: %w", fn.Name, name, err)
			}
			defs[name] = def
		}
		root["$defs"] = defs
	}
	return root, nil
}

func objectSchema(elements []schema.Node) (map[string]any, error) {
	properties := make(map[string]any, len(elements))
	required := make([]string, 0, len(elements))
	for _, el := range elements {
		prop, err := nodeSchema(el)
		if err != nil {
			return nil, err
		}
		name := el.FieldName()
		if _, seen := properties[name]; !seen {
			required = append(required, name)
		}
		// later siblings overwrite earlier ones, as the extractor does
		properties[name] = prop
	}
	return map[string]any{
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	}, nil
}

func nodeSchema(node schema.Node) (map[string]any, error) {
	switch n := node.(type) {
	case schema.Primitive:
		return primitiveSchema(n), nil

	case schema.Record:
		return objectSchema(n.Elements)

	case schema.Union:
		if len(n.Options) == 0 {
			return nil, fmt.Errorf("%w: %q", form.ErrNoOptions, n.Name)
		}
		variants := make([]any, 0, len(n.Options))
		for _, opt := range n.Options {
			value, err := objectSchema(opt.Elements)
			if err != nil {
				return nil, err
			}
			variants = append(variants, map[string]any{
				"type": "object",
				"properties": map[string]any{
					form.UnionSelectName: map[string]any{"const": opt.Name},
					form.UnionValueName:  value,
				},
				"required":             []string{form.UnionSelectName, form.UnionValueName},
				"additionalProperties": false,
			})
		}
		return map[string]any{"oneOf": variants}, nil

	case schema.List:
		if n.Element == nil {
			return nil, fmt.Errorf("%w: %q", form.ErrNoElement, n.Name)
		}
		items, err := nodeSchema(n.Element)
		if err != nil {
			return nil, err
		}
		return map[string]any{"type": "array", "items": items}, nil

	case schema.Ref:
		return map[string]any{"$ref": "#/$defs/" + escapePointer(n.Ref)}, nil

	default:
		return nil, fmt.Errorf("unsupported schema node %T", node)
	}
}

func primitiveSchema(p schema.Primitive) map[string]any {
	if p.Type == schema.TypeCheckbox {
		return map[string]any{"type": "boolean"}
	}

	out := map[string]any{"type": "string"}
	if p.Nullable {
		out["type"] = []string{"string", "null"}
	}
	switch p.Type {
	case schema.TypeNumber:
		out["pattern"] = NumberPattern
	case schema.TypeFloat:
		out["pattern"] = FloatPattern
	case schema.TypeChar:
		out["maxLength"] = 1
	}
	return out
}
