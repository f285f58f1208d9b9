package openapi

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-funcform/pkg/form"
	"github.com/goliatone/go-funcform/pkg/schema"
	"github.com/goliatone/go-funcform/pkg/validation"
)

// Version is the OpenAPI version emitted by Export.
const Version = "3.0.3"

const (
	defaultTitle   = "funcform"
	defaultVersion = "1.0.0"
	componentsRef  = "#/components/schemas/"
)

var componentName = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

type config struct {
	title   string
	version string
	servers []string
}

// Option customises the exported document.
type Option func(*config)

// WithTitle sets info.title.
func WithTitle(title string) Option {
	return func(c *config) {
		if title != "" {
			c.title = title
		}
	}
}

// WithVersion sets info.version.
func WithVersion(version string) Option {
	return func(c *config) {
		if version != "" {
			c.version = version
		}
	}
}

// WithServer adds a server entry, typically the backend base URL.
func WithServer(url string) Option {
	return func(c *config) {
		if url != "" {
			c.servers = append(c.servers, url)
		}
	}
}

// Export builds the OpenAPI document for reg. References inside the document
// are resolved, so the result validates without a loader pass.
func Export(reg *schema.Registry, options ...Option) (*openapi3.T, error) {
	cfg := config{title: defaultTitle, version: defaultVersion}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	doc := &openapi3.T{
		OpenAPI: Version,
		Info:    &openapi3.Info{Title: cfg.title, Version: cfg.version},
		Paths:   openapi3.NewPaths(),
		Components: &openapi3.Components{
			Schemas: openapi3.Schemas{},
		},
	}
	for _, url := range cfg.servers {
		doc.Servers = append(doc.Servers, &openapi3.Server{URL: url})
	}

	for _, fn := range reg.Functions() {
		if err := addFunction(doc, fn); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// Validate runs the kin-openapi document checks.
func Validate(ctx context.Context, doc *openapi3.T) error {
	if doc == nil {
		return errors.New("openapi: document is nil")
	}
	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return fmt.Errorf("openapi: validate: %w", err)
	}
	return nil
}

// Operations loads a serialized document and lists its POST operations as
// path → operationId, the inverse of Export's layout.
func Operations(ctx context.Context, raw []byte) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}
	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if err := Validate(ctx, doc); err != nil {
		return nil, err
	}

	out := make(map[string]string)
	for path, item := range doc.Paths.Map() {
		if item == nil || item.Post == nil {
			continue
		}
		out[path] = item.Post.OperationID
	}
	return out, nil
}

func addFunction(doc *openapi3.T, fn schema.Function) error {
	ex := exporter{doc: doc, prefix: componentKey(fn.Name) + "."}

	// placeholders first so recursive references resolve to the same pointer
	names := fn.Lookup.Names()
	for _, name := range names {
		ex.component(name)
	}
	for _, name := range names {
		node, _ := fn.Lookup.Get(name)
		built, err := ex.node(node)
		if err != nil {
			return fmt.Errorf("openapi: %s#%s: %w", fn.Name, name, err)
		}
		*ex.component(name) = *built
	}

	body, err := ex.object(fn.Params)
	if err != nil {
		return fmt.Errorf("openapi: %s: %w", fn.Name, err)
	}
	body.Title = fn.Name

	op := openapi3.NewOperation()
	op.OperationID = fn.Name
	op.Summary = "Call " + fn.Name
	op.RequestBody = &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().
			WithRequired(true).
			WithJSONSchema(body),
	}
	op.Responses = openapi3.NewResponses(
		openapi3.WithStatus(200, &openapi3.ResponseRef{
			Value: openapi3.NewResponse().
				WithDescription("Function result as plain text").
				WithContent(openapi3.NewContentWithSchema(openapi3.NewStringSchema(), []string{"text/plain"})),
		}),
	)

	doc.Paths.Set("/"+fn.Name, &openapi3.PathItem{Post: op})
	return nil
}

type exporter struct {
	doc    *openapi3.T
	prefix string
}

func (e exporter) component(name string) *openapi3.Schema {
	key := e.prefix + componentKey(name)
	if ref, ok := e.doc.Components.Schemas[key]; ok {
		return ref.Value
	}
	placeholder := &openapi3.Schema{}
	e.doc.Components.Schemas[key] = openapi3.NewSchemaRef("", placeholder)
	return placeholder
}

func (e exporter) ref(name string) *openapi3.SchemaRef {
	key := e.prefix + componentKey(name)
	if existing, ok := e.doc.Components.Schemas[key]; ok {
		return openapi3.NewSchemaRef(componentsRef+key, existing.Value)
	}
	return openapi3.NewSchemaRef(componentsRef+key, nil)
}

func (e exporter) node(node schema.Node) (*openapi3.Schema, error) {
	switch n := node.(type) {
	case schema.Primitive:
		return primitive(n), nil
	case schema.Record:
		return e.object(n.Elements)
	case schema.Union:
		if len(n.Options) == 0 {
			return nil, fmt.Errorf("%w: %q", form.ErrNoOptions, n.Name)
		}
		variants := make([]*openapi3.Schema, 0, len(n.Options))
		for _, opt := range n.Options {
			value, err := e.object(opt.Elements)
			if err != nil {
				return nil, err
			}
			variant := openapi3.NewObjectSchema().
				WithProperty(form.UnionSelectName, openapi3.NewStringSchema().WithEnum(opt.Name)).
				WithProperty(form.UnionValueName, value).
				WithoutAdditionalProperties()
			variant.Required = []string{form.UnionSelectName, form.UnionValueName}
			variants = append(variants, variant)
		}
		return openapi3.NewOneOfSchema(variants...), nil
	case schema.List:
		if n.Element == nil {
			return nil, fmt.Errorf("%w: %q", form.ErrNoElement, n.Name)
		}
		items, err := e.schemaRef(n.Element)
		if err != nil {
			return nil, err
		}
		list := openapi3.NewArraySchema()
		list.Items = items
		return list, nil
	case schema.Ref:
		// lookup entries aliasing another entry
		return &openapi3.Schema{AllOf: openapi3.SchemaRefs{e.ref(n.Ref)}}, nil
	default:
		return nil, fmt.Errorf("unsupported schema node %T", node)
	}
}

func (e exporter) schemaRef(node schema.Node) (*openapi3.SchemaRef, error) {
	if ref, ok := node.(schema.Ref); ok {
		return e.ref(ref.Ref), nil
	}
	built, err := e.node(node)
	if err != nil {
		return nil, err
	}
	return openapi3.NewSchemaRef("", built), nil
}

func (e exporter) object(elements []schema.Node) (*openapi3.Schema, error) {
	obj := openapi3.NewObjectSchema().WithoutAdditionalProperties()
	seen := make(map[string]bool, len(elements))
	for _, el := range elements {
		prop, err := e.schemaRef(el)
		if err != nil {
			return nil, err
		}
		name := el.FieldName()
		obj.Properties[name] = prop
		if !seen[name] {
			seen[name] = true
			obj.Required = append(obj.Required, name)
		}
	}
	sort.Strings(obj.Required)
	return obj, nil
}

func primitive(p schema.Primitive) *openapi3.Schema {
	var out *openapi3.Schema
	switch p.Type {
	case schema.TypeCheckbox:
		return openapi3.NewBoolSchema()
	case schema.TypeNumber:
		out = openapi3.NewStringSchema().WithPattern(validation.NumberPattern)
	case schema.TypeFloat:
		out = openapi3.NewStringSchema().WithPattern(validation.FloatPattern)
	case schema.TypeChar:
		out = openapi3.NewStringSchema().WithMaxLength(1)
	default:
		out = openapi3.NewStringSchema()
	}
	if p.Type == schema.TypeHidden && p.Value != "" {
		out.Default = p.Value
	}
	out.Nullable = p.Nullable
	return out
}

func componentKey(name string) string {
	return componentName.ReplaceAllString(strings.TrimSpace(name), "_")
}
