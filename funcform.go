// Package funcform turns a registry of function descriptors into HTML forms,
// reads filled forms back into JSON payloads and posts them to
// POST <backend>/<function>.
//
// The root package wires the building blocks together for the common cases;
// each step is also available on its own under pkg/.
package funcform

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/goliatone/go-funcform/pkg/extract"
	"github.com/goliatone/go-funcform/pkg/form"
	"github.com/goliatone/go-funcform/pkg/registry"
	"github.com/goliatone/go-funcform/pkg/render"
	"github.com/goliatone/go-funcform/pkg/renderers/html"
	"github.com/goliatone/go-funcform/pkg/schema"
	"github.com/goliatone/go-funcform/pkg/submit"
)

// RenderOptions aliases render.RenderOptions for callers that only import the
// root package.
type RenderOptions = render.RenderOptions

// Result aliases the backend reply returned by Submit.
type Result = submit.Result

// LoadRegistry reads a registry from a file path or http(s) URL.
func LoadRegistry(ctx context.Context, location string, options ...registry.Option) (*schema.Registry, error) {
	src, err := registry.ParseSource(location)
	if err != nil {
		return nil, err
	}
	return registry.NewLoader(options...).LoadRegistry(ctx, src)
}

// NewForm renders the named function of reg.
func NewForm(reg *schema.Registry, name string, options ...form.Option) (*form.Form, error) {
	fn, err := reg.Function(name)
	if err != nil {
		return nil, err
	}
	return form.New(fn, options...)
}

// RenderPage renders the named function as a complete HTML page using the
// embedded templates.
func RenderPage(ctx context.Context, reg *schema.Registry, name string, opts RenderOptions, options ...form.Option) ([]byte, error) {
	f, err := NewForm(reg, name, options...)
	if err != nil {
		return nil, err
	}
	page, err := html.New()
	if err != nil {
		return nil, err
	}
	if opts.Functions == nil {
		opts.Functions = reg.Names()
	}
	return page.Render(ctx, f, opts)
}

// Submit extracts the payload of f and posts it to the function endpoint
// under backend. Nothing is sent while required inputs are empty.
func Submit(ctx context.Context, backend string, f *form.Form, options ...submit.Option) (Result, error) {
	if err := extract.Validate(f.Root()); err != nil {
		return Result{}, fmt.Errorf("funcform: submit %s: %w", f.Name(), err)
	}
	payload, err := extract.Extract(f.Root())
	if err != nil {
		return Result{}, fmt.Errorf("funcform: extract %s: %w", f.Name(), err)
	}
	client, err := submit.New(backend, options...)
	if err != nil {
		return Result{}, err
	}
	return client.Submit(ctx, f.Name(), payload)
}

// EmbeddedTemplates exposes the built-in page templates so callers can copy
// or extend them.
func EmbeddedTemplates() fs.FS {
	return html.TemplatesFS()
}
