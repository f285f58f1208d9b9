package html

import (
	"context"
	"fmt"
	"io/fs"
	"net/url"
	"strings"

	"github.com/goliatone/go-funcform/pkg/form"
	"github.com/goliatone/go-funcform/pkg/render"
	rendertemplate "github.com/goliatone/go-funcform/pkg/render/template"
	"github.com/goliatone/go-funcform/pkg/render/template/gotemplate"
)

const (
	// Name identifies the renderer in a render.Registry.
	Name        = "html"
	pageTitle   = "funcform"
	pageTmpl    = "templates/page.tmpl"
	contentType = "text/html; charset=utf-8"
)

// Option configures the page renderer.
type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateDir      string
	templateRenderer rendertemplate.TemplateRenderer
	htmlResults      bool
	title            string
	basePath         string
}

// WithTemplatesFS supplies an alternate template bundle. It must contain
// templates/page.tmpl.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk. Templates it
// does not provide come from the embedded bundle.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		cfg.templateDir = path
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithHTMLResults shows backend replies as sanitized HTML instead of text.
func WithHTMLResults(enabled bool) Option {
	return func(cfg *config) {
		cfg.htmlResults = enabled
	}
}

// WithTitle sets the page title prefix.
func WithTitle(title string) Option {
	return func(cfg *config) {
		if title != "" {
			cfg.title = title
		}
	}
}

// WithBasePath prefixes navigation links, for handlers mounted below "/".
func WithBasePath(base string) Option {
	return func(cfg *config) {
		cfg.basePath = strings.TrimSuffix(base, "/")
	}
}

// Renderer produces the single-screen page: function list, form and result
// area.
type Renderer struct {
	templates   rendertemplate.TemplateRenderer
	htmlResults bool
	basePath    string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the page renderer.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS(), title: pageTitle}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	r := &Renderer{
		htmlResults: cfg.htmlResults,
		basePath:    cfg.basePath,
	}
	globals := map[string]any{
		"title":      cfg.title,
		"stylesheet": defaultStylesheet(),
	}
	funcs := map[string]any{"form_href": r.formHref}

	if cfg.templateRenderer != nil {
		for name, fn := range funcs {
			globals[name] = fn
		}
		if err := cfg.templateRenderer.GlobalContext(globals); err != nil {
			return nil, fmt.Errorf("html renderer: apply page globals: %w", err)
		}
		r.templates = cfg.templateRenderer
		return r, nil
	}

	engine, err := gotemplate.New(
		gotemplate.WithBaseDir(cfg.templateDir),
		gotemplate.WithFS(cfg.templateFS),
		gotemplate.WithExtension(".tmpl"),
		gotemplate.WithGlobalData(globals),
		gotemplate.WithTemplateFunc(funcs),
	)
	if err != nil {
		return nil, fmt.Errorf("html renderer: configure template renderer: %w", err)
	}
	r.templates = engine
	return r, nil
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return contentType
}

// Render writes the page. f may be nil for the function index.
func (r *Renderer) Render(_ context.Context, f *form.Form, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("html renderer: template renderer is nil")
	}

	data := map[string]any{
		"functions": stringsToAny(options.Functions),
		"function":  "",
		"form":      "",
		"result":    "",
	}

	var formErrors []string
	if f != nil {
		mapping := render.MapErrors(f, options.Errors)
		formErrors = mapping.Form
		decorated := Decorate(f, Decoration{
			Action: options.Action,
			Errors: mapping.Fields,
			Hidden: options.Hidden,
		})
		data["function"] = f.Name()
		data["form"] = decorated.String()
	} else if msgs := options.Errors[""]; len(msgs) > 0 {
		formErrors = msgs
	}
	data["form_errors"] = stringsToAny(formErrors)

	if res := options.Result; res != nil {
		text := res.Text()
		data["result_failed"] = res.Err != "" || res.Status >= 400
		if r.htmlResults && res.Err == "" {
			data["result_html"] = sanitizeResult(text)
		} else {
			data["result"] = text
		}
	}

	out, err := r.templates.RenderTemplate(pageTmpl, data)
	if err != nil {
		return nil, fmt.Errorf("html renderer: render template: %w", err)
	}
	return []byte(out), nil
}

// formHref is the link to a function's form, exposed to templates.
func (r *Renderer) formHref(name string) string {
	return r.basePath + "/form/" + url.PathEscape(name)
}

func stringsToAny(in []string) []any {
	out := make([]any, 0, len(in))
	for _, s := range in {
		out = append(out, s)
	}
	return out
}
