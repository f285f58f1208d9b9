package template_test

import (
	"embed"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-funcform/pkg/render/template/gotemplate"
	"github.com/goliatone/go-funcform/pkg/testsupport"
)

//go:embed testdata/templates/*.tpl
var embeddedTemplates embed.FS

func TestGoTemplateEngine_RenderTemplate(t *testing.T) {
	engine := newEngine(t)

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("hello", map[string]any{"name": "Ada"}, w)
	})

	want := testsupport.MustReadGoldenString(t, filepath.Join("testdata", "hello.golden"))
	if result != want || written != want {
		t.Fatalf("render template mismatch\nwant: %q\n got: %q / %q", want, result, written)
	}
}

func TestGoTemplateEngine_GlobalData(t *testing.T) {
	engine := newEngine(t, gotemplate.WithGlobalData(map[string]any{
		"settings": map[string]any{"env": "dev"},
	}))
	// later globals win over construction-time ones
	if err := engine.GlobalContext(map[string]any{
		"settings": map[string]any{"env": "staging"},
	}); err != nil {
		t.Fatalf("global context: %v", err)
	}

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("use-global", nil, w)
	})

	want := testsupport.MustReadGoldenString(t, filepath.Join("testdata", "use-global.golden"))
	if result != want || written != want {
		t.Fatalf("render template mismatch\nwant: %q\n got: %q / %q", want, result, written)
	}
}

func TestGoTemplateEngine_TemplateFuncAndTrim(t *testing.T) {
	engine := newEngine(t,
		gotemplate.WithTemplateFunc(map[string]any{
			"form_href": func(name string) string { return "/ui/form/" + url.PathEscape(name) },
			"ignored":   "not a function",
		}),
		gotemplate.WithGlobalData(map[string]any{"title": "  funcform \n"}),
	)

	data := struct {
		Functions []string `json:"functions"`
	}{Functions: []string{"greet", "create order"}}
	result, err := engine.RenderTemplate("nav", data)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	want := testsupport.MustReadGoldenString(t, filepath.Join("testdata", "nav.golden"))
	if result != want {
		t.Fatalf("render template mismatch\nwant: %q\n got: %q", want, result)
	}
}

func TestGoTemplateEngine_BaseDirOverridesFS(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "hello.tpl"), []byte("Hi {{ name }}"), 0o644); err != nil {
		t.Fatalf("write override: %v", err)
	}
	engine := newEngine(t,
		gotemplate.WithBaseDir(dir),
		gotemplate.WithGlobalData(map[string]any{"settings": map[string]any{"env": "staging"}}),
	)

	got, err := engine.RenderTemplate("hello.tpl", map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("render override: %v", err)
	}
	if got != "Hi Ada" {
		t.Fatalf("expected override template, got %q", got)
	}

	// templates missing from the directory come from the fs
	got, err = engine.RenderTemplate("use-global", nil)
	if err != nil {
		t.Fatalf("render fallback: %v", err)
	}
	if got != "staging" {
		t.Fatalf("expected fallback template, got %q", got)
	}
}

func TestGoTemplateEngine_Errors(t *testing.T) {
	if _, err := gotemplate.New(); err == nil {
		t.Fatalf("expected error without a template source")
	}
	engine := newEngine(t)
	if _, err := engine.RenderTemplate("missing", nil); err == nil {
		t.Fatalf("expected error for unknown template")
	}
	if _, err := engine.RenderTemplate("hello", []string{"not", "an", "object"}); err == nil {
		t.Fatalf("expected error for non-object data")
	}
}

func newEngine(t *testing.T, options ...gotemplate.Option) *gotemplate.Engine {
	t.Helper()

	templatesFS, err := fs.Sub(embeddedTemplates, "testdata/templates")
	if err != nil {
		t.Fatalf("sub fs: %v", err)
	}

	engine, err := gotemplate.New(append([]gotemplate.Option{gotemplate.WithFS(templatesFS)}, options...)...)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}
