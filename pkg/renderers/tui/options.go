package tui

import "github.com/goliatone/go-funcform/pkg/extract"

// OutputFormat controls how the collected payload is serialized.
type OutputFormat string

const (
	// OutputFormatJSON emits application/json payloads.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatYAML emits a YAML document, handy for review before sending.
	OutputFormatYAML OutputFormat = "yaml"
)

// DefaultMaxItems caps how many items a single list may grow to.
const DefaultMaxItems = 64

// Theme captures optional message prefixes the renderer applies when printing
// through the driver.
type Theme struct {
	InfoPrefix  string
	ErrorPrefix string
}

// Option configures the TUI renderer.
type Option func(*Renderer)

// WithPromptDriver overrides the prompt driver used by the renderer.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithOutputFormat selects the output serialization format.
func WithOutputFormat(format OutputFormat) Option {
	return func(r *Renderer) {
		if format != "" {
			r.outputFormat = format
		}
	}
}

// WithExtractor replaces the extractor that reads the filled form.
func WithExtractor(extractor *extract.Extractor) Option {
	return func(r *Renderer) {
		if extractor != nil {
			r.extractor = extractor
		}
	}
}

// WithMaxItems caps list growth. Values below one are ignored.
func WithMaxItems(n int) Option {
	return func(r *Renderer) {
		if n > 0 {
			r.maxItems = n
		}
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Renderer) {
		r.theme = theme
	}
}
