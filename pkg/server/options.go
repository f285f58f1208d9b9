package server

import (
	"github.com/charmbracelet/log"

	"github.com/goliatone/go-funcform/pkg/form"
	"github.com/goliatone/go-funcform/pkg/openapi"
	"github.com/goliatone/go-funcform/pkg/renderers/html"
	"github.com/goliatone/go-funcform/pkg/submit"
)

// DefaultMaxBodyBytes caps posted form bodies.
const DefaultMaxBodyBytes = 1 << 20

// Option configures a Server.
type Option func(*Server)

// WithLogger injects a logger. Servers are silent by default.
func WithLogger(logger *log.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSubmitClient sets the backend client used on submit. Without one,
// submissions report that no backend is configured.
func WithSubmitClient(client *submit.Client) Option {
	return func(s *Server) {
		s.client = client
	}
}

// WithPage replaces the page renderer.
func WithPage(page *html.Renderer) Option {
	return func(s *Server) {
		if page != nil {
			s.page = page
		}
	}
}

// WithFormOptions passes options to every form the server builds.
func WithFormOptions(options ...form.Option) Option {
	return func(s *Server) {
		s.formOptions = append(s.formOptions, options...)
	}
}

// WithRequiredInputs marks non-nullable inputs required and blocks submits
// that leave them empty.
func WithRequiredInputs(enabled bool) Option {
	return func(s *Server) {
		s.requireInputs = enabled
	}
}

// WithPayloadValidation checks extracted payloads against the function's
// JSON Schema before sending them.
func WithPayloadValidation(enabled bool) Option {
	return func(s *Server) {
		s.validatePayloads = enabled
	}
}

// WithOpenAPIOptions customises the served OpenAPI document.
func WithOpenAPIOptions(options ...openapi.Option) Option {
	return func(s *Server) {
		s.openapiOptions = append(s.openapiOptions, options...)
	}
}

// WithMaxBodyBytes caps posted form bodies. Values below one are ignored.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}
