package template

import (
	"io"
)

// TemplateRenderer is the seam page renderers use to execute templates.
type TemplateRenderer interface {
	// RenderTemplate executes the named template with data.
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	// GlobalContext merges values visible to every template.
	GlobalContext(data any) error
}
