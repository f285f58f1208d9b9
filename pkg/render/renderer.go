package render

import (
	"context"

	"github.com/goliatone/go-funcform/pkg/form"
)

// Renderer presents a form to a user, as an HTML page or a terminal session.
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, f *form.Form, options RenderOptions) ([]byte, error)
}
