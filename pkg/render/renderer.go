package render

import (
	"context"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formbuilder/pkg/layout"
	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Renderer turns a form into a byte representation (HTML, plain text, ...).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, form Form, opts Options) ([]byte, error)
}

// Form is what a renderer needs to draw a form: the ordered fields plus the
// current value and error of each value-bearing field.
type Form struct {
	Title  string
	Fields []model.FieldSchema
	Values map[string]string
	Errors map[string]string
}

// Options carry per-request rendering data that is not part of the form.
type Options struct {
	// Viewport selects the layout; the zero value renders for Large.
	Viewport layout.Viewport
	Action   string
	Method   string
	// Hidden inputs emitted before the first field, sorted by name.
	Hidden map[string]string
	// FormErrors are messages not bound to a single field.
	FormErrors []string
	// Theme overrides the renderer's default theme for this request.
	Theme *theme.RendererConfig

	Locale     string
	Translator Translator
	OnMissing  MissingTranslationHandler
}

// Rows segments the form fields for the viewport in opts.
func (f Form) Rows(opts Options) []layout.Row {
	viewport := opts.Viewport
	if viewport == "" {
		viewport = layout.Large
	}
	return layout.Segment(f.Fields, viewport)
}
