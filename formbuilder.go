// Package formbuilder wires the form engine together: documents load into a
// session controller, and the controller's state renders through the
// registered renderers.
package formbuilder

import (
	"context"
	"fmt"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/openapi"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/renderers/html"
	"github.com/goliatone/go-formbuilder/pkg/schemafile"
	"github.com/goliatone/go-formbuilder/pkg/session"
)

// LoadDocument reads a JSON or YAML form document.
func LoadDocument(ctx context.Context, path string) (schemafile.Document, error) {
	return schemafile.Load(ctx, path)
}

// NewSession builds a controller holding the document's fields and seeds the
// document's stored values through ChangeValue. Values for names that are not
// value-bearing fields are ignored.
func NewSession(doc schemafile.Document, opts ...session.Option) (*session.Controller, error) {
	options := append([]session.Option{session.WithFields(doc.Fields)}, opts...)
	ctrl, err := session.New(options...)
	if err != nil {
		return nil, fmt.Errorf("formbuilder: %w", err)
	}
	if err := SeedValues(ctrl, doc.Values); err != nil {
		return nil, err
	}
	return ctrl, nil
}

// SeedValues applies values to the matching fields of ctrl in field order.
func SeedValues(ctrl *session.Controller, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	for _, field := range ctrl.Fields() {
		raw, ok := values[field.Name]
		if !ok || !field.Kind.ValueBearing() {
			continue
		}
		if _, err := ctrl.ChangeValue(field.ID, raw); err != nil {
			return fmt.Errorf("formbuilder: seed %s: %w", field.Name, err)
		}
	}
	return nil
}

// FormFromSession captures the controller state as a renderable form.
func FormFromSession(title string, ctrl *session.Controller) render.Form {
	snap := ctrl.Snapshot()
	return render.Form{
		Title:  title,
		Fields: snap.Fields,
		Values: snap.Values,
		Errors: snap.Errors,
	}
}

// DocumentFromSession captures the controller schema and values as a
// storable document.
func DocumentFromSession(title string, ctrl *session.Controller) schemafile.Document {
	snap := ctrl.Snapshot()
	values := make(map[string]string)
	for name, value := range snap.Values {
		if value != "" {
			values[name] = value
		}
	}
	return schemafile.FromFields(title, snap.Fields, values)
}

// RenderHTML renders the controller state with the HTML renderer.
func RenderHTML(ctx context.Context, title string, ctrl *session.Controller, opts render.Options, htmlOpts ...html.Option) ([]byte, error) {
	renderer, err := html.New(htmlOpts...)
	if err != nil {
		return nil, err
	}
	return renderer.Render(ctx, FormFromSession(title, ctrl), opts)
}

// NewRegistry returns a registry holding the HTML and text renderers plus any
// extra renderers supplied.
func NewRegistry(extra ...render.Renderer) (*render.Registry, error) {
	registry := render.NewRegistry()
	htmlRenderer, err := html.New()
	if err != nil {
		return nil, err
	}
	for _, renderer := range append([]render.Renderer{htmlRenderer, render.NewTextRenderer()}, extra...) {
		if err := registry.Register(renderer); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// ImportOpenAPI loads an OpenAPI document and converts the request body of
// operationID into a form document. Properties that could not be mapped are
// returned alongside.
func ImportOpenAPI(ctx context.Context, src openapi.Source, operationID string, loaderOpts ...openapi.LoaderOption) (schemafile.Document, []openapi.Skipped, error) {
	doc, err := openapi.NewLoader(loaderOpts...).Load(ctx, src)
	if err != nil {
		return schemafile.Document{}, nil, err
	}
	form, err := openapi.NewImporter().Import(ctx, doc, operationID)
	if err != nil {
		return schemafile.Document{}, nil, err
	}
	return schemafile.Document{
		Version: schemafile.CurrentVersion,
		Title:   form.Title,
		Fields:  form.Fields,
	}, form.Skipped, nil
}

// ThemeConfig turns a theme selection into renderer configuration. Manifest
// tokens become CSS custom properties and asset names resolve under
// assetBase.
func ThemeConfig(selection *theme.Selection, assetBase string) *theme.RendererConfig {
	if selection == nil {
		return nil
	}
	cfg := &theme.RendererConfig{
		Theme:   selection.Theme,
		Variant: selection.Variant,
	}
	if selection.Manifest != nil && len(selection.Manifest.Tokens) > 0 {
		cfg.Tokens = make(map[string]string, len(selection.Manifest.Tokens))
		cfg.CSSVars = make(map[string]string, len(selection.Manifest.Tokens))
		for key, value := range selection.Manifest.Tokens {
			cfg.Tokens[key] = value
			cfg.CSSVars["--"+strings.TrimPrefix(key, "--")] = value
		}
	}
	if base := strings.TrimRight(assetBase, "/"); base != "" {
		cfg.AssetURL = func(name string) string {
			if name == "" {
				return ""
			}
			return base + "/" + strings.TrimLeft(name, "/")
		}
	}
	return cfg
}

// SelectTheme resolves name and variant through selector.
func SelectTheme(selector theme.ThemeSelector, name, variant, assetBase string) (*theme.RendererConfig, error) {
	if selector == nil {
		return nil, fmt.Errorf("formbuilder: theme selector is nil")
	}
	selection, err := selector.Select(name, variant)
	if err != nil {
		return nil, fmt.Errorf("formbuilder: select theme %q: %w", name, err)
	}
	return ThemeConfig(selection, assetBase), nil
}

// Kinds lists every field kind name in declaration order.
func Kinds() []string {
	kinds := model.Kinds()
	out := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		out = append(out, string(kind))
	}
	return out
}
