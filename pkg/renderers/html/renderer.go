// Package html renders a form as an HTML fragment. Rows and lanes come from
// layout segmentation; every kind gets a native control. Header text and help
// text are sanitized before they reach the page.
package html

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formbuilder/pkg/render"
	rendertemplate "github.com/goliatone/go-formbuilder/pkg/render/template"
	"github.com/goliatone/go-formbuilder/pkg/render/template/gotemplate"
)

const formTemplate = "templates/form.tmpl"

// Option configures the renderer.
type Option func(*config)

type config struct {
	templateFS   fs.FS
	templates    rendertemplate.TemplateRenderer
	theme        *theme.RendererConfig
	submitLabel  string
	resetLabel   string
	stylesheetID string
}

// WithTemplatesFS replaces the embedded template bundle.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		if files != nil {
			cfg.templateFS = files
		}
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path != "" {
			cfg.templateFS = os.DirFS(path)
		}
	}
}

// WithTemplateRenderer injects a template engine, bypassing the pongo2 one.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templates = renderer
		}
	}
}

// WithTheme sets the default theme. render.Options.Theme overrides it per
// request.
func WithTheme(cfg *theme.RendererConfig) Option {
	return func(c *config) {
		c.theme = cfg
	}
}

// WithStylesheet names the theme asset linked from the form. It is resolved
// through the theme's AssetURL.
func WithStylesheet(name string) Option {
	return func(cfg *config) {
		cfg.stylesheetID = strings.TrimSpace(name)
	}
}

// WithButtonLabels overrides the submit and reset button text.
func WithButtonLabels(submit, reset string) Option {
	return func(cfg *config) {
		if submit != "" {
			cfg.submitLabel = submit
		}
		if reset != "" {
			cfg.resetLabel = reset
		}
	}
}

// Renderer is the HTML renderer.
type Renderer struct {
	templates   rendertemplate.TemplateRenderer
	theme       *theme.RendererConfig
	stylesheet  string
	submitLabel string
	resetLabel  string

	strict *bluemonday.Policy
	help   *bluemonday.Policy
}

var _ render.Renderer = (*Renderer)(nil)

// New builds the renderer with the embedded templates unless told otherwise.
func New(options ...Option) (*Renderer, error) {
	cfg := config{
		templateFS:  TemplatesFS(),
		submitLabel: "Submit",
		resetLabel:  "Reset",
	}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	templates := cfg.templates
	if templates == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure template engine: %w", err)
		}
		templates = engine
	}

	return &Renderer{
		templates:   templates,
		theme:       cfg.theme,
		stylesheet:  cfg.stylesheetID,
		submitLabel: cfg.submitLabel,
		resetLabel:  cfg.resetLabel,
		strict:      bluemonday.StrictPolicy(),
		help:        helpPolicy(),
	}, nil
}

func (r *Renderer) Name() string {
	return "html"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render produces the form markup.
func (r *Renderer) Render(ctx context.Context, form render.Form, opts render.Options) ([]byte, error) {
	if r.templates == nil {
		return nil, errors.New("html renderer: template renderer is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	form = render.LocalizeForm(form, opts)
	themeCfg := r.theme
	if opts.Theme != nil {
		themeCfg = opts.Theme
	}

	out, err := r.templates.RenderTemplate(formTemplate, r.buildPage(form, opts, themeCfg))
	if err != nil {
		return nil, fmt.Errorf("html renderer: render template: %w", err)
	}
	return []byte(out), nil
}

// helpPolicy allows inline formatting and links in help text.
func helpPolicy() *bluemonday.Policy {
	policy := bluemonday.NewPolicy()
	policy.AllowElements("a", "b", "strong", "i", "em", "code", "br", "small")
	policy.AllowAttrs("href").OnElements("a")
	policy.AllowStandardURLs()
	policy.RequireNoFollowOnLinks(true)
	return policy
}

type themeView struct {
	Name       string `json:"name,omitempty"`
	Variant    string `json:"variant,omitempty"`
	CSSVars    string `json:"css_vars,omitempty"`
	Stylesheet string `json:"stylesheet,omitempty"`
}

func (r *Renderer) buildTheme(cfg *theme.RendererConfig) themeView {
	if cfg == nil {
		return themeView{}
	}
	view := themeView{
		Name:    cfg.Theme,
		Variant: cfg.Variant,
		CSSVars: cssVarsStyle(cfg.CSSVars),
	}
	if r.stylesheet != "" && cfg.AssetURL != nil {
		view.Stylesheet = cfg.AssetURL(r.stylesheet)
	}
	return view
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(".fb-form {")
	for _, key := range keys {
		name := key
		if !strings.HasPrefix(name, "--") {
			name = "--" + name
		}
		b.WriteString(" ")
		b.WriteString(cssSafe(name))
		b.WriteString(": ")
		b.WriteString(cssSafe(vars[key]))
		b.WriteString(";")
	}
	b.WriteString(" }")
	return b.String()
}

// cssSafe drops characters that could close the declaration or the style
// element.
func cssSafe(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ';', '{', '}', '<', '>':
			return -1
		}
		return r
	}, s)
}
