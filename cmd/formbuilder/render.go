package main

import (
	"fmt"

	theme "github.com/goliatone/go-theme"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	formbuilder "github.com/goliatone/go-formbuilder"
	"github.com/goliatone/go-formbuilder/pkg/layout"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/session"
)

func newRenderCmd(a *app) *cobra.Command {
	var (
		valuesPath string
		outPath    string
		action     string
		check      bool
	)
	cmd := &cobra.Command{
		Use:   "render <schema>",
		Short: "Render a form as HTML or plain text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			doc, err := formbuilder.LoadDocument(ctx, args[0])
			if err != nil {
				return err
			}
			if valuesPath != "" {
				values, err := readValues(valuesPath)
				if err != nil {
					return err
				}
				doc.Values = mergeValues(doc.Values, values)
			}

			ctrl, err := formbuilder.NewSession(doc, session.WithLogger(a.logger))
			if err != nil {
				return invalid(err)
			}
			if check {
				ctrl.Submit()
			}

			registry, err := formbuilder.NewRegistry()
			if err != nil {
				return err
			}
			name := a.v.GetString(keyRenderer)
			renderer, err := registry.Get(name)
			if err != nil {
				return fmt.Errorf("%w (available: %v)", err, registry.List())
			}

			opts := render.Options{
				Viewport: layout.ParseViewport(a.v.GetString(keyViewport)),
				Action:   action,
				Theme:    a.themeConfig(),
			}
			out, err := renderer.Render(ctx, formbuilder.FormFromSession(doc.Title, ctrl), opts)
			if err != nil {
				return err
			}
			zap.S().Debugw("form rendered", "schema", args[0], "renderer", name, "bytes", len(out))
			return a.write(outPath, out)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&valuesPath, "values", "", "JSON or YAML file of values to prefill")
	flags.StringVarP(&outPath, "out", "o", "", "write the output to a file instead of stdout")
	flags.StringVar(&action, "action", "", "form action URL")
	flags.BoolVar(&check, "check", false, "validate every field and render the errors")
	flags.String("renderer", "html", "renderer: html or text")
	flags.String("viewport", string(layout.Large), "viewport: small, medium or large")
	flags.String("theme", "", "theme name")
	flags.String("variant", "", "theme variant")
	bindFlag(a.v, keyRenderer, flags.Lookup("renderer"))
	bindFlag(a.v, keyViewport, flags.Lookup("viewport"))
	bindFlag(a.v, keyThemeName, flags.Lookup("theme"))
	bindFlag(a.v, keyThemeVariant, flags.Lookup("variant"))
	return cmd
}

// themeConfig builds the theme from configuration. Tokens come from the
// theme.tokens map of the config file.
func (a *app) themeConfig() *theme.RendererConfig {
	name := a.v.GetString(keyThemeName)
	if name == "" {
		return nil
	}
	selection := &theme.Selection{
		Theme:   name,
		Variant: a.v.GetString(keyThemeVariant),
		Manifest: &theme.Manifest{
			Name:   name,
			Tokens: a.v.GetStringMapString(keyThemeTokens),
		},
	}
	return formbuilder.ThemeConfig(selection, a.v.GetString(keyThemeAssets))
}
