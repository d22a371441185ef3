package main

import (
	"github.com/spf13/cobra"

	formbuilder "github.com/goliatone/go-formbuilder"
	"github.com/goliatone/go-formbuilder/pkg/export"
	"github.com/goliatone/go-formbuilder/pkg/session"
)

func newExportCmd(a *app) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export <schema>",
		Short: "Print the JSON Schema of a form's submission payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := formbuilder.LoadDocument(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			ctrl, err := formbuilder.NewSession(doc, session.WithLogger(a.logger))
			if err != nil {
				return invalid(err)
			}
			data, err := export.MarshalSchema(export.JSONSchema(doc.Title, ctrl.Fields()))
			if err != nil {
				return err
			}
			return a.write(outPath, data)
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the schema to a file instead of stdout")
	return cmd
}
