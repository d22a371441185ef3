package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	formbuilder "github.com/goliatone/go-formbuilder"
	"github.com/goliatone/go-formbuilder/pkg/export"
	"github.com/goliatone/go-formbuilder/pkg/session"
)

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <schema> <values>",
		Short: "Validate stored values against a form",
		Long: `Validate loads the values file (JSON or YAML object) into the form and
submits it. Field errors are printed one per line and the command exits
with status 2.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			doc, err := formbuilder.LoadDocument(ctx, args[0])
			if err != nil {
				return err
			}
			values, err := readValues(args[1])
			if err != nil {
				return err
			}
			doc.Values = mergeValues(doc.Values, values)

			ctrl, err := formbuilder.NewSession(doc, session.WithLogger(a.logger))
			if err != nil {
				return invalid(err)
			}

			sub, ok := ctrl.Submit()
			if !ok {
				errs := ctrl.Snapshot().Errors
				names := make([]string, 0, len(errs))
				for name := range errs {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					fmt.Fprintf(a.stdout, "%s: %s\n", name, errs[name])
				}
				zap.S().Warnw("validation failed", "schema", args[0], "errors", len(names))
				return invalid(fmt.Errorf("%d field(s) failed validation", len(names)))
			}

			schema := export.JSONSchema(doc.Title, sub.Fields)
			if err := export.ValidatePayload(schema, export.Payload(sub.Fields, sub.Values)); err != nil {
				return invalid(err)
			}
			fmt.Fprintf(a.stdout, "ok: %d field(s) valid\n", countValueFields(sub))
			return nil
		},
	}
}

func countValueFields(sub session.Submission) int {
	n := 0
	for _, field := range sub.Fields {
		if field.Kind.ValueBearing() {
			n++
		}
	}
	return n
}
