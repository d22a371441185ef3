package main

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	formbuilder "github.com/goliatone/go-formbuilder"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/schemafile"
	"github.com/goliatone/go-formbuilder/pkg/session"
)

func newAddFieldCmd(a *app) *cobra.Command {
	var (
		block   string
		at      int
		outPath string
	)
	cmd := &cobra.Command{
		Use:   "add-field <schema> [key=value...]",
		Short: "Append a field or insert a structural block",
		Long: `Add-field builds a field from key=value attributes, the same keys a
posted builder form uses (kind, name, label, required, minLength, option,
default, ...). Repeat a key to give it several values, for example
option=Red=red option=Blue=blue. With --block it inserts a header,
subheader or spacer at --at instead.`,
		Example: `  formbuilder add-field contact.yaml kind=email name=work_email label="Work email" required=true
  formbuilder add-field contact.yaml --block spacer --at 2`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			doc, err := formbuilder.LoadDocument(ctx, args[0])
			if err != nil {
				return err
			}
			ctrl, err := formbuilder.NewSession(doc, session.WithLogger(a.logger))
			if err != nil {
				return invalid(err)
			}

			var added model.FieldSchema
			if block != "" {
				if len(args) > 1 {
					return invalid(fmt.Errorf("--block takes no attributes"))
				}
				if at < 0 {
					at = len(ctrl.Fields())
				}
				added, err = ctrl.InsertStructuralBlock(at, model.Block(block))
				if err != nil {
					return invalid(err)
				}
			} else {
				values, err := parseAttributes(args[1:])
				if err != nil {
					return invalid(err)
				}
				draft, err := model.DecodeDraft(values)
				if err != nil {
					return invalid(err)
				}
				added, err = ctrl.AddField(draft)
				if err != nil {
					return invalid(err)
				}
			}

			// Only the schema changes; stored values stay as they were.
			updated := doc
			updated.Fields = schemafile.FromFields(doc.Title, ctrl.Fields(), nil).Fields

			target := outPath
			if target == "" {
				target = args[0]
			}
			if err := schemafile.Write(ctx, target, updated); err != nil {
				return err
			}
			zap.S().Infow("field added", "schema", target, "name", added.Name, "kind", string(added.Kind))
			fmt.Fprintf(a.stdout, "added %s (%s)\n", added.Name, added.Kind)
			return nil
		},
	}
	cmd.Flags().StringVar(&block, "block", "", "insert a structural block: header, subheader or spacer")
	cmd.Flags().IntVar(&at, "at", -1, "position for --block (default: end)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the updated document elsewhere")
	return cmd
}

// parseAttributes turns key=value arguments into form values. Only the
// first "=" separates key from value.
func parseAttributes(args []string) (url.Values, error) {
	values := url.Values{}
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("attribute %q: want key=value", arg)
		}
		values.Add(key, value)
	}
	return values, nil
}
