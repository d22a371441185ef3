package main

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	formbuilder "github.com/goliatone/go-formbuilder"
	"github.com/goliatone/go-formbuilder/pkg/renderers/tui"
	"github.com/goliatone/go-formbuilder/pkg/schemafile"
	"github.com/goliatone/go-formbuilder/pkg/session"
)

func newFillCmd(a *app) *cobra.Command {
	var (
		outPath string
		save    bool
	)
	cmd := &cobra.Command{
		Use:   "fill <schema>",
		Short: "Fill a form interactively in the terminal",
		Args:  cobra.ExactArgs(1),
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

			renderer, err := tui.New(
				tui.WithPromptDriver(a.newDriver()),
				tui.WithOutputFormat(tui.ParseOutputFormat(a.v.GetString(keyOutput))),
				tui.WithLogger(a.logger),
			)
			if err != nil {
				return err
			}

			sub, err := renderer.Fill(ctx, ctrl)
			if errors.Is(err, tui.ErrSubmitDeclined) || errors.Is(err, tui.ErrUnanswerable) {
				return invalid(err)
			}
			if err != nil {
				return err
			}
			zap.S().Infow("form submitted", "schema", args[0], "submission", sub.ID.String())

			if save {
				stored := formbuilder.DocumentFromSession(doc.Title, ctrl)
				stored.Description = doc.Description
				if err := schemafile.Write(ctx, args[0], stored); err != nil {
					return err
				}
				zap.S().Debugw("values saved", "schema", args[0])
			}

			out, err := renderer.Serialize(ctx, doc.Title, sub)
			if err != nil {
				return err
			}
			return a.write(outPath, out)
		},
	}
	cmd.Flags().String("output", "pretty", "submission format: json, pretty or form")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the submission to a file instead of stdout")
	cmd.Flags().BoolVar(&save, "save", false, "store the submitted values back into the schema document")
	bindFlag(a.v, keyOutput, cmd.Flags().Lookup("output"))
	return cmd
}
