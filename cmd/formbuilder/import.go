package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	formbuilder "github.com/goliatone/go-formbuilder"
	"github.com/goliatone/go-formbuilder/pkg/openapi"
	"github.com/goliatone/go-formbuilder/pkg/schemafile"
)

func newImportCmd(a *app) *cobra.Command {
	var (
		operationID string
		outPath     string
		timeout     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "import <openapi>",
		Short: "Convert an OpenAPI request body into a form document",
		Long: `Import reads an OpenAPI 3 document from a file or http(s) URL. Without
--operation it lists the operations that can be imported.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			src, err := parseSource(args[0])
			if err != nil {
				return err
			}
			loaderOpts := []openapi.LoaderOption{openapi.WithHTTPFallback(timeout)}

			if operationID == "" {
				doc, err := openapi.NewLoader(loaderOpts...).Load(ctx, src)
				if err != nil {
					return err
				}
				ops, err := openapi.NewImporter().Operations(ctx, doc)
				if err != nil {
					return invalid(err)
				}
				tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
				for _, op := range ops {
					body := ""
					if op.HasBody {
						body = "body"
					}
					fmt.Fprintf(tw, "%s\t%s %s\t%s\t%s\n", op.ID, op.Method, op.Path, body, op.Summary)
				}
				return tw.Flush()
			}

			doc, skipped, err := formbuilder.ImportOpenAPI(ctx, src, operationID, loaderOpts...)
			if err != nil {
				return invalid(err)
			}
			for _, skip := range skipped {
				zap.S().Warnw("property skipped", "operation", operationID, "property", skip.Property, "reason", skip.Reason)
			}

			if outPath == "" {
				data, err := schemafile.Encode(doc, schemafile.FormatYAML)
				if err != nil {
					return err
				}
				_, err = a.stdout.Write(data)
				return err
			}
			if err := schemafile.Write(ctx, outPath, doc); err != nil {
				return err
			}
			zap.S().Infow("form imported", "operation", operationID, "fields", len(doc.Fields), "out", outPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&operationID, "operation", "", "operation id to import")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the document to a .json or .yaml file instead of stdout")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "timeout for remote documents")
	return cmd
}

func parseSource(raw string) (openapi.Source, error) {
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return openapi.SourceFromURL(raw)
	}
	return openapi.SourceFromFile(raw), nil
}
