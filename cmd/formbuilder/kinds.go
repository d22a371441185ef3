package main

import (
	"fmt"

	"github.com/spf13/cobra"

	formbuilder "github.com/goliatone/go-formbuilder"
)

func newKindsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List the supported field kinds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, kind := range formbuilder.Kinds() {
				fmt.Fprintln(a.stdout, kind)
			}
			return nil
		},
	}
}
