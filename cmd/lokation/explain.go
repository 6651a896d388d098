package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/lokation/internal/errors"
)

func explainCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "explain [code]",
		Short: "Describe an error code",
		Long: `Print the message and explanation for an error code such as E120.
Without a code, list every known code.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if len(args) == 0 {
				codes := errors.GetAllCodes()
				slices.Sort(codes)
				for _, code := range codes {
					tmpl, _ := errors.GetTemplate(code)
					fmt.Fprintf(w, "%s  %-10s %s\n", code, tmpl.Category, tmpl.Message)
				}
				return nil
			}

			code := strings.ToUpper(args[0])
			if _, ok := errors.GetTemplate(code); !ok {
				return errors.Newf(errors.CategoryCLI, "unknown error code %s", args[0])
			}
			e := errors.New(code)
			if asJSON {
				fmt.Fprintln(w, e.FormatJSON())
				return nil
			}
			fmt.Fprint(w, e.Format())
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")

	return cmd
}
