package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func newProposeCommand(ctx *commandContext) *cobra.Command {
	var fromFile string

	cmd := &cobra.Command{
		Use:   "propose <section> [text]",
		Short: "Merge a content block into a project section",
		Long: "Submits a markdown block for merging into the named section. " +
			"The block is read from the argument, from --file, or from stdin. " +
			"Duplicated content is rejected and the project is left untouched.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var content string
			switch {
			case len(args) == 2:
				content = args[1]
			default:
				var err error
				content, err = readInput(fromFile)
				if err != nil {
					return err
				}
			}
			if strings.TrimSpace(content) == "" {
				return errors.New("nothing to propose")
			}

			resp, err := ctx.client().Propose(cmd.Context(), args[0], content)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch resp.Status {
			case "rejected":
				fmt.Fprintf(out, "Rejected: duplicate content in %q (rule %s)\n", resp.Section, resp.Result.Rule)
				if resp.Result.Match != "" {
					fmt.Fprintf(out, "Matched existing content: %s\n", resp.Result.Match)
				}
			default:
				label := cases.Title(language.English).String(strings.ReplaceAll(resp.Result.Outcome, "-", " "))
				fmt.Fprintf(out, "%s: %s\n", label, resp.Section)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&fromFile, "file", "f", "", "Read the content block from a file ('-' for stdin)")
	return cmd
}
