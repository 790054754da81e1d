package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newSectionCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "section <name>",
		Short: "Print one project section's markdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := ctx.client().Section(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if content == "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Section %q is empty or does not exist\n", args[0])
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), content)
			return nil
		},
	}
}

func newSectionsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sections",
		Short: "List the project's sections",
		RunE: func(cmd *cobra.Command, args []string) error {
			sections, err := ctx.client().Sections(cmd.Context())
			if err != nil {
				return err
			}
			if len(sections) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No sections found")
				return nil
			}

			rows := make([][]string, 0, len(sections))
			for _, sec := range sections {
				rows = append(rows, []string{sec.Name, strconv.Itoa(sec.Lines)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Section", "Lines"},
				rows,
				[]columnAlignment{alignLeft, alignRight},
			))
			return nil
		},
	}
}
