package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newIngestCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "ingest <title> [file]",
		Short: "Analyze a chapter with the configured model",
		Long: "Sends a chapter to the daemon for character, location, point of view, " +
			"and metadata extraction. The chapter text is read from the file argument " +
			"or from stdin. Requires a configured model API key.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 2 {
				path = args[1]
			}
			text, err := readInput(path)
			if err != nil {
				return err
			}
			if strings.TrimSpace(text) == "" {
				return errors.New("chapter text is empty")
			}

			result, err := ctx.client().IngestChapter(cmd.Context(), args[0], text)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(result)
			}

			fmt.Fprintf(out, "Chapter: %s (%s)\n", result.Title, result.ID)
			fmt.Fprintf(out, "Characters: %s\n", joinOrNone(result.Characters))
			fmt.Fprintf(out, "Locations:  %s\n", joinOrNone(result.Locations))
			fmt.Fprintf(out, "POV:        %s\n", joinOrNone(result.POV))
			for key, value := range result.Metadata {
				fmt.Fprintf(out, "  %s: %v\n", key, value)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full analysis as JSON")
	return cmd
}

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return "none"
	}
	return strings.Join(values, ", ")
}
