package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newUploadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "upload [file]",
		Short: "Replace the whole project page",
		Long: "Uploads a markdown document as the new project page, replacing the " +
			"current one. The document is read from the file argument or from stdin.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			markdown, err := readInput(path)
			if err != nil {
				return err
			}
			if strings.TrimSpace(markdown) == "" {
				return errors.New("nothing to upload")
			}

			resp, err := ctx.client().Upload(cmd.Context(), markdown)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Uploaded project page (%d bytes)\n", resp.ContentLength)
			return nil
		},
	}
}

func newDownloadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "download <dest>",
		Short: "Download the project database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dest := args[0]
			file, err := os.Create(dest)
			if err != nil {
				return fmt.Errorf("create %s: %w", dest, err)
			}

			n, err := ctx.client().DownloadDatabase(cmd.Context(), file)
			if closeErr := file.Close(); err == nil && closeErr != nil {
				err = fmt.Errorf("close %s: %w", dest, closeErr)
			}
			if err != nil {
				_ = os.Remove(dest)
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d bytes to %s\n", n, dest)
			return nil
		},
	}
}

func newLastUpdatedCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "last-updated",
		Short: "Print the project's last update marker",
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := ctx.client().LastUpdated(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if value == "0" {
				fmt.Fprintln(out, "Project has never been updated")
				return nil
			}
			fmt.Fprintln(out, value)
			return nil
		},
	}
}

func newEchoCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "echo <text>",
		Short: "Round-trip text through the daemon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			echoed, err := ctx.client().Echo(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), echoed)
			return nil
		},
	}
}
