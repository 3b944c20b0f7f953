package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newFetchCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "fetch <id>",
		Short: "Download the subtitle of a search candidate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				result, err := a.registry.Fetch(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				if output == "-" {
					_, err := cmd.OutOrStdout().Write(result.Content)
					return err
				}

				target := output
				if target == "" {
					target = result.Filename
				} else if info, statErr := os.Stat(target); statErr == nil && info.IsDir() {
					target = filepath.Join(target, result.Filename)
				}
				if err := os.WriteFile(target, result.Content, 0o644); err != nil {
					return fmt.Errorf("write subtitle: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%s, %d bytes)\n", target, result.Language, len(result.Content))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file or directory, - for stdout")
	return cmd
}
