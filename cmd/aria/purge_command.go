package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"aria/internal/catalog"
	"aria/internal/config"
)

func newPurgeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "purge <source>",
		Short: "Remove a source's records from the catalog",
		Long: "Purge deletes every catalog record belonging to the source and " +
			"forgets its last-indexed timestamp. The audio files themselves are " +
			"never touched.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(true, func(cfg *config.Config, store *catalog.Store) error {
				source, err := resolveSource(cfg, args[0])
				if err != nil {
					return err
				}

				removed, err := store.PurgeSource(cmd.Context(), source.ID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s records for source %q\n",
					humanize.Comma(removed), source.Name)
				return nil
			})
		},
	}
}
