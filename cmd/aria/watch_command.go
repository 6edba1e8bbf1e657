package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"aria/internal/catalog"
	"aria/internal/config"
	"aria/internal/indexer"
	"aria/internal/watcher"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch local sources and reindex on change",
		Long: "Watch runs an initial incremental pass over every source, then " +
			"follows filesystem events and reindexes a source shortly after its " +
			"files stop changing. Runs until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(true, func(cfg *config.Config, store *catalog.Store) error {
				logger, err := ctx.logger()
				if err != nil {
					return err
				}

				runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()

				ix := indexer.New(cfg, store, logger)
				if _, err := ix.IndexAll(runCtx, false); err != nil {
					return err
				}

				return watcher.New(cfg, ix, logger).Run(runCtx)
			})
		},
	}
}
