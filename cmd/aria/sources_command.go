package main

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"aria/internal/catalog"
	"aria/internal/config"
)

func newSourcesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "Show configured sources and their catalog footprint",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(false, func(cfg *config.Config, store *catalog.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}

				rows := make([][]string, 0, len(cfg.Sources))
				for _, src := range cfg.Sources {
					records := "0"
					duration := "-"
					last := "never"
					if s, ok := stats[src.ID]; ok {
						records = humanize.Comma(int64(s.Records))
						duration = formatTotalDuration(s.DurationMS)
						if s.LastIndexed != nil {
							last = humanize.Time(*s.LastIndexed)
						}
					}
					rows = append(rows, []string{
						strconv.FormatInt(src.ID, 10),
						src.Name,
						string(src.Kind),
						sourceLocation(src),
						records,
						duration,
						last,
					})
				}

				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "NAME", "KIND", "LOCATION", "RECORDS", "LENGTH", "LAST INDEXED"},
					rows,
					0, 4, 5,
				))
				return nil
			})
		},
	}
}
