package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"aria/internal/catalog"
	"aria/internal/config"
	"aria/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show catalog health and preflight checks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(false, func(cfg *config.Config, store *catalog.Store) error {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Database: %s\n", store.Path())

				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				var records int
				var duration int64
				for _, s := range stats {
					records += s.Records
					duration += s.DurationMS
				}
				fmt.Fprintf(out, "Records: %s (%s of audio)\n\n",
					humanize.Comma(int64(records)), formatTotalDuration(duration))

				results := preflight.RunAll(cmd.Context(), cfg)
				rows := make([][]string, 0, len(results))
				for _, r := range results {
					status := "FAIL"
					if r.Passed {
						status = "OK"
					}
					rows = append(rows, []string{r.Name, status, r.Detail})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"CHECK", "STATUS", "DETAIL"},
					rows,
				))

				if !preflight.Passed(results) {
					return fmt.Errorf("one or more checks failed")
				}
				return nil
			})
		},
	}
}
