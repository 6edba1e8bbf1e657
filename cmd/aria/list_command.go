package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"aria/internal/catalog"
	"aria/internal/config"
	"aria/internal/replaygain"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var sourceArg string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog records",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(false, func(cfg *config.Config, store *catalog.Store) error {
				var records []*catalog.Record
				var err error
				if sourceArg != "" {
					source, resolveErr := resolveSource(cfg, sourceArg)
					if resolveErr != nil {
						return resolveErr
					}
					records, err = store.RecordsBySource(cmd.Context(), source.ID)
				} else {
					records, err = store.ListRecords(cmd.Context())
				}
				if err != nil {
					return err
				}

				collator := collate.New(language.Und, collate.IgnoreCase)
				sort.SliceStable(records, func(i, j int) bool {
					if c := collator.CompareString(records[i].Artist, records[j].Artist); c != 0 {
						return c < 0
					}
					if c := collator.CompareString(records[i].Album, records[j].Album); c != 0 {
						return c < 0
					}
					return collator.CompareString(records[i].DisplayTitle(), records[j].DisplayTitle()) < 0
				})

				rows := make([][]string, 0, len(records))
				for _, record := range records {
					gain := "-"
					if record.TrackGain != nil {
						gain = replaygain.FormatGain(*record.TrackGain)
					}
					rows = append(rows, []string{
						record.Artist,
						record.DisplayTitle(),
						record.Album,
						formatTrackDuration(record.DurationMS),
						gain,
					})
				}

				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderTable(
					[]string{"ARTIST", "TITLE", "ALBUM", "LENGTH", "GAIN"},
					rows,
					3, 4,
				))
				fmt.Fprintf(out, "%d records\n", len(records))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&sourceArg, "source", "s", "", "Limit to one source (name or id)")
	return cmd
}
