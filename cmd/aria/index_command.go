package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"aria/internal/catalog"
	"aria/internal/config"
	"aria/internal/indexer"
	"aria/internal/preflight"
)

func newIndexCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "index [source]",
		Short: "Index configured sources into the catalog",
		Long: "Index walks each source, decodes changed audio files once to derive " +
			"their content checksum and loudness statistics, and reconciles the " +
			"results into the catalog. With a source argument only that source runs.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(true, func(cfg *config.Config, store *catalog.Store) error {
				logger, err := ctx.logger()
				if err != nil {
					return err
				}

				runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()

				results := preflight.RunAll(runCtx, cfg)
				if !preflight.Passed(results) {
					for _, r := range results {
						if !r.Passed {
							fmt.Fprintf(cmd.ErrOrStderr(), "preflight: %s: %s\n", r.Name, r.Detail)
						}
					}
					return fmt.Errorf("preflight checks failed")
				}

				var opts []indexer.Option
				if isatty.IsTerminal(os.Stderr.Fd()) {
					// The done == 0 call arrives before the worker pool
					// starts, so only bar.Set runs on worker goroutines.
					var bar *progressbar.ProgressBar
					opts = append(opts, indexer.WithProgress(func(done, total int) {
						if done == 0 {
							bar = progressbar.NewOptions(total,
								progressbar.OptionSetDescription("indexing"),
								progressbar.OptionSetWriter(os.Stderr),
								progressbar.OptionClearOnFinish(),
							)
							return
						}
						if bar != nil {
							_ = bar.Set(done)
						}
					}))
				}

				ix := indexer.New(cfg, store, logger, opts...)

				var summaries []*indexer.Summary
				if len(args) == 1 {
					source, err := resolveSource(cfg, args[0])
					if err != nil {
						return err
					}
					summary, err := ix.IndexSource(runCtx, source, force)
					if err != nil {
						return err
					}
					summaries = append(summaries, summary)
				} else {
					summaries, err = ix.IndexAll(runCtx, force)
					if err != nil {
						return err
					}
				}

				rows := make([][]string, 0, len(summaries))
				for _, s := range summaries {
					name := strconv.FormatInt(s.SourceID, 10)
					if src, ok := cfg.SourceByID(s.SourceID); ok {
						name = src.Name
					}
					rows = append(rows, []string{
						name,
						strconv.Itoa(s.Scanned),
						strconv.Itoa(s.Indexed),
						s.Elapsed.Round(time.Millisecond).String(),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"SOURCE", "SCANNED", "INDEXED", "ELAPSED"},
					rows,
					1, 2, 3,
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Reprocess every file regardless of modification time")
	return cmd
}
