package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/opencollective/ledger/services/searchsync"
	"github.com/opencollective/ledger/services/searchsync/adapter"
	"github.com/spf13/cobra"
)

type reindexResult struct {
	Index     string `json:"index" yaml:"index"`
	Documents int    `json:"documents" yaml:"documents"`
}

// withSearch runs fn against a started batch processor and drains it afterwards
func withSearch(ctx context.Context, opts *rootOptions, fn func(ctx context.Context, a *app, uc searchsync.SearchSyncUC) error) error {
	a, err := newApp(opts)
	if err != nil {
		return err
	}
	defer a.Close()

	uc, err := a.searchUC()
	if err != nil {
		return err
	}

	runErr := fn(ctx, a, uc)

	closeCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := uc.FlushAndClose(closeCtx); err != nil && runErr == nil {
		return err
	}
	return runErr
}

func triggersCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "triggers",
		Short: "Manage the search sync change notification triggers",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "install",
		Short: "Install the NOTIFY triggers on every indexed table",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSearch(cmd.Context(), opts, func(ctx context.Context, a *app, uc searchsync.SearchSyncUC) error {
				if err := uc.InstallTriggers(ctx); err != nil {
					return err
				}
				a.log.Info("Search sync triggers installed")
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "remove",
		Short: "Drop the NOTIFY triggers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSearch(cmd.Context(), opts, func(ctx context.Context, a *app, uc searchsync.SearchSyncUC) error {
				if err := uc.RemoveTriggers(ctx); err != nil {
					return err
				}
				a.log.Info("Search sync triggers removed")
				return nil
			})
		},
	})
	return cmd
}

func reindexCmd(opts *rootOptions) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "reindex [index...]",
		Short: "Rebuild search indices from the database",
		Long: `Enqueues every row of the given indices, or all of them, and waits
until the batch processor has indexed them.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			return withSearch(ctx, opts, func(ctx context.Context, a *app, uc searchsync.SearchSyncUC) error {
				indices := args
				if len(indices) == 0 {
					indices = adapter.NewRegistry(a.cfg.Search.IndexPrefix).Indices()
				}

				results := make([]reindexResult, 0, len(indices))
				for _, index := range indices {
					start := time.Now()
					count, err := uc.Reindex(ctx, index)
					if err != nil {
						return fmt.Errorf("failed to reindex %s: %w", index, err)
					}
					a.log.WithField("index", index).
						WithField("documents", count).
						WithField("duration", time.Since(start).Round(time.Millisecond).String()).
						Info("Reindexed")
					results = append(results, reindexResult{Index: index, Documents: count})
				}

				format, _ := parseFormat(opts.output)
				return render(cmd.OutOrStdout(), format, results, func(w io.Writer) {
					for _, r := range results {
						fmt.Fprintf(w, "%-32s %d\n", r.Index, r.Documents)
					}
					stats := uc.Stats()
					fmt.Fprintf(w, "indexed=%d deleted=%d failed=%d retried=%d\n", stats.Indexed, stats.Deleted, stats.Failed, stats.Retried)
				})
			})
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", time.Hour, "Give up after this long")
	return cmd
}
