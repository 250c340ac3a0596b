package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/johnwards/menuseed/internal/app"
	"github.com/johnwards/menuseed/internal/reseed"
)

func newReseedCmd(c *cli) *cobra.Command {
	var (
		datasetPath string
		bucket      string
		clearBucket bool
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "reseed",
		Short: "Erase the menu tables and recreate them from the dataset",
		Long: `Erase every row of the categories, customizations, menu and
menu_customizations tables, then recreate them from the dataset. Rows that
fail are reported and skipped; the command only fails when the store is
unreachable or the final verification read fails.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if datasetPath != "" {
				c.cfg.Dataset = datasetPath
			}
			if bucket != "" {
				c.cfg.Bucket = bucket
			}
			if cmd.Flags().Changed("clear-bucket") {
				c.cfg.ClearBucket = clearBucket
			}
			if concurrency > 0 {
				c.cfg.Concurrency = concurrency
			}

			ctx := cmd.Context()
			st, err := app.Open(ctx, c.cfg)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			ds, err := app.LoadDataset(c.cfg)
			if err != nil {
				return fmt.Errorf("load dataset: %w", err)
			}

			report, err := app.NewOrchestrator(c.cfg, st, ds, c.log, nil).Run(ctx)
			if report != nil {
				printReport(c, report)
			}
			return err
		},
	}
	cmd.Flags().StringVar(&datasetPath, "dataset", "", "YAML dataset file (default: embedded dataset)")
	cmd.Flags().StringVar(&bucket, "bucket", "", "bucket to clear (overrides MENUSEED_BUCKET)")
	cmd.Flags().BoolVar(&clearBucket, "clear-bucket", false, "also delete every file in the bucket")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "parallel deletes and join inserts (overrides MENUSEED_CONCURRENCY)")
	return cmd
}

func printReport(c *cli, r *reseed.Report) {
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "TARGET\tLISTED\tDELETED\tFAILED")
	for _, e := range r.Erased {
		_, _ = fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", e.Target, e.Listed, e.Deleted, len(e.Errors()))
	}
	_, _ = fmt.Fprintln(tw)
	_, _ = fmt.Fprintln(tw, "STAGE\tCREATED\tFAILED")
	for _, s := range r.Stages {
		_, _ = fmt.Fprintf(tw, "%s\t%d\t%d\n", s.Stage, s.Created(), len(s.Failures()))
	}
	_ = tw.Flush()

	for _, f := range r.EraseFailures() {
		if f.Op == reseed.OpList {
			_, _ = fmt.Fprintf(c.out, "failed to list %s: %v\n", f.Table, f.Err)
			continue
		}
		_, _ = fmt.Fprintf(c.out, "failed to %s %s/%s: %v\n", f.Op, f.Table, f.ID, f.Err)
	}
	for _, f := range r.Failures() {
		_, _ = fmt.Fprintf(c.out, "failed %s %q: %v\n", f.Table, f.Name, f.Err)
	}
	if !r.Clean() {
		_, _ = fmt.Fprintln(c.out, "warning: run was partial; stale rows may remain")
	}
	_, _ = fmt.Fprintf(c.out, "menu items: %d\n", r.MenuTotal)
}
