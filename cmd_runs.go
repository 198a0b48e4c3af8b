package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/wildfunctions/genetic_diagnosis/pkg/store"
)

func newRunsCmd() *cobra.Command {
	var storeKind, dbPath string
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List archived runs, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			runs, err := store.NewStore(storeKind, dbPath)
			if err != nil {
				return err
			}
			if err := runs.Init(cmd.Context()); err != nil {
				return fmt.Errorf("open run archive: %w", err)
			}
			defer func() { _ = store.CloseIfSupported(runs) }()

			records, err := runs.ListRuns(cmd.Context())
			if err != nil {
				return err
			}
			return writeRuns(cmd.OutOrStdout(), records)
		},
	}
	cmd.Flags().StringVar(&storeKind, "store", "sqlite", "run archive backend")
	cmd.Flags().StringVar(&dbPath, "db", "runs.db", "sqlite database path")
	return cmd
}

func writeRuns(w io.Writer, records []store.RunRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "no runs archived")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tSTRATEGY\tPOPULATION\tGENERATIONS\tSTATE\tERROR\tTRAIN\tTEST")
	for _, r := range records {
		test := "-"
		if r.TestAccuracy != nil {
			test = fmt.Sprintf("%.2f%%", *r.TestAccuracy)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s/%s\t%s\t%d\t%s\t%.4f\t%.2f%%\t%s\n",
			r.ID, humanize.Time(r.StartedAt), r.Strategy, r.Pool,
			humanize.Comma(int64(r.Population)), r.Generations, r.State,
			r.BestError, r.TrainAccuracy, test)
	}
	return tw.Flush()
}
