package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/arloliu/slumber/dataset"
	"github.com/arloliu/slumber/pipeline"
)

func newDataCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "data",
		Short: "Print the prepared model frame",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			obs, source, err := pipeline.Load(cfg)
			if err != nil {
				return err
			}
			frame, err := dataset.Prepare(obs)
			if err != nil {
				return err
			}
			report := frame.Report()

			out := cmd.OutOrStdout()
			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				rows := make([]map[string]any, 0, frame.Len())
				for _, r := range frame.Rows() {
					rows = append(rows, map[string]any{
						"name":              r.Name,
						"sleep_total":       r.SleepTotal,
						"brainwt":           r.BrainWt.Float64,
						"log_brainwt":       r.LogBrainWt,
						"logit_sleep_ratio": r.LogitSleepRatio,
					})
				}

				return json.NewEncoder(out).Encode(map[string]any{
					"source": source,
					"report": report,
					"rows":   rows,
				})
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "name\tsleep_total\tbrainwt\tlog_brainwt\tlogit_sleep_ratio")
			for _, r := range frame.Rows() {
				fmt.Fprintf(tw, "%s\t%.1f\t%g\t%.3f\t%.3f\n",
					r.Name, r.SleepTotal, r.BrainWt.Float64, r.LogBrainWt, r.LogitSleepRatio)
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			fmt.Fprintf(out, "\n%s: %d input, %d retained, %d missing brainwt, %d degenerate\n",
				source, report.Input, report.Retained, report.MissingBrainWt, report.Degenerate)
			for _, w := range report.Warnings {
				fmt.Fprintln(out, "warning:", w)
			}

			return nil
		},
	}

	cmd.Flags().String("data", "", "CSV file with msleep columns (default: built-in table)")

	return cmd
}
