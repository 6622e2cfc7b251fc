package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arloliu/slumber"
	"github.com/arloliu/slumber/pipeline"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full analysis and write plots",
		Long: `Run loads the data, fits the model, predicts sleep across the observed
brain mass range and writes the scatter, trend and ribbon plots, the
posterior draws and a run manifest to the output directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger, err := newLogger(cmd, cfg)
			if err != nil {
				return err
			}

			res, err := pipeline.Run(cmd.Context(), cfg,
				pipeline.WithLogger(logger),
				pipeline.WithVersion(slumber.Version))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				return json.NewEncoder(out).Encode(map[string]any{
					"run_id":    res.RunID,
					"artifacts": res.Artifacts,
					"warnings":  res.Warnings,
				})
			}

			fmt.Fprintf(out, "run %s\n", res.RunID)
			for _, s := range res.Fit.Summary() {
				fmt.Fprintln(out, s)
			}
			for _, a := range res.Artifacts {
				fmt.Fprintf(out, "wrote %s (%d bytes)\n", a.Path, a.Bytes)
			}
			if n := len(res.Warnings); n > 0 {
				fmt.Fprintf(out, "%d warning(s), see log\n", n)
			}

			return nil
		},
	}

	cmd.Flags().String("out", "", "Output directory (default \"out\")")
	cmd.Flags().String("format", "", "Plot format: svg, png, pdf")
	addModelFlags(cmd)

	return cmd
}
