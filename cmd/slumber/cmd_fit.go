package main

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/arloliu/slumber/bayes"
	"github.com/arloliu/slumber/dataset"
	"github.com/arloliu/slumber/pipeline"
	"github.com/arloliu/slumber/regression"
)

func newFitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Fit the model and print the posterior summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger, err := newLogger(cmd, cfg)
			if err != nil {
				return err
			}

			obs, _, err := pipeline.Load(cfg)
			if err != nil {
				return err
			}
			frame, err := dataset.Prepare(obs)
			if err != nil {
				return err
			}

			baseline, err := regression.Compare(frame)
			if err != nil {
				return err
			}

			sampler, err := bayes.NewGibbsSampler()
			if err != nil {
				return err
			}
			fit, err := bayes.FitModel(cmd.Context(), sampler, cfg.Spec(), frame, pipeline.FitOptions(cfg, logger)...)
			if err != nil {
				return err
			}
			for _, w := range fit.Warnings {
				logger.Warn(w)
			}

			out := cmd.OutOrStdout()
			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				return json.NewEncoder(out).Encode(map[string]any{
					"summary":  jsonSummary(fit.Summary()),
					"warnings": fit.Warnings,
				})
			}

			fmt.Fprintf(out, "%s ~ %s, %d observations, %d draws\n",
				fit.Spec.Response, fit.Spec.Predictors[0], frame.Len(), fit.NumDraws())
			for _, s := range fit.Summary() {
				fmt.Fprintln(out, s)
			}
			fmt.Fprintln(out)
			for _, m := range baseline.AllModels {
				fmt.Fprintf(out, "least squares %-6s R²=%.3f RMSE=%.2fh  %s\n", m.Type, m.RSquared, m.RMSE, m.Formula)
			}

			return nil
		},
	}

	addModelFlags(cmd)

	return cmd
}

// jsonSummary drops non-finite diagnostics, which encoding/json rejects.
func jsonSummary(in []bayes.ParamSummary) []map[string]any {
	out := make([]map[string]any, 0, len(in))
	for _, s := range in {
		m := map[string]any{
			"name":  s.Name,
			"mean":  s.Mean,
			"sd":    s.SD,
			"q2_5":  s.Q2_5,
			"q50":   s.Median,
			"q97_5": s.Q97_5,
		}
		if finite(s.RHat) {
			m["rhat"] = s.RHat
		}
		if finite(s.ESS) {
			m["ess"] = s.ESS
		}
		out = append(out, m)
	}

	return out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
