// Package regression provides ordinary least-squares baselines for the sleep model.
//
// Two single-predictor models are fitted to the same data and compared on the
// hours scale:
//
//   - **Linear**: sleep_total = a + b * x (the naive model, unbounded)
//   - **Logit**: logit(sleep_total / 24) = a + b * x, back-transformed with 24·sigmoid
//
// The naive model is the motivating failure of the analysis: over the observed
// range of brain mass it predicts sleep durations below zero or above 24 hours,
// which OutOfRange makes visible. The logit fit doubles as a cheap starting point
// for the Bayesian sampler.
//
// # Basic Usage
//
//	result, err := regression.Compare(frame)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, m := range result.AllModels {
//	    fmt.Printf("%s: R²=%.3f RMSE=%.2fh %s\n", m.Type, m.RSquared, m.RMSE, m.Formula)
//	}
//	bad := regression.OutOfRange(result.Naive().Estimator, grid.Values())
//
// Both models are ranked by R² computed on the hours scale, so they compete on
// the same footing even though the logit model is fitted on a transformed response.
package regression
