// Package bayes fits the Bayesian linear regression of the sleep model and
// reports posterior draws with convergence diagnostics.
//
// The model is
//
//	y_i ~ Normal(β0 + β1·x_i1 + ... , σ)
//	β_j ~ Normal(m_j, s_j)
//	σ   ~ Exponential(λ)
//
// where y is the logit of the sleep ratio and x is log10 brain mass. With
// Exponential.Autoscale set, λ is divided by the standard deviation of y, so the
// default Exponential(1) prior places its mean at the scale of the response.
//
// # Samplers
//
// Sampling is delegated to a Sampler. The default GibbsSampler alternates an
// exact multivariate normal draw of β given σ (via a Cholesky factor of the
// conditional precision) with a slice-sampling update of log σ given β. Chains
// run concurrently, each with its own PCG stream derived from the base seed, so
// a given seed always reproduces the same draws.
//
// Any other backend can be plugged in by implementing Sampler; it only has to
// return one draws × parameters matrix per chain.
//
// # Diagnostics
//
// FitModel computes the rank-normalized split R-hat and the bulk effective
// sample size of every parameter. Values past the configured thresholds become
// entries in Fit.Warnings; they never turn into errors.
//
// # Basic Usage
//
//	fit, err := bayes.FitModel(ctx, bayes.NewGibbsSampler(), bayes.DefaultSpec(), frame,
//	    bayes.WithSeed(1234),
//	    bayes.WithChains(4),
//	)
//	if err != nil {
//	    return err
//	}
//	for _, s := range fit.Summary() {
//	    fmt.Println(s)
//	}
package bayes
