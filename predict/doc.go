// Package predict evaluates a fitted posterior on a grid of brain masses.
//
// Linear returns the posterior of the expected sleep duration (the regression
// line), Predictive adds observation noise with each draw's sigma. Both are
// computed on the logit scale and mapped back to hours with transform.ToHours,
// so every value lies strictly inside (0, 24).
package predict
