package bayes

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Default convergence thresholds.
const (
	DefaultRHatThreshold = 1.05
	DefaultMinESS        = 400
)

// Diagnostic holds the convergence statistics of one parameter.
type Diagnostic struct {
	Name string  `json:"name"`
	RHat float64 `json:"rhat"`
	ESS  float64 `json:"ess"`
}

// Converged reports whether the parameter passes both thresholds.
func (d Diagnostic) Converged(maxRHat, minESS float64) bool {
	return d.RHat <= maxRHat && d.ESS >= minESS
}

// Diagnose computes rank-normalized split R-hat and bulk ESS for every parameter.
func Diagnose(chains *Chains, names []string) []Diagnostic {
	out := make([]Diagnostic, len(names))
	for j, name := range names {
		split := splitChains(chains.Param(j))
		z := rankNormalize(split)
		out[j] = Diagnostic{Name: name, RHat: RHat(z), ESS: ESS(z)}
	}

	return out
}

// Warnings lists every diagnostic that fails a threshold.
func Warnings(diags []Diagnostic, maxRHat, minESS float64) []string {
	var warnings []string
	for _, d := range diags {
		if math.IsNaN(d.RHat) || d.RHat > maxRHat {
			warnings = append(warnings, fmt.Sprintf("%s: R-hat %.3f exceeds %.2f, chains have not mixed", d.Name, d.RHat, maxRHat))
		}
		if math.IsNaN(d.ESS) || d.ESS < minESS {
			warnings = append(warnings, fmt.Sprintf("%s: bulk ESS %.0f is below %.0f", d.Name, d.ESS, minESS))
		}
	}

	return warnings
}

// splitChains halves every chain, dropping the middle draw of odd lengths.
func splitChains(chains [][]float64) [][]float64 {
	out := make([][]float64, 0, 2*len(chains))
	for _, c := range chains {
		half := len(c) / 2
		out = append(out, c[:half], c[len(c)-half:])
	}

	return out
}

// rankNormalize replaces every draw by the normal score of its pooled rank,
// using average ranks for ties and the (r - 3/8) / (S + 1/4) offset.
func rankNormalize(chains [][]float64) [][]float64 {
	type ref struct {
		v    float64
		c, i int
	}

	var all []ref
	for c, chain := range chains {
		for i, v := range chain {
			all = append(all, ref{v: v, c: c, i: i})
		}
	}
	slices.SortFunc(all, func(a, b ref) int { return cmp.Compare(a.v, b.v) })

	out := make([][]float64, len(chains))
	for c, chain := range chains {
		out[c] = make([]float64, len(chain))
	}

	s := float64(len(all))
	for lo := 0; lo < len(all); {
		hi := lo + 1
		for hi < len(all) && all[hi].v == all[lo].v {
			hi++
		}
		rank := float64(lo+hi+1) / 2 // average of 1-based ranks lo+1..hi
		z := distuv.UnitNormal.Quantile((rank - 0.375) / (s + 0.25))
		for _, r := range all[lo:hi] {
			out[r.c][r.i] = z
		}
		lo = hi
	}

	return out
}

// RHat returns the potential scale reduction factor of equally long chains.
// It is NaN for fewer than two chains or two draws.
func RHat(chains [][]float64) float64 {
	m := len(chains)
	if m < 2 || len(chains[0]) < 2 {
		return math.NaN()
	}
	n := float64(len(chains[0]))

	means := make([]float64, m)
	vars := make([]float64, m)
	for i, c := range chains {
		means[i], vars[i] = stat.MeanVariance(c, nil)
	}

	w := stat.Mean(vars, nil)
	b := n * stat.Variance(means, nil)
	if w == 0 {
		if b == 0 {
			return 1
		}
		return math.Inf(1)
	}
	varPlus := (n-1)/n*w + b/n

	return math.Sqrt(varPlus / w)
}

// ESS returns the effective sample size of equally long chains using Geyer's
// initial monotone sequence on the combined autocorrelation.
func ESS(chains [][]float64) float64 {
	m := len(chains)
	if m == 0 || len(chains[0]) < 4 {
		return math.NaN()
	}
	n := len(chains[0])
	fn := float64(n)

	means := make([]float64, m)
	vars := make([]float64, m)
	for i, c := range chains {
		means[i], vars[i] = stat.MeanVariance(c, nil)
	}
	w := stat.Mean(vars, nil)
	varPlus := (fn - 1) / fn * w
	if m > 1 {
		varPlus += stat.Variance(means, nil)
	}
	if varPlus == 0 {
		return math.NaN()
	}

	rho := func(lag int) float64 {
		var acov float64
		for i, c := range chains {
			var sum float64
			for t := 0; t+lag < n; t++ {
				sum += (c[t] - means[i]) * (c[t+lag] - means[i])
			}
			acov += sum / fn
		}
		acov /= float64(m)

		return 1 - (w*(fn-1)/fn-acov)/varPlus
	}

	tau := -1.0
	prev := math.Inf(1)
	for lag := 0; lag+1 < n; lag += 2 {
		pair := rho(lag) + rho(lag+1)
		if pair <= 0 {
			break
		}
		pair = min(pair, prev)
		tau += 2 * pair
		prev = pair
	}

	total := float64(m * n)
	tau = max(tau, 1/math.Log10(total))

	return total / tau
}
