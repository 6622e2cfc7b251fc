package bayes

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/arloliu/slumber/internal/hash"
	"github.com/arloliu/slumber/internal/options"
)

const (
	defaultSliceWidth  = 1.0
	defaultMaxStepOut  = 32
	defaultMaxShrink   = 200
	initJitterLogSigma = 1.0
)

// GibbsSampler is the default Sampler. Each iteration draws the coefficients
// from their exact conditional normal and then updates log sigma with a
// stepping-out slice sampler.
type GibbsSampler struct {
	sliceWidth float64
	maxStepOut int
	maxWorkers int
}

// GibbsOption configures a GibbsSampler.
type GibbsOption = options.Option[*GibbsSampler]

// WithSliceWidth sets the initial bracket width of the log sigma slice sampler.
func WithSliceWidth(w float64) GibbsOption {
	return options.New(func(g *GibbsSampler) error {
		if !(w > 0) || math.IsInf(w, 0) {
			return fmt.Errorf("bayes: slice width must be positive, got %v", w)
		}
		g.sliceWidth = w

		return nil
	})
}

// WithMaxStepOut bounds the stepping-out expansions per slice update.
func WithMaxStepOut(n int) GibbsOption {
	return options.New(func(g *GibbsSampler) error {
		if n < 1 {
			return fmt.Errorf("bayes: max step out must be at least 1, got %d", n)
		}
		g.maxStepOut = n

		return nil
	})
}

// WithMaxWorkers limits how many chains run at once. Zero means one goroutine
// per chain.
func WithMaxWorkers(n int) GibbsOption {
	return options.New(func(g *GibbsSampler) error {
		if n < 0 {
			return fmt.Errorf("bayes: max workers must not be negative, got %d", n)
		}
		g.maxWorkers = n

		return nil
	})
}

// NewGibbsSampler creates a Gibbs sampler.
func NewGibbsSampler(opts ...GibbsOption) (*GibbsSampler, error) {
	g := &GibbsSampler{
		sliceWidth: defaultSliceWidth,
		maxStepOut: defaultMaxStepOut,
	}
	if err := options.Apply(g, opts...); err != nil {
		return nil, err
	}

	return g, nil
}

// Sample runs p.Chains chains concurrently. Results are in chain order and depend
// only on the problem and its seed.
func (g *GibbsSampler) Sample(ctx context.Context, p Problem) (*Chains, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	suff := newSufficient(p.X, p.Y)
	out := &Chains{Draws: make([]*mat.Dense, p.Chains)}

	eg, egCtx := errgroup.WithContext(ctx)
	if g.maxWorkers > 0 {
		eg.SetLimit(g.maxWorkers)
	}
	for c := range p.Chains {
		eg.Go(func() error {
			seed := hash.Seed(p.Seed, fmt.Sprintf("chain-%d", c))
			rng := rand.New(rand.NewPCG(seed, uint64(c)))

			draws, err := g.runChain(egCtx, &p, suff, rng)
			if err != nil {
				return fmt.Errorf("chain %d: %w", c, err)
			}
			out.Draws[c] = draws

			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

// sufficient holds X'X, X'y and the raw data of a problem.
type sufficient struct {
	x   *mat.Dense
	y   []float64
	xtx *mat.SymDense
	xty *mat.VecDense
	n   int
	p   int
}

func newSufficient(x *mat.Dense, y []float64) *sufficient {
	n, p := x.Dims()
	xtx := mat.NewSymDense(p, nil)
	xtx.SymOuterK(1, x.T())

	xty := mat.NewVecDense(p, nil)
	xty.MulVec(x.T(), mat.NewVecDense(n, y))

	return &sufficient{x: x, y: y, xtx: xtx, xty: xty, n: n, p: p}
}

func (s *sufficient) ssr(beta []float64) float64 {
	var sum float64
	for i := range s.n {
		fit := 0.0
		for j := range s.p {
			fit += s.x.At(i, j) * beta[j]
		}
		r := s.y[i] - fit
		sum += r * r
	}

	return sum
}

func (g *GibbsSampler) runChain(ctx context.Context, p *Problem, s *sufficient, rng *rand.Rand) (*mat.Dense, error) {
	beta := make([]float64, s.p)
	if p.InitCoefficients != nil {
		copy(beta, p.InitCoefficients)
	}

	sigma := p.InitSigma
	if !(sigma > 0) {
		sigma = stat.StdDev(p.Y, nil)
		if !(sigma > 0) {
			sigma = 1
		}
	}
	logSigma := math.Log(sigma) + initJitterLogSigma*(2*rng.Float64()-1)

	precision := mat.NewSymDense(s.p, nil)
	rhs := mat.NewVecDense(s.p, nil)
	mean := mat.NewVecDense(s.p, nil)
	upper := mat.NewTriDense(s.p, mat.Upper, nil)
	var chol mat.Cholesky

	draws := mat.NewDense(p.Iterations, s.p+1, nil)
	total := p.Warmup + p.Iterations
	for it := range total {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// β | σ ~ N(Q⁻¹b, Q⁻¹) with Q = X'X/σ² + diag(1/s²), b = X'y/σ² + m/s².
		inv := math.Exp(-2 * logSigma)
		precision.ScaleSym(inv, s.xtx)
		for j, prior := range p.Coefficients {
			ps := 1 / (prior.Scale * prior.Scale)
			precision.SetSym(j, j, precision.At(j, j)+ps)
			rhs.SetVec(j, s.xty.AtVec(j)*inv+prior.Mean*ps)
		}
		if ok := chol.Factorize(precision); !ok {
			return nil, fmt.Errorf("conditional precision is not positive definite at iteration %d", it)
		}
		if err := chol.SolveVecTo(mean, rhs); err != nil {
			return nil, fmt.Errorf("solve conditional mean: %w", err)
		}
		chol.UTo(upper)
		drawNormal(beta, mean, upper, rng)

		// log σ | β by slice sampling.
		logSigma = g.sliceLogSigma(logSigma, s.ssr(beta), float64(s.n), p.SigmaRate, rng)

		if it >= p.Warmup {
			row := it - p.Warmup
			for j, b := range beta {
				draws.Set(row, j, b)
			}
			draws.Set(row, s.p, math.Exp(logSigma))
		}
	}

	return draws, nil
}

// drawNormal sets dst to mean + U⁻¹z with z standard normal, where U'U is the
// precision. The result has covariance (U'U)⁻¹.
func drawNormal(dst []float64, mean *mat.VecDense, upper *mat.TriDense, rng *rand.Rand) {
	k := len(dst)
	z := make([]float64, k)
	for i := range z {
		z[i] = rng.NormFloat64()
	}

	// Back substitution for U v = z.
	v := make([]float64, k)
	for i := k - 1; i >= 0; i-- {
		sum := z[i]
		for j := i + 1; j < k; j++ {
			sum -= upper.At(i, j) * v[j]
		}
		v[i] = sum / upper.At(i, i)
	}

	for i := range dst {
		dst[i] = mean.AtVec(i) + v[i]
	}
}

// logSigmaDensity is the conditional log density of u = log σ given β, including
// the Jacobian of the log transform.
func logSigmaDensity(u, ssr, n, rate float64) float64 {
	return -n*u - ssr*math.Exp(-2*u)/2 - rate*math.Exp(u) + u
}

func (g *GibbsSampler) sliceLogSigma(u0, ssr, n, rate float64, rng *rand.Rand) float64 {
	logY := logSigmaDensity(u0, ssr, n, rate) - rng.ExpFloat64()

	left := u0 - g.sliceWidth*rng.Float64()
	right := left + g.sliceWidth
	for range g.maxStepOut {
		if logSigmaDensity(left, ssr, n, rate) <= logY {
			break
		}
		left -= g.sliceWidth
	}
	for range g.maxStepOut {
		if logSigmaDensity(right, ssr, n, rate) <= logY {
			break
		}
		right += g.sliceWidth
	}

	for range defaultMaxShrink {
		u := left + rng.Float64()*(right-left)
		if logSigmaDensity(u, ssr, n, rate) > logY {
			return u
		}
		if u < u0 {
			left = u
		} else {
			right = u
		}
	}

	return u0
}
