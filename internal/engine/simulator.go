package engine

import (
	"context"
	"math"
	"math/rand"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// MinScenarios is the smallest sample size the simulator and CVaR
// evaluator will accept; below this the sample is too thin for a stable
// tail estimate.
const MinScenarios = 32

// Distribution selects the per-period draw shape.
type Distribution int

const (
	DistributionNormal Distribution = iota
	DistributionStudentT
)

// SimulationConfig controls one Monte Carlo run. Mu and Sigma are
// annualized; Periods defaults to 252 (trading days), Scenarios to 1000.
type SimulationConfig struct {
	Mu          []float64
	Sigma       [][]float64
	Periods     int
	Scenarios   int
	Dist        Distribution
	DegreesFree float64 // used only when Dist == DistributionStudentT
	Seed        int64
}

// withDefaults fills Periods/Scenarios/DegreesFree with spec defaults if
// unset.
func (c SimulationConfig) withDefaults() SimulationConfig {
	if c.Periods <= 0 {
		c.Periods = 252
	}
	if c.Scenarios <= 0 {
		c.Scenarios = 1000
	}
	if c.DegreesFree <= 0 {
		c.DegreesFree = 5
	}
	return c
}

// SimulateCumulativeReturns draws Scenarios independent T-period
// portfolio-return paths for weight vector w under (Mu, Sigma), returning
// the cumulative compounded return of each path. Determinism: the same
// (w, cfg) always produces the same output regardless of GOMAXPROCS —
// each scenario draws from its own stream seeded by its scenario index,
// not by the worker that runs it or by wall-clock scheduling order.
func SimulateCumulativeReturns(ctx context.Context, w []float64, cfg SimulationConfig) ([]float64, error) {
	cfg = cfg.withDefaults()
	if cfg.Scenarios < MinScenarios {
		return nil, ErrInsufficientScenarios
	}

	periodMu := make([]float64, len(cfg.Mu))
	for i, m := range cfg.Mu {
		periodMu[i] = m / float64(cfg.Periods)
	}
	periodSigma, _ := periodCovariance(cfg.Sigma, cfg.Periods)

	chol, err := choleskyOf(periodSigma)
	if err != nil {
		return nil, err
	}

	out := make([]float64, cfg.Scenarios)
	workers := partitionCount(cfg.Scenarios)
	g, gctx := errgroup.WithContext(ctx)

	// Each scenario owns its own stream, keyed by its own index rather than
	// by which worker happens to draw it — partitionCount depends on
	// runtime.GOMAXPROCS, so keying by worker index would make the output
	// depend on scheduling. Keying by scenario index keeps it fixed.
	for _, span := range partitionIndices(cfg.Scenarios, workers) {
		span := span
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for s := span.start; s < span.end; s++ {
				src := rand.New(rand.NewSource(mixSeed(cfg.Seed, int64(s))))
				out[s] = simulateOnePath(src, periodMu, chol, cfg.Dist, cfg.DegreesFree, w, cfg.Periods)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func simulateOnePath(src *rand.Rand, mu []float64, chol *mat.Cholesky, dist Distribution, nu float64, w []float64, periods int) float64 {
	cumulative := 1.0
	for t := 0; t < periods; t++ {
		r := drawAssetReturns(src, mu, chol, dist, nu)
		periodReturn := dot(w, r)
		cumulative *= 1 + periodReturn
	}
	return cumulative - 1
}

// drawAssetReturns draws one correlated per-period return vector:
// mu + L*z where L is the Cholesky factor of the covariance matrix and z
// is a vector of independent draws (standard normal, or Student-t via the
// normal/chi-square mixture construction).
func drawAssetReturns(src *rand.Rand, mu []float64, chol *mat.Cholesky, dist Distribution, nu float64) []float64 {
	n := len(mu)
	z := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		z.SetVec(i, src.NormFloat64())
	}
	if dist == DistributionStudentT {
		chi2 := 0.0
		k := int(nu)
		if k < 1 {
			k = 1
		}
		for i := 0; i < k; i++ {
			v := src.NormFloat64()
			chi2 += v * v
		}
		scale := math.Sqrt(nu / chi2)
		for i := 0; i < n; i++ {
			z.SetVec(i, z.AtVec(i)*scale)
		}
	}

	var correlated mat.VecDense
	correlated.MulVec(chol.RawU().T(), z)

	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = mu[i] + correlated.AtVec(i)
	}
	return out
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// choleskyOf factorizes sigma, returning ErrInvalidCovariance if it is not
// (after the caller's jitter pass) positive semi-definite.
func choleskyOf(sigma [][]float64) (*mat.Cholesky, error) {
	n := len(sigma)
	sym := mat.NewSymDense(n, flatten(sigma))
	var chol mat.Cholesky
	if ok := chol.Factorize(sym); !ok {
		return nil, ErrInvalidCovariance
	}
	return &chol, nil
}

// periodCovariance scales an annualized covariance matrix down to
// per-period and jitters the diagonal if needed to keep it PD. Returns
// whether jitter was applied.
func periodCovariance(sigma [][]float64, periods int) ([][]float64, bool) {
	n := len(sigma)
	scaled := make([][]float64, n)
	for i := range sigma {
		scaled[i] = make([]float64, n)
		for j := range sigma[i] {
			scaled[i][j] = sigma[i][j] / float64(periods)
		}
	}
	return ensurePSD(scaled)
}

func flatten(m [][]float64) []float64 {
	n := len(m)
	out := make([]float64, 0, n*n)
	for _, row := range m {
		out = append(out, row...)
	}
	return out
}
