package engine

import (
	"context"
	"math"

	"gonum.org/v1/gonum/optimize"

	"rebalancer/money"
	"rebalancer/types"
)

// penaltyWeight scales the equality/inequality penalty terms folded into
// the unconstrained objective gonum's optimizers actually minimize —
// the same penalty-method shape the CVaR-vs-tracking-error optimizer in
// this codebase's sibling risk tooling uses for its constrained
// mean-variance problems.
const penaltyWeight = 1000.0

// successStatuses are the gonum optimize.Status values this strategy
// treats as convergence; anything else triggers the target-weight
// fallback.
var successStatuses = map[optimize.Status]bool{
	optimize.Success:             true,
	optimize.GradientThreshold:   true,
	optimize.FunctionConvergence: true,
}

// CVaRRebalanceStrategy picks target weights by minimizing CVaR plus an
// L1 tracking-error penalty against the Portfolio's stated targets,
// subject to full investment, no shorting, and an optional per-position
// cap.
type CVaRRebalanceStrategy struct {
	Config CVaRConfig
}

// Rebalance implements RebalanceStrategy. States: Init -> Estimating ->
// Optimizing -> GeneratingTrades -> ApplyingConstraints -> Done, with
// Optimizing branching to Fallback on non-convergence before rejoining
// GeneratingTrades.
func (s CVaRRebalanceStrategy) Rebalance(ctx context.Context, p types.Portfolio, tc TradingConstraints) (types.RebalanceResult, error) {
	if err := validatePortfolio(p); err != nil {
		return types.RebalanceResult{}, err
	}
	cfg := s.Config.withDefaults()
	if cfg.Scenarios < MinScenarios {
		return types.RebalanceResult{}, ErrInsufficientScenarios
	}

	tickers := p.Tickers()
	n := len(tickers)
	driftByTicker := drift(p)
	maxDriftBefore := maxAbs(driftByTicker)

	// Estimating.
	mu, sigma, err := cfg.Estimator(tickers)
	if err != nil {
		return types.RebalanceResult{}, ErrInvalidCovariance
	}
	sigma, jittered, err := validateAndJitterSigma(sigma)
	if err != nil {
		return types.RebalanceResult{}, ErrInvalidCovariance
	}

	wCurrent := p.CurrentWeights()
	wTarget := p.TargetWeights()
	maxPosition := 1.0
	if tc.MaxPositionSize != nil {
		maxPosition = *tc.MaxPositionSize
	}

	simCfg := SimulationConfig{
		Mu:        mu,
		Sigma:     sigma,
		Periods:   cfg.Periods,
		Scenarios: cfg.Scenarios,
		Seed:      *cfg.Seed,
	}

	objective := func(w []float64) float64 {
		if err := ctx.Err(); err != nil {
			return math.Inf(1)
		}
		returns, err := SimulateCumulativeReturns(ctx, w, simCfg)
		if err != nil {
			return math.Inf(1)
		}
		cv := CVaR(returns, cfg.ConfidenceLevel)
		tracking := l1Distance(w, wTarget)
		return cv + cfg.RiskAversion*tracking + penalty(w, maxPosition)
	}

	// Optimizing, with Fallback on non-convergence or caller cancellation.
	wOptimal, iterations, converged := minimize(objective, wCurrent, n)
	var warnings []string
	if jittered {
		warnings = append(warnings, "covariance_jittered")
	}
	if !converged {
		wOptimal = append([]float64(nil), wTarget...)
		warnings = append(warnings, errOptimizerNonConvergent.Error())
	}
	wOptimal = projectToBounds(wOptimal, maxPosition)

	// GeneratingTrades: convert w* back to absolute (total-value)
	// allocations by keeping the cash/invested split the optimizer never
	// touches, then apply the same per-asset drift rule as
	// SimpleRebalanceStrategy.
	investedFraction := p.TargetWeightSum()
	total := p.TotalValue()
	trades := make([]types.Trade, 0, n)
	driftAfterOptimization := make(map[string]float64, n)
	for i, pos := range p.Positions() {
		absoluteTarget := wOptimal[i] * investedFraction
		d := absoluteTarget - pos.CurrentAllocation(total)
		driftAfterOptimization[pos.Asset.Ticker] = d
		if d == 0 {
			continue
		}
		tradeValue, err := money.FromFloat64(absf(d)*total.Float64(), 8)
		if err != nil {
			continue
		}
		shares := tradeValue.DivValue(pos.Asset.CurrentPrice)
		action := types.ActionSell
		if d > 0 {
			action = types.ActionBuy
		}
		trades = append(trades, types.Trade{
			Ticker:       pos.Asset.Ticker,
			Action:       action,
			Shares:       shares,
			CurrentPrice: pos.Asset.CurrentPrice,
			Reason:       "CVaR-optimized: " + driftReason(action, d),
		})
	}

	// ApplyingConstraints.
	finalTrades, warn := applyConstraints(trades, p, tc, driftAfterOptimization)
	if warn.liquidityUnreachable {
		warnings = append(warnings, errLiquidityUnreachable.Error())
	}

	result := buildResult(p, finalTrades, tc, maxDriftBefore, pipelineWarnings{})
	result.Metrics.Warnings = warnings

	finalReturns, simErr := SimulateCumulativeReturns(ctx, wOptimal, simCfg)
	if simErr == nil {
		cv := CVaR(finalReturns, cfg.ConfidenceLevel)
		result.Metrics.CVaR = &cv
	}
	optimalWeights := make(map[string]float64, n)
	for i, ticker := range tickers {
		optimalWeights[ticker] = wOptimal[i] * investedFraction
	}
	result.Metrics.OptimalWeights = optimalWeights
	result.Metrics.Iterations = &iterations

	return result, nil
}

// minimize runs the penalty-method objective through BFGS first (the
// gradient is estimated by finiteDifferenceGradient's forward differences
// since CVaR's order-statistics-based kink makes an analytic gradient
// impractical),
// falling back to NelderMead when BFGS fails to converge.
func minimize(objective func([]float64) float64, initial []float64, n int) ([]float64, int, bool) {
	problem := optimize.Problem{
		Func: objective,
		Grad: func(grad, x []float64) {
			finiteDifferenceGradient(objective, x, grad)
		},
	}
	settings := &optimize.Settings{
		MajorIterations: 100,
	}

	result, err := optimize.Minimize(problem, append([]float64(nil), initial...), settings, &optimize.BFGS{})
	if err == nil && result != nil && successStatuses[result.Status] {
		return result.X, result.Stats.MajorIterations, true
	}

	fallbackProblem := optimize.Problem{Func: objective}
	result, err = optimize.Minimize(fallbackProblem, append([]float64(nil), initial...), settings, &optimize.NelderMead{})
	if err == nil && result != nil && successStatuses[result.Status] {
		return result.X, result.Stats.MajorIterations, true
	}

	iterations := 0
	if result != nil {
		iterations = result.Stats.MajorIterations
	}
	return initial, iterations, false
}

func finiteDifferenceGradient(f func([]float64) float64, x, grad []float64) {
	const h = 1e-5
	base := f(x)
	xh := append([]float64(nil), x...)
	for i := range x {
		orig := xh[i]
		xh[i] = orig + h
		fh := f(xh)
		xh[i] = orig
		grad[i] = (fh - base) / h
	}
}

// penalty folds Sigma w_i = 1, w_i >= 0 and w_i <= maxPosition into the
// unconstrained objective BFGS/NelderMead actually see.
func penalty(w []float64, maxPosition float64) float64 {
	sum := 0.0
	violation := 0.0
	for _, wi := range w {
		sum += wi
		if wi < 0 {
			violation += wi * wi
		}
		if wi > maxPosition {
			over := wi - maxPosition
			violation += over * over
		}
	}
	equality := sum - 1
	return penaltyWeight * (equality*equality + violation)
}

// projectToBounds clips w into [0, maxPosition] and renormalizes to sum
// to 1, the final feasibility guarantee after an unconstrained penalty-
// method optimization.
func projectToBounds(w []float64, maxPosition float64) []float64 {
	out := make([]float64, len(w))
	sum := 0.0
	for i, wi := range w {
		if wi < 0 {
			wi = 0
		}
		if wi > maxPosition {
			wi = maxPosition
		}
		out[i] = wi
		sum += wi
	}
	if sum <= 0 {
		if len(out) > 0 {
			even := 1.0 / float64(len(out))
			for i := range out {
				out[i] = even
			}
		}
		return out
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

func l1Distance(w, t []float64) float64 {
	sum := 0.0
	for i := range w {
		sum += math.Abs(w[i] - t[i])
	}
	return sum
}
