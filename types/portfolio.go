package types

import (
	"encoding/json"
	"fmt"

	"rebalancer/money"
)

// Portfolio owns a set of Positions keyed by ticker, plus cash. Ticker
// ordering is fixed at construction time (insertion order) and is the axis
// every weight vector in a rebalance call is built against — see
// Tickers().
//
// Invariants enforced by NewPortfolio:
//   - ticker keys are unique (P1)
//   - sum of target allocations over all positions <= 1 (P2); the slack is
//     the target cash fraction
//   - no negative shares or cash (P3)
type Portfolio struct {
	ID        string
	Cash      money.Value
	positions map[string]Position
	tickers   []string // insertion order, fixed for the portfolio's lifetime
}

// NewPortfolio builds a Portfolio from cash and an ordered list of
// Positions, validating invariants P1-P3.
func NewPortfolio(id string, cash money.Value, positions ...Position) (Portfolio, error) {
	if cash.IsNegative() {
		return Portfolio{}, fmt.Errorf("portfolio: negative cash %s", cash)
	}

	p := Portfolio{
		ID:        id,
		Cash:      cash,
		positions: make(map[string]Position, len(positions)),
		tickers:   make([]string, 0, len(positions)),
	}

	targetSum := 0.0
	for _, pos := range positions {
		ticker := pos.Asset.Ticker
		if _, exists := p.positions[ticker]; exists {
			return Portfolio{}, fmt.Errorf("portfolio: duplicate ticker %q", ticker)
		}
		if pos.Shares.IsNegative() {
			return Portfolio{}, fmt.Errorf("portfolio: negative shares for %q", ticker)
		}
		p.positions[ticker] = pos
		p.tickers = append(p.tickers, ticker)
		targetSum += pos.TargetAllocation
	}

	const epsilon = 1e-9
	if targetSum > 1+epsilon {
		return Portfolio{}, fmt.Errorf("portfolio: target allocations sum to %.6f > 1", targetSum)
	}

	return p, nil
}

// Tickers returns the fixed ordering used for every weight vector derived
// from this Portfolio during a rebalance call.
func (p Portfolio) Tickers() []string {
	out := make([]string, len(p.tickers))
	copy(out, p.tickers)
	return out
}

// Position returns the position for ticker and whether it exists.
func (p Portfolio) Position(ticker string) (Position, bool) {
	pos, ok := p.positions[ticker]
	return pos, ok
}

// Positions returns the positions in fixed ticker order.
func (p Portfolio) Positions() []Position {
	out := make([]Position, len(p.tickers))
	for i, t := range p.tickers {
		out[i] = p.positions[t]
	}
	return out
}

// IsEmpty reports whether the Portfolio holds no positions at all.
func (p Portfolio) IsEmpty() bool {
	return len(p.tickers) == 0
}

// InvestedValue is the sum of market values across all positions,
// excluding cash.
func (p Portfolio) InvestedValue() money.Value {
	total := money.Zero
	for _, t := range p.tickers {
		total = total.Add(p.positions[t].MarketValue())
	}
	return total
}

// TotalValue is cash plus invested value.
func (p Portfolio) TotalValue() money.Value {
	return p.Cash.Add(p.InvestedValue())
}

// CurrentWeights returns the current allocation of each position, in
// Tickers() order, normalized by invested value (cash excluded). Returns
// the zero vector if nothing is invested.
func (p Portfolio) CurrentWeights() []float64 {
	invested := p.InvestedValue().Float64()
	weights := make([]float64, len(p.tickers))
	if invested == 0 {
		return weights
	}
	for i, t := range p.tickers {
		weights[i] = p.positions[t].MarketValue().Float64() / invested
	}
	return weights
}

// TargetWeights returns each position's target allocation renormalized to
// sum to 1 across invested positions (cash excluded), in Tickers() order —
// the same invested-only basis as CurrentWeights, suitable for feeding the
// simulator's w·r_t computation. Returns the zero vector if every target
// allocation is zero.
func (p Portfolio) TargetWeights() []float64 {
	sum := p.TargetWeightSum()
	weights := make([]float64, len(p.tickers))
	if sum == 0 {
		return weights
	}
	for i, t := range p.tickers {
		weights[i] = p.positions[t].TargetAllocation / sum
	}
	return weights
}

// TargetAllocations returns each position's raw target_allocation (a
// fraction of total portfolio value, cash included), in Tickers() order.
// This is the basis SimpleRebalanceStrategy's drift rule uses, distinct
// from the invested-only renormalization TargetWeights applies for the
// optimizer.
func (p Portfolio) TargetAllocations() []float64 {
	out := make([]float64, len(p.tickers))
	for i, t := range p.tickers {
		out[i] = p.positions[t].TargetAllocation
	}
	return out
}

// TargetWeightSum is the sum of all target allocations; used by the
// InvalidTargets check and as the TargetWeights renormalization factor.
func (p Portfolio) TargetWeightSum() float64 {
	sum := 0.0
	for _, t := range p.tickers {
		sum += p.positions[t].TargetAllocation
	}
	return sum
}

// CashFractionTarget is the slack implied by invariant P2: the fraction of
// total value the target allocations leave uninvested.
func (p Portfolio) CashFractionTarget() float64 {
	return 1 - p.TargetWeightSum()
}

// portfolioJSON mirrors Portfolio's wire shape; positions is ordered per
// Tickers().
type portfolioJSON struct {
	ID        string      `json:"id"`
	Cash      money.Value `json:"cash"`
	Positions []Position  `json:"positions"`
}

func (p Portfolio) MarshalJSON() ([]byte, error) {
	return json.Marshal(portfolioJSON{
		ID:        p.ID,
		Cash:      p.Cash,
		Positions: p.Positions(),
	})
}

// UnmarshalJSON routes through NewPortfolio so a Portfolio read off the
// wire is validated the same as one built in code — invariants P1-P3 apply
// equally to both.
func (p *Portfolio) UnmarshalJSON(data []byte) error {
	var aux portfolioJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	built, err := NewPortfolio(aux.ID, aux.Cash, aux.Positions...)
	if err != nil {
		return err
	}
	*p = built
	return nil
}
