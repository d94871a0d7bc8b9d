package types

import (
	"encoding/json"

	"rebalancer/money"
)

// Position is the relation between one Asset and one Portfolio: how many
// shares are held, what fraction of the Portfolio they should ultimately
// represent, and how much cash has been deposited into this line over its
// lifetime. Positions are read-only for the duration of a rebalance call —
// the engine never mutates one, it only proposes Trades against it.
type Position struct {
	Asset            Asset
	Shares           money.Value // nonnegative; fractional allowed
	TargetAllocation float64     // in [0, 1]
	Deposited        money.Value // cumulative net deposits, >= 0
}

// positionJSON mirrors Position's wire shape. The top-level "ticker" key
// duplicates asset.ticker — the input/output contract carries it at both
// levels, so Position is read back without depending on the nested value.
type positionJSON struct {
	Ticker           string      `json:"ticker"`
	Shares           money.Value `json:"shares"`
	TargetAllocation float64     `json:"target_allocation"`
	Deposited        money.Value `json:"deposited"`
	Asset            Asset       `json:"asset"`
}

func (p Position) MarshalJSON() ([]byte, error) {
	return json.Marshal(positionJSON{
		Ticker:           p.Asset.Ticker,
		Shares:           p.Shares,
		TargetAllocation: p.TargetAllocation,
		Deposited:        p.Deposited,
		Asset:            p.Asset,
	})
}

func (p *Position) UnmarshalJSON(data []byte) error {
	var aux positionJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	p.Asset = aux.Asset
	if p.Asset.Ticker == "" {
		p.Asset.Ticker = aux.Ticker
	}
	p.Shares = aux.Shares
	p.TargetAllocation = aux.TargetAllocation
	p.Deposited = aux.Deposited
	return nil
}

// MarketValue is shares × current price.
func (p Position) MarketValue() money.Value {
	return p.Shares.MulValue(p.Asset.CurrentPrice)
}

// CurrentAllocation is this position's share of the Portfolio's total
// value, or 0 if the Portfolio holds nothing.
func (p Position) CurrentAllocation(totalValue money.Value) float64 {
	if totalValue.IsZero() {
		return 0
	}
	return p.MarketValue().Float64() / totalValue.Float64()
}
