package types

import (
	"encoding/json"

	"rebalancer/money"
)

// TradeAction is BUY or SELL; the closed set the engine ever emits.
type TradeAction string

const (
	ActionBuy  TradeAction = "BUY"
	ActionSell TradeAction = "SELL"
)

// Trade is an engine output: a proposed order against one ticker. It is
// never partially filled or tracked through a lifecycle here — execution
// is out of scope, the engine only proposes.
type Trade struct {
	Ticker       string      `json:"ticker"`
	Action       TradeAction `json:"action"`
	Shares       money.Value `json:"shares"`
	CurrentPrice money.Value `json:"current_price"`
	Reason       string      `json:"reason"`
}

// Value is shares x price.
func (t Trade) Value() money.Value {
	return t.Shares.MulValue(t.CurrentPrice)
}

// SignedValue is Value with a negative sign for BUYs (cash outflow) and
// positive for SELLs (cash inflow) — useful for netting cash impact.
func (t Trade) SignedValue() money.Value {
	if t.Action == ActionBuy {
		return t.Value().Neg()
	}
	return t.Value()
}

// tradeJSON mirrors Trade's wire shape, adding the derived "value" field a
// struct field can't hold under the same name as the Value() method.
type tradeJSON struct {
	Ticker       string      `json:"ticker"`
	Action       TradeAction `json:"action"`
	Shares       money.Value `json:"shares"`
	CurrentPrice money.Value `json:"current_price"`
	Value        money.Value `json:"value"`
	Reason       string      `json:"reason"`
}

func (t Trade) MarshalJSON() ([]byte, error) {
	return json.Marshal(tradeJSON{
		Ticker:       t.Ticker,
		Action:       t.Action,
		Shares:       t.Shares,
		CurrentPrice: t.CurrentPrice,
		Value:        t.Value(),
		Reason:       t.Reason,
	})
}

func (t *Trade) UnmarshalJSON(data []byte) error {
	var aux tradeJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	t.Ticker = aux.Ticker
	t.Action = aux.Action
	t.Shares = aux.Shares
	t.CurrentPrice = aux.CurrentPrice
	t.Reason = aux.Reason
	return nil
}
