package engine

import "github.com/shopspring/decimal"

// decimalFromFloat converts a plain float64 ratio (e.g. transaction_cost_bps,
// a scaling factor) into a decimal.Decimal for money.Value.Mul. These ratios
// are never money themselves, so they skip the money package's overflow
// check.
func decimalFromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}
