package types

import "rebalancer/money"

// GoalType tags what a Goal is saving toward.
type GoalType string

const (
	GoalTypeRetirement GoalType = "retirement"
	GoalTypeEducation  GoalType = "education"
	GoalTypeHouse      GoalType = "house"
	GoalTypeVacation   GoalType = "vacation"
	GoalTypeGeneral    GoalType = "general"
)

// RiskProfile tags a Goal's risk tolerance; it doubles as the key into the
// TradingConstraints presets (see engine.ConstraintsForRiskProfile).
type RiskProfile string

const (
	RiskProfileConservative RiskProfile = "conservative"
	RiskProfileModerate     RiskProfile = "moderate"
	RiskProfileRisky        RiskProfile = "risky"
)

// Goal is the user-facing wrapper around exactly one Portfolio. Its
// derived metrics use Fintual nomenclature: Balance, Depositado Neto
// (net deposits), Ganado (balance minus depositado neto).
type Goal struct {
	ID          string
	Name        string
	Type        GoalType
	RiskProfile RiskProfile
	Portfolio   Portfolio
	TargetAmount *money.Value // nil if unset
}

// Balance is the Goal's current total value.
func (g Goal) Balance() money.Value {
	return g.Portfolio.TotalValue()
}

// DepositadoNeto is cash plus the cumulative deposits into every position.
func (g Goal) DepositadoNeto() money.Value {
	total := g.Portfolio.Cash
	for _, pos := range g.Portfolio.Positions() {
		total = total.Add(pos.Deposited)
	}
	return total
}

// Ganado is Balance minus DepositadoNeto: the Goal's gain or loss.
func (g Goal) Ganado() money.Value {
	return g.Balance().Sub(g.DepositadoNeto())
}

// ProgressPercentage is 100 x Balance / TargetAmount. ok is false if no
// target amount was set.
func (g Goal) ProgressPercentage() (pct float64, ok bool) {
	if g.TargetAmount == nil || g.TargetAmount.IsZero() {
		return 0, false
	}
	return 100 * g.Balance().Float64() / g.TargetAmount.Float64(), true
}
