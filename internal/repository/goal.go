package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"rebalancer/money"
	"rebalancer/types"
)

// Repository is the interface engine callers depend on — a CLI command,
// an HTTP handler, a scheduled job — never the core itself.
type Repository interface {
	GetGoal(ctx context.Context, id string) (types.Goal, error)
	SaveRebalanceResult(ctx context.Context, goalID string, result types.RebalanceResult) error
}

// GetGoal loads a Goal and its Portfolio snapshot by id. Position
// ordering follows positions.sort_order so the fixed ticker ordering the
// engine relies on survives a round trip to Postgres.
func (db *Database) GetGoal(ctx context.Context, id string) (types.Goal, error) {
	var (
		name, goalType, riskProfile string
		targetAmount                sql.NullString
		cash                        string
		portfolioID                 string
	)

	row := db.pool.QueryRow(ctx, `
		SELECT g.name, g.goal_type, g.risk_profile, g.target_amount,
		       p.id, p.cash
		FROM goals g JOIN portfolios p ON p.goal_id = g.id
		WHERE g.id = $1`, id)

	if err := row.Scan(&name, &goalType, &riskProfile, &targetAmount, &portfolioID, &cash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Goal{}, fmt.Errorf("goal %s: %w", id, ErrGoalNotFound)
		}
		return types.Goal{}, err
	}

	positions, err := db.loadPositions(ctx, portfolioID)
	if err != nil {
		return types.Goal{}, err
	}

	cashValue, err := money.FromString(cash)
	if err != nil {
		return types.Goal{}, fmt.Errorf("parse cash: %w", err)
	}
	portfolio, err := types.NewPortfolio(portfolioID, cashValue, positions...)
	if err != nil {
		return types.Goal{}, fmt.Errorf("build portfolio: %w", err)
	}

	goal := types.Goal{
		ID:          id,
		Name:        name,
		Type:        types.GoalType(goalType),
		RiskProfile: types.RiskProfile(riskProfile),
		Portfolio:   portfolio,
	}
	if targetAmount.Valid {
		v, err := money.FromString(targetAmount.String)
		if err != nil {
			return types.Goal{}, fmt.Errorf("parse target_amount: %w", err)
		}
		goal.TargetAmount = &v
	}
	return goal, nil
}

func (db *Database) loadPositions(ctx context.Context, portfolioID string) ([]types.Position, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT a.ticker, a.name, a.asset_type, a.current_price, a.currency,
		       pos.shares, pos.target_allocation, pos.deposited
		FROM positions pos JOIN assets a ON a.ticker = pos.ticker
		WHERE pos.portfolio_id = $1
		ORDER BY pos.sort_order`, portfolioID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var positions []types.Position
	for rows.Next() {
		var (
			ticker, name, assetType, currency string
			priceStr, sharesStr, depositedStr string
			target                             float64
		)
		if err := rows.Scan(&ticker, &name, &assetType, &priceStr, &currency, &sharesStr, &target, &depositedStr); err != nil {
			return nil, err
		}
		price, err := money.FromString(priceStr)
		if err != nil {
			return nil, err
		}
		shares, err := money.FromString(sharesStr)
		if err != nil {
			return nil, err
		}
		deposited, err := money.FromString(depositedStr)
		if err != nil {
			return nil, err
		}
		positions = append(positions, types.Position{
			Asset: types.Asset{
				Ticker:       ticker,
				Name:         name,
				Type:         types.AssetClass(assetType),
				CurrentPrice: price,
				Currency:     currency,
			},
			Shares:           shares,
			TargetAllocation: target,
			Deposited:        deposited,
		})
	}
	return positions, rows.Err()
}

// SaveRebalanceResult persists a RebalanceResult's trades and totals
// against the goal's current portfolio, for audit/history purposes. The
// engine itself never calls this — it is glue the CLI/HTTP surface owns.
func (db *Database) SaveRebalanceResult(ctx context.Context, goalID string, result types.RebalanceResult) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var runID string
	err = tx.QueryRow(ctx, `
		INSERT INTO rebalance_runs (goal_id, total_buy_value, total_sell_value, estimated_cost, turnover_pct)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		goalID,
		result.TotalBuyValue.Decimal(),
		result.TotalSellValue.Decimal(),
		result.EstimatedCost.Decimal(),
		result.Metrics.TurnoverPct,
	).Scan(&runID)
	if err != nil {
		return fmt.Errorf("insert rebalance_runs: %w", err)
	}

	for _, t := range result.Trades {
		_, err = tx.Exec(ctx, `
			INSERT INTO rebalance_trades (run_id, ticker, action, shares, current_price, reason)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			runID, t.Ticker, string(t.Action), t.Shares.Decimal(), t.CurrentPrice.Decimal(), t.Reason,
		)
		if err != nil {
			return fmt.Errorf("insert rebalance_trades: %w", err)
		}
	}

	return tx.Commit(ctx)
}
