package main

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"rebalancer/internal/config"
	"rebalancer/internal/engine"
	"rebalancer/types"
)

func runCmd(flags *globalFlags) *cobra.Command {
	var (
		goalID            string
		strategyKind      string
		constraintsPreset string
		constraintsFile   string
		strategyFile      string
		csvOut            string
		save              bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Rebalance a goal's portfolio and print the proposed trades",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			requestID := uuid.New().String()

			db, log, err := openRepository(ctx, flags)
			if err != nil {
				return err
			}
			defer db.Close()
			log = log.With().Str("request_id", requestID).Str("goal_id", goalID).Logger()

			goal, err := db.GetGoal(ctx, goalID)
			if err != nil {
				return fmt.Errorf("load goal: %w", err)
			}

			tc, err := resolveConstraints(string(goal.RiskProfile), constraintsPreset, constraintsFile)
			if err != nil {
				return err
			}

			cfg, err := resolveStrategy(strategyKind, strategyFile)
			if err != nil {
				return err
			}

			log.Info().Str("strategy", string(cfg.Kind)).Msg("running rebalance")
			result, err := engine.Rebalance(ctx, goal.Portfolio, cfg, tc)
			if err != nil {
				return fmt.Errorf("rebalance: %w", err)
			}

			printResult(result)

			if save {
				if err := db.SaveRebalanceResult(ctx, goalID, result); err != nil {
					return fmt.Errorf("save result: %w", err)
				}
				log.Info().Msg("rebalance run persisted")
			}
			if csvOut != "" {
				if err := writeTradesCSV(csvOut, result.Trades); err != nil {
					return fmt.Errorf("write csv: %w", err)
				}
				log.Info().Str("path", csvOut).Msg("trades written")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&goalID, "goal", "", "goal id to rebalance (required)")
	cmd.Flags().StringVar(&strategyKind, "strategy", "simple", "simple|cvar")
	cmd.Flags().StringVar(&constraintsPreset, "constraints", "", "conservative|moderate|risky (default: goal's risk profile)")
	cmd.Flags().StringVar(&constraintsFile, "constraints-file", "", "path to a constraints YAML file, overrides --constraints")
	cmd.Flags().StringVar(&strategyFile, "strategy-file", "", "path to a strategy YAML file, overrides --strategy")
	cmd.Flags().StringVar(&csvOut, "csv", "", "write proposed trades to this CSV path")
	cmd.Flags().BoolVar(&save, "save", false, "persist the rebalance run")
	_ = cmd.MarkFlagRequired("goal")

	return cmd
}

func resolveConstraints(riskProfile, preset, file string) (engine.TradingConstraints, error) {
	if file != "" {
		return config.LoadConstraints(file)
	}
	if preset != "" {
		return engine.ConstraintsForRiskProfile(preset), nil
	}
	return engine.ConstraintsForRiskProfile(riskProfile), nil
}

func resolveStrategy(kind, file string) (engine.StrategyConfig, error) {
	if file != "" {
		return config.LoadStrategy(file)
	}
	if kind == "cvar" {
		return engine.StrategyConfig{Kind: engine.StrategyKindCVaR}, nil
	}
	return engine.StrategyConfig{Kind: engine.StrategyKindSimple}, nil
}

// printResult renders a RebalanceResult the way this codebase's other
// reporting paths do: a terse summary line per trade plus the run totals.
func printResult(result types.RebalanceResult) {
	if len(result.Trades) == 0 {
		fmt.Println("no trades proposed")
	}
	for _, t := range result.Trades {
		fmt.Printf("%-4s %-8s %12s shares @ %10s  (%s)\n", t.Action, t.Ticker, t.Shares.String(), t.CurrentPrice.String(), t.Reason)
	}
	fmt.Printf("\nbuy=%s sell=%s cost=%s turnover=%.2f%% max_drift_after=%.2f%%\n",
		result.TotalBuyValue.String(), result.TotalSellValue.String(), result.EstimatedCost.String(),
		result.Metrics.TurnoverPct*100, result.Metrics.MaxDriftAfter*100)
	if result.Metrics.CVaR != nil {
		fmt.Printf("cvar=%.4f\n", *result.Metrics.CVaR)
	}
	for _, w := range result.Metrics.Warnings {
		fmt.Printf("warning: %s\n", w)
	}
}

func writeTradesCSV(path string, trades []types.Trade) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"ticker", "action", "shares", "price", "value", "reason"}); err != nil {
		return err
	}
	for _, t := range trades {
		record := []string{
			t.Ticker,
			string(t.Action),
			t.Shares.String(),
			t.CurrentPrice.String(),
			t.Value().String(),
			t.Reason,
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return w.Error()
}
