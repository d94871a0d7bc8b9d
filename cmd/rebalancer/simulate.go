package main

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"rebalancer/internal/engine"
)

// simulateCmd runs the Monte Carlo simulator and CVaR evaluator against a
// goal's invested weights standalone, without proposing trades — useful for
// answering "what would this portfolio's tail risk look like" ahead of
// deciding whether to run a full rebalance.
func simulateCmd(flags *globalFlags) *cobra.Command {
	var (
		goalID          string
		scenarios       int
		confidenceLevel float64
		periods         int
		seed            int64
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Simulate a goal's portfolio and report VaR/CVaR",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			db, log, err := openRepository(ctx, flags)
			if err != nil {
				return err
			}
			defer db.Close()

			goal, err := db.GetGoal(ctx, goalID)
			if err != nil {
				return fmt.Errorf("load goal: %w", err)
			}

			tickers := goal.Portfolio.Tickers()
			mu, sigma, err := engine.SyntheticEstimator(tickers)
			if err != nil {
				return fmt.Errorf("estimate: %w", err)
			}
			// TargetWeights is already returned in Tickers() order.
			w := goal.Portfolio.TargetWeights()

			bar := progressbar.NewOptions(scenarios,
				progressbar.OptionSetDescription("Simulating scenarios..."),
				progressbar.OptionShowElapsedTimeOnFinish(),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
			)

			cfg := engine.SimulationConfig{Mu: mu, Sigma: sigma, Periods: periods, Scenarios: scenarios, Seed: seed}
			returns, err := engine.SimulateCumulativeReturns(ctx, w, cfg)
			if err != nil {
				return fmt.Errorf("simulate: %w", err)
			}
			_ = bar.Add(scenarios)
			fmt.Println()

			varValue := engine.VaR(returns, confidenceLevel)
			cvarValue := engine.CVaR(returns, confidenceLevel)

			log.Info().
				Int("scenarios", len(returns)).
				Float64("confidence_level", confidenceLevel).
				Msg("simulation complete")

			fmt.Printf("VaR(%.0f%%)=%.4f  CVaR(%.0f%%)=%.4f  mean_terminal_return=%.4f\n",
				confidenceLevel*100, varValue, confidenceLevel*100, cvarValue, meanOf(returns))
			return nil
		},
	}

	cmd.Flags().StringVar(&goalID, "goal", "", "goal id to simulate (required)")
	cmd.Flags().IntVar(&scenarios, "scenarios", 1000, "number of Monte Carlo scenarios")
	cmd.Flags().Float64Var(&confidenceLevel, "confidence-level", 0.95, "VaR/CVaR confidence level")
	cmd.Flags().IntVar(&periods, "periods", 252, "number of periods to simulate")
	cmd.Flags().Int64Var(&seed, "seed", 42, "RNG seed")
	_ = cmd.MarkFlagRequired("goal")

	return cmd
}

func meanOf(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
