package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/awhite/budget-buckets/internal/allocate"
	"github.com/awhite/budget-buckets/internal/config"
	"github.com/awhite/budget-buckets/internal/loader"
	"github.com/awhite/budget-buckets/internal/report"
	"github.com/awhite/budget-buckets/internal/ynab"
	"github.com/awhite/budget-buckets/pkg/tree"
)

var (
	solveStrategy    string
	solveStepSize    float64
	solveSeed        int64
	solveMaxAttempts int
	solveSheet       string
	solvePush        bool
	solveAccount     string
)

var solveCmd = &cobra.Command{
	Use:   "solve <input-file>",
	Short: "Allocate new money across the bucket hierarchy",
	Args:  cobra.ExactArgs(1),
	RunE:  runSolve,
}

func init() {
	solveCmd.Flags().StringVar(&solveStrategy, "solver", "", "strategy override: constrained, unconstrained, montecarlo")
	solveCmd.Flags().Float64Var(&solveStepSize, "step-size", 0, "Monte Carlo step size override")
	solveCmd.Flags().Int64Var(&solveSeed, "seed", 0, "Monte Carlo seed override")
	solveCmd.Flags().IntVar(&solveMaxAttempts, "max-attempts", 0, "propagation pass budget override")
	solveCmd.Flags().StringVar(&solveSheet, "sheet", "", "sheet name for XLSX input")
	solveCmd.Flags().BoolVar(&solvePush, "push", false, "create budgeting-service transactions for each leaf")
	solveCmd.Flags().StringVar(&solveAccount, "account", "", "budgeting-service account for --push")
	rootCmd.AddCommand(solveCmd)
}

func runSolve(cmd *cobra.Command, args []string) error {
	settings, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	if solveStrategy != "" {
		settings.Solver.Strategy = solveStrategy
	}
	if solveStepSize > 0 {
		settings.Solver.StepSize = solveStepSize
	}
	if solveSeed != 0 {
		settings.Solver.Seed = solveSeed
	}
	if solveMaxAttempts > 0 {
		settings.Solver.MaxAttempts = solveMaxAttempts
	}

	var rows []tree.Row
	if solveSheet != "" {
		rows, err = loader.LoadSheet(args[0], solveSheet)
	} else {
		rows, err = loader.Load(args[0])
	}
	if err != nil {
		return fmt.Errorf("loading %s: %w", args[0], err)
	}

	t, err := tree.Build(logger, rows)
	if err != nil {
		return err
	}
	report.Log(logger, "buckets", t, report.InputColumns())

	solver, err := newSolver(settings.Solver)
	if err != nil {
		return err
	}
	solved := t.Clone()
	if err := allocate.Solve(logger, solved, solver, allocate.Options{MaxAttempts: settings.Solver.MaxAttempts}); err != nil {
		return err
	}
	report.Log(logger, "solved", solved, report.OutputColumns())
	report.Summary(logger, solved)

	if solvePush {
		return push(cmd.Context(), logger, settings, solved)
	}
	return nil
}

// push creates one transaction per leaf for the amount allocated to it.
func push(ctx context.Context, logger *zap.Logger, settings *config.Settings, t *tree.Tree) error {
	if settings.YNAB.Token == "" {
		return fmt.Errorf("YNAB_API_KEY is not set")
	}
	if settings.YNAB.Budget == "" || solveAccount == "" {
		return fmt.Errorf("--push requires a configured budget and --account")
	}

	cache, err := ynab.OpenCache(settings.YNAB.CachePath)
	if err != nil {
		logger.Warn("running without response cache",
			zap.String("op", "solve.push"),
			zap.Error(err),
		)
		cache = nil
	}
	defer func() {
		_ = cache.Close()
	}()

	client := ynab.NewClient(settings.YNAB.APIURL, settings.YNAB.Token, cache, logger)
	budgetID, err := client.BudgetID(ctx, settings.YNAB.Budget)
	if err != nil {
		return err
	}
	accountID, err := client.AccountID(ctx, budgetID, solveAccount)
	if err != nil {
		return err
	}

	date := time.Now().Format("2006-01-02")
	var transactions []ynab.Transaction
	for i := 0; i < t.Len(); i++ {
		if !t.IsLeaf(i) {
			continue
		}
		node := t.At(i)
		if node.AmountToAdd == 0 {
			continue
		}
		categoryID, err := client.CategoryID(ctx, budgetID, node.Label)
		if err != nil {
			return err
		}
		transactions = append(transactions, ynab.Transaction{
			AccountID:  accountID,
			CategoryID: categoryID,
			Date:       date,
			Amount:     int64(node.AmountToAdd * 1000),
			PayeeName:  "budget-buckets",
			Memo:       "bucket allocation for " + node.Label,
		})
	}
	if len(transactions) == 0 {
		logger.Info("nothing to push", zap.String("op", "solve.push"))
		return nil
	}

	if err := client.Transact(ctx, budgetID, transactions...); err != nil {
		return err
	}
	logger.Info("pushed transactions",
		zap.String("op", "solve.push"),
		zap.Int("count", len(transactions)),
	)
	return nil
}
