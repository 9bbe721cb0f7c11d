// Package main implements the budget-buckets CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/awhite/budget-buckets/internal/config"
	"github.com/awhite/budget-buckets/pkg/bucket"
)

var (
	settingsPath string
	logLevel     string
)

var rootCmd = &cobra.Command{
	Use:           "budget-buckets",
	Short:         "Distribute new money across a hierarchy of budget buckets",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&settingsPath, "settings", "", "path to the settings file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
}

// setup loads the settings and builds the logger every command uses.
func setup() (*config.Settings, *zap.Logger, error) {
	settings, err := config.Load(settingsPath)
	if err != nil {
		return nil, nil, err
	}
	logger, err := initializeLogger(settings.Logging, logLevel)
	if err != nil {
		return nil, nil, err
	}
	return settings, logger, nil
}

// newSolver builds the strategy selected by name.
func newSolver(conf config.SolverConfig) (bucket.Solver, error) {
	switch conf.Strategy {
	case "unconstrained":
		return bucket.Unconstrained{}, nil
	case "constrained":
		return bucket.Constrained{}, nil
	case "montecarlo":
		return &bucket.MonteCarlo{StepSize: conf.StepSize, Seed: conf.Seed}, nil
	default:
		return nil, fmt.Errorf("unknown solver strategy %q", conf.Strategy)
	}
}
