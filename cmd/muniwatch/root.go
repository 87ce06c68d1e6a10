package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"muniwatch/pkg/core/batch"
	"muniwatch/pkg/core/config"
	"muniwatch/pkg/core/store"
)

var (
	flagConfig string
	flagDryRun bool
)

var rootCmd = &cobra.Command{
	Use:   "muniwatch",
	Short: "Municipal fiscal stress analyzer",
	Long:  "Compute fiscal-stress risk scores and multi-year projections from transcribed municipal financial records.",
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Model config YAML (defaults used when empty)")
	rootCmd.PersistentFlags().BoolVar(&flagDryRun, "dry-run", false, "Compute and print without persisting to the database")
}

func loadConfig() (*config.Config, error) {
	if flagConfig == "" {
		cfg := config.Default()
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return config.Load(flagConfig)
}

// newRunner wires stores and engines. Dry-run mode computes against the
// database but writes to memory, so nothing is persisted.
func newRunner(ctx context.Context, cfg *config.Config) (*batch.Runner, func(), error) {
	logger := log.New(os.Stderr, "", log.LstdFlags)

	if err := store.InitDB(ctx); err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	pool := store.GetPool()
	ledgerStore := store.NewLedgerRepo(pool)

	var riskStore store.RiskStore = store.NewRiskRepo(pool)
	var projStore store.ProjectionStore = store.NewProjectionRepo(pool)
	if flagDryRun {
		mem := store.NewInMemory()
		riskStore = mem
		projStore = mem
	}

	runner, err := batch.NewRunner(cfg, ledgerStore, riskStore, projStore, logger)
	if err != nil {
		return nil, nil, err
	}
	return runner, store.Close, nil
}
