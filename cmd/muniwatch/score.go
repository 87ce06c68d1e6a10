package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"muniwatch/pkg/core/indicator"
)

var (
	flagCity string
	flagYear int
	flagAll  bool
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Compute fiscal-stress risk scores",
	RunE:  runScore,
}

func init() {
	scoreCmd.Flags().StringVar(&flagCity, "city", "", "City to score")
	scoreCmd.Flags().IntVar(&flagYear, "year", 0, "Fiscal year to score")
	scoreCmd.Flags().BoolVar(&flagAll, "all", false, "Score every published fiscal year")
	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	runner, closeDB, err := newRunner(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	if flagAll {
		summary, err := runner.ScoreAll(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Scored %d fiscal years (%d failed)\n", summary.Processed, len(summary.Failed))
		for _, f := range summary.Failed {
			fmt.Printf("  failed: %s FY%d: %v\n", f.City, f.Year, f.Err)
		}
		return nil
	}

	if flagCity == "" || flagYear == 0 {
		return fmt.Errorf("either --all or both --city and --year are required")
	}
	if err := runner.ScoreOne(ctx, flagCity, flagYear); err != nil {
		return err
	}
	fmt.Printf("Scored %s FY%d (model %s)\n", flagCity, flagYear, cfg.ModelVersion)
	return nil
}

var indicatorsCmd = &cobra.Command{
	Use:   "indicators",
	Short: "Print a fiscal year's indicator table",
	RunE:  runIndicators,
}

func init() {
	indicatorsCmd.Flags().StringVar(&flagCity, "city", "", "City to inspect")
	indicatorsCmd.Flags().IntVar(&flagYear, "year", 0, "Fiscal year to inspect")
	rootCmd.AddCommand(indicatorsCmd)
}

func runIndicators(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flagCity == "" || flagYear == 0 {
		return fmt.Errorf("--city and --year are required")
	}
	ctx := cmd.Context()

	runner, closeDB, err := newRunner(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	score, err := runner.Calculate(ctx, flagCity, flagYear)
	if err != nil {
		return err
	}

	fmt.Printf("%s FY%d  overall %.1f (%s)  completeness %.0f%%\n\n",
		score.City, score.Year, score.OverallScore, score.RiskLevel, score.DataCompletenessPercent)
	fmt.Printf("%-22s %-12s %-10s %10s %6s\n", "INDICATOR", "CATEGORY", "BAND", "VALUE", "SCORE")
	for _, ind := range score.Indicators {
		if !ind.Available {
			fmt.Printf("%-22s %-12s %-10s %10s %6s  (%s)\n", ind.Code, ind.Category, "n/a", "-", "-", ind.Reason)
			continue
		}
		fmt.Printf("%-22s %-12s %-10s %10.4f %6d\n", ind.Code, ind.Category, ind.Band, *ind.Value, *ind.Score)
	}

	fmt.Println()
	for _, cat := range indicator.Categories {
		sub := score.CategoryScores[cat]
		if sub == nil {
			fmt.Printf("%-12s sub-score: unavailable\n", cat)
			continue
		}
		fmt.Printf("%-12s sub-score: %.1f\n", cat, *sub)
	}
	return nil
}
