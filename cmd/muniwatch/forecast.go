package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"muniwatch/pkg/core/scenario"
)

var (
	flagScenario string
	flagHorizon  int
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Project finances forward and detect fiscal cliffs",
	RunE:  runForecast,
}

func init() {
	forecastCmd.Flags().StringVar(&flagCity, "city", "", "City to project")
	forecastCmd.Flags().IntVar(&flagYear, "year", 0, "Base fiscal year")
	forecastCmd.Flags().StringVar(&flagScenario, "scenario", "base", "Scenario code (base, optimistic, pessimistic)")
	forecastCmd.Flags().IntVar(&flagHorizon, "horizon", 10, "Projection horizon in years")
	rootCmd.AddCommand(forecastCmd)
}

func runForecast(cmd *cobra.Command, _ []string) error {
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

	run, err := runner.ForecastOne(ctx, flagCity, flagYear, scenario.Code(flagScenario), flagHorizon)
	if err != nil {
		return err
	}

	fmt.Printf("%s FY%d, scenario %s, %d years\n", run.City, run.BaseYear, run.Scenario, len(run.Projections))
	if run.Cliff.StartingBalanceEstimated {
		fmt.Printf("starting reserves estimated at %.0f (no recorded fund balance)\n", run.Cliff.StartingFundBalance)
	}
	fmt.Printf("\n%5s %15s %15s %15s %15s  %s\n", "YEAR", "REVENUE", "EXPENDITURE", "SURPLUS", "END BALANCE", "FLAGS")
	for _, p := range run.Projections {
		fmt.Printf("%5d %15.0f %15.0f %15.0f %15.0f  %s\n",
			p.Year, p.ProjectedRevenue, p.ProjectedExpenditure,
			p.OperatingSurplusDeficit, p.EndingFundBalance, flags(p))
	}

	fmt.Println()
	cliff := run.Cliff
	if !cliff.HasFiscalCliff {
		fmt.Println("No fiscal cliff within the projection horizon.")
		return nil
	}
	fmt.Printf("FISCAL CLIFF in %d (%d years out, %s)\n", cliff.CliffYear, cliff.YearsUntilCliff, cliff.Severity)
	fmt.Printf("To avert: +%.2f%% annual revenue, or -%.2f%% annual expenditure\n",
		cliff.RevenueIncreaseNeededPercent, cliff.ExpenditureCutNeededPercent)
	return nil
}

func flags(p scenario.Projection) string {
	out := ""
	if p.IsDeficit {
		out += "deficit "
	}
	if p.ReservesBelowMinimum {
		out += "below-min "
	}
	if p.IsFiscalCliff {
		out += "CLIFF"
	}
	return out
}
