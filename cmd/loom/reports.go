package main

import (
	"fmt"

	"github.com/cuemby/loom/pkg/report"
	"github.com/spf13/cobra"
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Inspect iteration reports persisted by a previous 'loom run --data-dir'",
}

var reportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List persisted iteration reports, optionally filtered by scenario or outcome",
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		scenario, _ := cmd.Flags().GetString("scenario")
		outcome, _ := cmd.Flags().GetString("outcome")

		store, err := report.NewBoltStore(dataDir)
		if err != nil {
			return fmt.Errorf("failed to open report store: %w", err)
		}
		defer store.Close()

		var reports []*report.Report
		switch {
		case scenario != "":
			reports, err = store.ListReportsByScenario(scenario)
		case outcome != "":
			reports, err = store.ListReportsByOutcome(report.Outcome(outcome))
		default:
			reports, err = store.ListReports()
		}
		if err != nil {
			return fmt.Errorf("failed to list reports: %w", err)
		}

		if len(reports) == 0 {
			fmt.Println("No reports found")
			return nil
		}

		fmt.Printf("%-36s %-20s %-10s %-10s %s\n", "ID", "SCENARIO", "STRATEGY", "OUTCOME", "SEED")
		for _, r := range reports {
			fmt.Printf("%-36s %-20s %-10s %-10s %d\n", r.ID, r.Scenario, r.Strategy, r.Outcome, r.Seed)
		}
		return nil
	},
}

func init() {
	reportsCmd.AddCommand(reportsListCmd)

	reportsListCmd.Flags().String("data-dir", "", "Directory holding loom.db (required)")
	reportsListCmd.Flags().String("scenario", "", "Filter by scenario name")
	reportsListCmd.Flags().String("outcome", "", "Filter by outcome: success, failure, or deadlock")
	_ = reportsListCmd.MarkFlagRequired("data-dir")
}
