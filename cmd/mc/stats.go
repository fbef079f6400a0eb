package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"mailcal/internal/display"
	"mailcal/internal/types"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show email and event counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		byStatus, err := store.EventCountByStatus()
		if err != nil {
			return fmt.Errorf("event counts: %w", err)
		}
		byCategory, err := store.EventCountByCategory()
		if err != nil {
			return fmt.Errorf("category counts: %w", err)
		}

		emailTotal := store.EmailCount()
		unprocessed := store.UnprocessedCount()

		if jsonOutput {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{
				"emails":             emailTotal,
				"emails_unprocessed": unprocessed,
				"events_by_status":   byStatus,
				"events_by_category": byCategory,
			})
		}

		display.Header("Emails")
		fmt.Printf("  %d synced, %d unprocessed\n", emailTotal, unprocessed)
		for _, account := range store.Accounts() {
			fmt.Printf("  %s %d\n", display.AccountLabel(account), store.EmailCountByAccount(account))
		}

		fmt.Println()
		display.Header("Events")
		for _, status := range []string{types.StatusPending, types.StatusApproved, types.StatusRejected} {
			if n := byStatus[status]; n > 0 {
				fmt.Printf("  %s %-9s %d\n", display.StatusDot(status), status, n)
			}
		}
		for _, category := range types.ValidCategories {
			if n := byCategory[category]; n > 0 {
				fmt.Printf("  %s %d\n", display.CategoryBadge(category), n)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
