package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"mailcal/internal/display"
	"mailcal/internal/types"
)

var (
	eventsStatus   string
	eventsCategory string
	eventsLimit    int
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List extracted events",
	Long: `List events in creation order, optionally filtered.

Examples:
  mc events
  mc events --status pending
  mc events --category delivery -n 20`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if eventsStatus != "" && !types.IsValidStatus(eventsStatus) {
			return fmt.Errorf("invalid status %q (pending, approved, rejected)", eventsStatus)
		}
		if eventsCategory != "" && !types.IsValidCategory(eventsCategory) {
			return fmt.Errorf("invalid category %q", eventsCategory)
		}

		events, err := store.ListEvents(eventsStatus, eventsCategory, eventsLimit)
		if err != nil {
			return fmt.Errorf("list events: %w", err)
		}

		if jsonOutput {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(events)
		}

		if len(events) == 0 {
			fmt.Println("No events. Run 'mc process --all' after syncing.")
			return nil
		}

		for _, e := range events {
			display.EventLine(e)
		}
		if !quietFlag {
			fmt.Printf("\n%d events\n", len(events))
		}
		return nil
	},
}

func init() {
	eventsCmd.Flags().StringVarP(&eventsStatus, "status", "s", "", "Filter by status (pending, approved, rejected)")
	eventsCmd.Flags().StringVarP(&eventsCategory, "category", "c", "", "Filter by category")
	eventsCmd.Flags().IntVarP(&eventsLimit, "limit", "n", 0, "Max events to show (0 = no limit)")
	rootCmd.AddCommand(eventsCmd)
}
