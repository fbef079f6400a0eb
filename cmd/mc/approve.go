package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"mailcal/internal/calendar"
	"mailcal/internal/db"
	"mailcal/internal/display"
	"mailcal/internal/types"
)

var approvePush bool

var approveCmd = &cobra.Command{
	Use:   "approve EVENT_ID",
	Short: "Approve a pending event",
	Long: `Mark an event as approved, optionally pushing it to Google Calendar.

With --push the event is inserted into the primary calendar of the
account the source email was synced from, and the resulting calendar id
is stored on the event.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		event, err := store.GetEvent(args[0])
		if err != nil {
			return err
		}

		if err := store.UpdateEventStatus(event.ID, types.StatusApproved); err != nil {
			return fmt.Errorf("approve event: %w", err)
		}
		event.Status = types.StatusApproved

		if approvePush {
			if event.CalendarID != "" {
				return fmt.Errorf("event already pushed (calendar id %s)", event.CalendarID)
			}
			calID, err := pushToCalendar(event)
			if err != nil {
				return fmt.Errorf("push to calendar: %w", err)
			}
			if err := store.SetCalendarID(event.ID, calID); err != nil {
				return fmt.Errorf("store calendar id: %w", err)
			}
			if !quietFlag {
				display.SuccessMsg("Approved and pushed %s to calendar", display.Truncate(event.Title, 50))
			}
			return nil
		}

		if !quietFlag {
			display.SuccessMsg("Approved %s", display.Truncate(event.Title, 50))
		}
		return nil
	},
}

var rejectCmd = &cobra.Command{
	Use:   "reject EVENT_ID",
	Short: "Reject a pending event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		event, err := store.GetEvent(args[0])
		if err != nil {
			return err
		}
		if err := store.UpdateEventStatus(event.ID, types.StatusRejected); err != nil {
			return fmt.Errorf("reject event: %w", err)
		}
		if !quietFlag {
			display.SuccessMsg("Rejected %s", display.Truncate(event.Title, 50))
		}
		return nil
	},
}

// pushToCalendar resolves the source account's credentials and inserts
// the event into its primary calendar.
func pushToCalendar(event *types.Event) (string, error) {
	if event.ExtractedFrom == "" {
		return "", fmt.Errorf("event has no source email")
	}
	email, err := store.GetEmail(event.ExtractedFrom)
	if err != nil {
		return "", fmt.Errorf("lookup source email: %w", err)
	}
	if email == nil {
		return "", fmt.Errorf("source email %s no longer in database", event.ExtractedFrom)
	}

	root := db.FindProjectRoot()
	if root == "" {
		return "", fmt.Errorf("not inside a project (no .git directory found)")
	}
	credPath := filepath.Join(root, email.Account, "credentials.json")
	return calendar.CreateEvent(context.Background(), credPath, event)
}

func init() {
	approveCmd.Flags().BoolVar(&approvePush, "push", false, "Push the approved event to Google Calendar")
	rootCmd.AddCommand(approveCmd)
	rootCmd.AddCommand(rejectCmd)
}
