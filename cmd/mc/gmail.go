package main

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	gm "google.golang.org/api/gmail/v1"

	"mailcal/internal/auth"
	"mailcal/internal/db"
	"mailcal/internal/display"
	"mailcal/internal/gmail"
)

var (
	gmailAccount    string
	gmailMaxResults int64
)

var gmailCmd = &cobra.Command{
	Use:   "gmail",
	Short: "Query Gmail directly (debugging)",
	Long: `Talk to the Gmail API without touching the local database.

Useful for checking credentials and inspecting what a sync would pull.
Requires --account pointing at a directory with credentials.json.`,
}

var gmailSearchCmd = &cobra.Command{
	Use:   "search QUERY",
	Short: "Search messages with a Gmail query",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := gmailService()
		if err != nil {
			return err
		}
		messages, err := gmail.Search(svc, args[0], gmailMaxResults)
		if err != nil {
			return fmt.Errorf("search: %w", err)
		}

		if jsonOutput {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(messages)
		}

		for _, m := range messages {
			fmt.Printf("%s  %s  %s\n",
				display.Dim.Render(m.ID),
				display.Truncate(m.From, 30),
				display.Truncate(m.Subject, 60),
			)
		}
		if !quietFlag {
			fmt.Printf("\n%d messages\n", len(messages))
		}
		return nil
	},
}

var gmailReadCmd = &cobra.Command{
	Use:   "read MESSAGE_ID",
	Short: "Fetch one message with its body",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := gmailService()
		if err != nil {
			return err
		}
		msg, err := gmail.ReadFull(svc, args[0])
		if err != nil {
			return fmt.Errorf("read message: %w", err)
		}

		if jsonOutput {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(msg)
		}

		fmt.Printf("From:    %s\n", msg.From)
		fmt.Printf("Subject: %s\n", msg.Subject)
		fmt.Printf("Date:    %s\n", msg.ReceivedAt)
		fmt.Println()
		fmt.Println(msg.Body)
		return nil
	},
}

func gmailService() (*gm.Service, error) {
	if gmailAccount == "" {
		return nil, fmt.Errorf("--account is required")
	}
	root := db.FindProjectRoot()
	if root == "" {
		return nil, fmt.Errorf("not inside a project (no .git directory found)")
	}
	credPath := filepath.Join(root, gmailAccount, "credentials.json")
	return auth.LoadGmailService(context.Background(), credPath)
}

func init() {
	gmailCmd.PersistentFlags().StringVarP(&gmailAccount, "account", "a", "", "Account directory name (e.g. user@gmail.com)")
	gmailSearchCmd.Flags().Int64VarP(&gmailMaxResults, "max", "m", 20, "Max results to return")
	gmailCmd.AddCommand(gmailSearchCmd)
	gmailCmd.AddCommand(gmailReadCmd)
	rootCmd.AddCommand(gmailCmd)
}
