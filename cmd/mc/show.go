package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"mailcal/internal/config"
	"mailcal/internal/display"
	"mailcal/internal/model"
)

var showSummarize bool

var showCmd = &cobra.Command{
	Use:   "show EVENT_ID",
	Short: "Show an event and its source email",
	Long: `Show an event's full detail along with the email it came from.

With --summarize and a reachable model runtime, the source email body
is replaced by a model-written summary.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		event, err := store.GetEvent(args[0])
		if err != nil {
			return err
		}

		if jsonOutput {
			email, _ := store.GetEmail(event.ExtractedFrom)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{
				"event": event,
				"email": email,
			})
		}

		display.EventCard(event)

		if event.ExtractedFrom != "" {
			email, err := store.GetEmail(event.ExtractedFrom)
			if err == nil && email != nil {
				fmt.Println()
				display.Header("Source email")
				fmt.Printf("  From:    %s %s\n", email.Sender, display.AccountLabel(email.Account))
				fmt.Printf("  Subject: %s\n", email.Subject)
				fmt.Printf("  Date:    %s\n", display.TimeAgo(email.ReceivedAt))
				fmt.Println()
				fmt.Println(emailBody(email.Body))
			}
		}
		return nil
	},
}

// emailBody returns the body text to display, summarized by the model
// when requested and reachable.
func emailBody(body string) string {
	if showSummarize {
		cfg := config.Load()
		client := model.New(cfg.Model.Host, cfg.Model.TextModel, cfg.Model.EmbedModel)
		ctx := context.Background()
		if client.Available(ctx) {
			if summary, err := client.Summarize(ctx, body); err == nil {
				return summary
			}
		}
	}
	return display.Truncate(body, 500)
}

func init() {
	showCmd.Flags().BoolVar(&showSummarize, "summarize", false, "Summarize the source email with the model")
	rootCmd.AddCommand(showCmd)
}
