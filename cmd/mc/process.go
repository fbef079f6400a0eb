package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"mailcal/internal/config"
	"mailcal/internal/display"
	"mailcal/internal/embed"
	"mailcal/internal/extract"
	"mailcal/internal/match"
	"mailcal/internal/model"
	"mailcal/internal/pipeline"
	"mailcal/internal/types"
)

var (
	processAll   bool
	processLimit int
)

var processCmd = &cobra.Command{
	Use:   "process [EMAIL_ID]",
	Short: "Extract events from synced emails and reconcile them",
	Long: `Run the extraction pipeline over synced emails.

Each email is turned into a candidate event (via the local Ollama model
when reachable, a deterministic heuristic otherwise) and reconciled
against existing events: a shared tracking id or a sufficiently similar
embedding updates the known event, anything else creates a new pending
one. Emails are processed one at a time, in arrival order.

Examples:
  mc process --all
  mc process 19abc123
  mc process --all -n 10`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 && !processAll {
			return fmt.Errorf("specify an EMAIL_ID or --all")
		}

		ctx := context.Background()
		p := newPipeline(ctx)

		if !quietFlag {
			fmt.Printf("Extraction strategy: %s\n\n", p.ExtractorName())
		}

		var emails []*types.Email
		if len(args) == 1 {
			email, err := store.GetEmail(args[0])
			if err != nil {
				return fmt.Errorf("lookup email: %w", err)
			}
			if email == nil {
				return fmt.Errorf("email %q not found — run 'mc sync' first", args[0])
			}
			emails = []*types.Email{email}
		} else {
			var err error
			emails, err = store.UnprocessedEmails(processLimit)
			if err != nil {
				return fmt.Errorf("query unprocessed: %w", err)
			}
		}

		if len(emails) == 0 {
			if !quietFlag {
				fmt.Println("Nothing to process.")
			}
			return nil
		}

		var results []*pipeline.Result
		created, updated := 0, 0
		for _, email := range emails {
			result, err := p.ProcessEmail(ctx, email)
			if err != nil {
				display.ErrorMsg("process %s: %v", email.ID, err)
				continue
			}
			results = append(results, result)

			if result.Created {
				created++
			} else {
				updated++
			}

			if !quietFlag && !jsonOutput {
				printDecision(email, result)
			}
		}

		if jsonOutput {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(results)
		}

		if !quietFlag {
			fmt.Println()
			display.SuccessMsg("Processed %d emails: %d new events, %d updated", len(results), created, updated)
		}
		return nil
	},
}

// newPipeline probes the model runtime once and wires the strategies.
func newPipeline(ctx context.Context) *pipeline.Pipeline {
	cfg := config.Load()
	client := model.New(cfg.Model.Host, cfg.Model.TextModel, cfg.Model.EmbedModel)

	extractor := extract.Select(ctx, client)
	provider := embed.Select(ctx, client)
	matcher := match.New(provider, cfg.Match.Threshold)

	return pipeline.New(store, extractor, matcher, provider)
}

func printDecision(email *types.Email, result *pipeline.Result) {
	verb := "Updated"
	if result.Created {
		verb = "Created"
	}
	via := ""
	switch {
	case result.ByTrackingID:
		via = display.Dim.Render(" (tracking id)")
	case !result.Created:
		via = display.Dim.Render(fmt.Sprintf(" (similarity %.2f)", result.Score))
	}

	fmt.Printf("%s %s %s  %s%s\n",
		display.StatusDot(result.Event.Status),
		verb,
		display.Truncate(result.Event.ID, 10),
		display.Truncate(result.Event.Title, 50),
		via,
	)
	fmt.Printf("    %s %s  from %q  confidence %s\n",
		display.CategoryBadge(result.Event.Category),
		display.EventDate(result.Event.Date),
		display.Truncate(email.Subject, 40),
		display.Confidence(result.Candidate.Confidence),
	)
}

func init() {
	processCmd.Flags().BoolVar(&processAll, "all", false, "Process all unprocessed emails")
	processCmd.Flags().IntVarP(&processLimit, "limit", "n", 0, "Max emails to process (0 = no limit)")
	rootCmd.AddCommand(processCmd)
}
