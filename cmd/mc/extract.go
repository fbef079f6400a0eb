package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"mailcal/internal/config"
	"mailcal/internal/display"
	"mailcal/internal/extract"
	"mailcal/internal/model"
)

var extractHeuristic bool

var extractCmd = &cobra.Command{
	Use:   "extract EMAIL_ID",
	Short: "Preview the event candidate for one email",
	Long: `Extract a candidate event from a single email without storing it.

Useful for inspecting what 'mc process' would do: shows the candidate
fields, the confidence, and the raw extraction detail. Pass --heuristic
to force the regex/keyword path even when the model is reachable.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		email, err := store.GetEmail(args[0])
		if err != nil {
			return fmt.Errorf("lookup email: %w", err)
		}
		if email == nil {
			return fmt.Errorf("email %q not found — run 'mc sync' first", args[0])
		}

		ctx := context.Background()
		var extractor extract.Extractor
		if extractHeuristic {
			extractor = extract.NewHeuristic()
		} else {
			cfg := config.Load()
			client := model.New(cfg.Model.Host, cfg.Model.TextModel, cfg.Model.EmbedModel)
			extractor = extract.Select(ctx, client)
		}

		cand, err := extractor.Extract(ctx, email)
		if err != nil {
			return fmt.Errorf("extract: %w", err)
		}

		if jsonOutput {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{
				"strategy":  extractor.Name(),
				"candidate": cand,
			})
		}

		display.Header("Candidate")
		fmt.Printf("  Strategy:   %s\n", extractor.Name())
		fmt.Printf("  Title:      %s\n", cand.Title)
		fmt.Printf("  Date:       %s\n", cand.Date.Format("Mon, 2 Jan 2006 15:04"))
		fmt.Printf("  Category:   %s\n", display.CategoryBadge(cand.Category))
		if cand.Location != "" {
			fmt.Printf("  Location:   %s\n", cand.Location)
		}
		if cand.TrackingID != "" {
			fmt.Printf("  Tracking:   %s\n", cand.TrackingID)
		}
		fmt.Printf("  Confidence: %s\n", display.Confidence(cand.Confidence))
		return nil
	},
}

func init() {
	extractCmd.Flags().BoolVar(&extractHeuristic, "heuristic", false, "Force the heuristic extractor")
	rootCmd.AddCommand(extractCmd)
}
