package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"mailcal/internal/model"
	"mailcal/internal/types"
)

// proposeEventTool is the structured extraction schema offered to the
// model: a single tool call proposing one event per email.
var proposeEventTool = model.Tool{
	Type: "function",
	Function: model.Function{
		Name:        "propose_event",
		Description: "Propose a structured event parsed from an email",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"title":      map[string]any{"type": "string"},
				"dateTime":   map[string]any{"type": "string", "description": "ISO 8601 date-time"},
				"location":   map[string]any{"type": "string"},
				"category":   map[string]any{"type": "string", "description": "delivery|travel|appointment|ticket|subscription"},
				"trackingId": map[string]any{"type": "string"},
			},
			"required": []string{"title", "dateTime", "category"},
		},
	},
}

// proposedEvent is the payload of a propose_event tool call, or of a
// best-effort JSON parse of the free-text response.
type proposedEvent struct {
	Title      string `json:"title"`
	DateTime   string `json:"dateTime"`
	Location   string `json:"location"`
	Category   string `json:"category"`
	TrackingID string `json:"trackingId"`
}

// ModelExtractor issues one structured extraction request per email.
type ModelExtractor struct {
	completer Completer
}

// NewModel creates a ModelExtractor on top of a chat capability.
func NewModel(completer Completer) *ModelExtractor {
	return &ModelExtractor{completer: completer}
}

// Name implements Extractor.
func (e *ModelExtractor) Name() string { return "model" }

// Extract sends the email to the model with the propose_event schema.
// A structured tool call is preferred; a JSON object in the free-text
// response is accepted as second best. If neither parses, the result
// degrades to subject-as-title and the current time. Transport errors
// are returned to the caller.
func (e *ModelExtractor) Extract(ctx context.Context, email *types.Email) (*types.Candidate, error) {
	prompt := fmt.Sprintf(`Extract a single event using the tool with accurate fields.
Subject: %s
From: %s
Body:
%s`, email.Subject, email.Sender, email.Body)

	resp, err := e.completer.Chat(ctx, []model.Message{
		{Role: "user", Content: prompt},
	}, []model.Tool{proposeEventTool})
	if err != nil {
		return nil, fmt.Errorf("model extraction: %w", err)
	}

	raw := map[string]any{
		"response": resp.Message.Content,
	}

	proposed, source := parseProposal(resp)
	raw["source"] = source

	if proposed == nil {
		// Degraded path: nothing structured came back.
		return &types.Candidate{
			Title:          email.Subject,
			Date:           time.Now(),
			Category:       types.CategoryAppointment,
			Confidence:     DegradedConfidence,
			RawExtractions: raw,
		}, nil
	}

	raw["parsed"] = *proposed

	title := proposed.Title
	if title == "" {
		title = email.Subject
	}

	date := time.Now()
	if proposed.DateTime != "" {
		if t, err := parseISO(proposed.DateTime); err == nil {
			date = t
		} else {
			raw["date_error"] = err.Error()
		}
	}

	category := proposed.Category
	if !types.IsValidCategory(category) {
		category = types.CategoryAppointment
	}

	return &types.Candidate{
		Title:          title,
		Date:           date,
		Location:       proposed.Location,
		Category:       category,
		Confidence:     ModelConfidence,
		TrackingID:     proposed.TrackingID,
		RawExtractions: raw,
	}, nil
}

// parseProposal pulls a proposedEvent from a tool call or, failing
// that, from a JSON object embedded in the response text. The second
// return value names the path taken for the extraction trace.
func parseProposal(resp *model.ChatResponse) (*proposedEvent, string) {
	for _, call := range resp.Message.ToolCalls {
		if call.Function.Name != "propose_event" {
			continue
		}
		var p proposedEvent
		if err := json.Unmarshal(call.Function.Arguments, &p); err == nil {
			return &p, "tool_call"
		}
	}

	// Best-effort: the model may have answered with bare JSON, possibly
	// surrounded by prose.
	content := resp.Message.Content
	if start := strings.Index(content, "{"); start >= 0 {
		if end := strings.LastIndex(content, "}"); end > start {
			var p proposedEvent
			if err := json.Unmarshal([]byte(content[start:end+1]), &p); err == nil && p.Title != "" {
				return &p, "json"
			}
		}
	}

	return nil, "none"
}

// parseISO accepts the date-time layouts models actually emit.
func parseISO(s string) (time.Time, error) {
	for _, layout := range []string{
		time.RFC3339,
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date-time %q", s)
}
