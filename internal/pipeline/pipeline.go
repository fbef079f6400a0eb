// Package pipeline orchestrates extract → match → persist per email.
//
// Processing is serialized: one email is extracted, reconciled, and
// committed before the next starts, so two emails about the same event
// cannot both create it. No event row is touched until the decision is
// final.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"mailcal/internal/db"
	"mailcal/internal/embed"
	"mailcal/internal/extract"
	"mailcal/internal/match"
	"mailcal/internal/types"
)

// Result is the outcome of processing one email.
type Result struct {
	Event        *types.Event     `json:"event"`
	Candidate    *types.Candidate `json:"candidate"`
	Created      bool             `json:"created"`
	ByTrackingID bool             `json:"by_tracking_id,omitempty"`
	Score        float64          `json:"score,omitempty"`
}

// Pipeline wires the extractor, matcher and store together.
type Pipeline struct {
	store     *db.DB
	extractor extract.Extractor
	matcher   *match.Matcher
	provider  embed.Provider
}

// New creates a Pipeline.
func New(store *db.DB, extractor extract.Extractor, matcher *match.Matcher, provider embed.Provider) *Pipeline {
	return &Pipeline{
		store:     store,
		extractor: extractor,
		matcher:   matcher,
		provider:  provider,
	}
}

// ExtractorName reports which extraction strategy is active.
func (p *Pipeline) ExtractorName() string {
	return p.extractor.Name()
}

// ProcessEmail extracts a candidate from the email, reconciles it
// against all stored events, and commits the decision: merge into the
// matched event or create a new pending one. The email is marked
// processed only after a successful commit.
func (p *Pipeline) ProcessEmail(ctx context.Context, email *types.Email) (*Result, error) {
	cand, err := p.extractor.Extract(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", email.ID, err)
	}

	events, err := p.store.Events()
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}

	m, err := p.matcher.FindMatch(ctx, email, cand, events)
	if err != nil {
		return nil, fmt.Errorf("match %s: %w", email.ID, err)
	}

	result := &Result{Candidate: cand}

	if m != nil {
		merged := mergeCandidate(m.Event, cand)
		if err := p.store.UpdateEvent(merged); err != nil {
			return nil, fmt.Errorf("update event %s: %w", merged.ID, err)
		}
		result.Event = merged
		result.ByTrackingID = m.ByTrackingID
		result.Score = m.Score
	} else {
		event := &types.Event{
			Title:         cand.Title,
			Date:          cand.Date.UTC().Format(time.RFC3339),
			Location:      cand.Location,
			Category:      cand.Category,
			Status:        types.StatusPending,
			TrackingID:    cand.TrackingID,
			ExtractedFrom: email.ID,
		}
		if err := p.store.InsertEvent(event); err != nil {
			return nil, fmt.Errorf("insert event: %w", err)
		}
		result.Event = event
		result.Created = true
	}

	// Refresh the embedding cache for the committed event so later
	// match attempts don't recompute it. Failure here only costs a
	// recompute, never the decision.
	if vec, err := p.provider.Embed(ctx, match.EventText(result.Event)); err == nil {
		if err := p.store.SetEmbedding(result.Event.ID, p.provider.Name(), vec); err == nil {
			result.Event.EmbedProvider = p.provider.Name()
			result.Event.Embedding = vec
		}
	}

	if err := p.store.MarkProcessed(email.ID); err != nil {
		return nil, fmt.Errorf("mark processed: %w", err)
	}

	return result, nil
}

// mergeCandidate folds extracted fields into an existing event,
// preferring the candidate's value when it carries one. Status and
// provenance are left untouched.
func mergeCandidate(event *types.Event, cand *types.Candidate) *types.Event {
	merged := *event
	if cand.Title != "" {
		merged.Title = cand.Title
	}
	if !cand.Date.IsZero() {
		merged.Date = cand.Date.UTC().Format(time.RFC3339)
	}
	if cand.Location != "" {
		merged.Location = cand.Location
	}
	if cand.Category != "" {
		merged.Category = cand.Category
	}
	if cand.TrackingID != "" {
		merged.TrackingID = cand.TrackingID
	}
	return &merged
}
