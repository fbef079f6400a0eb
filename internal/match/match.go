// Package match reconciles a candidate event against existing events.
//
// A shared tracking id is an exact, high-confidence linking key and is
// checked first without touching the embedding provider. Otherwise the
// email text is embedded once and compared against each event by cosine
// similarity; the best-scoring event wins if it clears the acceptance
// threshold, and anything below it means "create a new event".
package match

import (
	"context"
	"fmt"
	"strings"

	"mailcal/internal/embed"
	"mailcal/internal/types"
)

// DefaultThreshold is the minimum cosine similarity for a match. The
// constant is inherited, not proven optimal; it is configurable so
// deployments can tune it.
const DefaultThreshold = 0.85

// Match describes how a candidate was linked to an existing event.
type Match struct {
	Event        *types.Event `json:"event"`
	Score        float64      `json:"score"`
	ByTrackingID bool         `json:"by_tracking_id"`
}

// Matcher links candidates to existing events.
type Matcher struct {
	provider  embed.Provider
	threshold float64
}

// New creates a Matcher. A threshold <= 0 selects DefaultThreshold.
func New(provider embed.Provider, threshold float64) *Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Matcher{provider: provider, threshold: threshold}
}

// FindMatch returns the existing event the candidate should be merged
// into, or nil when a new event should be created. Events are scanned
// in caller-supplied order; ties keep the earliest-seen event. Any
// embedding failure aborts the whole attempt: matching without the
// similarity signal risks silently updating the wrong event.
func (m *Matcher) FindMatch(ctx context.Context, email *types.Email, cand *types.Candidate, events []*types.Event) (*Match, error) {
	if cand.TrackingID != "" {
		for _, e := range events {
			if e.TrackingID != "" && e.TrackingID == cand.TrackingID {
				return &Match{Event: e, Score: 1, ByTrackingID: true}, nil
			}
		}
	}

	if len(events) == 0 {
		return nil, nil
	}

	emailVec, err := m.provider.Embed(ctx, email.Subject+"\n"+email.Body)
	if err != nil {
		return nil, fmt.Errorf("embed email: %w", err)
	}

	var best *Match
	for _, e := range events {
		vec, err := m.eventVector(ctx, e)
		if err != nil {
			return nil, fmt.Errorf("embed event %s: %w", e.ID, err)
		}
		score := embed.Cosine(emailVec, vec)
		if best == nil || score > best.Score {
			best = &Match{Event: e, Score: score}
		}
	}

	if best != nil && best.Score >= m.threshold {
		return best, nil
	}
	return nil, nil
}

// eventVector returns the event's embedding, reusing the cached vector
// when it was produced by the active provider.
func (m *Matcher) eventVector(ctx context.Context, e *types.Event) ([]float32, error) {
	if e.EmbedProvider == m.provider.Name() && len(e.Embedding) > 0 {
		return e.Embedding, nil
	}
	return m.provider.Embed(ctx, EventText(e))
}

// EventText is the canonical text an event is embedded from.
func EventText(e *types.Event) string {
	parts := make([]string, 0, 3)
	for _, s := range []string{e.Title, e.Location, e.TrackingID} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}
