// Package extract turns raw emails into candidate events.
//
// Two interchangeable strategies implement Extractor: a model-backed
// one issuing a single structured tool-call request to the Ollama
// runtime, and a deterministic regex/keyword heuristic used when no
// runtime is available. Both degrade to subject-as-title and the
// current time rather than failing on unparseable input.
package extract

import (
	"context"

	"mailcal/internal/model"
	"mailcal/internal/types"
)

// Extraction confidence constants. The model path carries a fixed high
// confidence reflecting trust in the backing model; the heuristic path
// a lower one; the degraded subject/now path lower still.
const (
	ModelConfidence     = 0.9
	HeuristicConfidence = 0.8
	DegradedConfidence  = 0.5
)

// Extractor maps a raw email to a candidate event. Implementations
// never fail on well-formed input; errors indicate transport failures
// only.
type Extractor interface {
	Extract(ctx context.Context, email *types.Email) (*types.Candidate, error)
	Name() string
}

// Completer is the chat capability the model-backed extractor needs.
// *model.Client satisfies it.
type Completer interface {
	Chat(ctx context.Context, messages []model.Message, tools []model.Tool) (*model.ChatResponse, error)
}

// Select returns the model-backed extractor when the runtime is
// reachable, otherwise the heuristic fallback.
func Select(ctx context.Context, client *model.Client) Extractor {
	if client != nil && client.Available(ctx) {
		return NewModel(client)
	}
	return NewHeuristic()
}
