// Package embed produces vector embeddings from text.
//
// Two providers exist: a model-backed one delegating to the Ollama
// runtime, and a deterministic hashed term-frequency fallback used when
// no runtime is reachable. Vectors from different providers are not
// comparable; a single provider is active for the lifetime of a
// matching operation.
package embed

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"mailcal/internal/model"
)

// Provider turns text into a fixed-length vector.
type Provider interface {
	// Name identifies the provider and its vector space. Cached
	// vectors are only reused when the name matches.
	Name() string
	Embed(ctx context.Context, text string) ([]float32, error)
}

// HashedDim is the fixed dimensionality of the fallback provider.
const HashedDim = 256

// Hashed is the deterministic fallback provider: a hashed bag-of-words
// term-frequency vector. Stable across calls for identical input.
type Hashed struct{}

// Name implements Provider.
func (Hashed) Name() string { return "hashed-tf" }

// Embed tokenizes on non-alphanumeric boundaries, lower-cases, and
// hashes each token into a 256-wide count accumulator.
func (Hashed) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, HashedDim)
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, tok := range tokens {
		h := fnv.New32a()
		h.Write([]byte(tok))
		vec[h.Sum32()%HashedDim]++
	}
	return vec, nil
}

// Model delegates embedding to the Ollama runtime. Dimensionality is
// whatever the configured embedding model produces.
type Model struct {
	client *model.Client
}

// NewModel creates a model-backed provider.
func NewModel(client *model.Client) *Model {
	return &Model{client: client}
}

// Name implements Provider.
func (m *Model) Name() string { return "ollama/" + m.client.EmbedModel() }

// Embed implements Provider.
func (m *Model) Embed(ctx context.Context, text string) ([]float32, error) {
	return m.client.Embed(ctx, text)
}

// Select returns the model-backed provider when the runtime is
// reachable, otherwise the hashed fallback.
func Select(ctx context.Context, client *model.Client) Provider {
	if client != nil && client.Available(ctx) {
		return NewModel(client)
	}
	return Hashed{}
}

// Cosine returns the cosine similarity of two vectors in [-1, 1].
// Returns 0 when either vector has zero norm or lengths differ.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
