package embed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashedDeterministic(t *testing.T) {
	p := Hashed{}
	a, err := p.Embed(context.Background(), "Your flight BA123 departs Heathrow")
	require.NoError(t, err)
	b, err := p.Embed(context.Background(), "Your flight BA123 departs Heathrow")
	require.NoError(t, err)

	assert.Len(t, a, HashedDim)
	assert.Equal(t, a, b)
}

func TestHashedCaseAndPunctuation(t *testing.T) {
	p := Hashed{}
	a, _ := p.Embed(context.Background(), "Flight: BA123, Heathrow!")
	b, _ := p.Embed(context.Background(), "flight ba123 heathrow")
	assert.Equal(t, a, b)
}

func TestHashedEmptyText(t *testing.T) {
	p := Hashed{}
	vec, err := p.Embed(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, vec, HashedDim)
	assert.Zero(t, Cosine(vec, vec))
}

func TestCosine(t *testing.T) {
	p := Hashed{}
	a, _ := p.Embed(context.Background(), "package delivery tracking number")
	b, _ := p.Embed(context.Background(), "theater tickets for saturday night")

	assert.InDelta(t, 1.0, Cosine(a, a), 1e-9)

	sim := Cosine(a, b)
	assert.Less(t, sim, 1.0)
	assert.GreaterOrEqual(t, sim, -1.0)
}

func TestCosineMismatchedLengths(t *testing.T) {
	assert.Zero(t, Cosine([]float32{1, 0}, []float32{1, 0, 0}))
	assert.Zero(t, Cosine(nil, nil))
}

func TestCosineZeroVector(t *testing.T) {
	zero := make([]float32, 4)
	assert.Zero(t, Cosine(zero, []float32{1, 2, 3, 4}))
}

func TestSimilarTextScoresHigher(t *testing.T) {
	p := Hashed{}
	base, _ := p.Embed(context.Background(), "flight BA123 to Paris departing 10 March")
	near, _ := p.Embed(context.Background(), "flight BA123 Paris gate change 10 March")
	far, _ := p.Embed(context.Background(), "your dental cleaning appointment is confirmed")

	assert.Greater(t, Cosine(base, near), Cosine(base, far))
}
