package match

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailcal/internal/embed"
	"mailcal/internal/types"
)

// failingProvider errors on every Embed call.
type failingProvider struct{}

func (failingProvider) Name() string { return "failing" }
func (failingProvider) Embed(context.Context, string) ([]float32, error) {
	return nil, errors.New("runtime unreachable")
}

// countingProvider wraps the hashed fallback and counts Embed calls.
type countingProvider struct {
	calls int
}

func (c *countingProvider) Name() string { return "hashed-tf" }
func (c *countingProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	c.calls++
	return embed.Hashed{}.Embed(ctx, text)
}

func flightEmail() *types.Email {
	return &types.Email{
		ID:      "em-1",
		Sender:  "itinerary@delta.com",
		Subject: "Your Delta Airlines Flight Confirmation BA123",
		Body:    "Flight BA123 to Boston is confirmed.",
	}
}

func TestFindMatchTrackingIDShortCircuit(t *testing.T) {
	events := []*types.Event{
		{ID: "ev-1", Title: "Flight to Boston", TrackingID: "BA123"},
	}
	cand := &types.Candidate{Title: "Delta Flight Confirmation", TrackingID: "BA123"}

	// A failing provider proves the embedding path is never touched.
	m := New(failingProvider{}, 0)
	match, err := m.FindMatch(context.Background(), flightEmail(), cand, events)
	require.NoError(t, err)
	require.NotNil(t, match)

	assert.Equal(t, "ev-1", match.Event.ID)
	assert.True(t, match.ByTrackingID)
	assert.Equal(t, 1.0, match.Score)
}

func TestFindMatchTrackingIDFirstWins(t *testing.T) {
	events := []*types.Event{
		{ID: "ev-1", Title: "Old shipment", TrackingID: "PKG-1"},
		{ID: "ev-2", Title: "Same shipment again", TrackingID: "PKG-1"},
	}
	cand := &types.Candidate{TrackingID: "PKG-1"}

	m := New(failingProvider{}, 0)
	match, err := m.FindMatch(context.Background(), flightEmail(), cand, events)
	require.NoError(t, err)
	assert.Equal(t, "ev-1", match.Event.ID)
}

func TestFindMatchEmptyTrackingIDNeverLinks(t *testing.T) {
	events := []*types.Event{
		{ID: "ev-1", Title: "No tracking", TrackingID: ""},
	}
	cand := &types.Candidate{Title: "Also no tracking", TrackingID: ""}

	m := New(embed.Hashed{}, 0)
	match, err := m.FindMatch(context.Background(),
		&types.Email{Subject: "unrelated", Body: "completely different text"}, cand, events)
	require.NoError(t, err)
	assert.Nil(t, match)
}

func TestFindMatchNoEvents(t *testing.T) {
	m := New(failingProvider{}, 0)
	match, err := m.FindMatch(context.Background(), flightEmail(),
		&types.Candidate{Title: "anything"}, nil)
	require.NoError(t, err)
	assert.Nil(t, match)
}

func TestFindMatchBySimilarity(t *testing.T) {
	email := &types.Email{
		Subject: "Flight BA123 to Boston gate change",
		Body:    "Flight BA123 to Boston now departs from gate 22.",
	}
	events := []*types.Event{
		{ID: "ev-other", Title: "Dentist cleaning appointment", Location: "Main Street Clinic"},
		{ID: "ev-flight", Title: "Flight BA123 to Boston", Location: "Logan Airport"},
	}

	m := New(embed.Hashed{}, 0.3)
	match, err := m.FindMatch(context.Background(), email,
		&types.Candidate{Title: "Gate change"}, events)
	require.NoError(t, err)
	require.NotNil(t, match)

	assert.Equal(t, "ev-flight", match.Event.ID)
	assert.False(t, match.ByTrackingID)
	assert.Greater(t, match.Score, 0.3)
}

func TestFindMatchBelowThreshold(t *testing.T) {
	events := []*types.Event{
		{ID: "ev-1", Title: "Package from Amazon", TrackingID: "AMZ-1"},
	}

	m := New(embed.Hashed{}, 0)
	for _, email := range []*types.Email{
		{Subject: "Netflix billing receipt", Body: "Your monthly payment went through."},
		{Subject: "Dentist appointment reminder", Body: "See you Thursday at the clinic."},
	} {
		match, err := m.FindMatch(context.Background(), email,
			&types.Candidate{Title: email.Subject}, events)
		require.NoError(t, err)
		assert.Nil(t, match, email.Subject)
	}
}

func TestFindMatchTieKeepsEarliest(t *testing.T) {
	// Identical event text means identical scores; strict > keeps the
	// first event scanned.
	events := []*types.Event{
		{ID: "ev-first", Title: "Flight BA123 to Boston"},
		{ID: "ev-second", Title: "Flight BA123 to Boston"},
	}

	m := New(embed.Hashed{}, 0.3)
	match, err := m.FindMatch(context.Background(),
		&types.Email{Subject: "Flight BA123 to Boston", Body: ""},
		&types.Candidate{Title: "Flight update"}, events)
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "ev-first", match.Event.ID)
}

func TestFindMatchEmbedErrorAborts(t *testing.T) {
	events := []*types.Event{{ID: "ev-1", Title: "Something"}}

	m := New(failingProvider{}, 0)
	match, err := m.FindMatch(context.Background(), flightEmail(),
		&types.Candidate{Title: "no tracking id"}, events)
	require.Error(t, err)
	assert.Nil(t, match)
}

func TestFindMatchReusesCachedEmbedding(t *testing.T) {
	provider := &countingProvider{}
	cached, err := embed.Hashed{}.Embed(context.Background(), "Flight BA123 to Boston Logan Airport")
	require.NoError(t, err)

	events := []*types.Event{
		{
			ID:            "ev-1",
			Title:         "Flight BA123 to Boston",
			Location:      "Logan Airport",
			EmbedProvider: "hashed-tf",
			Embedding:     cached,
		},
	}

	m := New(provider, 0.1)
	_, err = m.FindMatch(context.Background(),
		&types.Email{Subject: "Flight BA123 Boston", Body: "Logan Airport update"},
		&types.Candidate{Title: "update"}, events)
	require.NoError(t, err)

	// One call for the email, none for the cached event.
	assert.Equal(t, 1, provider.calls)
}

func TestFindMatchIgnoresStaleCachedEmbedding(t *testing.T) {
	provider := &countingProvider{}
	events := []*types.Event{
		{
			ID:            "ev-1",
			Title:         "Flight BA123 to Boston",
			EmbedProvider: "ollama/nomic-embed-text",
			Embedding:     []float32{0.1, 0.2},
		},
	}

	m := New(provider, 0.99)
	_, err := m.FindMatch(context.Background(),
		&types.Email{Subject: "s", Body: "b"},
		&types.Candidate{Title: "t"}, events)
	require.NoError(t, err)

	// Email plus a re-embed of the event in the active vector space.
	assert.Equal(t, 2, provider.calls)
}

func TestNewDefaultsThreshold(t *testing.T) {
	assert.Equal(t, DefaultThreshold, New(embed.Hashed{}, 0).threshold)
	assert.Equal(t, DefaultThreshold, New(embed.Hashed{}, -1).threshold)
	assert.Equal(t, 0.5, New(embed.Hashed{}, 0.5).threshold)
}

func TestEventText(t *testing.T) {
	assert.Equal(t, "Flight to Boston Logan BA123", EventText(&types.Event{
		Title:      "Flight to Boston",
		Location:   "Logan",
		TrackingID: "BA123",
	}))
	assert.Equal(t, "Only title", EventText(&types.Event{Title: "Only title"}))
	assert.Equal(t, "", EventText(&types.Event{}))
}
