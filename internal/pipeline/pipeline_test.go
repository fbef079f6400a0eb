package pipeline

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailcal/internal/db"
	"mailcal/internal/embed"
	"mailcal/internal/extract"
	"mailcal/internal/match"
	"mailcal/internal/types"
)

// fixedExtractor returns a predetermined candidate for every email.
type fixedExtractor struct {
	cand *types.Candidate
}

func (f *fixedExtractor) Name() string { return "fixed" }
func (f *fixedExtractor) Extract(context.Context, *types.Email) (*types.Candidate, error) {
	c := *f.cand
	return &c, nil
}

func testStore(t *testing.T) *db.DB {
	t.Helper()
	store, err := db.Open(filepath.Join(t.TempDir(), "mail.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testPipeline(t *testing.T, store *db.DB, cand *types.Candidate) *Pipeline {
	t.Helper()
	provider := embed.Hashed{}
	return New(store, &fixedExtractor{cand: cand}, match.New(provider, 0), provider)
}

func storedEmail(t *testing.T, store *db.DB, id, subject, body string) *types.Email {
	t.Helper()
	email := &types.Email{
		ID:         id,
		Account:    "user@example.com",
		Sender:     "noreply@example.com",
		Subject:    subject,
		Body:       body,
		ReceivedAt: "2025-01-04T10:00:00Z",
		FetchedAt:  "2025-01-05T00:00:00Z",
	}
	require.NoError(t, store.InsertEmail(email))
	return email
}

func TestProcessEmailCreatesEvent(t *testing.T) {
	store := testStore(t)
	cand := &types.Candidate{
		Title:      "Flight to Boston",
		Date:       time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC),
		Location:   "Logan Airport",
		Category:   types.CategoryTravel,
		Confidence: 0.8,
		TrackingID: "BA123",
	}
	p := testPipeline(t, store, cand)
	email := storedEmail(t, store, "em-1", "Flight confirmation", "BA123 details")

	result, err := p.ProcessEmail(context.Background(), email)
	require.NoError(t, err)

	assert.True(t, result.Created)
	assert.Equal(t, "Flight to Boston", result.Event.Title)
	assert.Equal(t, "2025-03-10T14:30:00Z", result.Event.Date)
	assert.Equal(t, types.StatusPending, result.Event.Status)
	assert.Equal(t, "em-1", result.Event.ExtractedFrom)

	stored, err := store.GetEvent(result.Event.ID)
	require.NoError(t, err)
	assert.Equal(t, "BA123", stored.TrackingID)

	// Embedding cache is written for the committed event.
	assert.Equal(t, "hashed-tf", stored.EmbedProvider)
	assert.NotEmpty(t, stored.Embedding)

	got, err := store.GetEmail("em-1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Processed)
}

func TestProcessEmailUpdatesByTrackingID(t *testing.T) {
	store := testStore(t)

	existing := &types.Event{
		Title:      "Flight to Boston",
		Date:       "2025-03-10T14:30:00Z",
		Category:   types.CategoryTravel,
		TrackingID: "BA123",
	}
	require.NoError(t, store.InsertEvent(existing))

	cand := &types.Candidate{
		Title:      "Flight to Boston (gate change)",
		Date:       time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC),
		Category:   types.CategoryTravel,
		TrackingID: "BA123",
	}
	p := testPipeline(t, store, cand)
	email := storedEmail(t, store, "em-2", "Gate change", "Flight BA123 departs gate 22")

	result, err := p.ProcessEmail(context.Background(), email)
	require.NoError(t, err)

	assert.False(t, result.Created)
	assert.True(t, result.ByTrackingID)
	assert.Equal(t, existing.ID, result.Event.ID)

	stored, err := store.GetEvent(existing.ID)
	require.NoError(t, err)
	assert.Equal(t, "Flight to Boston (gate change)", stored.Title)
	assert.Equal(t, "2025-03-10T15:00:00Z", stored.Date)

	events, err := store.Events()
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestProcessEmailUnrelatedCreatesSecondEvent(t *testing.T) {
	store := testStore(t)

	require.NoError(t, store.InsertEvent(&types.Event{
		Title:      "Package from Amazon",
		Date:       "2025-01-10T00:00:00Z",
		Category:   types.CategoryDelivery,
		TrackingID: "AMZ-1",
	}))

	cand := &types.Candidate{
		Title:    "Dentist checkup",
		Date:     time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC),
		Category: types.CategoryAppointment,
	}
	p := testPipeline(t, store, cand)
	email := storedEmail(t, store, "em-3", "Dentist appointment reminder", "See you Thursday at the clinic")

	result, err := p.ProcessEmail(context.Background(), email)
	require.NoError(t, err)
	assert.True(t, result.Created)

	events, err := store.Events()
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestProcessEmailMergePreservesStatus(t *testing.T) {
	store := testStore(t)

	existing := &types.Event{
		Title:      "Flight to Boston",
		Date:       "2025-03-10T14:30:00Z",
		Category:   types.CategoryTravel,
		TrackingID: "BA123",
	}
	require.NoError(t, store.InsertEvent(existing))
	require.NoError(t, store.UpdateEventStatus(existing.ID, types.StatusApproved))

	cand := &types.Candidate{
		Title:      "Updated flight",
		Date:       time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC),
		TrackingID: "BA123",
	}
	p := testPipeline(t, store, cand)
	email := storedEmail(t, store, "em-4", "Schedule change", "BA123 moved")

	_, err := p.ProcessEmail(context.Background(), email)
	require.NoError(t, err)

	stored, err := store.GetEvent(existing.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusApproved, stored.Status)
	// The candidate carried no category, so the stored one survives.
	assert.Equal(t, types.CategoryTravel, stored.Category)
}

func TestProcessEmailExtractErrorAborts(t *testing.T) {
	store := testStore(t)
	provider := embed.Hashed{}
	p := New(store, failingExtractor{}, match.New(provider, 0), provider)
	email := storedEmail(t, store, "em-5", "s", "b")

	_, err := p.ProcessEmail(context.Background(), email)
	require.Error(t, err)

	// The email stays unprocessed for a later retry.
	got, gerr := store.GetEmail("em-5")
	require.NoError(t, gerr)
	assert.Equal(t, 0, got.Processed)
}

type failingExtractor struct{}

func (failingExtractor) Name() string { return "failing" }
func (failingExtractor) Extract(context.Context, *types.Email) (*types.Candidate, error) {
	return nil, assert.AnError
}

var _ extract.Extractor = (*fixedExtractor)(nil)
