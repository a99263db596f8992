package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rafaelqm/imovia/constants"
	"github.com/rafaelqm/imovia/internal/dispatch"
	"github.com/rafaelqm/imovia/internal/llm"
)

func openTestDB(t *testing.T) *ListingRepository {
	t.Helper()
	db, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewListingRepository(db)
}

func TestListingRoundTrip(t *testing.T) {
	repo := openTestDB(t)
	ctx := context.Background()

	in := NewListing(llm.ListingFields{
		Title:    "Cobertura na Barra",
		Type:     "Penthouse",
		Price:    950000,
		Address:  "Av. Atlântica 100",
		Area:     182.5,
		Bedrooms: 3, Bathrooms: 2,
		Description: "vista mar",
		Status:      string(constants.ListingAvailable),
	}, []string{"data:image/jpeg;base64,QUJD", "data:image/jpeg;base64,REVG"})

	saved, err := repo.Save(ctx, in)
	require.NoError(t, err)
	assert.False(t, saved.CreatedAt.IsZero())

	got, err := repo.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, in.Title, got.Title)
	assert.InDelta(t, 950000.0, got.Price, 0.001)
	assert.InDelta(t, 182.5, got.Area, 0.001)
	assert.Equal(t, in.Gallery, got.Gallery)
}

func TestListingSanitizedDefaults(t *testing.T) {
	repo := openTestDB(t)
	ctx := context.Background()

	saved, err := repo.Save(ctx, NewListing(llm.ListingFields{}, nil))
	require.NoError(t, err)

	got, err := repo.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "", got.Title)
	assert.Zero(t, got.Price)
	assert.NotNil(t, got.Gallery)
	assert.Empty(t, got.Gallery)
}

func TestListingUpsert(t *testing.T) {
	repo := openTestDB(t)
	ctx := context.Background()

	saved, err := repo.Save(ctx, NewListing(llm.ListingFields{Title: "Casa"}, nil))
	require.NoError(t, err)

	saved.Title = "Casa reformada"
	saved.Status = string(constants.ListingSold)
	_, err = repo.Save(ctx, saved)
	require.NoError(t, err)

	got, err := repo.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Casa reformada", got.Title)
	assert.Equal(t, string(constants.ListingSold), got.Status)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestGetMissingListing(t *testing.T) {
	repo := openTestDB(t)
	_, err := repo.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDispatchJobSummaryRoundTrip(t *testing.T) {
	db, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	repo := NewDispatchJobRepository(db)
	ctx := context.Background()

	job := dispatch.NewJob([]string{"a", "b"}, "Lançamento!")
	job.Status = constants.DispatchCompleted
	job.Attempted = 2
	job.Succeeded = 1
	job.StartedAt = time.Now().Add(-time.Minute)
	job.FinishedAt = time.Now()

	require.NoError(t, repo.RecordSummary(ctx, job))

	got, err := repo.ListSummaries(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, job.ID, got[0].ID)
	assert.Equal(t, constants.DispatchCompleted, got[0].Status)
	assert.Equal(t, 2, got[0].Attempted)
	assert.Equal(t, 1, got[0].Succeeded)
}
