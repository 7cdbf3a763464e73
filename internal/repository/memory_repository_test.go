package repository

import (
	"context"
	"testing"
	"time"

	"advertisement-service/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAd(title string, price float64, author string, createdAt time.Time) *domain.Advertisement {
	return &domain.Advertisement{
		ID:          uuid.New(),
		Title:       title,
		Description: title + " description",
		Price:       price,
		Author:      author,
		CreatedAt:   createdAt,
	}
}

func TestMemoryAdRepository_PutGet(t *testing.T) {
	repo := NewMemoryAdRepository()
	ctx := context.Background()

	ad := newAd("Bike", 15000, "Ivan", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	stored, err := repo.Put(ctx, ad)
	require.NoError(t, err)
	assert.Equal(t, ad, stored)

	got, err := repo.Get(ctx, ad.ID)
	require.NoError(t, err)
	assert.Equal(t, ad, got)

	// mutating the returned copy must not change the stored entity
	got.Title = "changed"
	again, err := repo.Get(ctx, ad.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bike", again.Title)
}

func TestMemoryAdRepository_PutOverwritesButKeepsCreatedAt(t *testing.T) {
	repo := NewMemoryAdRepository()
	ctx := context.Background()

	createdAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ad := newAd("Bike", 15000, "Ivan", createdAt)
	_, err := repo.Put(ctx, ad)
	require.NoError(t, err)

	update := *ad
	update.Price = 12000
	update.CreatedAt = createdAt.Add(time.Hour)

	stored, err := repo.Put(ctx, &update)
	require.NoError(t, err)
	assert.Equal(t, 12000.0, stored.Price)
	assert.Equal(t, createdAt, stored.CreatedAt)
}

func TestMemoryAdRepository_PutStampsMissingCreatedAt(t *testing.T) {
	repo := NewMemoryAdRepository()

	before := time.Now().UTC().Add(-time.Second)
	stored, err := repo.Put(context.Background(), newAd("Bike", 1, "Ivan", time.Time{}))
	require.NoError(t, err)

	assert.True(t, stored.CreatedAt.After(before))
	assert.Equal(t, time.UTC, stored.CreatedAt.Location())
}

func TestMemoryAdRepository_GetNotFound(t *testing.T) {
	repo := NewMemoryAdRepository()

	_, err := repo.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryAdRepository_DeleteTwice(t *testing.T) {
	repo := NewMemoryAdRepository()
	ctx := context.Background()

	ad := newAd("Bike", 15000, "Ivan", time.Now().UTC())
	_, err := repo.Put(ctx, ad)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, ad.ID))
	assert.ErrorIs(t, repo.Delete(ctx, ad.ID), ErrNotFound)

	_, err = repo.Get(ctx, ad.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryAdRepository_ListAll(t *testing.T) {
	repo := NewMemoryAdRepository()
	ctx := context.Background()

	empty, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	third := newAd("C", 3, "z", base.Add(2*time.Minute))
	first := newAd("A", 1, "x", base)
	second := newAd("B", 2, "y", base.Add(time.Minute))

	for _, ad := range []*domain.Advertisement{third, first, second} {
		_, err := repo.Put(ctx, ad)
		require.NoError(t, err)
	}

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []*domain.Advertisement{first, second, third}, all)

	// every call is a fresh snapshot
	require.NoError(t, repo.Delete(ctx, second.ID))
	all, err = repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []*domain.Advertisement{first, third}, all)
}

func TestMemoryAdRepository_CancelledContext(t *testing.T) {
	repo := NewMemoryAdRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.ListAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
