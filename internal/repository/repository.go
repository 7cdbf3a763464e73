package repository

import (
	"context"
	"errors"
	"slices"
	"strings"

	"advertisement-service/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrNotFound           = errors.New("advertisement not found")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// AdvertisementRepository is implemented by every storage backend. All
// implementations must behave identically as seen by callers.
type AdvertisementRepository interface {
	// Put inserts ad or overwrites the stored entity with the same ID and
	// returns the stored copy. CreatedAt of an existing entity is preserved.
	Put(ctx context.Context, ad *domain.Advertisement) (*domain.Advertisement, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Advertisement, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// ListAll returns a fresh snapshot on every call, oldest first.
	ListAll(ctx context.Context) ([]*domain.Advertisement, error)
}

func sortByCreation(ads []*domain.Advertisement) {
	slices.SortFunc(ads, func(a, b *domain.Advertisement) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
}
