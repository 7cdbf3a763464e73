package repository

import (
	"context"
	"sync"
	"time"

	"advertisement-service/internal/domain"

	"github.com/google/uuid"
)

// memoryAdRepository keeps advertisements for the lifetime of the process.
// Values are copied on the way in and out so the map holds the only
// canonical copy.
type memoryAdRepository struct {
	mu  sync.RWMutex
	ads map[uuid.UUID]domain.Advertisement
}

func NewMemoryAdRepository() AdvertisementRepository {
	return &memoryAdRepository{
		ads: make(map[uuid.UUID]domain.Advertisement),
	}
}

func (r *memoryAdRepository) Put(ctx context.Context, ad *domain.Advertisement) (*domain.Advertisement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *ad
	if existing, ok := r.ads[ad.ID]; ok {
		stored.CreatedAt = existing.CreatedAt
	} else if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
	}
	r.ads[stored.ID] = stored

	return &stored, nil
}

func (r *memoryAdRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Advertisement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	ad, ok := r.ads[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &ad, nil
}

func (r *memoryAdRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.ads[id]; !ok {
		return ErrNotFound
	}
	delete(r.ads, id)
	return nil
}

func (r *memoryAdRepository) ListAll(ctx context.Context) ([]*domain.Advertisement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	ads := make([]*domain.Advertisement, 0, len(r.ads))
	for _, ad := range r.ads {
		ad := ad
		ads = append(ads, &ad)
	}
	r.mu.RUnlock()

	sortByCreation(ads)
	return ads, nil
}
