package repository

import (
	"context"
	"encoding/json"
	"time"

	"advertisement-service/internal/domain"
	"advertisement-service/internal/infrastructure/cache"
	"advertisement-service/internal/infrastructure/metrics"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// cachedAdRepository is a read-through cache in front of another backend.
// Cache failures are swallowed: the inner backend stays authoritative.
type cachedAdRepository struct {
	next    AdvertisementRepository
	cache   cache.Cache
	ttl     time.Duration
	metrics *metrics.RepositoryMetrics
	tracer  trace.Tracer
}

func NewCachedAdRepository(next AdvertisementRepository, c cache.Cache, ttl time.Duration, metrics *metrics.RepositoryMetrics) AdvertisementRepository {
	return &cachedAdRepository{
		next:    next,
		cache:   c,
		ttl:     ttl,
		metrics: metrics,
		tracer:  otel.Tracer("advertisement-service/repository"),
	}
}

func cacheKey(id uuid.UUID) string {
	return "advertisement:" + id.String()
}

func (r *cachedAdRepository) Put(ctx context.Context, ad *domain.Advertisement) (*domain.Advertisement, error) {
	stored, err := r.next.Put(ctx, ad)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, ad.ID)
	return stored, nil
}

func (r *cachedAdRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Advertisement, error) {
	key := cacheKey(id)

	cacheSpanCtx, cacheSpan := r.tracer.Start(ctx, "Cache Get")
	cached, err := r.cache.Get(cacheSpanCtx, key)
	cacheSpan.End()

	if err == nil {
		var ad domain.Advertisement
		if err := json.Unmarshal([]byte(cached), &ad); err == nil {
			r.metrics.CacheResults.WithLabelValues("hit").Inc()
			return &ad, nil
		}
	}
	r.metrics.CacheResults.WithLabelValues("miss").Inc()

	ad, err := r.next.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if adJSON, err := json.Marshal(ad); err == nil {
		cacheSpanCtx, cacheSpan := r.tracer.Start(ctx, "Cache Set")
		_ = r.cache.Set(cacheSpanCtx, key, string(adJSON), r.ttl)
		cacheSpan.End()
	}

	return ad, nil
}

func (r *cachedAdRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.next.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *cachedAdRepository) ListAll(ctx context.Context) ([]*domain.Advertisement, error) {
	return r.next.ListAll(ctx)
}

func (r *cachedAdRepository) invalidate(ctx context.Context, id uuid.UUID) {
	cacheSpanCtx, cacheSpan := r.tracer.Start(ctx, "Cache Delete")
	_ = r.cache.Delete(cacheSpanCtx, cacheKey(id))
	cacheSpan.End()
}
