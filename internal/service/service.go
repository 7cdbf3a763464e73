package service

import (
	"context"
	"errors"
	"time"

	"advertisement-service/internal/domain"
	"advertisement-service/internal/infrastructure/metrics"
	"advertisement-service/internal/repository"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var ErrAdvertisementNotFound = errors.New("advertisement not found")

type AdvertisementService interface {
	Create(ctx context.Context, input domain.CreateAdvertisementInput) (*domain.Advertisement, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Advertisement, error)
	Update(ctx context.Context, id uuid.UUID, input domain.UpdateAdvertisementInput) (*domain.Advertisement, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, filter domain.SearchFilter) ([]*domain.Advertisement, error)
}

type Option func(*advertisementService)

// WithClock replaces the time source used to stamp created_at.
func WithClock(now func() time.Time) Option {
	return func(s *advertisementService) {
		s.now = now
	}
}

type advertisementService struct {
	repository repository.AdvertisementRepository
	metrics    *metrics.ServiceMetrics
	tracer     trace.Tracer
	now        func() time.Time
}

func NewAdvertisementService(repository repository.AdvertisementRepository, metrics *metrics.ServiceMetrics, opts ...Option) AdvertisementService {
	s := &advertisementService{
		repository: repository,
		metrics:    metrics,
		tracer:     otel.Tracer("advertisement-service/service"),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *advertisementService) observe(method string, startTime time.Time, status *string) {
	duration := time.Since(startTime).Seconds()
	s.metrics.MethodCount.WithLabelValues(method, *status).Inc()
	s.metrics.MethodDuration.WithLabelValues(method, *status).Observe(duration)
}

// statusOf classifies err for the status metric label.
func statusOf(err error) string {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return "invalid"
	case errors.Is(err, ErrAdvertisementNotFound):
		return "not_found"
	default:
		return "error"
	}
}

func (s *advertisementService) Create(ctx context.Context, input domain.CreateAdvertisementInput) (*domain.Advertisement, error) {
	ctx, span := s.tracer.Start(ctx, "Create")
	defer span.End()

	startTime := time.Now()
	status := "success"
	defer s.observe("Create", startTime, &status)

	if err := input.Validate(); err != nil {
		status = statusOf(err)
		return nil, err
	}

	ad := &domain.Advertisement{
		ID:          uuid.New(),
		Title:       *input.Title,
		Description: *input.Description,
		Price:       *input.Price,
		Author:      *input.Author,
		CreatedAt:   s.now().UTC().Truncate(time.Microsecond),
	}

	created, err := s.repository.Put(ctx, ad)
	if err != nil {
		status = "error"
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("advertisement.id", created.ID.String()),
		attribute.Float64("advertisement.price", created.Price),
	)
	return created, nil
}

func (s *advertisementService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Advertisement, error) {
	ctx, span := s.tracer.Start(ctx, "GetByID")
	defer span.End()

	span.SetAttributes(attribute.String("advertisement.id", id.String()))

	startTime := time.Now()
	status := "success"
	defer s.observe("GetByID", startTime, &status)

	ad, err := s.repository.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			status = "not_found"
			return nil, ErrAdvertisementNotFound
		}
		status = "error"
		span.RecordError(err)
		return nil, err
	}

	return ad, nil
}

func (s *advertisementService) Update(ctx context.Context, id uuid.UUID, input domain.UpdateAdvertisementInput) (*domain.Advertisement, error) {
	ctx, span := s.tracer.Start(ctx, "Update")
	defer span.End()

	span.SetAttributes(attribute.String("advertisement.id", id.String()))

	startTime := time.Now()
	status := "success"
	defer s.observe("Update", startTime, &status)

	if err := input.Validate(); err != nil {
		status = statusOf(err)
		return nil, err
	}

	existing, err := s.repository.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			status = "not_found"
			return nil, ErrAdvertisementNotFound
		}
		status = "error"
		span.RecordError(err)
		return nil, err
	}

	input.Apply(existing)

	updated, err := s.repository.Put(ctx, existing)
	if err != nil {
		status = "error"
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.Float64("advertisement.price", updated.Price))
	return updated, nil
}

func (s *advertisementService) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := s.tracer.Start(ctx, "Delete")
	defer span.End()

	span.SetAttributes(attribute.String("advertisement.id", id.String()))

	startTime := time.Now()
	status := "success"
	defer s.observe("Delete", startTime, &status)

	if err := s.repository.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			status = "not_found"
			return ErrAdvertisementNotFound
		}
		status = "error"
		span.RecordError(err)
		return err
	}

	return nil
}

// Search keeps the order produced by the repository and never returns nil.
func (s *advertisementService) Search(ctx context.Context, filter domain.SearchFilter) ([]*domain.Advertisement, error) {
	ctx, span := s.tracer.Start(ctx, "Search")
	defer span.End()

	startTime := time.Now()
	status := "success"
	defer s.observe("Search", startTime, &status)

	if err := filter.Validate(); err != nil {
		status = statusOf(err)
		return nil, err
	}

	all, err := s.repository.ListAll(ctx)
	if err != nil {
		status = "error"
		span.RecordError(err)
		return nil, err
	}

	results := make([]*domain.Advertisement, 0, len(all))
	for _, ad := range all {
		if filter.Matches(ad) {
			results = append(results, ad)
		}
	}

	span.SetAttributes(
		attribute.Int("advertisement.scanned", len(all)),
		attribute.Int("advertisement.matched", len(results)),
	)
	return results, nil
}
