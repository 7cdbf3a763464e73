package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"advertisement-service/internal/domain"
	"advertisement-service/internal/infrastructure/metrics"
	"advertisement-service/internal/repository"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockAdRepository is a mock implementation of AdvertisementRepository
type MockAdRepository struct {
	mock.Mock
}

func (m *MockAdRepository) Put(ctx context.Context, ad *domain.Advertisement) (*domain.Advertisement, error) {
	args := m.Called(ctx, ad)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Advertisement), args.Error(1)
}

func (m *MockAdRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Advertisement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Advertisement), args.Error(1)
}

func (m *MockAdRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAdRepository) ListAll(ctx context.Context) ([]*domain.Advertisement, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Advertisement), args.Error(1)
}

var errStorageDown = fmt.Errorf("%w: connection refused", repository.ErrStorageUnavailable)

func strPtr(s string) *string       { return &s }
func floatPtr(f float64) *float64 { return &f }

func bikeInput() domain.CreateAdvertisementInput {
	return domain.CreateAdvertisementInput{
		Title:       strPtr("Bike"),
		Description: strPtr("Good"),
		Price:       floatPtr(15000),
		Author:      strPtr("Ivan"),
	}
}

func newServiceMetrics() *metrics.ServiceMetrics {
	return metrics.NewServiceMetrics(prometheus.NewRegistry())
}

func setupService(t *testing.T, opts ...Option) (AdvertisementService, repository.AdvertisementRepository) {
	t.Helper()

	repo := repository.NewMemoryAdRepository()
	return NewAdvertisementService(repo, newServiceMetrics(), opts...), repo
}

func setupMockService(t *testing.T) (AdvertisementService, *MockAdRepository, *metrics.ServiceMetrics) {
	t.Helper()

	mockRepo := new(MockAdRepository)
	m := newServiceMetrics()
	return NewAdvertisementService(mockRepo, m), mockRepo, m
}

func TestCreate_Success(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 13, 0, 0, 123456789, time.FixedZone("MSK", 3*60*60))
	svc, repo := setupService(t, WithClock(func() time.Time { return fixed }))
	ctx := context.Background()

	ad, err := svc.Create(ctx, bikeInput())
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, ad.ID)
	assert.Equal(t, "Bike", ad.Title)
	assert.Equal(t, "Good", ad.Description)
	assert.Equal(t, 15000.0, ad.Price)
	assert.Equal(t, "Ivan", ad.Author)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 123456000, time.UTC), ad.CreatedAt)

	stored, err := repo.Get(ctx, ad.ID)
	require.NoError(t, err)
	assert.Equal(t, ad, stored)
}

func TestCreate_AssignsFreshIDs(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, bikeInput())
	require.NoError(t, err)
	second, err := svc.Create(ctx, bikeInput())
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
}

func TestCreate_InvalidInputPersistsNothing(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	input := bikeInput()
	input.Price = floatPtr(-1)

	_, err := svc.Create(ctx, input)
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreate_StorageError(t *testing.T) {
	svc, mockRepo, m := setupMockService(t)

	mockRepo.On("Put", mock.Anything, mock.AnythingOfType("*domain.Advertisement")).
		Return(nil, errStorageDown)

	_, err := svc.Create(context.Background(), bikeInput())
	assert.ErrorIs(t, err, repository.ErrStorageUnavailable)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MethodCount.WithLabelValues("Create", "error")))
	mockRepo.AssertExpectations(t)
}

func TestGetByID(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, bikeInput())
	require.NoError(t, err)

	got, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	_, err = svc.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrAdvertisementNotFound)
}

func TestGetByID_StorageError(t *testing.T) {
	svc, mockRepo, _ := setupMockService(t)
	id := uuid.New()

	mockRepo.On("Get", mock.Anything, id).Return(nil, errStorageDown)

	_, err := svc.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, repository.ErrStorageUnavailable)
	assert.NotErrorIs(t, err, ErrAdvertisementNotFound)
	mockRepo.AssertExpectations(t)
}

func TestUpdate_PriceOnly(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, bikeInput())
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, domain.UpdateAdvertisementInput{Price: domain.Some(12000.0)})
	require.NoError(t, err)

	expected := *created
	expected.Price = 12000
	assert.Equal(t, &expected, updated)

	got, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, &expected, got)
}

func TestUpdate_EmptyPatchKeepsEverything(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, bikeInput())
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, domain.UpdateAdvertisementInput{})
	require.NoError(t, err)
	assert.Equal(t, created, updated)
}

func TestUpdate_NotFound(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.Update(context.Background(), uuid.New(), domain.UpdateAdvertisementInput{Price: domain.Some(1.0)})
	assert.ErrorIs(t, err, ErrAdvertisementNotFound)
}

func TestUpdate_InvalidInputLeavesStoreUnchanged(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, bikeInput())
	require.NoError(t, err)

	_, err = svc.Update(ctx, created.ID, domain.UpdateAdvertisementInput{Price: domain.Some(-5.0)})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)

	got, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestUpdate_ValidatesBeforeLookup(t *testing.T) {
	svc, mockRepo, m := setupMockService(t)

	_, err := svc.Update(context.Background(), uuid.New(), domain.UpdateAdvertisementInput{Title: domain.Some("")})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MethodCount.WithLabelValues("Update", "invalid")))
	mockRepo.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestDelete(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, bikeInput())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.ErrorIs(t, svc.Delete(ctx, created.ID), ErrAdvertisementNotFound)

	_, err = svc.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, ErrAdvertisementNotFound)
}

func TestDelete_StorageError(t *testing.T) {
	svc, mockRepo, _ := setupMockService(t)
	id := uuid.New()

	mockRepo.On("Delete", mock.Anything, id).Return(errStorageDown)

	err := svc.Delete(context.Background(), id)
	assert.ErrorIs(t, err, repository.ErrStorageUnavailable)
	mockRepo.AssertExpectations(t)
}

func TestSearch(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	tick := base
	svc, _ := setupService(t, WithClock(func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}))
	ctx := context.Background()

	a, err := svc.Create(ctx, domain.CreateAdvertisementInput{
		Title: strPtr("Red Bike"), Description: strPtr("city"), Price: floatPtr(10), Author: strPtr("x"),
	})
	require.NoError(t, err)
	b, err := svc.Create(ctx, domain.CreateAdvertisementInput{
		Title: strPtr("Sofa"), Description: strPtr("bike rack"), Price: floatPtr(20), Author: strPtr("y"),
	})
	require.NoError(t, err)

	testCases := []struct {
		name     string
		filter   domain.SearchFilter
		expected []*domain.Advertisement
	}{
		{"no criteria returns everything", domain.SearchFilter{}, []*domain.Advertisement{a, b}},
		{"text query", domain.SearchFilter{Query: strPtr("BIKE")}, []*domain.Advertisement{a, b}},
		{"price range", domain.SearchFilter{MinPrice: floatPtr(15), MaxPrice: floatPtr(25)}, []*domain.Advertisement{b}},
		{"conjunction", domain.SearchFilter{MinPrice: floatPtr(15), Author: strPtr("y")}, []*domain.Advertisement{b}},
		{"no match", domain.SearchFilter{Author: strPtr("nobody")}, []*domain.Advertisement{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			results, err := svc.Search(ctx, tc.filter)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, results)
		})
	}
}

func TestSearch_EmptyStoreReturnsEmptySlice(t *testing.T) {
	svc, _ := setupService(t)

	results, err := svc.Search(context.Background(), domain.SearchFilter{})
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestSearch_InvalidFilter(t *testing.T) {
	svc, mockRepo, _ := setupMockService(t)

	_, err := svc.Search(context.Background(), domain.SearchFilter{MinPrice: floatPtr(-1)})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	mockRepo.AssertNotCalled(t, "ListAll", mock.Anything)
}

func TestSearch_StorageError(t *testing.T) {
	svc, mockRepo, _ := setupMockService(t)

	mockRepo.On("ListAll", mock.Anything).Return(nil, errors.New("boom"))

	_, err := svc.Search(context.Background(), domain.SearchFilter{})
	assert.EqualError(t, err, "boom")
	mockRepo.AssertExpectations(t)
}
