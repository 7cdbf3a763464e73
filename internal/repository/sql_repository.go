package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"advertisement-service/internal/domain"
	"advertisement-service/internal/infrastructure/metrics"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// SQLAdRepository stores one advertisement per row of the advertisement table.
type SQLAdRepository struct {
	db      *sql.DB
	dialect Dialect
	metrics *metrics.RepositoryMetrics
	tracer  trace.Tracer
}

func NewSQLAdRepository(db *sql.DB, dialect Dialect, metrics *metrics.RepositoryMetrics) *SQLAdRepository {
	tracer := otel.Tracer("advertisement-service/repository")
	return &SQLAdRepository{
		db:      db,
		dialect: dialect,
		metrics: metrics,
		tracer:  tracer,
	}
}

// EnsureSchema creates the advertisement table if it does not exist yet.
func (r *SQLAdRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, r.dialect.CreateTable); err != nil {
		return fmt.Errorf("%w: failed to create advertisement table: %w", ErrStorageUnavailable, err)
	}
	return nil
}

func (r *SQLAdRepository) observe(query string, startTime time.Time, status *string) {
	duration := time.Since(startTime).Seconds()
	r.metrics.QueryCount.WithLabelValues(query, *status).Inc()
	r.metrics.QueryDuration.WithLabelValues(query, *status).Observe(duration)
}

func (r *SQLAdRepository) Put(ctx context.Context, ad *domain.Advertisement) (*domain.Advertisement, error) {
	ctx, span := r.tracer.Start(ctx, "Repository Put")
	defer span.End()

	span.SetAttributes(
		attribute.String("advertisement.id", ad.ID.String()),
		attribute.Float64("advertisement.price", ad.Price),
		attribute.String("db.system", r.dialect.Name),
	)

	startTime := time.Now()
	status := "success"
	defer r.observe("Put", startTime, &status)

	fail := func(msg string, err error) (*domain.Advertisement, error) {
		status = "error"
		span.RecordError(err)
		return nil, fmt.Errorf("%w: %s: %w", ErrStorageUnavailable, msg, err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fail("failed to begin transaction", err)
	}
	defer tx.Rollback()

	var createdAt interface{}
	if !ad.CreatedAt.IsZero() {
		createdAt = ad.CreatedAt.UTC()
	}

	if _, err := tx.ExecContext(ctx, r.dialect.Upsert,
		ad.ID, ad.Title, ad.Description, ad.Price, ad.Author, createdAt); err != nil {
		return fail("failed to upsert advertisement", err)
	}

	stored := *ad
	if err := tx.QueryRowContext(ctx, r.dialect.SelectCreatedAt, ad.ID).Scan(&stored.CreatedAt); err != nil {
		return fail("failed to read back created_at", err)
	}
	stored.CreatedAt = stored.CreatedAt.UTC()

	if err := tx.Commit(); err != nil {
		return fail("failed to commit transaction", err)
	}

	return &stored, nil
}

func (r *SQLAdRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Advertisement, error) {
	ctx, span := r.tracer.Start(ctx, "Repository Get")
	defer span.End()

	span.SetAttributes(attribute.String("advertisement.id", id.String()))

	startTime := time.Now()
	status := "success"
	defer r.observe("Get", startTime, &status)

	ad, err := scanAdvertisement(r.db.QueryRowContext(ctx, r.dialect.SelectByID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			status = "not_found"
			return nil, ErrNotFound
		}
		status = "error"
		span.RecordError(err)
		return nil, fmt.Errorf("%w: failed to get advertisement: %w", ErrStorageUnavailable, err)
	}

	return ad, nil
}

func (r *SQLAdRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := r.tracer.Start(ctx, "Repository Delete")
	defer span.End()

	span.SetAttributes(attribute.String("advertisement.id", id.String()))

	startTime := time.Now()
	status := "success"
	defer r.observe("Delete", startTime, &status)

	result, err := r.db.ExecContext(ctx, r.dialect.DeleteByID, id)
	if err != nil {
		status = "error"
		span.RecordError(err)
		return fmt.Errorf("%w: failed to delete advertisement: %w", ErrStorageUnavailable, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		status = "error"
		span.RecordError(err)
		return fmt.Errorf("%w: failed to retrieve rows affected: %w", ErrStorageUnavailable, err)
	}

	if rowsAffected == 0 {
		status = "not_found"
		return ErrNotFound
	}

	return nil
}

func (r *SQLAdRepository) ListAll(ctx context.Context) ([]*domain.Advertisement, error) {
	ctx, span := r.tracer.Start(ctx, "Repository ListAll")
	defer span.End()

	startTime := time.Now()
	status := "success"
	defer r.observe("ListAll", startTime, &status)

	rows, err := r.db.QueryContext(ctx, r.dialect.SelectAll)
	if err != nil {
		status = "error"
		span.RecordError(err)
		return nil, fmt.Errorf("%w: failed to list advertisements: %w", ErrStorageUnavailable, err)
	}
	defer rows.Close()

	ads := make([]*domain.Advertisement, 0)
	for rows.Next() {
		ad, err := scanAdvertisement(rows)
		if err != nil {
			status = "error"
			span.RecordError(err)
			return nil, fmt.Errorf("%w: failed to scan advertisement: %w", ErrStorageUnavailable, err)
		}
		ads = append(ads, ad)
	}

	if err := rows.Err(); err != nil {
		status = "error"
		span.RecordError(err)
		return nil, fmt.Errorf("%w: rows error: %w", ErrStorageUnavailable, err)
	}

	span.SetAttributes(attribute.Int("advertisement.count", len(ads)))
	return ads, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAdvertisement(row rowScanner) (*domain.Advertisement, error) {
	var ad domain.Advertisement
	if err := row.Scan(
		&ad.ID,
		&ad.Title,
		&ad.Description,
		&ad.Price,
		&ad.Author,
		&ad.CreatedAt,
	); err != nil {
		return nil, err
	}
	ad.CreatedAt = ad.CreatedAt.UTC()
	return &ad, nil
}
