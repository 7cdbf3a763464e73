package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"advertisement-service/internal/domain"
	"advertisement-service/internal/infrastructure/metrics"
	"advertisement-service/internal/repository"
	"advertisement-service/internal/service"
	"advertisement-service/pkg/logger"
	"advertisement-service/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	collectionPath = "/advertisement"
	itemPath       = "/advertisement/{id}"

	msgNotFound           = "Advertisement not found"
	msgStorageUnavailable = "Storage unavailable"
	msgInternal           = "Internal server error"
)

type AdvertisementHandler struct {
	service service.AdvertisementService
	logger  *logger.Loggers
	metrics *metrics.HandlerMetrics
	tracer  trace.Tracer
}

func NewAdvertisementHandler(service service.AdvertisementService, logger *logger.Loggers, metrics *metrics.HandlerMetrics) *AdvertisementHandler {
	tracer := otel.Tracer("advertisement-service/handler")
	return &AdvertisementHandler{
		service: service,
		logger:  logger,
		metrics: metrics,
		tracer:  tracer,
	}
}

func (h *AdvertisementHandler) observe(method, endpoint string, startTime time.Time, status *string) {
	duration := time.Since(startTime).Seconds()
	h.metrics.RequestCount.WithLabelValues(method, endpoint, *status).Inc()
	h.metrics.RequestDuration.WithLabelValues(method, endpoint, *status).Observe(duration)
}

// respondError maps err to its HTTP status and writes the error body. It
// returns the status label for metrics.
func (h *AdvertisementHandler) respondError(w http.ResponseWriter, span trace.Span, op string, err error) string {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		utils.RespondWithErrorJSON(w, http.StatusUnprocessableEntity, ve.Fields)
		return "invalid"
	case errors.Is(err, service.ErrAdvertisementNotFound):
		utils.RespondWithErrorJSON(w, http.StatusNotFound, msgNotFound)
		return "not_found"
	case errors.Is(err, repository.ErrStorageUnavailable):
		span.RecordError(err)
		h.logger.ErrorLogger.Errorw("storage unavailable", "operation", op, utils.Err(err))
		utils.RespondWithErrorJSON(w, http.StatusServiceUnavailable, msgStorageUnavailable)
		return "unavailable"
	default:
		span.RecordError(err)
		h.logger.ErrorLogger.Errorw("failed to "+op, utils.Err(err))
		utils.RespondWithErrorJSON(w, http.StatusInternalServerError, msgInternal)
		return "error"
	}
}

func parseID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, domain.NewValidationError("id", "INVALID_UUID", "id must be a valid UUID")
	}
	return id, nil
}

func decodeBody(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domain.NewValidationError("body", "INVALID_JSON", "invalid request payload: "+err.Error())
	}
	return nil
}

func (h *AdvertisementHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "Create")
	defer span.End()

	startTime := time.Now()
	status := "success"
	defer h.observe(http.MethodPost, collectionPath, startTime, &status)

	var input domain.CreateAdvertisementInput
	if err := decodeBody(r, &input); err != nil {
		status = h.respondError(w, span, "create advertisement", err)
		return
	}

	created, err := h.service.Create(ctx, input)
	if err != nil {
		status = h.respondError(w, span, "create advertisement", err)
		return
	}

	span.SetAttributes(attribute.String("advertisement.id", created.ID.String()))
	utils.RespondWithJSON(w, http.StatusCreated, created)
}

func (h *AdvertisementHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetByID")
	defer span.End()

	startTime := time.Now()
	status := "success"
	defer h.observe(http.MethodGet, itemPath, startTime, &status)

	id, err := parseID(r)
	if err != nil {
		status = h.respondError(w, span, "get advertisement", err)
		return
	}

	span.SetAttributes(attribute.String("advertisement.id", id.String()))

	ad, err := h.service.GetByID(ctx, id)
	if err != nil {
		status = h.respondError(w, span, "get advertisement", err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, ad)
}

func (h *AdvertisementHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "Update")
	defer span.End()

	startTime := time.Now()
	status := "success"
	defer h.observe(http.MethodPatch, itemPath, startTime, &status)

	id, err := parseID(r)
	if err != nil {
		status = h.respondError(w, span, "update advertisement", err)
		return
	}

	span.SetAttributes(attribute.String("advertisement.id", id.String()))

	var input domain.UpdateAdvertisementInput
	if err := decodeBody(r, &input); err != nil {
		status = h.respondError(w, span, "update advertisement", err)
		return
	}

	updated, err := h.service.Update(ctx, id, input)
	if err != nil {
		status = h.respondError(w, span, "update advertisement", err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, updated)
}

func (h *AdvertisementHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "Delete")
	defer span.End()

	startTime := time.Now()
	status := "success"
	defer h.observe(http.MethodDelete, itemPath, startTime, &status)

	id, err := parseID(r)
	if err != nil {
		status = h.respondError(w, span, "delete advertisement", err)
		return
	}

	span.SetAttributes(attribute.String("advertisement.id", id.String()))

	if err := h.service.Delete(ctx, id); err != nil {
		status = h.respondError(w, span, "delete advertisement", err)
		return
	}

	utils.RespondWithNoContent(w)
}

// Search reads q, min_price, max_price and author from the query string.
// q only filters when non-empty; author filters whenever it is present.
func (h *AdvertisementHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "Search")
	defer span.End()

	startTime := time.Now()
	status := "success"
	defer h.observe(http.MethodGet, collectionPath, startTime, &status)

	filter, err := parseSearchFilter(r)
	if err != nil {
		status = h.respondError(w, span, "search advertisements", err)
		return
	}

	results, err := h.service.Search(ctx, filter)
	if err != nil {
		status = h.respondError(w, span, "search advertisements", err)
		return
	}

	span.SetAttributes(attribute.Int("advertisement.results", len(results)))
	utils.RespondWithJSON(w, http.StatusOK, results)
}

func parseSearchFilter(r *http.Request) (domain.SearchFilter, error) {
	query := r.URL.Query()

	var filter domain.SearchFilter
	if q := query.Get("q"); q != "" {
		filter.Query = &q
	}
	if query.Has("author") {
		author := query.Get("author")
		filter.Author = &author
	}

	for _, p := range []struct {
		name string
		dst  **float64
	}{
		{"min_price", &filter.MinPrice},
		{"max_price", &filter.MaxPrice},
	} {
		if !query.Has(p.name) {
			continue
		}
		v, err := strconv.ParseFloat(query.Get(p.name), 64)
		if err != nil {
			return domain.SearchFilter{}, domain.NewValidationError(p.name, "INVALID_NUMBER", p.name+" must be a number")
		}
		*p.dst = &v
	}

	return filter, nil
}
