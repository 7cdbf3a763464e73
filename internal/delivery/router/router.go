package router

import (
	"net/http"

	"advertisement-service/internal/config"
	"advertisement-service/internal/delivery/handler"
	"advertisement-service/internal/delivery/middleware"
	"advertisement-service/internal/infrastructure/metrics"
	"advertisement-service/internal/service"
	"advertisement-service/pkg/logger"
	"advertisement-service/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

func SetupMiddleware(r *chi.Mux, cfg config.HTTPConfig, loggers *logger.Loggers) {
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.AccessLog(loggers))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
	}).Handler)
	r.Use(middleware.RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
}

func SetupAdvertisementRoutes(r chi.Router, adService service.AdvertisementService, loggers *logger.Loggers, metrics *metrics.HandlerMetrics) {
	adHandler := handler.NewAdvertisementHandler(adService, loggers, metrics)

	r.Route("/advertisement", func(r chi.Router) {
		r.Get("/", adHandler.Search)
		r.Post("/", adHandler.Create)
		r.Get("/{id}", adHandler.GetByID)
		r.Patch("/{id}", adHandler.Update)
		r.Delete("/{id}", adHandler.Delete)
	})
}

func SetupOperationalRoutes(r chi.Router, metrics *metrics.HandlerMetrics) {
	r.Handle("/metrics", metrics.HTTPHandler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}
