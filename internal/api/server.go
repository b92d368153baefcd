/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Wires the quoting engine, the broker store and the assistant onto chi
  routes for the web and mobile clients.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request, echoed in logs
  2. Logger:     zap request log (method, route, status, latency)
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. Metrics:    Prometheus counters and latency per route pattern
  5. CORS:       Origins from the server configuration

ROUTE GROUPS:
  /healthz, /metrics    Unauthenticated probes
  /api/*                Bearer token required (backend-issued HS256 JWT)
  /api/leads/*          broker or admin
  /api/admin/*          admin

SEE ALSO:
  - handlers_quotes.go:    catalogue, forms, quotes, exports, solver, comparison
  - handlers_assistant.go: claim extraction, sales pitch, diagnosis
  - handlers_leads.go:     broker pipeline
  - handlers_admin.go:     tariff administration
*/
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/assurlink/courtage/internal/assistant"
	"github.com/assurlink/courtage/internal/calculation"
	"github.com/assurlink/courtage/internal/config"
	"github.com/assurlink/courtage/internal/domain"
	"github.com/assurlink/courtage/internal/session"
	"github.com/assurlink/courtage/internal/store"
	"github.com/assurlink/courtage/internal/transform"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// RatesSource serves the tariff in force and reloads it on demand
type RatesSource interface {
	Rates() *domain.RateTables
	Reload() error
	Path() string
}

// Handler holds all dependencies for HTTP handlers.
// Store and Assistant are optional; their routes answer 503 when unset.
type Handler struct {
	Engine    *calculation.CalculationEngine
	Rates     RatesSource
	Store     *store.Store
	Assistant *assistant.Assistant
	Config    config.ServerConfig
	Logger    *zap.Logger
	Now       func() time.Time

	transforms *transform.TransformRegistry
}

// NewHandler creates a handler quoting against rates
func NewHandler(rates RatesSource, cfg config.ServerConfig, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	engine := calculation.NewCalculationEngineWithRates(rates)
	engine.SetLogger(logger.Sugar())
	return &Handler{
		Engine:     engine,
		Rates:      rates,
		Config:     cfg,
		Logger:     logger,
		Now:        time.Now,
		transforms: transform.NewTransformRegistry(),
	}
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	InitMetrics()
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(h.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(metricsMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.Config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(h.authenticate)

		r.Get("/products", h.ListProducts)
		r.Get("/products/{product}/form", h.GetForm)

		r.Route("/quotes", func(r chi.Router) {
			r.Get("/", h.ListQuotes)
			r.Get("/{id}", h.GetQuote)
			r.Get("/{id}/export.{format}", h.ExportQuote)
			r.Post("/{product}", h.CreateQuote)
			r.Post("/{product}/solve", h.Solve)
			r.Post("/{product}/compare", h.Compare)
		})

		r.Post("/claims/extract", h.ExtractClaim)
		r.Post("/assistant/pitch", h.Pitch)
		r.Post("/assistant/diagnose", h.Diagnose)

		r.Route("/leads", func(r chi.Router) {
			r.Use(requireRole(session.RoleBroker))
			r.Get("/", h.ListLeads)
			r.Post("/", h.CreateLead)
			r.Get("/renewals", h.Renewals)
			r.Get("/churn", h.Churn)
			r.Get("/{id}", h.GetLead)
			r.Post("/{id}/status", h.UpdateLeadStatus)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(requireRole(session.RoleAdmin))
			r.Get("/rates", h.GetRates)
			r.Post("/rates/reload", h.ReloadRates)
		})
	})

	return r
}

// NewServer wraps the router with the configured timeouts
func NewServer(h *Handler) *http.Server {
	return &http.Server{
		Addr:              h.Config.Addr,
		Handler:           NewRouter(h),
		ReadTimeout:       h.Config.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      h.Config.WriteTimeout,
	}
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.Logger.Info("request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("latency", time.Since(start)),
		)
	})
}

// Health reports database reachability and the tariff version in force
// GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Database: "disabled", Rates: h.Engine.Rates().Metadata.Version}
	status := http.StatusOK
	if h.Store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.Store.Ping(ctx); err != nil {
			h.Logger.Warn("database ping failed", zap.Error(err))
			resp.Status, resp.Database = "degraded", "unreachable"
			status = http.StatusServiceUnavailable
		} else {
			resp.Database = "ok"
		}
	}
	writeJSON(w, status, resp)
}
