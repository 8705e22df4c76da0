/*
server.go - HTTP router and middleware configuration

ROUTER: chi

MIDDLEWARE STACK:
 1. RequestID:  Unique ID per request for tracing
 2. Logger:     Request logging through zap
 3. Recoverer:  Panic recovery (500 instead of crash)
 4. CORS:       Cross-origin requests for the inventory screen

ROUTES:

	GET  /healthz                          Liveness
	GET  /api/requisitions                 Open requisitions
	GET  /api/requisitions/{id}/sources    Source warehouse options
	GET  /api/requisitions/{id}/events     Event history
	POST /api/allocations/preview          Recompute an allocation
	POST /api/transfers                    Submit a transfer
	GET  /api/transfers/{id}               Stored transfer

SECURITY NOTE:

	No authentication middleware. submitted_by is taken from the request body.
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger(h.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", h.Health)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/requisitions", func(r chi.Router) {
			r.Get("/", h.ListRequisitions)
			r.Get("/{id}/sources", h.ListSources)
			r.Get("/{id}/events", h.ListEvents)
		})

		r.Post("/allocations/preview", h.Preview)

		r.Route("/transfers", func(r chi.Router) {
			r.Post("/", h.SubmitTransfer)
			r.Get("/{id}", h.GetTransfer)
		})
	})

	return r
}

// requestLogger logs one line per request
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				logger.Info("http request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("request_id", middleware.GetReqID(r.Context())))
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
