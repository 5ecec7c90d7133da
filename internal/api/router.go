package api

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterOptions configures the HTTP middleware stack.
type RouterOptions struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
	RequestLogging bool
}

// NewRouter builds the chi router with base middleware, CORS and the product routes.
func NewRouter(h *HTTPHandler, opts RouterOptions, logger *log.Logger) *chi.Mux {
	if logger == nil {
		logger = log.Default()
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 60 * time.Second
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	if opts.RequestLogging {
		router.Use(middleware.Logger) // Chi's request logger
	}
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(opts.RequestTimeout))
	// The browser client is served from a different origin than the API.
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))
	logger.Println("INFO: Base HTTP middleware registered.")

	h.RegisterRoutes(router)
	logger.Println("INFO: Product routes registered at /api/products")
	return router
}
