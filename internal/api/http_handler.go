package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"product-catalog-manager/internal/catalog"
	"product-catalog-manager/internal/domain"

	"github.com/go-chi/chi/v5"
)

// HTTPHandler holds dependencies for HTTP handlers.
type HTTPHandler struct {
	service *catalog.Service
	logger  *log.Logger
}

// NewHTTPHandler creates a new HTTPHandler with dependencies.
func NewHTTPHandler(svc *catalog.Service, logger *log.Logger) *HTTPHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &HTTPHandler{service: svc, logger: logger}
}

// --- Helpers ---

// ErrorResponse defines the structure for JSON error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is returned by operations that have no record to return.
type MessageResponse struct {
	Message string `json:"message"`
}

func (h *HTTPHandler) respondWithError(w http.ResponseWriter, code int, message string) {
	h.respondWithJSON(w, code, ErrorResponse{Error: message})
}

func (h *HTTPHandler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			h.logger.Printf("ERROR: Failed to encode JSON response: %v", err)
		}
	}
}

// decodeBody decodes a JSON request body into dst. An empty body decodes as {}.
func decodeBody(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// --- Product Handlers ---

func (h *HTTPHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListProducts(r.Context())
	if err != nil {
		h.logger.Printf("ERROR: ListProducts failed: %v", err)
		h.respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if products == nil {
		products = []domain.Product{}
	}
	h.respondWithJSON(w, http.StatusOK, products)
}

func (h *HTTPHandler) GetProductByID(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "productId")

	product, err := h.service.GetProduct(r.Context(), idStr)
	if err != nil {
		if !errors.Is(err, catalog.ErrNotFound) {
			h.logger.Printf("ERROR: GetProductByID for ID %q failed: %v", idStr, err)
		}
		// Any lookup failure is reported as a missing product.
		h.respondWithError(w, http.StatusNotFound, catalog.ErrNotFound.Error())
		return
	}
	h.respondWithJSON(w, http.StatusOK, product)
}

func (h *HTTPHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var input catalog.ProductInput
	if err := decodeBody(r, &input); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	created, err := h.service.CreateProduct(r.Context(), input)
	if err != nil {
		var vErr *catalog.ValidationError
		if errors.As(err, &vErr) {
			h.respondWithError(w, http.StatusBadRequest, vErr.Message)
			return
		}
		h.logger.Printf("ERROR: CreateProduct failed: %v", err)
		h.respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.respondWithJSON(w, http.StatusCreated, created)
}

func (h *HTTPHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "productId")

	var input catalog.ProductPatchInput
	if err := decodeBody(r, &input); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	patch, err := input.Patch()
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.service.UpdateProduct(r.Context(), idStr, patch)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			h.respondWithError(w, http.StatusNotFound, catalog.ErrNotFound.Error())
			return
		}
		h.logger.Printf("ERROR: UpdateProduct for ID %q failed: %v", idStr, err)
		h.respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.respondWithJSON(w, http.StatusOK, updated)
}

func (h *HTTPHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "productId")

	if err := h.service.DeleteProduct(r.Context(), idStr); err != nil {
		h.logger.Printf("ERROR: DeleteProduct for ID %q failed: %v", idStr, err)
		h.respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.respondWithJSON(w, http.StatusOK, MessageResponse{Message: "Product deleted"})
}

// Health reports the service status and whether the store answers a ping.
func (h *HTTPHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	storeStatus := "healthy"
	if err := h.service.Ping(ctx); err != nil {
		storeStatus = "unhealthy"
		h.logger.Printf("WARN: Health check store ping failed: %v", err)
	}

	// Always 200, the payload carries the detailed status.
	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"store":     storeStatus,
	})
}

// --- Route Registration ---

// RegisterRoutes sets up the HTTP routes for the service.
func (h *HTTPHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/healthz", h.Health)

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)   // GET /api/products
		r.Post("/", h.CreateProduct) // POST /api/products

		r.Route("/{productId}", func(r chi.Router) {
			r.Get("/", h.GetProductByID)   // GET /api/products/{productId}
			r.Put("/", h.UpdateProduct)    // PUT /api/products/{productId}
			r.Delete("/", h.DeleteProduct) // DELETE /api/products/{productId}
		})
	})
}
