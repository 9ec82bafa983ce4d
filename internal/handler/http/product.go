package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dungpham-npc/storefront/pkg/httputil"
	"github.com/dungpham-npc/storefront/pkg/pagination"
	"github.com/dungpham-npc/storefront/pkg/validator"
)

// ProductHandler handles the public catalog endpoints.
type ProductHandler struct {
	service ProductService
	logger  *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(svc ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{service: svc, logger: logger}
}

// RateProductRequest is the JSON request body for rating a product.
type RateProductRequest struct {
	Rating int `json:"rating" validate:"required,gte=1,lte=5"`
}

// ListProducts handles GET /api/v1/products. Only active products are
// listed, whatever the query says.
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter, err := productFilter(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	active := true
	filter.Active = &active

	params := pagination.FromRequest(r)
	page, err := h.service.List(r.Context(), filter, params.Sort, params)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteOK(w, http.StatusOK, pagination.Map(page, toProductSummaryResponse))
}

// FeaturedProducts handles GET /api/v1/products/featured
func (h *ProductHandler) FeaturedProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.Featured(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteOK(w, http.StatusOK, toProductSummaryResponses(products))
}

// SearchProducts handles GET /api/v1/products/search?q=
func (h *ProductHandler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	params := pagination.FromRequest(r)

	page, err := h.service.Search(r.Context(), query, params)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteOK(w, http.StatusOK, pagination.Map(page, toProductSummaryResponse))
}

// GetProduct handles GET /api/v1/products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, "id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	product, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteOK(w, http.StatusOK, toProductResponse(*product))
}

// RateProduct handles POST /api/v1/products/{id}/ratings
func (h *ProductHandler) RateProduct(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	id, ok := httputil.ParseUUID(w, "id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	limitBody(w, r)
	var req RateProductRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	summary, err := h.service.Rate(r.Context(), userID, id, req.Rating)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteOK(w, http.StatusOK, toRatingResponse(id, req.Rating, summary))
}
