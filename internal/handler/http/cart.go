package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dungpham-npc/storefront/pkg/httputil"
	"github.com/dungpham-npc/storefront/pkg/validator"
)

// CartHandler handles the caller's shopping cart.
type CartHandler struct {
	service CartService
	logger  *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(svc CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{service: svc, logger: logger}
}

// --- Request DTOs ---

// AddItemRequest is the JSON request body for adding a product to the cart.
// Quantity bounds are enforced by the cart itself so that they surface as
// InvalidArgument rather than a validation failure.
type AddItemRequest struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	Quantity  int    `json:"quantity"`
}

// UpdateItemRequest is the JSON request body for changing a line quantity.
type UpdateItemRequest struct {
	Quantity int `json:"quantity"`
}

// --- Handlers ---

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	cart, err := h.service.GetOrCreateCart(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteOK(w, http.StatusOK, toCartResponse(cart))
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	limitBody(w, r)
	var req AddItemRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	cart, err := h.service.AddToCart(r.Context(), userID, req.ProductID, req.Quantity)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteOK(w, http.StatusOK, toCartResponse(cart))
}

// UpdateItem handles PUT /api/v1/cart/items/{itemId}
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	itemID, ok := httputil.ParseUUID(w, "itemId", chi.URLParam(r, "itemId"))
	if !ok {
		return
	}

	limitBody(w, r)
	var req UpdateItemRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	cart, err := h.service.UpdateItemQuantity(r.Context(), userID, itemID, req.Quantity)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteOK(w, http.StatusOK, toCartResponse(cart))
}

// RemoveItem handles DELETE /api/v1/cart/items/{itemId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	itemID, ok := httputil.ParseUUID(w, "itemId", chi.URLParam(r, "itemId"))
	if !ok {
		return
	}

	cart, err := h.service.RemoveItem(r.Context(), userID, itemID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteOK(w, http.StatusOK, toCartResponse(cart))
}

// ClearCart handles DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	cart, err := h.service.ClearCart(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteOK(w, http.StatusOK, toCartResponse(cart))
}
