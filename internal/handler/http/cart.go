package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/modacart/backend/internal/service"
	apperrors "github.com/modacart/backend/pkg/errors"
	"github.com/modacart/backend/pkg/middleware"
	"github.com/modacart/backend/pkg/validator"
)

// CartHandler handles HTTP requests for cart endpoints.
type CartHandler struct {
	cart   *service.CartService
	admin  *service.AdminService
	logger *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(cart *service.CartService, admin *service.AdminService, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		cart:   cart,
		admin:  admin,
		logger: logger,
	}
}

// --- Request DTOs ---

// AddLineRequest is the JSON request body for adding a variant to the cart.
type AddLineRequest struct {
	Product       string `json:"product" validate:"required"`
	Size          string `json:"size" validate:"required"`
	Quantity      int    `json:"quantity" validate:"required,gte=1"`
	PriceAtAdding int64  `json:"price_at_adding" validate:"gte=0"`
}

// UpdateQuantityRequest is the JSON request body for replacing a line's quantity.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required,gte=1"`
}

// SyncRequest is the JSON request body for merging a client-side cart.
type SyncRequest struct {
	Items []SyncItemRequest `json:"items" validate:"required,dive"`
}

// SyncItemRequest is one tuple of a client-side cart.
type SyncItemRequest struct {
	Product       string `json:"product" validate:"required"`
	Size          string `json:"size" validate:"required"`
	Quantity      int    `json:"quantity" validate:"required,gte=1"`
	PriceAtAdding int64  `json:"price_at_adding" validate:"gte=0"`
}

// --- Handlers ---

// GetCart handles GET /cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	customer := middleware.CustomerIDFromContext(r.Context())

	views, err := h.cart.GetCart(r.Context(), customer)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeSuccess(w, http.StatusOK, "cart retrieved", views)
}

// AddLine handles POST /cart/add
func (h *CartHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	customer := middleware.CustomerIDFromContext(r.Context())

	var req AddLineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, h.logger, apperrors.InvalidInput("invalid request body: "+err.Error()))
		return
	}
	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	line, err := h.cart.AddLine(r.Context(), customer, service.AddLineInput{
		Product:  req.Product,
		Size:     req.Size,
		Quantity: req.Quantity,
		Price:    req.PriceAtAdding,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeSuccess(w, http.StatusCreated, "item added to cart", line)
}

// UpdateQuantity handles PUT /cart/update/{id}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	customer := middleware.CustomerIDFromContext(r.Context())

	lineID := chi.URLParam(r, "id")
	if lineID == "" {
		writeError(w, r, h.logger, apperrors.InvalidInput("cart item id is required"))
		return
	}

	var req UpdateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, h.logger, apperrors.InvalidInput("invalid request body: "+err.Error()))
		return
	}
	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	line, err := h.cart.UpdateQuantity(r.Context(), customer, lineID, service.UpdateQuantityInput{
		Quantity: req.Quantity,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeSuccess(w, http.StatusOK, "cart item updated", line)
}

// RemoveLine handles DELETE /cart/remove/{id}. The response data carries
// the ledger record written for the removed line rather than a bare
// acknowledgment, so clients see the captured removal price.
func (h *CartHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	customer := middleware.CustomerIDFromContext(r.Context())

	lineID := chi.URLParam(r, "id")
	if lineID == "" {
		writeError(w, r, h.logger, apperrors.InvalidInput("cart item id is required"))
		return
	}

	rec, err := h.cart.RemoveLine(r.Context(), customer, lineID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeSuccess(w, http.StatusOK, "item removed from cart", rec)
}

// ClearCart handles DELETE /cart/clear. The response data reports how many
// lines were removed instead of a bare acknowledgment.
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	customer := middleware.CustomerIDFromContext(r.Context())

	deleted, err := h.cart.ClearCart(r.Context(), customer)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeSuccess(w, http.StatusOK, "cart cleared", map[string]int64{"removed": deleted})
}

// SyncCart handles POST /cart/sync. The response data is the applied count
// plus the skipped tuples with their reasons, so clients can reconcile a
// partially applied sync instead of getting a bare acknowledgment.
func (h *CartHandler) SyncCart(w http.ResponseWriter, r *http.Request) {
	customer := middleware.CustomerIDFromContext(r.Context())

	var req SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, h.logger, apperrors.InvalidInput("invalid request body: "+err.Error()))
		return
	}
	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	items := make([]service.SyncItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = service.SyncItem{Product: it.Product, Size: it.Size, Quantity: it.Quantity, Price: it.PriceAtAdding}
	}

	result, err := h.cart.SyncCart(r.Context(), customer, service.SyncInput{Items: items})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeSuccess(w, http.StatusOK, "cart synced", result)
}

// ListAllCarts handles GET /cart/admin/all
func (h *CartHandler) ListAllCarts(w http.ResponseWriter, r *http.Request) {
	groups, err := h.admin.ListAllCarts(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeSuccess(w, http.StatusOK, "carts retrieved", groups)
}
