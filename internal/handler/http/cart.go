// Package http exposes the storefront session over a local REST API.
package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/czy882/sanitary-pads-shop/internal/domain"
	"github.com/czy882/sanitary-pads-shop/internal/service"
	apperrors "github.com/czy882/sanitary-pads-shop/pkg/errors"
	"github.com/czy882/sanitary-pads-shop/pkg/httputil"
	"github.com/czy882/sanitary-pads-shop/pkg/validator"
)

// CartHandler handles HTTP requests against the cart session store.
type CartHandler struct {
	store  *service.SessionStore
	logger *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(store *service.SessionStore, logger *slog.Logger) *CartHandler {
	return &CartHandler{store: store, logger: logger}
}

// --- Request DTOs ---

// AddItemRequest is the JSON request body for adding a product to the cart.
// ProductID is a string to match the catalog references the storefront passes
// around; it must still parse to a positive integer.
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"omitempty,gte=1,lte=999"`
}

// UpdateItemRequest is the JSON request body for setting a cart line quantity.
// Quantity 0 removes the line.
type UpdateItemRequest struct {
	Quantity *int `json:"quantity" validate:"required,gte=0,lte=999"`
}

// cartView is the JSON shape of the session state.
type cartView struct {
	Items     []domain.LineItem `json:"items"`
	ItemCount int               `json:"item_count"`
	Subtotal  int64             `json:"subtotal"`
	Currency  string            `json:"currency,omitempty"`
	MinorUnit int               `json:"minor_unit"`
	Loading   bool              `json:"loading"`
	LastError string            `json:"last_error,omitempty"`
}

func toCartView(v service.View) cartView {
	view := cartView{
		Items:     []domain.LineItem{},
		ItemCount: v.Snapshot.ItemCount(),
		Subtotal:  v.Snapshot.Subtotal(),
		MinorUnit: 2,
		Loading:   v.Loading,
		LastError: v.LastError,
	}
	if v.Snapshot != nil {
		view.Items = v.Snapshot.Items
		view.Currency = v.Snapshot.Currency
		view.MinorUnit = v.Snapshot.MinorUnit
	}
	return view
}

// decode reads and validates a JSON body, mapping malformed JSON to an
// invalid-argument rejection rather than an internal error.
func decode(r *http.Request, dst any) error {
	err := validator.DecodeAndValidate(r, dst)
	if err == nil {
		return nil
	}
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		return err
	}
	return apperrors.InvalidArgument("invalid request body")
}

// --- Handlers ---

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, toCartView(h.store.View()))
}

// Refresh handles POST /api/v1/cart/refresh
func (h *CartHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if _, err := h.store.Refresh(r.Context()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, toCartView(h.store.View()))
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := decode(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if _, err := h.store.AddItem(r.Context(), req.ProductID, req.Quantity); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, toCartView(h.store.View()))
}

// UpdateItem handles PUT /api/v1/cart/items/{key}
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var req UpdateItemRequest
	if err := decode(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if _, err := h.store.UpdateItemQuantity(r.Context(), key, *req.Quantity); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, toCartView(h.store.View()))
}

// RemoveItem handles DELETE /api/v1/cart/items/{key}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	if _, err := h.store.UpdateItemQuantity(r.Context(), key, 0); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, toCartView(h.store.View()))
}

// Clear handles DELETE /api/v1/cart
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if _, err := h.store.Clear(r.Context()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, toCartView(h.store.View()))
}
