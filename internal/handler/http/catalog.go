package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/czy882/sanitary-pads-shop/internal/backend"
	apperrors "github.com/czy882/sanitary-pads-shop/pkg/errors"
	"github.com/czy882/sanitary-pads-shop/pkg/httputil"
	"github.com/czy882/sanitary-pads-shop/pkg/pagination"
	"github.com/czy882/sanitary-pads-shop/pkg/slug"
)

// CatalogHandler proxies read-only product catalog lookups.
type CatalogHandler struct {
	catalog backend.CatalogAPI
	logger  *slog.Logger
}

// NewCatalogHandler creates a new catalog HTTP handler.
func NewCatalogHandler(catalog backend.CatalogAPI, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, logger: logger}
}

// ListProducts handles GET /api/v1/products
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)

	products, err := h.catalog.ListProducts(r.Context(), params)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, products)
}

// GetProduct handles GET /api/v1/products/{ref}. A numeric reference is a
// catalog product id; anything else is normalized and looked up as a slug,
// mirroring how storefront product URLs are built from product names.
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "ref")
	if ref == "" {
		httputil.WriteError(w, r, apperrors.InvalidArgument("product reference is required"), h.logger)
		return
	}

	if id, err := strconv.ParseInt(ref, 10, 64); err == nil && id > 0 {
		product, err := h.catalog.GetProduct(r.Context(), id)
		if err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
		httputil.WriteData(w, http.StatusOK, product)
		return
	}

	product, err := h.catalog.GetProductBySlug(r.Context(), slug.Normalize(ref))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, product)
}
