// Package backend implements the REST client for the remote commerce
// backend. The backend owns all cart business logic: pricing, tax, stock,
// persistence; this client is a thin transport adapter that returns raw cart
// payloads for normalization upstream.
package backend

import (
	"context"
	"encoding/json"

	"github.com/czy882/sanitary-pads-shop/internal/domain"
	"github.com/czy882/sanitary-pads-shop/pkg/pagination"
)

// CartAPI is the surface of the remote cart backend consumed by the session
// store. Every call returns the backend's post-operation cart payload in its
// raw, unnormalized shape.
type CartAPI interface {
	// FetchCart returns the current cart without server-side side effects.
	FetchCart(ctx context.Context) (json.RawMessage, error)

	// AddItem adds quantity units of the given catalog product.
	AddItem(ctx context.Context, productID int64, quantity int) (json.RawMessage, error)

	// UpdateItem sets the quantity of the cart line identified by its
	// backend-assigned key. Quantity 0 removes the line.
	UpdateItem(ctx context.Context, itemKey string, quantity int) (json.RawMessage, error)

	// ClearCart empties the cart and returns the resulting cart payload.
	ClearCart(ctx context.Context) (json.RawMessage, error)
}

// CatalogAPI is the surface of the product catalog (Store API).
type CatalogAPI interface {
	ListProducts(ctx context.Context, params pagination.Params) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error)
}
