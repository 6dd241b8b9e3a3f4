package backend

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/czy882/sanitary-pads-shop/internal/domain"
	apperrors "github.com/czy882/sanitary-pads-shop/pkg/errors"
	"github.com/czy882/sanitary-pads-shop/pkg/pagination"
)

// ListProducts implements CatalogAPI. Results follow the shop's configured
// menu order, matching the storefront's collection pages.
func (c *Client) ListProducts(ctx context.Context, params pagination.Params) ([]domain.Product, error) {
	query := url.Values{
		"page":     {strconv.Itoa(params.Page)},
		"per_page": {strconv.Itoa(params.PerPage)},
		"orderby":  {"menu_order"},
		"order":    {"asc"},
	}

	raw, err := c.request(ctx, "GET", c.store+"/products?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	return domain.ParseProductList(raw), nil
}

// GetProduct implements CatalogAPI.
func (c *Client) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	raw, err := c.request(ctx, "GET", c.store+"/products/"+strconv.FormatInt(id, 10), nil)
	if err != nil {
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}

	product, ok := domain.ParseProduct(raw)
	if !ok {
		return nil, apperrors.NotFound("product", strconv.FormatInt(id, 10))
	}
	return product, nil
}

// GetProductBySlug implements CatalogAPI. The catalog answers slug lookups
// with a list; the first entry wins.
func (c *Client) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	query := url.Values{"slug": {slug}}

	raw, err := c.request(ctx, "GET", c.store+"/products?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("get product by slug %q: %w", slug, err)
	}

	products := domain.ParseProductList(raw)
	if len(products) == 0 {
		return nil, apperrors.NotFound("product", slug)
	}
	return &products[0], nil
}
