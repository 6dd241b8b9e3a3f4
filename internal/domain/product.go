package domain

import (
	"encoding/json"
	"strconv"
)

// Product is a catalog product as displayed by the storefront. Prices are
// minor units (cents), coerced from the backend's representation the same
// way cart prices are.
type Product struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Slug      string   `json:"slug"`
	Permalink string   `json:"permalink,omitempty"`
	Price     int64    `json:"price"`
	Currency  string   `json:"currency,omitempty"`
	OnSale    bool     `json:"on_sale"`
	Images    []string `json:"images,omitempty"`
}

// ParseProduct extracts a Product from a raw catalog payload. Returns false
// for entries without a usable product id.
func ParseProduct(raw json.RawMessage) (*Product, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, false
	}

	idRaw, ok := fields["id"]
	if !ok {
		return nil, false
	}
	id, err := strconv.ParseInt(scalarString(idRaw), 10, 64)
	if err != nil || id <= 0 {
		return nil, false
	}

	p := &Product{
		ID:        id,
		Name:      firstString(fields, "name", "title"),
		Slug:      firstString(fields, "slug"),
		Permalink: firstString(fields, "permalink"),
	}

	if raw, ok := fields["on_sale"]; ok {
		_ = json.Unmarshal(raw, &p.OnSale)
	}

	// Store API nests prices with a declared minor unit; the legacy REST API
	// exposes a bare major-unit price string.
	if pricesRaw, ok := fields["prices"]; ok {
		var prices map[string]json.RawMessage
		if err := json.Unmarshal(pricesRaw, &prices); err == nil {
			_, minorDeclared := prices["currency_minor_unit"]
			if priceRaw, ok := prices["price"]; ok {
				if cents, ok := coercePrice(priceRaw, minorDeclared, defaultMinorUnit); ok {
					p.Price = cents
				}
			}
			p.Currency = firstString(prices, "currency_code")
		}
	} else if priceRaw, ok := fields["price"]; ok {
		if cents, ok := coercePrice(priceRaw, false, defaultMinorUnit); ok {
			p.Price = cents
		}
	}

	if imagesRaw, ok := fields["images"]; ok {
		var images []map[string]json.RawMessage
		if err := json.Unmarshal(imagesRaw, &images); err == nil {
			for _, img := range images {
				if src := firstString(img, "src", "source_url"); src != "" {
					p.Images = append(p.Images, src)
				}
			}
		}
	}

	return p, true
}

// ParseProductList extracts products from a raw list payload, skipping
// unusable entries. A single-object payload is treated as a one-element list.
func ParseProductList(raw json.RawMessage) []Product {
	products := []Product{}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil {
		if p, ok := ParseProduct(raw); ok {
			products = append(products, *p)
		}
		return products
	}

	for _, entry := range list {
		if p, ok := ParseProduct(entry); ok {
			products = append(products, *p)
		}
	}
	return products
}
