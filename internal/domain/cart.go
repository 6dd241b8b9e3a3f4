package domain

import "encoding/json"

// Snapshot is the full state of the shopping cart as declared by the backend
// at a point in time. It is replaced wholesale after every successful mutation
// or refresh and never patched field by field.
//
// All monetary amounts are minor units (cents). The backend owns pricing; the
// amounts here are display values, not a source of truth for checkout.
type Snapshot struct {
	Items []LineItem `json:"items"`

	// DeclaredTotal is the backend's own cart total in cents. It is preferred
	// over any client-side summation when HasDeclaredTotal is set.
	DeclaredTotal    int64 `json:"declared_total"`
	HasDeclaredTotal bool  `json:"has_declared_total"`

	Currency  string `json:"currency,omitempty"`
	MinorUnit int    `json:"minor_unit"`

	// Raw is the unmodified backend payload. Some backends attach metadata
	// (vouchers, notices) that must survive a round trip untouched.
	Raw json.RawMessage `json:"-"`
}

// LineItem is one product-and-quantity entry within the cart.
type LineItem struct {
	// Key is the backend-assigned handle for this cart line. It is the
	// identity used for update and remove operations, NOT the catalog
	// product id.
	Key string `json:"key"`

	// ProductID is the catalog product id.
	ProductID int64 `json:"product_id"`

	Name     string `json:"name"`
	ImageURL string `json:"image_url,omitempty"`
	Quantity int    `json:"quantity"`

	// UnitPrice and LineTotal are cents. LineTotal is the backend-declared
	// total for the line; 0 means the backend did not provide one.
	UnitPrice int64 `json:"unit_price"`
	LineTotal int64 `json:"line_total"`
}

// ItemCount returns the total number of units in the cart (the navbar badge
// number). A nil or empty snapshot counts as 0.
func (s *Snapshot) ItemCount() int {
	if s == nil {
		return 0
	}
	var count int
	for _, item := range s.Items {
		count += item.Quantity
	}
	return count
}

// Subtotal returns the cart subtotal in cents. The backend-declared total is
// preferred; when absent, it falls back to summing per-line totals, using
// unit price times quantity for lines without a declared line total. A nil or
// empty snapshot yields 0.
func (s *Snapshot) Subtotal() int64 {
	if s == nil {
		return 0
	}
	if s.HasDeclaredTotal {
		return s.DeclaredTotal
	}
	var total int64
	for _, item := range s.Items {
		if item.LineTotal != 0 {
			total += item.LineTotal
			continue
		}
		total += item.UnitPrice * int64(item.Quantity)
	}
	return total
}
