package pagination

import (
	"net/http"
	"strconv"
)

// Params holds listing parameters extracted from query strings. They map
// directly onto the WooCommerce Store API's page/per_page parameters.
type Params struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

// DefaultParams returns sensible listing defaults.
func DefaultParams() Params {
	return Params{
		Page:    1,
		PerPage: 20,
	}
}

// FromRequest extracts listing parameters from an HTTP request.
func FromRequest(r *http.Request) Params {
	p := DefaultParams()

	if page := r.URL.Query().Get("page"); page != "" {
		if v, err := strconv.Atoi(page); err == nil && v > 0 {
			p.Page = v
		}
	}

	if perPage := r.URL.Query().Get("per_page"); perPage != "" {
		if v, err := strconv.Atoi(perPage); err == nil && v > 0 && v <= 100 {
			p.PerPage = v
		}
	}

	return p
}
