package validator

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type addItemPayload struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=1"`
}

func TestValidate_OK(t *testing.T) {
	assert.NoError(t, Validate(addItemPayload{ProductID: "42", Quantity: 1}))
}

func TestValidate_MissingRequired(t *testing.T) {
	err := Validate(addItemPayload{Quantity: 1})
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Fields(), "ProductID")
	assert.Equal(t, "is required", valErr.Fields()["ProductID"])
}

func TestValidate_GteViolation(t *testing.T) {
	err := Validate(addItemPayload{ProductID: "42", Quantity: 0})
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Error(), "Quantity")
	assert.Contains(t, valErr.Error(), "greater than or equal to 1")
}

func TestDecodeAndValidate_OK(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"product_id":"7","quantity":2}`))

	var dst addItemPayload
	require.NoError(t, DecodeAndValidate(r, &dst))
	assert.Equal(t, "7", dst.ProductID)
	assert.Equal(t, 2, dst.Quantity)
}

func TestDecodeAndValidate_MalformedBody(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"product_id":`))

	var dst addItemPayload
	err := DecodeAndValidate(r, &dst)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode request body")
}
