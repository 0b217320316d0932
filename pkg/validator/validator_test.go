package validator

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type addLineRequest struct {
	Product  string `validate:"required"`
	Size     string `validate:"required"`
	Quantity int    `validate:"required,gte=1"`
	Price    int64  `validate:"gte=0"`
}

func TestValidate_Success(t *testing.T) {
	r := addLineRequest{Product: "prod-1", Size: "size-m", Quantity: 2, Price: 1999}
	err := Validate(r)
	assert.NoError(t, err)
}

func TestValidate_MissingRequired(t *testing.T) {
	r := addLineRequest{Size: "size-m", Quantity: 2}
	err := Validate(r)
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Contains(t, fields, "Product")
	assert.Equal(t, "is required", fields["Product"])
}

func TestValidate_QuantityBelowFloor(t *testing.T) {
	r := addLineRequest{Product: "prod-1", Size: "size-m", Quantity: -3}
	err := Validate(r)
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Contains(t, fields, "Quantity")
	assert.Contains(t, fields["Quantity"], "greater than or equal to 1")
}

func TestValidate_NegativePrice(t *testing.T) {
	r := addLineRequest{Product: "prod-1", Size: "size-m", Quantity: 1, Price: -5}
	err := Validate(r)
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Fields(), "Price")
}

func TestValidate_MultipleErrors(t *testing.T) {
	r := addLineRequest{} // missing Product, Size, Quantity
	err := Validate(r)
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Contains(t, fields, "Product")
	assert.Contains(t, fields, "Size")
	assert.Contains(t, fields, "Quantity")
}

func TestValidationError_ErrorString(t *testing.T) {
	r := addLineRequest{}
	err := Validate(r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field 'Product'")
	assert.Contains(t, err.Error(), "is required")
}

type emailStruct struct {
	Email string `validate:"required,email"`
}

func TestValidate_InvalidEmail(t *testing.T) {
	err := Validate(emailStruct{Email: "not-an-email"})
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "must be a valid email address", valErr.Fields()["Email"])
}

type oneofStruct struct {
	Role string `validate:"oneof=customer admin"`
}

func TestValidate_OneOf(t *testing.T) {
	err := Validate(oneofStruct{Role: "seller"})
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Fields()["Role"], "one of")
}

type syncRequest struct {
	Items []addLineRequest `validate:"required,dive"`
}

func TestValidate_NestedSlice(t *testing.T) {
	r := syncRequest{Items: []addLineRequest{
		{Product: "prod-1", Size: "size-m", Quantity: 1},
		{Product: "prod-2", Size: ""}, // second tuple invalid
	}}
	err := Validate(r)
	require.Error(t, err)
}

func TestDecodeAndValidate_Success(t *testing.T) {
	body := `{"Product":"prod-1","Size":"size-m","Quantity":3,"Price":2500}`
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))

	var r addLineRequest
	err := DecodeAndValidate(req, &r)

	require.NoError(t, err)
	assert.Equal(t, "prod-1", r.Product)
	assert.Equal(t, 3, r.Quantity)
	assert.Equal(t, int64(2500), r.Price)
}

func TestDecodeAndValidate_InvalidJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{invalid"))

	var r addLineRequest
	err := DecodeAndValidate(req, &r)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode request body")
}

func TestDecodeAndValidate_ValidationFails(t *testing.T) {
	body := `{"Product":"","Size":"size-m","Quantity":0}`
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))

	var r addLineRequest
	err := DecodeAndValidate(req, &r)

	require.Error(t, err)
	var valErr *ValidationError
	assert.ErrorAs(t, err, &valErr)
}
