package apperr

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/crm-backend/pkg/zerror"
)

const (
	ValidationErrorCode = "VALIDATION_FAILED"

	CustomerInvalidEmailCode = "CUSTOMER_INVALID_EMAIL"
	CustomerInvalidPhoneCode = "CUSTOMER_INVALID_PHONE"
	CustomerEmailExistsCode  = "CUSTOMER_EMAIL_EXISTS"
	CustomerNotFoundCode     = "CUSTOMER_NOT_FOUND"

	ProductInvalidPriceCode = "PRODUCT_INVALID_PRICE"
	ProductInvalidStockCode = "PRODUCT_INVALID_STOCK"
	ProductNotFoundCode     = "PRODUCT_NOT_FOUND"

	OrderNoProductsCode     = "ORDER_NO_PRODUCTS"
	OrderInvalidProductCode = "ORDER_INVALID_PRODUCT"
)

var (
	ValidationErr = zerror.NewValidationFailed(ValidationErrorCode, "validation error")

	CustomerInvalidEmailErr = zerror.NewValidationFailed(CustomerInvalidEmailCode, "Invalid email format")
	CustomerInvalidPhoneErr = zerror.NewValidationFailed(CustomerInvalidPhoneCode, "Invalid phone number format")
	CustomerEmailExistsErr  = zerror.NewConflict(CustomerEmailExistsCode, "Email already exists")
	CustomerNotFoundErr     = zerror.NewNotFound(CustomerNotFoundCode, "Invalid customer ID")

	ProductInvalidPriceErr = zerror.NewValidationFailed(ProductInvalidPriceCode, "Price must be positive")
	ProductInvalidStockErr = zerror.NewValidationFailed(ProductInvalidStockCode, "Stock cannot be negative")
	ProductNotFoundErr     = zerror.NewNotFound(ProductNotFoundCode, "Product not found")

	OrderNoProductsErr = zerror.NewValidationFailed(OrderNoProductsCode, "At least one product is required")
)

// OrderInvalidProductErr reports the first unresolved product ID of an order.
func OrderInvalidProductErr(productID uuid.UUID) zerror.ZError {
	return zerror.NewNotFound(OrderInvalidProductCode, fmt.Sprintf("Invalid product ID: %s", productID))
}

// IsExpected reports whether err is one of the structured, recoverable
// application errors. Anything else is treated as a store-layer failure.
func IsExpected(err error) bool {
	var zErr zerror.ZError
	return errors.As(err, &zErr)
}

// Message returns the user-facing message of a structured error, or a
// generic message for store-layer failures.
func Message(err error) string {
	var zErr zerror.ZError
	if errors.As(err, &zErr) {
		return zErr.Msg()
	}
	return "internal error"
}
