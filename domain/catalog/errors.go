package catalog

import (
	"errors"
	"fmt"

	"storefront/domain/shared"
)

var (
	ErrProductNotFound     = errors.New("product not found")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrProductDiscontinued = errors.New("product is discontinued")
	ErrInvalidPrice        = errors.New("price must be positive")
	ErrInvalidQuantity     = errors.New("quantity must be positive")
	ErrInvalidProduct      = errors.New("invalid product input")
)

func NewProductNotFoundError(productID string) error {
	return newError(ErrProductNotFound, shared.ErrNotFound, "", "product not found: "+productID)
}

func NewInsufficientStockError(productID string, available, requested int) error {
	return newError(ErrInsufficientStock, shared.ErrConflict, "quantity",
		fmt.Sprintf("product %s has %d in stock, %d requested", productID, available, requested))
}

func NewProductDiscontinuedError(productID string) error {
	return newError(ErrProductDiscontinued, shared.ErrConflict, "", "product "+productID+" is discontinued")
}

func NewValidationError(field, reason string) error {
	return newError(ErrInvalidProduct, shared.ErrInvalidInput, field, field+": "+reason)
}

func newError(sentinel, kind error, field, message string) error {
	return &catalogError{
		sentinel: sentinel,
		kind:     kind,
		field:    field,
		message:  message,
		stack:    shared.CaptureStack(4),
	}
}

type catalogError struct {
	sentinel error
	kind     error
	field    string
	message  string
	stack    []uintptr
}

func (e *catalogError) Error() string   { return e.message }
func (e *catalogError) Unwrap() []error { return []error{e.sentinel, e.kind} }
func (e *catalogError) Field() string   { return e.field }
func (e *catalogError) Stack() []string { return shared.FormatStack(e.stack) }
