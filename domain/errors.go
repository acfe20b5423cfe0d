package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation              = errors.New("invalid sale request")
	ErrPatientNotFound         = errors.New("patient not found")
	ErrInventoryNotFound       = errors.New("inventory not found")
	ErrInsufficientStock       = errors.New("insufficient stock")
	ErrIncompleteInventoryData = errors.New("incomplete inventory data")
	ErrStockUpdateFailed       = errors.New("stock update failed")
	ErrUpstreamUnavailable     = errors.New("upstream service unavailable")
	ErrSaleNotFound            = errors.New("sale not found")
	ErrAlreadyCancelled        = errors.New("sale is already cancelled")

	ErrSaleMustHaveItems = errors.New("sale must have at least one item")
	ErrInvalidQuantity   = errors.New("quantity must be greater than 0")
	ErrInvalidPrice      = errors.New("price must be greater than or equal to 0")
	ErrInvalidTransition = errors.New("invalid sale status transition")
)

// ValidationError reports a malformed sale request. It matches ErrValidation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrValidation, e.Reason)
	}
	return fmt.Sprintf("%s: %s %s", ErrValidation, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// InsufficientStockError carries the stock seen on the snapshot and the
// quantity the line asked for.
type InsufficientStockError struct {
	Line      int
	Available int64
	Required  int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("%s on line %d: available %d, required %d", ErrInsufficientStock, e.Line+1, e.Available, e.Required)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }
