package order

import (
	"fmt"

	"github.com/go-faster/errors"
)

// ErrInvalidOrder is the parent of every client-input validation error.
// Use errors.Is(err, ErrInvalidOrder) to tell rejections from system failures.
var ErrInvalidOrder = errors.New("invalid order")

// ErrPersistence is returned when the order store fails. The cause is logged,
// never returned.
var ErrPersistence = errors.New("system error, please try again later")

// ErrOrderNotFound is returned by GetByNumber for unknown order numbers.
var ErrOrderNotFound = errors.New("order not found")

type invalidOrderError struct {
	msg string
}

func (e *invalidOrderError) Error() string { return e.msg }
func (e *invalidOrderError) Unwrap() error { return ErrInvalidOrder }

func invalid(msg string) error { return &invalidOrderError{msg: msg} }

// Sentinel validation errors.
var (
	ErrEmptyItems          = invalid("at least one item is required")
	ErrTooManyItems        = invalid(fmt.Sprintf("an order may contain at most %d items", MaxItems))
	ErrInvalidCustomerName = invalid(fmt.Sprintf("customer name must be 1-%d characters", MaxCustomerNameLen))
	ErrNoteTooLong         = invalid(fmt.Sprintf("note must be at most %d characters", MaxNoteLen))
	ErrInvalidPickupMethod = invalid("pickup method must be 內用 or 外帶")
	ErrInvalidTotal        = invalid("total amount must be positive")
)

// UnknownItemError indicates a line item references an id not in the catalog.
type UnknownItemError struct {
	ItemID string
}

func (e *UnknownItemError) Error() string {
	return fmt.Sprintf("unknown item %s", e.ItemID)
}

func (e *UnknownItemError) Unwrap() error { return ErrInvalidOrder }

// PriceMismatchError indicates a line item claims a price different from the
// catalog price.
type PriceMismatchError struct {
	ItemID   string
	Name     string
	Claimed  int64
	Expected int64
}

func (e *PriceMismatchError) Error() string {
	return fmt.Sprintf("price mismatch for item %s (%s): got %d, want %d", e.ItemID, e.Name, e.Claimed, e.Expected)
}

func (e *PriceMismatchError) Unwrap() error { return ErrInvalidOrder }

// InvalidQuantityError indicates a quantity outside [MinQuantity, MaxQuantity].
type InvalidQuantityError struct {
	ItemID   string
	Quantity int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity for item %s must be %d-%d, got %d", e.ItemID, MinQuantity, MaxQuantity, e.Quantity)
}

func (e *InvalidQuantityError) Unwrap() error { return ErrInvalidOrder }

// InvalidDrinkOptionError indicates an unknown temperature or sweetness.
type InvalidDrinkOptionError struct {
	ItemID string
	Field  string
	Value  string
}

func (e *InvalidDrinkOptionError) Error() string {
	return fmt.Sprintf("invalid %s %q for item %s", e.Field, e.Value, e.ItemID)
}

func (e *InvalidDrinkOptionError) Unwrap() error { return ErrInvalidOrder }

// TotalMismatchError indicates the declared total differs from the sum of
// line items.
type TotalMismatchError struct {
	Declared   int64
	Calculated int64
}

func (e *TotalMismatchError) Error() string {
	return fmt.Sprintf("total amount mismatch: declared %d, calculated %d", e.Declared, e.Calculated)
}

func (e *TotalMismatchError) Unwrap() error { return ErrInvalidOrder }
