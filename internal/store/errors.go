package store

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrEmptyCart           = errors.New("cannot create order with empty cart")
	ErrInvalidDeliveryType = errors.New("invalid delivery type")
	ErrEmailTaken          = errors.New("a user with this email already exists")
	ErrLastAdmin           = errors.New("cannot remove the last administrator")
	ErrUserHasOrders       = errors.New("user has orders")
	ErrDeliveryTypeInUse   = errors.New("delivery type is referenced by orders")
	ErrCategoryExists      = errors.New("category already exists")
)

// StorageError wraps a database failure with the operation that hit it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
