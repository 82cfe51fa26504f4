// Package errors provides the error taxonomy shared by the catalog, ledger, checkout and document store.
package errors

import (
	"errors"
	"fmt"
)

// Caller errors. Reported without altering persisted state.
var ErrValidation = errors.New("validation failed")
var ErrNotFound = errors.New("not found")

var ErrProductNotFound = fmt.Errorf("product %w", ErrNotFound)
var ErrSaleNotFound = fmt.Errorf("sale %w", ErrNotFound)

var ErrEmptyCart = fmt.Errorf("%w: cart is empty", ErrValidation)
var ErrInsufficientPayment = fmt.Errorf("%w: amount tendered is less than total", ErrValidation)

// Storage errors. Reported up unchanged, never retried.
var ErrDecode = errors.New("failed to decode collection")
var ErrWrite = errors.New("failed to write collection")
var ErrLock = errors.New("failed to acquire collection lock")
