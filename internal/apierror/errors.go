package apierror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

// GenericMessage is the only text a client sees for storage failures.
const GenericMessage = "An error occurred, please retry"

// ValidationError reports a missing or malformed field. Nothing has been written.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Validation is shorthand for &ValidationError{...}.
func Validation(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Message: msg}
}

// NotFoundError reports a referenced record that does not exist or does not
// belong to the caller's tenant. Both cases look identical to the client.
type NotFoundError struct {
	Resource string
	ID       uint
}

func (e *NotFoundError) Error() string {
	if e.ID == 0 {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// NotFound is shorthand for &NotFoundError{...}.
func NotFound(resource string, id uint) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// InsufficientStockError is raised when an outflow exceeds the available
// balance of a ledger key. Item is the 1-based line number inside a sale, or 0
// when the outflow was not part of a sale.
type InsufficientStockError struct {
	Item        int
	Category    string
	SubCategory string
	Available   decimal.Decimal
	Requested   decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	name := e.Category
	if name == "" {
		name = "category"
	}
	if e.SubCategory != "" {
		name += " / " + e.SubCategory
	}
	prefix := "insufficient stock"
	if e.Item > 0 {
		prefix = fmt.Sprintf("insufficient stock for item %d", e.Item)
	}
	return fmt.Sprintf("%s (%s): available %s, requested %s",
		prefix, name, e.Available.StringFixed(2), e.Requested.StringFixed(2))
}

// StorageError wraps a transaction, connection or constraint failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return "storage: " + e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error { return e.Err }

// Storage wraps err unless it already carries a typed kind, so a typed error
// raised inside a transaction callback survives the rollback path unchanged.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsTyped(err) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// ConflictError reports a request that clashes with current state
// (duplicate names, references that block a delete, a pending plan request).
type ConflictError struct{ Message string }

func (e *ConflictError) Error() string { return e.Message }

func Conflict(msg string) *ConflictError { return &ConflictError{Message: msg} }

// UnauthorizedError reports missing or wrong credentials.
type UnauthorizedError struct{ Message string }

func (e *UnauthorizedError) Error() string { return e.Message }

func Unauthorized(msg string) *UnauthorizedError { return &UnauthorizedError{Message: msg} }

// ForbiddenError reports an authenticated caller without the right to act.
type ForbiddenError struct{ Message string }

func (e *ForbiddenError) Error() string { return e.Message }

func Forbidden(msg string) *ForbiddenError { return &ForbiddenError{Message: msg} }

// IsTyped reports whether err (or anything it wraps) is one of this package's kinds.
func IsTyped(err error) bool {
	var (
		v *ValidationError
		n *NotFoundError
		i *InsufficientStockError
		s *StorageError
		c *ConflictError
		u *UnauthorizedError
		f *ForbiddenError
	)
	return errors.As(err, &v) || errors.As(err, &n) || errors.As(err, &i) ||
		errors.As(err, &s) || errors.As(err, &c) || errors.As(err, &u) || errors.As(err, &f)
}

// Status maps an error to its HTTP status and the message safe to show the client.
// Anything untyped is treated as a storage failure.
func Status(err error) (int, string) {
	var (
		v *ValidationError
		n *NotFoundError
		i *InsufficientStockError
		c *ConflictError
		u *UnauthorizedError
		f *ForbiddenError
	)
	switch {
	case errors.As(err, &v):
		return http.StatusBadRequest, v.Error()
	case errors.As(err, &n):
		return http.StatusNotFound, n.Error()
	case errors.As(err, &i):
		return http.StatusConflict, i.Error()
	case errors.As(err, &c):
		return http.StatusConflict, c.Error()
	case errors.As(err, &u):
		return http.StatusUnauthorized, u.Error()
	case errors.As(err, &f):
		return http.StatusForbidden, f.Error()
	default:
		return http.StatusInternalServerError, GenericMessage
	}
}
