package core

import (
	"errors"
	"fmt"
	"strings"
)

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports malformed or missing input. It is detected before any mutation.
type ValidationError struct {
	Message string
	Fields  []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

// NewValidationError builds a ValidationError with an optional single field.
func NewValidationError(message string, fields ...FieldError) *ValidationError {
	return &ValidationError{Message: message, Fields: fields}
}

// AuthorizationError means the actor may not perform the requested mutation.
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string { return e.Message }

// NotFoundError means a referenced order, product, or user does not exist.
type NotFoundError struct {
	Entity string
	ID     int
}

func (e *NotFoundError) Error() string {
	if e.ID == 0 {
		return e.Entity + " not found"
	}
	return fmt.Sprintf("%s with ID %d not found", e.Entity, e.ID)
}

// StockError means a product is disabled or does not have enough stock.
type StockError struct {
	ProductID   int
	ProductName string
	Requested   int
	Available   int
	Disabled    bool
}

func (e *StockError) Error() string {
	if e.Disabled {
		return fmt.Sprintf("product %q is not available for sale", e.ProductName)
	}
	return fmt.Sprintf("insufficient stock for product %q: requested %d, available %d",
		e.ProductName, e.Requested, e.Available)
}

// IsNotFound reports whether err wraps a NotFoundError for entity.
// An empty entity matches any NotFoundError.
func IsNotFound(err error, entity string) bool {
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		return false
	}
	return entity == "" || nf.Entity == entity
}
