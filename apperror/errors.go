package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrRecordNotFound is returned by repositories when no document matches.
var ErrRecordNotFound = errors.New("record not found")

// ErrStaleStatus is returned by conditional order writes when the stored
// status no longer matches the one the caller read.
var ErrStaleStatus = errors.New("order status changed concurrently")

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func NewValidation(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

func NotFound(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string { return e.Message }

type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string { return e.Message }

type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

type InsufficientStockError struct {
	ProductID   string
	ProductName string
}

func (e *InsufficientStockError) Error() string {
	return "Insufficient stock for " + e.ProductName
}

type EmptyOrderError struct{}

func (EmptyOrderError) Error() string { return "No order items" }

type TransitionError struct {
	From string
	To   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("Cannot change status from %s to %s", e.From, e.To)
}

// UpstreamNotificationError wraps a failed notification delivery. It is only
// ever logged.
type UpstreamNotificationError struct {
	Channel string
	Err     error
}

func (e *UpstreamNotificationError) Error() string {
	return fmt.Sprintf("%s notification failed: %v", e.Channel, e.Err)
}

func (e *UpstreamNotificationError) Unwrap() error { return e.Err }

// HTTPStatus maps an error to a status code and a caller-facing message.
// Unknown errors map to 500 with a generic message.
func HTTPStatus(err error) (int, string) {
	var (
		validation *ValidationError
		notFound   *NotFoundError
		authn      *AuthenticationError
		authz      *AuthorizationError
		conflict   *ConflictError
		stock      *InsufficientStockError
		empty      EmptyOrderError
		transition *TransitionError
	)

	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, "Validation failed"
	case errors.As(err, &empty):
		return http.StatusBadRequest, empty.Error()
	case errors.As(err, &stock):
		return http.StatusBadRequest, stock.Error()
	case errors.As(err, &transition):
		return http.StatusBadRequest, transition.Error()
	case errors.As(err, &notFound):
		return http.StatusNotFound, notFound.Resource + " not found"
	case errors.As(err, &authn):
		return http.StatusUnauthorized, authn.Message
	case errors.As(err, &authz):
		return http.StatusForbidden, authz.Message
	case errors.As(err, &conflict):
		return http.StatusConflict, conflict.Message
	default:
		return http.StatusInternalServerError, "Server Error"
	}
}

// Fields returns the field errors carried by err, if any.
func Fields(err error) []FieldError {
	var validation *ValidationError
	if errors.As(err, &validation) {
		return validation.Fields
	}
	return nil
}
