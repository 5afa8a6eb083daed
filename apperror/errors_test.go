package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"validation", NewValidation("name", "Name is required"), http.StatusBadRequest, "Validation failed"},
		{"empty order", EmptyOrderError{}, http.StatusBadRequest, "No order items"},
		{"insufficient stock", &InsufficientStockError{ProductName: "Mouse"}, http.StatusBadRequest, "Insufficient stock for Mouse"},
		{"transition", &TransitionError{From: "Delivered", To: "Processing"}, http.StatusBadRequest, "Cannot change status from Delivered to Processing"},
		{"not found keeps message generic", NotFound("Order", "abc"), http.StatusNotFound, "Order not found"},
		{"wrapped not found", fmt.Errorf("load: %w", NotFound("Product", "x")), http.StatusNotFound, "Product not found"},
		{"authentication", &AuthenticationError{Message: "Token required"}, http.StatusUnauthorized, "Token required"},
		{"authorization", &AuthorizationError{Message: "Not authorized"}, http.StatusForbidden, "Not authorized"},
		{"conflict", &ConflictError{Message: "Email already registered"}, http.StatusConflict, "Email already registered"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg := HTTPStatus(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.message, msg)
		})
	}
}

func TestFields(t *testing.T) {
	err := fmt.Errorf("wrap: %w", &ValidationError{Fields: []FieldError{{Field: "phone", Message: "bad"}}})
	assert.Equal(t, []FieldError{{Field: "phone", Message: "bad"}}, Fields(err))
	assert.Nil(t, Fields(errors.New("plain")))
}

func TestUpstreamNotificationErrorUnwraps(t *testing.T) {
	cause := errors.New("smtp down")
	err := &UpstreamNotificationError{Channel: "email", Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "email notification failed")
}
