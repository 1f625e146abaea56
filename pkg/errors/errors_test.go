package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"storefront/domain/catalog"
	"storefront/domain/order"
	"storefront/domain/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromDomainError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   ErrorCode
		status int
		field  string
	}{
		{"not found", shared.NewNotFoundError("order", "o-1"), CodeNotFound, http.StatusNotFound, ""},
		{"wrapped not found", fmt.Errorf("load: %w", order.NewOrderNotFoundError("o-1")), CodeNotFound, http.StatusNotFound, ""},
		{"version conflict", shared.NewConcurrentModificationError("order", "o-1"), CodeConcurrentModification, http.StatusConflict, ""},
		{"stock conflict", catalog.NewInsufficientStockError("p-1", 1, 5), CodeConflict, http.StatusConflict, "quantity"},
		{"validation", shared.NewValidationError("query", "colour", "unknown filter field"), CodeValidation, http.StatusBadRequest, "colour"},
		{"pagination", &shared.PaginationError{Field: "pageSize", Value: 0, Min: 1}, CodeValidation, http.StatusBadRequest, "pageSize"},
		{"forbidden", shared.NewForbiddenError("order", "not yours"), CodeForbidden, http.StatusForbidden, ""},
		{"unauthorized", shared.ErrUnauthorized, CodeUnauthorized, http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := FromDomainError(tt.err)
			require.NotNil(t, appErr)
			assert.Equal(t, tt.code, appErr.Code)
			assert.Equal(t, tt.status, appErr.HTTPStatusCode())
			assert.Equal(t, tt.field, appErr.Field)
			assert.ErrorIs(t, appErr, tt.err)
		})
	}
}

func TestFromDomainErrorUnknownIsInternal(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	appErr := FromDomainError(cause)

	assert.Equal(t, CodeInternal, appErr.Code)
	assert.Equal(t, "internal server error", appErr.Message)
	assert.Equal(t, http.StatusInternalServerError, appErr.HTTPStatusCode())
	assert.ErrorIs(t, appErr, cause)
}

func TestFromDomainErrorKeepsAppError(t *testing.T) {
	orig := TooManyRequests("slow down")
	assert.Same(t, orig, FromDomainError(fmt.Errorf("wrapped: %w", orig)))
	assert.Nil(t, FromDomainError(nil))
	assert.True(t, Is(orig, CodeTooManyRequest))
	assert.False(t, Is(errors.New("x"), CodeTooManyRequest))
}
