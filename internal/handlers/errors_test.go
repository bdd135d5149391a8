package handlers

import (
	"errors"
	"fmt"
	"testing"

	"github.com/SscSPs/expense_manager_app/internal/apperrors"
	"github.com/stretchr/testify/assert"
)

func TestPublicMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"prefixed", fmt.Errorf("%w: no manager assigned", apperrors.ErrValidation), "no manager assigned"},
		{"suffixed", fmt.Errorf("user abc: %w", apperrors.ErrNotFound), "user abc"},
		{"bare sentinel", apperrors.ErrForbidden, apperrors.ErrForbidden.Error()},
		{"unwrapped", errors.New("plain failure"), "plain failure"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, publicMessage(tt.err))
		})
	}
}

func TestBindErrorMessage_NonValidationError(t *testing.T) {
	msg := bindErrorMessage(errors.New("unexpected EOF"))
	assert.Equal(t, "Invalid request format: unexpected EOF", msg)
}
