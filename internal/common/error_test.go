package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError_MessageOnly(t *testing.T) {
	err := NewValidationError("pH and chlorine are required")
	assert.Equal(t, "pH and chlorine are required", err.Error())
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestValidationError_FieldsAreSorted(t *testing.T) {
	err := &ValidationError{
		Message: "validation failed",
		Fields: map[string]string{
			"volume": "must be greater than or equal to 0",
			"name":   "is required",
		},
	}

	assert.Equal(t, "validation failed: name is required; volume must be greater than or equal to 0", err.Error())
}

func TestValidationError_WrappedStillMatches(t *testing.T) {
	wrapped := fmt.Errorf("save pool: %w", &ValidationError{Fields: map[string]string{"name": "is required"}})

	require.ErrorIs(t, wrapped, ErrValidation)

	var ve *ValidationError
	require.ErrorAs(t, wrapped, &ve)
	assert.Equal(t, "is required", ve.Fields["name"])
}
