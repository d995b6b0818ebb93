package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("subject", "is too long", "x")

	assert.Equal(t, "subject", err.Field)
	assert.Equal(t, "x", err.Value)
	assert.Empty(t, err.Rule)
	assert.Equal(t, "validation error on field 'subject': is too long", err.Error())

	withRule := NewValidationErrorWithRule("text", "is required", "required", "")
	assert.Equal(t, "required", withRule.Rule)
}

func TestValidationErrorsMessage(t *testing.T) {
	var errs ValidationErrors
	assert.Equal(t, "validation failed", errs.Error())

	errs = append(errs, *NewValidationError("text", "is required", nil))
	assert.Equal(t, "validation failed: text is required", errs.Error())

	errs = append(errs, *NewValidationError("subject", "is too long", nil))
	assert.Equal(t, "validation failed: 2 field errors", errs.Error())
}

func TestToValidationErrors(t *testing.T) {
	validate := validator.New()

	type request struct {
		Text   string `validate:"required"`
		Format string `validate:"oneof=csv xlsx"`
	}

	err := validate.Struct(request{Format: "pdf"})
	require.Error(t, err)

	// wrapped errors are unwrapped too
	errs := ToValidationErrors(fmt.Errorf("binding: %w", err))
	require.Len(t, errs, 2)

	assert.Equal(t, "Text", errs[0].Field)
	assert.Equal(t, "required", errs[0].Rule)
	assert.Equal(t, "is required", errs[0].Message)

	assert.Equal(t, "Format", errs[1].Field)
	assert.Equal(t, "must be one of: csv xlsx", errs[1].Message)
	assert.Equal(t, "pdf", errs[1].Value)
}

func TestToValidationErrorsIgnoresOtherErrors(t *testing.T) {
	assert.Nil(t, ToValidationErrors(errors.New("boom")))
	assert.Nil(t, ToValidationErrors(nil))
}
