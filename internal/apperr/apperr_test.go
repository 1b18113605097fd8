package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesByKind(t *testing.T) {
	err := Validation("title", "must be 1 to 100 characters")
	assert.ErrorIs(t, err, ErrValidation)
	assert.NotErrorIs(t, err, ErrNotFound)

	wrapped := fmt.Errorf("create todo: %w", Duplicate("category name already exists"))
	assert.ErrorIs(t, wrapped, ErrDuplicate)
	assert.Equal(t, KindDuplicate, KindOf(wrapped))
}

func TestInternalKeepsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Internal("create todo", cause)

	assert.ErrorIs(t, err, ErrInternal)
	assert.ErrorIs(t, err, cause)
	assert.False(t, IsDomain(err))
	assert.Equal(t, "internal: create todo: disk full", err.Error())
}

func TestKindOfUnclassified(t *testing.T) {
	err := errors.New("boom")
	assert.Equal(t, KindInternal, KindOf(err))
	assert.False(t, IsDomain(err))
}

func TestIsDomain(t *testing.T) {
	for _, err := range []error{ErrNotFound, ErrDuplicate, ErrValidation, ErrInactive, AuthInvalid(nil)} {
		assert.True(t, IsDomain(err), err.Error())
	}
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "validation: color: must look like #RRGGBB", Validation("color", "must look like #RRGGBB").Error())
	assert.Equal(t, "not_found: not found", ErrNotFound.Error())
}
