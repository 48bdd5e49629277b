package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `validate:"required"`
	Email string `validate:"omitempty,email"`
	Limit int    `validate:"min=1"`
}

func TestStruct(t *testing.T) {
	assert.NoError(t, Struct(&sample{Name: "x", Limit: 1}))

	err := Struct(&sample{Email: "nope", Limit: 0})
	require.Error(t, err)

	var verr *Error
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Fields, 3)
	assert.Contains(t, err.Error(), "Name failed required")
	assert.Contains(t, err.Error(), "Limit failed min=1")
}
