package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Email string `json:"email" validate:"required,email"`
	Count int    `json:"count" validate:"min=1"`
}

func TestTranslateUsesJSONNames(t *testing.T) {
	v := New()
	err := v.Struct(sample{Email: "nope"})
	require.Error(t, err)

	fields := Translate(err)
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "count")
	assert.Contains(t, fields["email"], "email")
}

func TestTranslateNonValidationError(t *testing.T) {
	fields := Translate(errors.New("unexpected EOF"))
	assert.Equal(t, map[string]string{"detail": "unexpected EOF"}, fields)
	assert.Nil(t, Translate(nil))
}
