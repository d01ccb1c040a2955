package dto

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestBindingErrorMessage(t *testing.T) {
	v := validator.New()

	type payload struct {
		Name    string `validate:"required"`
		BaseURL string `validate:"omitempty,url"`
		Retries int    `validate:"omitempty,min=1"`
	}

	err := v.Struct(payload{BaseURL: "not a url", Retries: 0})
	msg := BindingErrorMessage(err)
	assert.Contains(t, msg, "Name is required")
	assert.Contains(t, msg, "BaseURL must be a valid URL")

	plain := errors.New("unexpected EOF")
	assert.Equal(t, "unexpected EOF", BindingErrorMessage(plain))
}
