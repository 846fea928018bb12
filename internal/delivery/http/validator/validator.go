// Package validator adapts go-playground/validator to echo's Validator interface.
package validator

import (
	domainerrors "canopy/internal/domain/errors"

	playground "github.com/go-playground/validator/v10"
)

// Validator wraps a go-playground validator instance for echo.
type Validator struct {
	validate *playground.Validate
}

// New creates a request validator with struct tag validation enabled.
func New() *Validator {
	return &Validator{
		validate: playground.New(playground.WithRequiredStructEnabled()),
	}
}

// Validate implements echo.Validator.
func (v *Validator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return domainerrors.ErrValidationFailed.WrapMessage(err.Error())
	}

	return nil
}
