package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrValidation        = errors.New("validation")         // 400
	ErrUnauthorized      = errors.New("unauthorized")       // 401
	ErrForbidden         = errors.New("forbidden")          // 403
	ErrNotFound          = errors.New("not found")          // 404
	ErrConflict          = errors.New("conflict")           // 409
	ErrInvalidTransition = errors.New("invalid transition") // 409
	ErrEmptyCart         = fmt.Errorf("cart is empty: %w", ErrValidation)
)

// notFound maps a missing row to ErrNotFound and passes anything else through.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s not found: %w", what, ErrNotFound)
	}
	return err
}
