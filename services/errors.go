package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Error kinds returned by the services. Callers match them with errors.Is.
var (
	ErrValidation          = errors.New("invalid input")
	ErrNotFound            = errors.New("not found")
	ErrEmptyCart           = errors.New("there are no items in the cart")
	ErrInvalidDeliveryCrew = errors.New("user is not a member of the Delivery Crew group")
	ErrForbidden           = errors.New("not authorized")
	ErrConflict            = errors.New("concurrent update conflict")
	ErrUnauthorized        = errors.New("authentication failed")
)

var (
	ErrMenuItemNotFound = fmt.Errorf("menu item %w", ErrNotFound)
	ErrOrderNotFound    = fmt.Errorf("order %w", ErrNotFound)
	ErrUserNotFound     = fmt.Errorf("user %w", ErrNotFound)
	ErrCategoryNotFound = fmt.Errorf("category %w", ErrNotFound)
)

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// notFound swaps gorm's record-not-found for the domain error kind.
func notFound(err error, kind error, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %d", kind, id)
	}
	return err
}
