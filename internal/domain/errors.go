package domain

import (
	"errors"
	"fmt"
)

// Единый "not found" и для отсутствующего, и для чужого ресурса:
// ответ не должен выдавать, существует ли объект вообще.
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrStorage            = errors.New("storage operation failed")
)

// ValidationError — ошибка валидации входных данных с привязкой к полю.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
