package model

import (
	"errors"
	"fmt"
)

// ErrNotFound — заявка или вложение не найдены.
var ErrNotFound = errors.New("not found")

// ErrAccessDenied — файл не привязан ни к одной заявке.
var ErrAccessDenied = errors.New("access denied")

// ValidationError — ошибка валидации входных данных.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError создаёт ошибку валидации для поля.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsValidation проверяет, является ли err ошибкой валидации.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
