package shared

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound indicates a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates the request clashes with the entity's current
	// state.
	ErrConflict = errors.New("conflict")
	// ErrStorage classifies unexpected failures from the backing store.
	ErrStorage = errors.New("storage failure")
)

// ValidationError carries field level detail for rejected input.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		keys = append(keys, field)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, field := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", field, e.Fields[field]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// AsValidation extracts a ValidationError from an error chain.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// StorageErr wraps a driver error into the storage failure class.
func StorageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStorage, op, err)
}

// UserSafeMessage maps internal errors to messages safe for API clients.
func UserSafeMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrNotFound) {
		return "Registo não encontrado."
	}
	if _, ok := AsValidation(err); ok {
		return err.Error()
	}
	if errors.Is(err, ErrConflict) {
		return "Operação não permitida no estado actual."
	}
	if errors.Is(err, ErrStorage) {
		return "Erro interno. Tente novamente."
	}
	return "Erro inesperado. Tente novamente."
}
