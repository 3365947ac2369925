package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// DecodeAndValidate decodes the request body into dest and runs struct
// validation, converting failures into the validation error class.
func DecodeAndValidate(v *validator.Validate, r *http.Request, dest any) error {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return NewValidationError("body", "JSON inválido")
	}
	if err := v.Struct(dest); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return NewValidationError("body", "dados inválidos")
		}
		fields := make(map[string]string, len(fieldErrs))
		for _, fieldErr := range fieldErrs {
			fields[fieldErr.Field()] = "valor inválido (" + fieldErr.Tag() + ")"
		}
		return &ValidationError{Fields: fields}
	}
	return nil
}
