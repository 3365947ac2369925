package shared

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// RespondJSON writes v as a JSON response with the given status.
func RespondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// RespondError converts a service error into the matching HTTP response.
func RespondError(logger *slog.Logger, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		RespondJSON(w, http.StatusNotFound, errorBody{Error: UserSafeMessage(err)})
	case errors.Is(err, ErrConflict):
		RespondJSON(w, http.StatusConflict, errorBody{Error: UserSafeMessage(err)})
	default:
		if ve, ok := AsValidation(err); ok {
			RespondJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "validation failed", Fields: ve.Fields})
			return
		}
		if logger != nil {
			logger.Error("request failed", slog.Any("error", err))
		}
		RespondJSON(w, http.StatusInternalServerError, errorBody{Error: UserSafeMessage(err)})
	}
}
