package common

import (
	"encoding/json"
	"net/http"

	apperrors "calendar-backend/pkg/errors"
)

// RespondJSON sends a JSON response. The encoder keeps non-ASCII characters
// verbatim so titles and descriptions round-trip unescaped.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.Encode(data)
}

// RespondError sends an error body in the {"error": ...} shape
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, map[string]interface{}{"error": message})
}

// RespondFieldError sends a validation failure naming the offending field
func RespondFieldError(w http.ResponseWriter, message, field string) {
	RespondJSON(w, http.StatusBadRequest, map[string]interface{}{
		"error": message,
		"field": field,
	})
}

// RespondAppError maps an AppError onto the HTTP response. Internal causes are
// never serialized; callers are expected to have logged them.
func RespondAppError(w http.ResponseWriter, err error) {
	appErr := apperrors.GetAppError(err)
	if appErr == nil {
		RespondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	switch appErr.Type {
	case apperrors.ErrorTypeValidation:
		if appErr.Field != "" {
			RespondFieldError(w, appErr.Message, appErr.Field)
			return
		}
		RespondError(w, appErr.HTTPStatus, appErr.Message)
	case apperrors.ErrorTypeUnauthorized,
		apperrors.ErrorTypeForbidden,
		apperrors.ErrorTypeNotFound,
		apperrors.ErrorTypeConflict,
		apperrors.ErrorTypeMethodNotAllowed:
		RespondError(w, appErr.HTTPStatus, appErr.Message)
	default:
		// Database, transient and internal errors all collapse to a
		// generic message; the cause stays in the logs.
		RespondError(w, http.StatusInternalServerError, "Internal server error")
	}
}
