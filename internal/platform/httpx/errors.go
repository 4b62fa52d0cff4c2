package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/lokafin/lokafin/internal/shared"
)

// RespondError maps domain errors to HTTP responses using RFC7807. Every
// business failure carries one of the shared kinds, so the mapping is total.
// Unclassified errors are logged and hidden behind a generic 500.
func RespondError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, shared.ErrConflict):
		Problem(w, http.StatusConflict, "State Conflict", err.Error())
	case errors.Is(err, shared.ErrIdempotencyConflict):
		Problem(w, http.StatusConflict, "Duplicate Request", err.Error())
	case errors.Is(err, shared.ErrIntegrity):
		Problem(w, http.StatusUnprocessableEntity, "Integrity Violation", err.Error())
	default:
		if logger != nil {
			logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		}
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
