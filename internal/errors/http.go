package errors

import (
	"encoding/json"
	"errors"
	"net/http"
)

// statusFor maps error kinds to HTTP status codes.
func statusFor(k Kind) int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindTransient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WriteHTTP renders a service error as a JSON response.
// Unclassified errors are normalized through Map first so the client
// never sees raw infrastructure messages.
func WriteHTTP(w http.ResponseWriter, err error) {
	mapped := Map(err)

	var svcErr *Error
	errors.As(mapped, &svcErr)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusFor(svcErr.Kind))
	_ = json.NewEncoder(w).Encode(map[string]string{"error": svcErr.Message})
}
