package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/Desarrolo-de-Software-V/all-offers/internal/logger"
	"github.com/Desarrolo-de-Software-V/all-offers/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response", zap.Error(err))
	}
}

// writeError maps service errors onto HTTP statuses. Unknown errors are
// logged and hidden behind a generic 500 body.
func writeError(w http.ResponseWriter, err error) {
	var verr service.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": verr.Reason})
	case errors.Is(err, service.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, service.ErrForbidden):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden"})
	default:
		logger.Error("request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

var errInvalidBody = errors.New("invalid request body")

func errBadDecimal(field string) error {
	return fmt.Errorf("%s is not a valid decimal", field)
}

func errBadTimestamp(field string) error {
	return fmt.Errorf("%s is not a valid RFC 3339 timestamp", field)
}
