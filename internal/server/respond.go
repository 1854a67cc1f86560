package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dockgate/dockgate/internal/registry"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// registryStatus maps the registry's error taxonomy onto HTTP statuses.
func registryStatus(err error) int {
	switch {
	case errors.Is(err, registry.ErrInvalidInput),
		errors.Is(err, registry.ErrConflict),
		errors.Is(err, registry.ErrLastAdmin):
		return http.StatusBadRequest
	case errors.Is(err, registry.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, registry.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, registry.ErrInvalidCredentials):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
