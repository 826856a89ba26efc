package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/wastenexus/wastenexus/internal/economy"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// writeEconomyError maps the economy package's sentinel errors onto HTTP
// statuses: 404 for missing entities, 409 for state conflicts, 400 for bad
// input, 500 otherwise.
func writeEconomyError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, economy.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, economy.ErrInactive):
		writeError(w, http.StatusConflict, "reward is not active")
	case errors.Is(err, economy.ErrOutOfStock):
		writeError(w, http.StatusConflict, "reward is out of stock")
	case errors.Is(err, economy.ErrInsufficientBalance):
		writeError(w, http.StatusConflict, "insufficient points")
	case errors.Is(err, economy.ErrEventFull):
		writeError(w, http.StatusConflict, "event is full")
	case errors.Is(err, economy.ErrAlreadyJoined):
		writeError(w, http.StatusConflict, "already joined")
	case errors.Is(err, economy.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "invalid state transition")
	case errors.Is(err, economy.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, "invalid amount")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
