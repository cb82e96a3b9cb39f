package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"agendly/backend/internal/service/booking"
	"agendly/backend/internal/store"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError maps workflow errors onto the response contract: validation is
// the caller's fault (400), a taken slot means "pick another time" (409), a
// missing row is 404, anything else is a retryable system fault (500).
func writeError(w http.ResponseWriter, log *slog.Logger, err error) {
	var vErr *booking.ValidationError
	switch {
	case errors.As(err, &vErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: vErr.Error()})
	case errors.Is(err, store.ErrSlotTaken):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "That slot is already booked. Pick a different time."})
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "appointment not found"})
	default:
		log.Error("request failed", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
