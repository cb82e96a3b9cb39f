package http

import (
	"log/slog"
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// NewRouter builds the public route table. Lookup paths live under static
// prefixes (id/, by-date/, ...) because httprouter rejects a wildcard sibling
// next to static segments.
func NewRouter(h *AppointmentsHandler, log *slog.Logger) http.Handler {
	r := httprouter.New()

	r.POST("/api/appointments", h.Book)
	r.GET("/api/appointments/occupied-slots", h.OccupiedSlots)
	r.GET("/api/appointments/by-date/:date", h.ByDate)
	r.GET("/api/appointments/by-email/:email", h.ByEmail)
	r.GET("/api/appointments/id/:id", h.ByID)
	r.DELETE("/api/appointments/id/:id", h.Cancel)
	r.GET("/api/appointments/stats", h.Stats)
	r.GET("/health", health)

	return Recovery(log)(RequestLogging(log)(r))
}

func health(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
