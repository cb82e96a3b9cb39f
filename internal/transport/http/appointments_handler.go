package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"agendly/backend/internal/domain"
	"agendly/backend/internal/service/booking"
	"agendly/backend/internal/store"
)

type BookingService interface {
	Book(ctx context.Context, req booking.BookingRequest) (booking.BookingResult, error)
	Cancel(ctx context.Context, id int64) error
	OccupiedSlots(ctx context.Context) ([]store.OccupiedSlot, error)
	AppointmentsByDate(ctx context.Context, date string) ([]domain.Appointment, error)
	AppointmentByID(ctx context.Context, id int64) (domain.Appointment, error)
	AppointmentsByEmail(ctx context.Context, email string) ([]domain.Appointment, error)
	Stats(ctx context.Context) (store.Stats, error)
}

type AppointmentsHandler struct {
	svc BookingService
	log *slog.Logger
}

func NewAppointmentsHandler(svc BookingService, log *slog.Logger) *AppointmentsHandler {
	return &AppointmentsHandler{svc: svc, log: log}
}

func (h *AppointmentsHandler) Book(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req booking.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.svc.Book(r.Context(), req)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

func (h *AppointmentsHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := strconv.ParseInt(ps.ByName("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "id must be an integer"})
		return
	}

	if err := h.svc.Cancel(r.Context(), id); err != nil {
		writeError(w, h.log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AppointmentsHandler) OccupiedSlots(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	slots, err := h.svc.OccupiedSlots(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, slots)
}

func (h *AppointmentsHandler) ByDate(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	appts, err := h.svc.AppointmentsByDate(r.Context(), ps.ByName("date"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, appts)
}

func (h *AppointmentsHandler) ByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := strconv.ParseInt(ps.ByName("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "id must be an integer"})
		return
	}

	appt, err := h.svc.AppointmentByID(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, appt)
}

func (h *AppointmentsHandler) ByEmail(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	appts, err := h.svc.AppointmentsByEmail(r.Context(), ps.ByName("email"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, appts)
}

func (h *AppointmentsHandler) Stats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
