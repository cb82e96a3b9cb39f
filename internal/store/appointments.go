package store

import (
	"context"

	"agendly/backend/internal/domain"
)

// OccupiedSlot is the public view of a taken slot: no personal data, just
// enough for a client-side calendar to grey the window out.
type OccupiedSlot struct {
	Date string `bun:"date" json:"date"`
	Time string `bun:"time" json:"time"`
}

type Stats struct {
	Total     int64 `bun:"total" json:"total"`
	Confirmed int64 `bun:"confirmed" json:"confirmed"`
	Cancelled int64 `bun:"cancelled" json:"cancelled"`
}

type AppointmentRepository interface {
	Create(ctx context.Context, appt domain.Appointment) (domain.Appointment, error)
	UpdateCalendarEventID(ctx context.Context, id int64, eventID string) error
	IsSlotAvailable(ctx context.Context, date, slot string) (bool, error)
	ListOccupiedSlots(ctx context.Context) ([]OccupiedSlot, error)
	ListByDate(ctx context.Context, date string) ([]domain.Appointment, error)
	GetByID(ctx context.Context, id int64) (domain.Appointment, error)
	ListByEmail(ctx context.Context, email string) ([]domain.Appointment, error)
	SetStatus(ctx context.Context, id int64, status domain.AppointmentStatus) error
	Stats(ctx context.Context) (Stats, error)
}
