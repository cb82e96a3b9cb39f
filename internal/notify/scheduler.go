package notify

import (
	"context"

	"agendly/backend/internal/domain"
)

// Event is the payload sent to the external calendar/email collaborator after
// a booking is durably recorded. ChatTranscript carries the optional chat
// conversation the visitor had before booking.
type Event struct {
	Appointment    domain.Appointment `json:"appointment"`
	ChatTranscript string             `json:"chat_transcript,omitempty"`
}

// EventRef is what the collaborator hands back on success. CalendarEventID is
// linked to the appointment for traceability; MeetLink is forwarded to the
// visitor by the collaborator itself.
type EventRef struct {
	CalendarEventID string `json:"calendar_event_id"`
	MeetLink        string `json:"meet_link,omitempty"`
}

type Scheduler interface {
	CreateEvent(ctx context.Context, ev Event) (EventRef, error)
}
