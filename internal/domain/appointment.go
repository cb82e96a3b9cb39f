package domain

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

type AppointmentStatus string

const (
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// Appointment is the durable booking record. Date and Time are kept as the
// slot labels the booking form submits ("2024-06-10", "14:00"); together they
// identify one bookable window.
type Appointment struct {
	bun.BaseModel `bun:"table:appointments"`

	ID      int64  `bun:"id,pk,autoincrement" json:"id"`
	Name    string `bun:"name,notnull" json:"name"`
	Email   string `bun:"email,notnull" json:"email"`
	Phone   string `bun:"phone,notnull" json:"phone"`
	Company string `bun:"company" json:"company,omitempty"`
	Date    string `bun:"date,notnull" json:"date"`
	Time    string `bun:"time,notnull" json:"time"`
	Service string `bun:"service,notnull" json:"service"`

	AdvisoryType    string `bun:"advisory_type" json:"advisory_type,omitempty"`
	ProjectType     string `bun:"project_type" json:"project_type,omitempty"`
	ProjectStage    string `bun:"project_stage" json:"project_stage,omitempty"`
	Budget          string `bun:"budget" json:"budget,omitempty"`
	Timeline        string `bun:"timeline" json:"timeline,omitempty"`
	ExpectedUsers   string `bun:"expected_users" json:"expected_users,omitempty"`
	Features        string `bun:"features" json:"features,omitempty"`
	TechPreferences string `bun:"tech_preferences" json:"tech_preferences,omitempty"`
	HasTeam         string `bun:"has_team" json:"has_team,omitempty"`
	Priority        string `bun:"priority" json:"priority,omitempty"`
	Description     string `bun:"description" json:"description,omitempty"`

	CalendarEventID string            `bun:"calendar_event_id" json:"calendar_event_id,omitempty"`
	Status          AppointmentStatus `bun:"status,notnull" json:"status"`
	CreatedAt       time.Time         `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt       time.Time         `bun:"updated_at,notnull" json:"updated_at"`
}

func (a *Appointment) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if a.Status == "" {
			a.Status = StatusConfirmed
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = now
		}
		if a.UpdatedAt.IsZero() {
			a.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		a.UpdatedAt = now
	}
	return nil
}
